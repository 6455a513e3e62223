package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fsanano/inventory-cart/internal/service"
)

func TestAddOrIncrement_MergesIntoSingleEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, 1, "Widget", 2, 10)

	_, err := f.cart.AddOrIncrement(ctx, 2, service.AddToCartInput{ItemID: item.ID, Quantity: 3})
	require.NoError(t, err)
	entry, err := f.cart.AddOrIncrement(ctx, 2, service.AddToCartInput{ItemID: item.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, entry.Quantity)

	cart, err := f.cart.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, cart.Entries, 1)
	assert.Equal(t, 5, cart.Entries[0].Quantity)
}

func TestAddOrIncrement_InsufficientStockKeepsQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, 1, "Widget", 2, 4)

	_, err := f.cart.AddOrIncrement(ctx, 2, service.AddToCartInput{ItemID: item.ID, Quantity: 3})
	require.NoError(t, err)
	_, err = f.cart.AddOrIncrement(ctx, 2, service.AddToCartInput{ItemID: item.ID, Quantity: 2})
	assert.ErrorIs(t, err, service.ErrInsufficientStock)

	cart, err := f.cart.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, cart.Entries, 1)
	assert.Equal(t, 3, cart.Entries[0].Quantity)
}

func TestAddOrIncrement_NewEntryOverStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, 1, "Widget", 2, 1)

	_, err := f.cart.AddOrIncrement(ctx, 2, service.AddToCartInput{ItemID: item.ID, Quantity: 2})
	assert.ErrorIs(t, err, service.ErrInsufficientStock)

	cart, err := f.cart.List(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, cart.Entries)
}

func TestAddOrIncrement_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, 1, "Widget", 2, 5)

	tests := []struct {
		name  string
		in    service.AddToCartInput
		field string
	}{
		{"zero quantity", service.AddToCartInput{ItemID: item.ID, Quantity: 0}, "quantity"},
		{"negative quantity", service.AddToCartInput{ItemID: item.ID, Quantity: -1}, "quantity"},
		{"missing item", service.AddToCartInput{Quantity: 1}, "item_id"},
		{"unknown item", service.AddToCartInput{ItemID: 999, Quantity: 1}, "item_id"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.cart.AddOrIncrement(ctx, 2, tc.in)
			var ve *service.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tc.field)
		})
	}
}

func TestAddOrIncrement_CountsOtherUsersCarts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, 1, "Widget", 2, 4)

	_, err := f.cart.AddOrIncrement(ctx, 2, service.AddToCartInput{ItemID: item.ID, Quantity: 3})
	require.NoError(t, err)

	_, err = f.cart.AddOrIncrement(ctx, 3, service.AddToCartInput{ItemID: item.ID, Quantity: 2})
	assert.ErrorIs(t, err, service.ErrInsufficientStock)

	_, err = f.cart.AddOrIncrement(ctx, 3, service.AddToCartInput{ItemID: item.ID, Quantity: 1})
	assert.NoError(t, err)
}

func TestAddOrIncrement_ConcurrentNoOverselling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stock := 10
	item := f.seedItem(t, 1, "Hot item", 5, stock)

	requests := 50
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		success  int
		rejected int
	)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		userID := int64(2 + i%5)
		go func() {
			defer wg.Done()
			_, err := f.cart.AddOrIncrement(ctx, userID, service.AddToCartInput{ItemID: item.ID, Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				success++
			} else {
				assert.ErrorIs(t, err, service.ErrInsufficientStock)
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, success)
	assert.Equal(t, requests-stock, rejected)

	total := 0
	for u := int64(2); u < 7; u++ {
		cart, err := f.cart.List(ctx, u)
		require.NoError(t, err)
		for _, e := range cart.Entries {
			total += e.Quantity
		}
	}
	assert.Equal(t, stock, total)
}

func TestSetQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, 1, "Widget", 2, 5)

	entry, err := f.cart.AddOrIncrement(ctx, 2, service.AddToCartInput{ItemID: item.ID, Quantity: 1})
	require.NoError(t, err)

	updated, err := f.cart.SetQuantity(ctx, 2, entry.ID, service.UpdateCartInput{Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	_, err = f.cart.SetQuantity(ctx, 2, entry.ID, service.UpdateCartInput{Quantity: 6})
	assert.ErrorIs(t, err, service.ErrInsufficientStock)

	_, err = f.cart.SetQuantity(ctx, 3, entry.ID, service.UpdateCartInput{Quantity: 1})
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.cart.SetQuantity(ctx, 2, 999, service.UpdateCartInput{Quantity: 1})
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.cart.SetQuantity(ctx, 2, entry.ID, service.UpdateCartInput{Quantity: 0})
	var ve *service.ValidationError
	assert.ErrorAs(t, err, &ve)

	cart, err := f.cart.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, cart.Entries, 1)
	assert.Equal(t, 5, cart.Entries[0].Quantity)
}

func TestSetQuantity_CountsOtherUsersCarts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, 1, "Widget", 2, 5)

	_, err := f.cart.AddOrIncrement(ctx, 2, service.AddToCartInput{ItemID: item.ID, Quantity: 3})
	require.NoError(t, err)
	entry, err := f.cart.AddOrIncrement(ctx, 3, service.AddToCartInput{ItemID: item.ID, Quantity: 1})
	require.NoError(t, err)

	_, err = f.cart.SetQuantity(ctx, 3, entry.ID, service.UpdateCartInput{Quantity: 3})
	assert.ErrorIs(t, err, service.ErrInsufficientStock)

	_, err = f.cart.SetQuantity(ctx, 3, entry.ID, service.UpdateCartInput{Quantity: 2})
	assert.NoError(t, err)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, 1, "Widget", 2, 5)

	entry, err := f.cart.AddOrIncrement(ctx, 2, service.AddToCartInput{ItemID: item.ID, Quantity: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, f.cart.Remove(ctx, 3, entry.ID), service.ErrNotFound)
	assert.ErrorIs(t, f.cart.Remove(ctx, 2, 999), service.ErrNotFound)

	cart, err := f.cart.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, cart.Entries, 1)

	require.NoError(t, f.cart.Remove(ctx, 2, entry.ID))
	assert.ErrorIs(t, f.cart.Remove(ctx, 2, entry.ID), service.ErrNotFound)

	cart, err = f.cart.List(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, cart.Entries)
}

func TestClear_OnlyTouchesCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedItem(t, 1, "A", 1, 10)
	b := f.seedItem(t, 1, "B", 1, 10)

	for _, in := range []service.AddToCartInput{{ItemID: a.ID, Quantity: 1}, {ItemID: b.ID, Quantity: 2}} {
		_, err := f.cart.AddOrIncrement(ctx, 2, in)
		require.NoError(t, err)
	}
	_, err := f.cart.AddOrIncrement(ctx, 3, service.AddToCartInput{ItemID: a.ID, Quantity: 4})
	require.NoError(t, err)

	require.NoError(t, f.cart.Clear(ctx, 2))

	cart, err := f.cart.List(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, cart.Entries)
	assert.Equal(t, 0.0, cart.Total)

	other, err := f.cart.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, other.Entries, 1)
	assert.Equal(t, 4, other.Entries[0].Quantity)
}

func TestList_Total(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seedItem(t, 1, "A", 2.5, 10)
	b := f.seedItem(t, 1, "B", 1.1, 10)

	_, err := f.cart.AddOrIncrement(ctx, 2, service.AddToCartInput{ItemID: a.ID, Quantity: 3})
	require.NoError(t, err)
	_, err = f.cart.AddOrIncrement(ctx, 2, service.AddToCartInput{ItemID: b.ID, Quantity: 2})
	require.NoError(t, err)

	cart, err := f.cart.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, cart.Entries, 2)
	assert.Equal(t, 9.7, cart.Total)
	require.NotNil(t, cart.Entries[0].Item)
	assert.Equal(t, "A", cart.Entries[0].Item.Name)
}
