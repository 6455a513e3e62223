package service

import (
	"context"
	"errors"
	"fmt"

	"fsanano/inventory-cart/internal/model"
	"fsanano/inventory-cart/internal/repository"
)

type AddToCartInput struct {
	ItemID   int64 `json:"item_id" validate:"required"`
	Quantity int   `json:"quantity" validate:"min=1"`
}

type UpdateCartInput struct {
	Quantity int `json:"quantity" validate:"min=1"`
}

type CartService struct {
	tx   Transactor
	repo CartRepository
}

func NewCartService(tx Transactor, repo CartRepository) *CartService {
	return &CartService{tx: tx, repo: repo}
}

// AddOrIncrement adds quantity of an item to the user's cart, creating the
// entry or growing the existing one. The item row is locked for the whole
// read-check-write so two concurrent adds cannot both pass the stock check.
func (s *CartService) AddOrIncrement(ctx context.Context, userID int64, in AddToCartInput) (*model.CartEntry, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var entry *model.CartEntry
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		// 1. Lock the item row
		item, err := s.repo.GetItemForUpdate(ctx, in.ItemID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewValidationError("item_id", "The selected item id is invalid.")
			}
			return err
		}

		// 2. Stock left after other carts
		available, err := s.available(ctx, item, userID)
		if err != nil {
			return err
		}

		// 3. Grow the existing entry
		existing, err := s.repo.GetEntryByItemForUpdate(ctx, userID, item.ID)
		switch {
		case err == nil:
			newQty := existing.Quantity + in.Quantity
			if newQty > available {
				return ErrInsufficientStock
			}
			existing.Quantity = newQty
			if err := s.repo.UpdateQuantity(ctx, existing); err != nil {
				return err
			}
			entry = existing
			return nil
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		// 4. Or create it
		if in.Quantity > available {
			return ErrInsufficientStock
		}
		entry = &model.CartEntry{UserID: userID, ItemID: item.ID, Quantity: in.Quantity}
		return s.repo.CreateEntry(ctx, entry)
	})
	if err != nil {
		return nil, wrapCartErr("add to cart", err)
	}
	return entry, nil
}

// SetQuantity overwrites the quantity of one of the user's entries. The item
// is locked before the entry, the same order AddOrIncrement uses.
func (s *CartService) SetQuantity(ctx context.Context, userID, entryID int64, in UpdateCartInput) (*model.CartEntry, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var entry *model.CartEntry
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetEntry(ctx, userID, entryID)
		if err != nil {
			return err
		}

		item, err := s.repo.GetItemForUpdate(ctx, current.ItemID)
		if err != nil {
			return err
		}

		locked, err := s.repo.GetEntryForUpdate(ctx, userID, entryID)
		if err != nil {
			return err
		}
		if !CanAccessCartEntry(userID, locked, ActionUpdate) {
			return ErrNotFound
		}

		available, err := s.available(ctx, item, userID)
		if err != nil {
			return err
		}
		if in.Quantity > available {
			return ErrInsufficientStock
		}

		locked.Quantity = in.Quantity
		if err := s.repo.UpdateQuantity(ctx, locked); err != nil {
			return err
		}
		entry = locked
		return nil
	})
	if err != nil {
		return nil, wrapCartErr("update cart", err)
	}
	return entry, nil
}

// Remove deletes one of the user's entries. Foreign and missing entries are
// indistinguishable to the caller.
func (s *CartService) Remove(ctx context.Context, userID, entryID int64) error {
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		entry, err := s.repo.GetEntryForUpdate(ctx, userID, entryID)
		if err != nil {
			return err
		}
		if !CanAccessCartEntry(userID, entry, ActionDelete) {
			return ErrNotFound
		}
		return s.repo.DeleteEntry(ctx, entry.ID)
	})
	return wrapCartErr("remove from cart", err)
}

// Clear empties the user's cart as one unit.
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	err := s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		_, err := s.repo.ClearCart(ctx, userID)
		return err
	})
	return wrapCartErr("clear cart", err)
}

func (s *CartService) List(ctx context.Context, userID int64) (*model.Cart, error) {
	entries, err := s.repo.ListEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return model.NewCart(entries), nil
}

// available is the item's stock minus what other users' carts hold. The
// caller must hold the item lock.
func (s *CartService) available(ctx context.Context, item *model.Item, userID int64) (int, error) {
	reserved, err := s.repo.ReservedQuantity(ctx, item.ID, userID)
	if err != nil {
		return 0, err
	}
	return item.Stock - reserved, nil
}

func wrapCartErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
