// Package memory is an in-process implementation of the repositories. A
// single mutex serializes transactions, which is at least as strict as the
// row locks the PostgreSQL implementation takes. Failed transactions are
// rolled back by restoring a snapshot.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fsanano/inventory-cart/internal/model"
	"fsanano/inventory-cart/internal/repository"
)

type state struct {
	users  map[int64]model.User
	tokens map[uuid.UUID]model.AccessToken
	items  map[int64]model.Item
	carts  map[int64]model.CartEntry

	nextUserID int64
	nextItemID int64
	nextCartID int64
}

func (s *state) clone() *state {
	c := &state{
		users:      make(map[int64]model.User, len(s.users)),
		tokens:     make(map[uuid.UUID]model.AccessToken, len(s.tokens)),
		items:      make(map[int64]model.Item, len(s.items)),
		carts:      make(map[int64]model.CartEntry, len(s.carts)),
		nextUserID: s.nextUserID,
		nextItemID: s.nextItemID,
		nextCartID: s.nextCartID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tokens {
		c.tokens[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	return c
}

type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

func New() *Store {
	return &Store{
		st: &state{
			users:  map[int64]model.User{},
			tokens: map[uuid.UUID]model.AccessToken{},
			items:  map[int64]model.Item{},
			carts:  map[int64]model.CartEntry{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// lock takes the store mutex unless ctx already belongs to a transaction.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
		if err != nil {
			s.st = snapshot
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// users

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	defer s.lock(ctx)()
	for _, existing := range s.st.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	s.st.nextUserID++
	now := s.now()
	u.ID, u.CreatedAt, u.UpdatedAt = s.st.nextUserID, now, now
	s.st.users[u.ID] = *u
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	defer s.lock(ctx)()
	for _, u := range s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	defer s.lock(ctx)()
	u, ok := s.st.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// tokens

func (s *Store) CreateToken(ctx context.Context, t *model.AccessToken) error {
	defer s.lock(ctx)()
	t.CreatedAt = s.now()
	s.st.tokens[t.ID] = *t
	return nil
}

func (s *Store) GetToken(ctx context.Context, id uuid.UUID) (*model.AccessToken, error) {
	defer s.lock(ctx)()
	t, ok := s.st.tokens[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *Store) TouchToken(ctx context.Context, id uuid.UUID, at time.Time) error {
	defer s.lock(ctx)()
	if t, ok := s.st.tokens[id]; ok {
		t.LastUsedAt = &at
		s.st.tokens[id] = t
	}
	return nil
}

func (s *Store) DeleteToken(ctx context.Context, id uuid.UUID) error {
	defer s.lock(ctx)()
	delete(s.st.tokens, id)
	return nil
}

func (s *Store) DeleteUserTokens(ctx context.Context, userID int64) error {
	defer s.lock(ctx)()
	for id, t := range s.st.tokens {
		if t.UserID == userID {
			delete(s.st.tokens, id)
		}
	}
	return nil
}

// ActiveTokens counts unexpired tokens of userID.
func (s *Store) ActiveTokens(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for _, t := range s.st.tokens {
		if t.UserID == userID && !t.Expired(now) {
			n++
		}
	}
	return n
}

// items

func (s *Store) CreateItem(ctx context.Context, it *model.Item) error {
	defer s.lock(ctx)()
	s.st.nextItemID++
	now := s.now()
	it.ID, it.CreatedAt, it.UpdatedAt = s.st.nextItemID, now, now
	s.st.items[it.ID] = *it
	return nil
}

func (s *Store) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	defer s.lock(ctx)()
	it, ok := s.st.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &it, nil
}

func (s *Store) UpdateItem(ctx context.Context, it *model.Item) error {
	defer s.lock(ctx)()
	existing, ok := s.st.items[it.ID]
	if !ok {
		return repository.ErrNotFound
	}
	it.UserID, it.CreatedAt, it.UpdatedAt = existing.UserID, existing.CreatedAt, s.now()
	s.st.items[it.ID] = *it
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	defer s.lock(ctx)()
	if _, ok := s.st.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.st.items, id)
	for cid, e := range s.st.carts {
		if e.ItemID == id {
			delete(s.st.carts, cid)
		}
	}
	return nil
}

func (s *Store) filterItems(f model.ItemFilter) []model.Item {
	search := strings.ToLower(f.Search)
	var out []model.Item
	for _, it := range s.st.items {
		if it.UserID != f.OwnerID {
			continue
		}
		if search != "" {
			desc := ""
			if it.Description != nil {
				desc = *it.Description
			}
			if !strings.Contains(strings.ToLower(it.Name), search) && !strings.Contains(strings.ToLower(desc), search) {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

func (s *Store) ListItems(ctx context.Context, f model.ItemFilter) ([]model.Item, error) {
	defer s.lock(ctx)()
	items := s.filterItems(f)

	desc := !strings.EqualFold(f.SortDirection, "asc")
	sort.SliceStable(items, func(i, j int) bool {
		c := compareItems(items[i], items[j], f.SortBy)
		if c == 0 {
			c = compareInt64(items[i].ID, items[j].ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})

	start := f.Offset()
	if start >= len(items) {
		return []model.Item{}, nil
	}
	end := start + f.PerPage
	if end > len(items) {
		end = len(items)
	}
	return append([]model.Item{}, items[start:end]...), nil
}

func (s *Store) CountItems(ctx context.Context, f model.ItemFilter) (int, error) {
	defer s.lock(ctx)()
	return len(s.filterItems(f)), nil
}

func compareItems(a, b model.Item, field string) int {
	switch field {
	case "id":
		return compareInt64(a.ID, b.ID)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "price":
		return compareFloat(a.Price, b.Price)
	case "stock":
		return compareInt64(int64(a.Stock), int64(b.Stock))
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// cart

func (s *Store) GetItemForUpdate(ctx context.Context, itemID int64) (*model.Item, error) {
	return s.GetItem(ctx, itemID)
}

func (s *Store) GetEntryByItemForUpdate(ctx context.Context, userID, itemID int64) (*model.CartEntry, error) {
	defer s.lock(ctx)()
	for _, e := range s.st.carts {
		if e.UserID == userID && e.ItemID == itemID {
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetEntry(ctx context.Context, userID, entryID int64) (*model.CartEntry, error) {
	defer s.lock(ctx)()
	e, ok := s.st.carts[entryID]
	if !ok || e.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (s *Store) GetEntryForUpdate(ctx context.Context, userID, entryID int64) (*model.CartEntry, error) {
	return s.GetEntry(ctx, userID, entryID)
}

func (s *Store) ReservedQuantity(ctx context.Context, itemID, excludeUserID int64) (int, error) {
	defer s.lock(ctx)()
	reserved := 0
	for _, e := range s.st.carts {
		if e.ItemID == itemID && e.UserID != excludeUserID {
			reserved += e.Quantity
		}
	}
	return reserved, nil
}

func (s *Store) CreateEntry(ctx context.Context, e *model.CartEntry) error {
	defer s.lock(ctx)()
	for _, existing := range s.st.carts {
		if existing.UserID == e.UserID && existing.ItemID == e.ItemID {
			return repository.ErrDuplicate
		}
	}
	s.st.nextCartID++
	now := s.now()
	e.ID, e.CreatedAt, e.UpdatedAt = s.st.nextCartID, now, now
	stored := *e
	stored.Item = nil
	s.st.carts[e.ID] = stored
	return nil
}

func (s *Store) UpdateQuantity(ctx context.Context, e *model.CartEntry) error {
	defer s.lock(ctx)()
	existing, ok := s.st.carts[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Quantity = e.Quantity
	existing.UpdatedAt = s.now()
	e.UpdatedAt = existing.UpdatedAt
	s.st.carts[e.ID] = existing
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, entryID int64) error {
	defer s.lock(ctx)()
	if _, ok := s.st.carts[entryID]; !ok {
		return repository.ErrNotFound
	}
	delete(s.st.carts, entryID)
	return nil
}

func (s *Store) ClearCart(ctx context.Context, userID int64) (int64, error) {
	defer s.lock(ctx)()
	var n int64
	for id, e := range s.st.carts {
		if e.UserID == userID {
			delete(s.st.carts, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) ListEntries(ctx context.Context, userID int64) ([]model.CartEntry, error) {
	defer s.lock(ctx)()
	entries := []model.CartEntry{}
	for _, e := range s.st.carts {
		if e.UserID != userID {
			continue
		}
		it, ok := s.st.items[e.ItemID]
		if !ok {
			continue
		}
		e.Item = &it
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}
