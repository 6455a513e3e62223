package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fsanano/inventory-cart/internal/model"
	"fsanano/inventory-cart/internal/repository"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type ItemInput struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"required,gte=0,lt=100000000"`
	Stock       *int     `json:"stock" validate:"required,gte=0,max=2147483647"`
}

type ListItemsInput struct {
	Search        string `json:"search"`
	SortBy        string `json:"sort_by" validate:"omitempty,oneof=id name price stock created_at updated_at"`
	SortDirection string `json:"sort_direction" validate:"omitempty,oneof=asc desc"`
	Page          int    `json:"page" validate:"omitempty,min=1"`
	PerPage       int    `json:"per_page" validate:"omitempty,min=1,max=100"`
}

type ItemService struct {
	repo ItemRepository
}

func NewItemService(repo ItemRepository) *ItemService {
	return &ItemService{repo: repo}
}

// List returns one page of the owner's items. The page and the total are
// fetched concurrently.
func (s *ItemService) List(ctx context.Context, ownerID int64, in ListItemsInput) (*model.ItemPage, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	f := model.ItemFilter{
		OwnerID:       ownerID,
		Search:        in.Search,
		SortBy:        in.SortBy,
		SortDirection: in.SortDirection,
		Page:          in.Page,
		PerPage:       in.PerPage,
	}
	if f.SortBy == "" {
		f.SortBy = "created_at"
	}
	if f.SortDirection == "" {
		f.SortDirection = "desc"
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.PerPage == 0 {
		f.PerPage = DefaultPerPage
	}

	var (
		items []model.Item
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.ListItems(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.CountItems(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	lastPage := (total + f.PerPage - 1) / f.PerPage
	if lastPage < 1 {
		lastPage = 1
	}
	return &model.ItemPage{
		Data: items,
		Meta: model.PageMeta{
			CurrentPage: f.Page,
			LastPage:    lastPage,
			PerPage:     f.PerPage,
			Total:       total,
		},
	}, nil
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, in ItemInput) (*model.Item, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	item := &model.Item{
		UserID:      ownerID,
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Stock:       *in.Stock,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

func (s *ItemService) Get(ctx context.Context, userID, itemID int64) (*model.Item, error) {
	return s.authorize(ctx, userID, itemID, ActionView)
}

// Update replaces every editable field of the item.
func (s *ItemService) Update(ctx context.Context, userID, itemID int64, in ItemInput) (*model.Item, error) {
	item, err := s.authorize(ctx, userID, itemID, ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	item.Name = in.Name
	item.Description = in.Description
	item.Price = *in.Price
	item.Stock = *in.Stock
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, userID, itemID int64) error {
	if _, err := s.authorize(ctx, userID, itemID, ActionDelete); err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// authorize loads the item and applies the access policy.
func (s *ItemService) authorize(ctx context.Context, userID, itemID int64, action Action) (*model.Item, error) {
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	if !CanAccessItem(userID, item, action) {
		return nil, ErrForbidden
	}
	return item, nil
}
