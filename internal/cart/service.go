package cart

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshkart/freshkart-api/internal/apperr"
)

type Store interface {
	Insert(ctx context.Context, c *Cart) (primitive.ObjectID, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*Cart, error)
	ReplaceItems(ctx context.Context, userID primitive.ObjectID, items []Item) (*Cart, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (bool, error)
}

type Service struct {
	Repo Store
}

// Create makes an empty cart for the user; a second create is a conflict.
func (s *Service) Create(ctx context.Context, userID primitive.ObjectID) (*Cart, error) {
	existing, err := s.Repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Reject(http.StatusConflict, "cart already exists")
	}
	now := time.Now().UTC()
	c := &Cart{UserID: userID, Items: []Item{}, CreatedAt: now, UpdatedAt: now}
	id, err := s.Repo.Insert(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

func (s *Service) GetByUser(ctx context.Context, userID primitive.ObjectID) (*Cart, error) {
	c, err := s.Repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

// AddItem appends a line, or bumps the quantity when the exact
// product+variant pair is already present. The cart is created on demand.
func (s *Service) AddItem(ctx context.Context, userID primitive.ObjectID, item Item) (*Cart, error) {
	if item.Quantity < 1 {
		return nil, apperr.Reject(http.StatusBadRequest, "quantity must be at least 1")
	}
	c, err := s.Repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		now := time.Now().UTC()
		c = &Cart{UserID: userID, Items: []Item{}, CreatedAt: now, UpdatedAt: now}
		if _, err := s.Repo.Insert(ctx, c); err != nil {
			return nil, err
		}
	}

	items := c.Items
	found := false
	for i := range items {
		if items[i].ProductID == item.ProductID && items[i].VariantID == item.VariantID {
			items[i].Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, item)
	}
	return s.Repo.ReplaceItems(ctx, userID, items)
}

// UpdateQuantity sets the quantity of an existing line; a missing line is an
// error rather than an implicit add.
func (s *Service) UpdateQuantity(ctx context.Context, userID primitive.ObjectID, item Item) (*Cart, error) {
	if item.Quantity < 1 {
		return nil, apperr.Reject(http.StatusBadRequest, "quantity must be at least 1")
	}
	c, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := c.Items
	for i := range items {
		if items[i].ProductID == item.ProductID && items[i].VariantID == item.VariantID {
			items[i].Quantity = item.Quantity
			return s.Repo.ReplaceItems(ctx, userID, items)
		}
	}
	return nil, apperr.Reject(http.StatusNotFound, "item is not in the cart")
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID, variantID primitive.ObjectID) (*Cart, error) {
	c, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(c.Items))
	removed := false
	for _, it := range c.Items {
		if it.ProductID == productID && it.VariantID == variantID {
			removed = true
			continue
		}
		items = append(items, it)
	}
	if !removed {
		return nil, apperr.Reject(http.StatusNotFound, "item is not in the cart")
	}
	return s.Repo.ReplaceItems(ctx, userID, items)
}

func (s *Service) Clear(ctx context.Context, userID primitive.ObjectID) error {
	ok, err := s.Repo.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}
