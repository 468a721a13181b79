package cart

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshkart/freshkart-api/internal/apperr"
)

type fakeRepo struct {
	byUser map[primitive.ObjectID]*Cart
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byUser: map[primitive.ObjectID]*Cart{}}
}

func (f *fakeRepo) Insert(_ context.Context, c *Cart) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *c
	cp.ID = id
	f.byUser[c.UserID] = &cp
	return id, nil
}

func (f *fakeRepo) FindByUser(_ context.Context, userID primitive.ObjectID) (*Cart, error) {
	c, ok := f.byUser[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) ReplaceItems(_ context.Context, userID primitive.ObjectID, items []Item) (*Cart, error) {
	c, ok := f.byUser[userID]
	if !ok {
		return nil, nil
	}
	c.Items = items
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) DeleteByUser(_ context.Context, userID primitive.ObjectID) (bool, error) {
	if _, ok := f.byUser[userID]; !ok {
		return false, nil
	}
	delete(f.byUser, userID)
	return true, nil
}

func line(qty int) Item {
	return Item{ProductID: primitive.NewObjectID(), VariantID: primitive.NewObjectID(), Quantity: qty}
}

func TestCreateCartOnce(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Repo: newFakeRepo()}
	userID := primitive.NewObjectID()

	if _, err := svc.Create(ctx, userID); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, userID)
	rej, ok := apperr.AsRejection(err)
	if !ok || rej.Status != http.StatusConflict {
		t.Fatalf("expected 409 on second create, got %v", err)
	}
}

func TestAddItemCreatesCartOnDemand(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Repo: newFakeRepo()}
	userID := primitive.NewObjectID()

	c, err := svc.AddItem(ctx, userID, line(2))
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart: %+v", c.Items)
	}
}

func TestAddItemIncrementsExactMatch(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Repo: newFakeRepo()}
	userID := primitive.NewObjectID()

	it := line(1)
	if _, err := svc.AddItem(ctx, userID, it); err != nil {
		t.Fatalf("add item: %v", err)
	}

	// same product, same variant: quantity bumps
	it.Quantity = 3
	c, err := svc.AddItem(ctx, userID, it)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != 4 {
		t.Fatalf("expected one line with qty 4, got %+v", c.Items)
	}

	// same product, different variant: new line
	other := Item{ProductID: it.ProductID, VariantID: primitive.NewObjectID(), Quantity: 1}
	c, err = svc.AddItem(ctx, userID, other)
	if err != nil {
		t.Fatalf("add variant: %v", err)
	}
	if len(c.Items) != 2 {
		t.Fatalf("expected two lines, got %+v", c.Items)
	}
}

func TestAddItemRejectsZeroQuantity(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Repo: newFakeRepo()}

	if _, err := svc.AddItem(ctx, primitive.NewObjectID(), line(0)); err == nil {
		t.Fatal("zero quantity accepted")
	}
}

func TestUpdateQuantityMissingLine(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Repo: newFakeRepo()}
	userID := primitive.NewObjectID()

	if _, err := svc.AddItem(ctx, userID, line(1)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	_, err := svc.UpdateQuantity(ctx, userID, line(2))
	rej, ok := apperr.AsRejection(err)
	if !ok || rej.Status != http.StatusNotFound {
		t.Fatalf("expected 404 for missing line, got %v", err)
	}
}

func TestUpdateQuantitySetsExactValue(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Repo: newFakeRepo()}
	userID := primitive.NewObjectID()

	it := line(5)
	if _, err := svc.AddItem(ctx, userID, it); err != nil {
		t.Fatalf("add item: %v", err)
	}
	it.Quantity = 2
	c, err := svc.UpdateQuantity(ctx, userID, it)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if c.Items[0].Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", c.Items[0].Quantity)
	}
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Repo: newFakeRepo()}
	userID := primitive.NewObjectID()

	it := line(1)
	if _, err := svc.AddItem(ctx, userID, it); err != nil {
		t.Fatalf("add item: %v", err)
	}
	c, err := svc.RemoveItem(ctx, userID, it.ProductID, it.VariantID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(c.Items) != 0 {
		t.Fatalf("cart should be empty, got %+v", c.Items)
	}
	if _, err := svc.RemoveItem(ctx, userID, it.ProductID, it.VariantID); err == nil {
		t.Fatal("removing again should fail")
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Repo: newFakeRepo()}
	userID := primitive.NewObjectID()

	if _, err := svc.AddItem(ctx, userID, line(1)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := svc.Clear(ctx, userID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := svc.GetByUser(ctx, userID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found after clear, got %v", err)
	}
}
