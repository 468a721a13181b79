package checkout

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freshkart/freshkart-api/internal/mongox"
)

var placedDesc = bson.D{{Key: "orderPlacedAt", Value: -1}, {Key: "_id", Value: -1}}

type Repo struct {
	store *mongox.Store[Order]
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{store: mongox.NewStore[Order](db, "orders")}
}

func (r *Repo) Insert(ctx context.Context, o *Order) (primitive.ObjectID, error) {
	return r.store.Insert(ctx, o)
}

func (r *Repo) FindByID(ctx context.Context, id primitive.ObjectID) (*Order, error) {
	return r.store.FindByID(ctx, id)
}

func (r *Repo) PageAll(ctx context.Context, page, limit int64) ([]Order, int64, error) {
	return r.store.Page(ctx, bson.M{}, placedDesc, page, limit)
}

func (r *Repo) PageByUser(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]Order, int64, error) {
	return r.store.Page(ctx, bson.M{"userId": userID}, placedDesc, page, limit)
}

// Apply persists a validated transition and returns the new document.
func (r *Repo) Apply(ctx context.Context, id primitive.ObjectID, u StatusUpdate) (*Order, error) {
	return r.store.SetByID(ctx, id, u.set())
}
