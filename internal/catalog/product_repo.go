package catalog

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freshkart/freshkart-api/internal/mongox"
)

type ProductRepo struct {
	store *mongox.Store[Product]
}

func NewProductRepo(db *mongo.Database) *ProductRepo {
	return &ProductRepo{store: mongox.NewStore[Product](db, "products")}
}

func (r *ProductRepo) Insert(ctx context.Context, p *Product) (primitive.ObjectID, error) {
	return r.store.Insert(ctx, p)
}

func (r *ProductRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	return r.store.FindByID(ctx, id)
}

func (r *ProductRepo) FindByName(ctx context.Context, name string) (*Product, error) {
	return r.store.FindOne(ctx, bson.M{"name": nameEquals(name), "isDeleted": false})
}

func (r *ProductRepo) PageAll(ctx context.Context, page, limit int64) ([]Product, int64, error) {
	return r.store.Page(ctx, bson.M{"isDeleted": false}, bson.D{{Key: "name", Value: 1}}, page, limit)
}

func (r *ProductRepo) SearchByPrefix(ctx context.Context, prefix string, page, limit int64) ([]Product, int64, error) {
	filter := bson.M{"name": namePrefix(prefix), "isDeleted": false}
	return r.store.Page(ctx, filter, bson.D{{Key: "name", Value: 1}}, page, limit)
}

// ListedByCategory feeds the storefront: listed, non-deleted products of one
// category.
func (r *ProductRepo) ListedByCategory(ctx context.Context, category primitive.ObjectID, page, limit int64) ([]Product, int64, error) {
	filter := bson.M{"category": category, "isListed": true, "isDeleted": false}
	return r.store.Page(ctx, filter, bson.D{{Key: "name", Value: 1}}, page, limit)
}

func (r *ProductRepo) Set(ctx context.Context, id primitive.ObjectID, patch ProductPatch) (*Product, error) {
	return r.store.SetByID(ctx, id, patch.set())
}

func (r *ProductRepo) SetRating(ctx context.Context, id primitive.ObjectID, rating float64) error {
	_, err := r.store.SetByID(ctx, id, bson.M{"rating": rating, "updatedAt": time.Now().UTC()})
	return err
}

func (r *ProductRepo) SoftDelete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.store.SoftDelete(ctx, id, time.Now().UTC())
}
