package cart

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freshkart/freshkart-api/internal/mongox"
)

type Repo struct {
	store *mongox.Store[Cart]
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{store: mongox.NewStore[Cart](db, "carts")}
}

func (r *Repo) Insert(ctx context.Context, c *Cart) (primitive.ObjectID, error) {
	return r.store.Insert(ctx, c)
}

func (r *Repo) FindByUser(ctx context.Context, userID primitive.ObjectID) (*Cart, error) {
	return r.store.FindOne(ctx, bson.M{"userId": userID})
}

// ReplaceItems swaps the full item list; the cart document is small enough
// that whole-list writes beat positional updates.
func (r *Repo) ReplaceItems(ctx context.Context, userID primitive.ObjectID, items []Item) (*Cart, error) {
	var c Cart
	err := r.store.Collection().FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": items, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	return r.store.DeleteOne(ctx, bson.M{"userId": userID})
}
