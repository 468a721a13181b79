package review

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freshkart/freshkart-api/internal/mongox"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

type Repo struct {
	store *mongox.Store[Review]
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{store: mongox.NewStore[Review](db, "reviews")}
}

func (r *Repo) Insert(ctx context.Context, rev *Review) (primitive.ObjectID, error) {
	return r.store.Insert(ctx, rev)
}

func (r *Repo) FindByID(ctx context.Context, id primitive.ObjectID) (*Review, error) {
	return r.store.FindByID(ctx, id)
}

// PageByProduct feeds the storefront: approved reviews only.
func (r *Repo) PageByProduct(ctx context.Context, productID primitive.ObjectID, page, limit int64) ([]Review, int64, error) {
	filter := bson.M{"productId": productID, "status": StatusApproved}
	return r.store.Page(ctx, filter, newestFirst, page, limit)
}

// PageAll is the moderation queue; status is an optional filter.
func (r *Repo) PageAll(ctx context.Context, status Status, page, limit int64) ([]Review, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.store.Page(ctx, filter, newestFirst, page, limit)
}

func (r *Repo) SetStatus(ctx context.Context, id primitive.ObjectID, status Status) (*Review, error) {
	return r.store.SetByID(ctx, id, bson.M{"status": status, "updatedAt": time.Now().UTC()})
}

// CountPending sizes the moderation queue for the admin dashboard.
func (r *Repo) CountPending(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, bson.M{"status": StatusPending})
}

// ApprovedAverage is the mean rating across approved reviews of one product;
// zero when none are approved.
func (r *Repo) ApprovedAverage(ctx context.Context, productID primitive.ObjectID) (float64, error) {
	cur, err := r.store.Collection().Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": productID, "status": StatusApproved}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$rating"}}}},
	})
	if err != nil {
		return 0, err
	}
	var out []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Avg, nil
}
