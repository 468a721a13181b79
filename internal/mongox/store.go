package mongox

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is a thin generic accessor over one document collection. Each entity
// repository embeds a Store and layers its own queries on top. Not-found is
// reported as (nil, nil) so callers decide what it means for them.
type Store[T any] struct {
	coll *mongo.Collection
}

func NewStore[T any](db *mongo.Database, collection string) *Store[T] {
	return &Store[T]{coll: db.Collection(collection)}
}

// Collection exposes the raw collection for queries the generic surface
// doesn't cover (distinct, counts with custom filters).
func (s *Store[T]) Collection() *mongo.Collection { return s.coll }

func (s *Store[T]) Insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (s *Store[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return s.FindOne(ctx, bson.M{"_id": id})
}

func (s *Store[T]) FindOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store[T]) Find(ctx context.Context, filter bson.M, sort bson.D) ([]T, error) {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Page runs a paginated query. page is 1-indexed; the int64 return is
// totalPages = ceil(matching/limit).
func (s *Store[T]) Page(ctx context.Context, filter bson.M, sort bson.D, page, limit int64) ([]T, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	total, err := s.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSkip((page - 1) * limit).SetLimit(limit)
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, TotalPages(total, limit), nil
}

func TotalPages(count, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	return (count + limit - 1) / limit
}

func (s *Store[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.coll.CountDocuments(ctx, filter)
}

// SetByID applies a $set and returns the updated document, nil when absent.
func (s *Store[T]) SetByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc T
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// SoftDelete flags the document instead of removing it; listing queries
// filter on isDeleted. Returns false when the document is absent or already
// flagged.
func (s *Store[T]) SoftDelete(ctx context.Context, id primitive.ObjectID, now time.Time) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "isDeleted": false},
		bson.M{"$set": bson.M{"isDeleted": true, "updatedAt": now}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// DeleteOne removes documents matching the filter for entities that are hard
// deleted (carts after checkout).
func (s *Store[T]) DeleteOne(ctx context.Context, filter bson.M) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}
