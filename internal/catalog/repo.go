package catalog

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freshkart/freshkart-api/internal/mongox"
)

var prioritySort = bson.D{{Key: "priority", Value: 1}, {Key: "_id", Value: 1}}

func nameEquals(name string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"}
}

func namePrefix(prefix string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix), Options: "i"}
}

type CategoryRepo struct {
	store *mongox.Store[Category]
}

func NewCategoryRepo(db *mongo.Database) *CategoryRepo {
	return &CategoryRepo{store: mongox.NewStore[Category](db, "categories")}
}

func (r *CategoryRepo) Insert(ctx context.Context, c *Category) (primitive.ObjectID, error) {
	return r.store.Insert(ctx, c)
}

func (r *CategoryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Category, error) {
	return r.store.FindByID(ctx, id)
}

// FindByName matches case-insensitively among non-deleted categories; name
// uniqueness is enforced against this query.
func (r *CategoryRepo) FindByName(ctx context.Context, name string) (*Category, error) {
	return r.store.FindOne(ctx, bson.M{"name": nameEquals(name), "isDeleted": false})
}

func (r *CategoryRepo) FindByNameExcept(ctx context.Context, id primitive.ObjectID, name string) (*Category, error) {
	return r.store.FindOne(ctx, bson.M{
		"_id":       bson.M{"$ne": id},
		"name":      nameEquals(name),
		"isDeleted": false,
	})
}

func (r *CategoryRepo) PageAll(ctx context.Context, page, limit int64) ([]Category, int64, error) {
	return r.store.Page(ctx, bson.M{"isDeleted": false}, prioritySort, page, limit)
}

func (r *CategoryRepo) SearchByPrefix(ctx context.Context, prefix string, page, limit int64) ([]Category, int64, error) {
	return r.store.Page(ctx, bson.M{"name": namePrefix(prefix), "isDeleted": false}, prioritySort, page, limit)
}

// AssignedPriorities returns the distinct priority values in use by
// non-deleted categories, excluding the unassigned sentinel.
func (r *CategoryRepo) AssignedPriorities(ctx context.Context) ([]int, error) {
	vals, err := r.store.Collection().Distinct(ctx, "priority", bson.M{
		"isDeleted": false,
		"priority":  bson.M{"$ne": PriorityUnassigned},
	})
	if err != nil {
		return nil, err
	}
	return toInts(vals), nil
}

func (r *CategoryRepo) Set(ctx context.Context, id primitive.ObjectID, patch CategoryPatch) (*Category, error) {
	return r.store.SetByID(ctx, id, patch.set())
}

func (r *CategoryRepo) SoftDelete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.store.SoftDelete(ctx, id, time.Now().UTC())
}

type SubCategoryRepo struct {
	store *mongox.Store[SubCategory]
}

func NewSubCategoryRepo(db *mongo.Database) *SubCategoryRepo {
	return &SubCategoryRepo{store: mongox.NewStore[SubCategory](db, "subcategories")}
}

func (r *SubCategoryRepo) Insert(ctx context.Context, c *SubCategory) (primitive.ObjectID, error) {
	return r.store.Insert(ctx, c)
}

func (r *SubCategoryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*SubCategory, error) {
	return r.store.FindByID(ctx, id)
}

func (r *SubCategoryRepo) FindByName(ctx context.Context, name string) (*SubCategory, error) {
	return r.store.FindOne(ctx, bson.M{"name": nameEquals(name), "isDeleted": false})
}

func (r *SubCategoryRepo) FindByNameExcept(ctx context.Context, id primitive.ObjectID, name string) (*SubCategory, error) {
	return r.store.FindOne(ctx, bson.M{
		"_id":       bson.M{"$ne": id},
		"name":      nameEquals(name),
		"isDeleted": false,
	})
}

func (r *SubCategoryRepo) PageAll(ctx context.Context, page, limit int64) ([]SubCategory, int64, error) {
	return r.store.Page(ctx, bson.M{"isDeleted": false}, prioritySort, page, limit)
}

func (r *SubCategoryRepo) SearchByPrefix(ctx context.Context, prefix string, page, limit int64) ([]SubCategory, int64, error) {
	return r.store.Page(ctx, bson.M{"name": namePrefix(prefix), "isDeleted": false}, prioritySort, page, limit)
}

// ListedByParent returns listed, non-deleted subcategories of one parent
// category, priority ascending.
func (r *SubCategoryRepo) ListedByParent(ctx context.Context, parent primitive.ObjectID, page, limit int64) ([]SubCategory, int64, error) {
	filter := bson.M{"mainCategory": parent, "isListed": true, "isDeleted": false}
	return r.store.Page(ctx, filter, prioritySort, page, limit)
}

func (r *SubCategoryRepo) AssignedPriorities(ctx context.Context) ([]int, error) {
	vals, err := r.store.Collection().Distinct(ctx, "priority", bson.M{
		"isDeleted": false,
		"priority":  bson.M{"$ne": PriorityUnassigned},
	})
	if err != nil {
		return nil, err
	}
	return toInts(vals), nil
}

func (r *SubCategoryRepo) Set(ctx context.Context, id primitive.ObjectID, patch CategoryPatch) (*SubCategory, error) {
	return r.store.SetByID(ctx, id, patch.set())
}

func (r *SubCategoryRepo) SoftDelete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return r.store.SoftDelete(ctx, id, time.Now().UTC())
}

// Distinct returns bson numbers whose concrete type depends on how the value
// was written.
func toInts(vals []interface{}) []int {
	out := make([]int, 0, len(vals))
	for _, v := range vals {
		switch n := v.(type) {
		case int32:
			out = append(out, int(n))
		case int64:
			out = append(out, int(n))
		case int:
			out = append(out, n)
		case float64:
			out = append(out, int(n))
		}
	}
	return out
}
