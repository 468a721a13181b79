package account

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freshkart/freshkart-api/internal/mongox"
)

type Repo struct {
	store *mongox.Store[User]
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{store: mongox.NewStore[User](db, "users")}
}

func (r *Repo) Insert(ctx context.Context, u *User) (primitive.ObjectID, error) {
	return r.store.Insert(ctx, u)
}

func (r *Repo) FindByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return r.store.FindByID(ctx, id)
}

// Emails are stored lowercased, so lookups normalize the same way.
func (r *Repo) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.store.FindOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *Repo) PageAll(ctx context.Context, page, limit int64) ([]User, int64, error) {
	return r.store.Page(ctx, bson.M{"role": RoleUser}, bson.D{{Key: "createdAt", Value: -1}}, page, limit)
}

func (r *Repo) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*User, error) {
	return r.store.SetByID(ctx, id, bson.M{"isBlocked": blocked, "updatedAt": time.Now().UTC()})
}
