package cart

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Item struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	VariantID primitive.ObjectID `bson:"variantId" json:"variantId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart holds one user's line items. One cart per user; it is destroyed on
// successful checkout or an explicit clear.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Items     []Item             `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
