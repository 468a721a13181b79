package catalog

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// Priority slots 1..10 are ranked display positions; 101 means unassigned.
	PriorityMin        = 1
	PriorityMax        = 10
	PriorityUnassigned = 101
)

type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Photo       string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Priority    int                `bson:"priority" json:"priority"`
	IsListed    bool               `bson:"isListed" json:"isListed"`
	IsDeleted   bool               `bson:"isDeleted" json:"isDeleted"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type SubCategory struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	Photo        string             `bson:"photo,omitempty" json:"photo,omitempty"`
	MainCategory primitive.ObjectID `bson:"mainCategory" json:"mainCategory"`
	Priority     int                `bson:"priority" json:"priority"`
	IsListed     bool               `bson:"isListed" json:"isListed"`
	IsDeleted    bool               `bson:"isDeleted" json:"isDeleted"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Variant is one purchasable configuration of a product with its own price
// and stock. Prices carry both sides: inPrice is cost, outPrice is what the
// customer pays.
type Variant struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Weight        string             `bson:"weight" json:"weight"`
	InPrice       float64            `bson:"inPrice" json:"inPrice"`
	OutPrice      float64            `bson:"outPrice" json:"outPrice"`
	StockQuantity int                `bson:"stockQuantity" json:"stockQuantity"`
}

type Description struct {
	Header  string `bson:"header" json:"header"`
	Content string `bson:"content" json:"content"`
}

type Product struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string              `bson:"name" json:"name"`
	Descriptions []Description       `bson:"descriptions" json:"descriptions"`
	Category     primitive.ObjectID  `bson:"category" json:"category"`
	SubCategory  *primitive.ObjectID `bson:"subCategory,omitempty" json:"subCategory,omitempty"`
	Images       []string            `bson:"images" json:"images"`
	SKU          string              `bson:"sku" json:"sku"`
	EAN          string              `bson:"ean" json:"ean"`
	Variants     []Variant           `bson:"variants" json:"variants"`
	Rating       float64             `bson:"rating" json:"rating"`
	IsListed     bool                `bson:"isListed" json:"isListed"`
	IsDeleted    bool                `bson:"isDeleted" json:"isDeleted"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Variant lookup by id; nil when the product has no such variant.
func (p *Product) VariantByID(id primitive.ObjectID) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}
