package catalog

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryPatch is a partial update; nil fields are left untouched.
type CategoryPatch struct {
	Name         *string
	Description  *string
	Photo        *string
	Priority     *int
	IsListed     *bool
	MainCategory *primitive.ObjectID
}

func (p CategoryPatch) set() bson.M {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Photo != nil {
		set["photo"] = *p.Photo
	}
	if p.Priority != nil {
		set["priority"] = *p.Priority
	}
	if p.IsListed != nil {
		set["isListed"] = *p.IsListed
	}
	if p.MainCategory != nil {
		set["mainCategory"] = *p.MainCategory
	}
	return set
}

// ProductPatch mirrors CategoryPatch for products.
type ProductPatch struct {
	Name         *string
	Descriptions []Description
	Category     *primitive.ObjectID
	SubCategory  *primitive.ObjectID
	Images       []string
	SKU          *string
	EAN          *string
	Variants     []Variant
	IsListed     *bool
}

func (p ProductPatch) set() bson.M {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Descriptions != nil {
		set["descriptions"] = p.Descriptions
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.SubCategory != nil {
		set["subCategory"] = *p.SubCategory
	}
	if p.Images != nil {
		set["images"] = p.Images
	}
	if p.SKU != nil {
		set["sku"] = *p.SKU
	}
	if p.EAN != nil {
		set["ean"] = *p.EAN
	}
	if p.Variants != nil {
		set["variants"] = p.Variants
	}
	if p.IsListed != nil {
		set["isListed"] = *p.IsListed
	}
	return set
}
