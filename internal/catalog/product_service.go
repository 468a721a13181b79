package catalog

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshkart/freshkart-api/internal/apperr"
	"github.com/freshkart/freshkart-api/internal/media"
)

type ProductInput struct {
	Name         string
	Descriptions []Description
	Category     primitive.ObjectID
	SubCategory  *primitive.ObjectID
	SKU          string
	EAN          string
	Variants     []Variant
	Images       []*ImageUpload
}

type ProductStore interface {
	Insert(ctx context.Context, p *Product) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
	FindByName(ctx context.Context, name string) (*Product, error)
	PageAll(ctx context.Context, page, limit int64) ([]Product, int64, error)
	SearchByPrefix(ctx context.Context, prefix string, page, limit int64) ([]Product, int64, error)
	ListedByCategory(ctx context.Context, category primitive.ObjectID, page, limit int64) ([]Product, int64, error)
	Set(ctx context.Context, id primitive.ObjectID, patch ProductPatch) (*Product, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type ProductService struct {
	Repo  ProductStore
	Media media.Uploader
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*Product, error) {
	if in.Name == "" {
		return nil, apperr.Reject(http.StatusBadRequest, "product name is required")
	}
	if in.Category.IsZero() {
		return nil, apperr.Reject(http.StatusBadRequest, "category is required")
	}
	if len(in.Variants) == 0 {
		return nil, apperr.Reject(http.StatusBadRequest, "at least one variant is required")
	}
	dup, err := s.Repo.FindByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, apperr.Reject(http.StatusConflict, "product already exists")
	}

	variants := make([]Variant, len(in.Variants))
	for i, v := range in.Variants {
		if v.OutPrice <= 0 || v.StockQuantity < 0 {
			return nil, apperr.Reject(http.StatusBadRequest, "variant price and stock must be non-negative")
		}
		if v.ID.IsZero() {
			v.ID = primitive.NewObjectID()
		}
		variants[i] = v
	}

	urls := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		url, err := s.Media.Upload(ctx, img.Filename, img.ContentType, bytes.NewReader(img.Data))
		if err != nil {
			return nil, fmt.Errorf("upload product image: %w", err)
		}
		urls = append(urls, url)
	}

	now := time.Now().UTC()
	p := &Product{
		Name:         in.Name,
		Descriptions: in.Descriptions,
		Category:     in.Category,
		SubCategory:  in.SubCategory,
		Images:       urls,
		SKU:          in.SKU,
		EAN:          in.EAN,
		Variants:     variants,
		IsListed:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := s.Repo.Insert(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return p, nil
}

func (s *ProductService) List(ctx context.Context, page, limit int64) ([]Product, int64, error) {
	return s.Repo.PageAll(ctx, page, limit)
}

func (s *ProductService) Search(ctx context.Context, prefix string, page, limit int64) ([]Product, int64, error) {
	return s.Repo.SearchByPrefix(ctx, prefix, page, limit)
}

func (s *ProductService) ListedByCategory(ctx context.Context, category primitive.ObjectID, page, limit int64) ([]Product, int64, error) {
	return s.Repo.ListedByCategory(ctx, category, page, limit)
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	p, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.IsDeleted {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, in ProductInput) (*Product, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	patch := ProductPatch{}
	if in.Name != "" {
		patch.Name = &in.Name
	}
	if in.Descriptions != nil {
		patch.Descriptions = in.Descriptions
	}
	if !in.Category.IsZero() {
		patch.Category = &in.Category
	}
	if in.SubCategory != nil {
		patch.SubCategory = in.SubCategory
	}
	if in.SKU != "" {
		patch.SKU = &in.SKU
	}
	if in.EAN != "" {
		patch.EAN = &in.EAN
	}
	if in.Variants != nil {
		variants := make([]Variant, len(in.Variants))
		for i, v := range in.Variants {
			if v.ID.IsZero() {
				v.ID = primitive.NewObjectID()
			}
			variants[i] = v
		}
		patch.Variants = variants
	}
	if len(in.Images) > 0 {
		urls := make([]string, 0, len(in.Images))
		for _, img := range in.Images {
			url, err := s.Media.Upload(ctx, img.Filename, img.ContentType, bytes.NewReader(img.Data))
			if err != nil {
				return nil, fmt.Errorf("upload product image: %w", err)
			}
			urls = append(urls, url)
		}
		patch.Images = urls
	}

	updated, err := s.Repo.Set(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.ErrNotFound
	}
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	ok, err := s.Repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *ProductService) ListByID(ctx context.Context, id primitive.ObjectID) (string, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if p.IsListed {
		return "", apperr.Reject(http.StatusBadRequest, "product is already listed")
	}
	listed := true
	if _, err := s.Repo.Set(ctx, id, ProductPatch{IsListed: &listed}); err != nil {
		return "", err
	}
	return "Product listed successfully", nil
}

func (s *ProductService) UnlistByID(ctx context.Context, id primitive.ObjectID) (string, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !p.IsListed {
		return "", apperr.Reject(http.StatusBadRequest, "product is already unlisted")
	}
	unlisted := false
	if _, err := s.Repo.Set(ctx, id, ProductPatch{IsListed: &unlisted}); err != nil {
		return "", err
	}
	return "Product unlisted successfully", nil
}
