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

type SubCategoryInput struct {
	Name         string
	Description  string
	MainCategory primitive.ObjectID
	Priority     *int
	Photo        *ImageUpload
}

type SubCategoryStore interface {
	Insert(ctx context.Context, c *SubCategory) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*SubCategory, error)
	FindByName(ctx context.Context, name string) (*SubCategory, error)
	FindByNameExcept(ctx context.Context, id primitive.ObjectID, name string) (*SubCategory, error)
	PageAll(ctx context.Context, page, limit int64) ([]SubCategory, int64, error)
	SearchByPrefix(ctx context.Context, prefix string, page, limit int64) ([]SubCategory, int64, error)
	ListedByParent(ctx context.Context, parent primitive.ObjectID, page, limit int64) ([]SubCategory, int64, error)
	AssignedPriorities(ctx context.Context) ([]int, error)
	Set(ctx context.Context, id primitive.ObjectID, patch CategoryPatch) (*SubCategory, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// SubCategoryService mirrors CategoryService for the second level of the
// hierarchy; the extra bit is the parent reference.
type SubCategoryService struct {
	Repo  SubCategoryStore
	Media media.Uploader
}

func (s *SubCategoryService) Create(ctx context.Context, in SubCategoryInput) (*SubCategory, error) {
	if in.Name == "" {
		return nil, apperr.Reject(http.StatusBadRequest, "subcategory name is required")
	}
	if in.MainCategory.IsZero() {
		return nil, apperr.Reject(http.StatusBadRequest, "main category is required")
	}
	existing, err := s.Repo.FindByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Reject(http.StatusConflict, "subcategory already exists")
	}

	priority := PriorityUnassigned
	if in.Priority != nil {
		if err := validPriority(*in.Priority); err != nil {
			return nil, err
		}
		priority = *in.Priority
	}

	photoURL := ""
	if in.Photo != nil {
		url, err := s.Media.Upload(ctx, in.Photo.Filename, in.Photo.ContentType, bytes.NewReader(in.Photo.Data))
		if err != nil {
			return nil, fmt.Errorf("upload subcategory image: %w", err)
		}
		photoURL = url
	}

	now := time.Now().UTC()
	c := &SubCategory{
		Name:         in.Name,
		Description:  in.Description,
		Photo:        photoURL,
		MainCategory: in.MainCategory,
		Priority:     priority,
		IsListed:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := s.Repo.Insert(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

func (s *SubCategoryService) List(ctx context.Context, page, limit int64) ([]SubCategory, int64, error) {
	return s.Repo.PageAll(ctx, page, limit)
}

func (s *SubCategoryService) Search(ctx context.Context, prefix string, page, limit int64) ([]SubCategory, int64, error) {
	return s.Repo.SearchByPrefix(ctx, prefix, page, limit)
}

func (s *SubCategoryService) ListedByParent(ctx context.Context, parent primitive.ObjectID, page, limit int64) ([]SubCategory, int64, error) {
	return s.Repo.ListedByParent(ctx, parent, page, limit)
}

func (s *SubCategoryService) Get(ctx context.Context, id primitive.ObjectID) (*SubCategory, error) {
	c, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.IsDeleted {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

func (s *SubCategoryService) Update(ctx context.Context, id primitive.ObjectID, in SubCategoryInput) (*SubCategory, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := CategoryPatch{}
	if in.Name != "" && in.Name != current.Name {
		dup, err := s.Repo.FindByNameExcept(ctx, id, in.Name)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, apperr.Reject(http.StatusConflict, "subcategory already exists")
		}
		patch.Name = &in.Name
	}
	if in.Description != "" {
		patch.Description = &in.Description
	}
	if !in.MainCategory.IsZero() {
		patch.MainCategory = &in.MainCategory
	}
	if in.Priority != nil {
		if err := validPriority(*in.Priority); err != nil {
			return nil, err
		}
		patch.Priority = in.Priority
	}
	if in.Photo != nil {
		url, err := s.Media.Upload(ctx, in.Photo.Filename, in.Photo.ContentType, bytes.NewReader(in.Photo.Data))
		if err != nil {
			return nil, fmt.Errorf("upload subcategory image: %w", err)
		}
		patch.Photo = &url
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

func (s *SubCategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	ok, err := s.Repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *SubCategoryService) ListByID(ctx context.Context, id primitive.ObjectID) (string, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if c.IsListed {
		return "", apperr.Reject(http.StatusBadRequest, "subcategory is already listed")
	}
	listed := true
	if _, err := s.Repo.Set(ctx, id, CategoryPatch{IsListed: &listed}); err != nil {
		return "", err
	}
	return "Subcategory listed successfully", nil
}

func (s *SubCategoryService) UnlistByID(ctx context.Context, id primitive.ObjectID) (string, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !c.IsListed {
		return "", apperr.Reject(http.StatusBadRequest, "subcategory is already unlisted")
	}
	unlisted := false
	if _, err := s.Repo.Set(ctx, id, CategoryPatch{IsListed: &unlisted}); err != nil {
		return "", err
	}
	return "Subcategory unlisted successfully", nil
}

func (s *SubCategoryService) AvailablePrioritySlots(ctx context.Context) ([]int, error) {
	assigned, err := s.Repo.AssignedPriorities(ctx)
	if err != nil {
		return nil, err
	}
	return missingSlots(assigned), nil
}
