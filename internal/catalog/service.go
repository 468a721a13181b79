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

// ImageUpload carries a raw image from a multipart request; the service
// pushes it to the media host and stores only the returned URL.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CategoryInput struct {
	Name        string
	Description string
	Priority    *int
	Photo       *ImageUpload
}

type CategoryStore interface {
	Insert(ctx context.Context, c *Category) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	FindByNameExcept(ctx context.Context, id primitive.ObjectID, name string) (*Category, error)
	PageAll(ctx context.Context, page, limit int64) ([]Category, int64, error)
	SearchByPrefix(ctx context.Context, prefix string, page, limit int64) ([]Category, int64, error)
	AssignedPriorities(ctx context.Context) ([]int, error)
	Set(ctx context.Context, id primitive.ObjectID, patch CategoryPatch) (*Category, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type CategoryService struct {
	Repo  CategoryStore
	Media media.Uploader
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*Category, error) {
	if in.Name == "" {
		return nil, apperr.Reject(http.StatusBadRequest, "category name is required")
	}
	existing, err := s.Repo.FindByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Reject(http.StatusConflict, "category already exists")
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
		photoURL, err = s.upload(ctx, in.Photo)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	c := &Category{
		Name:        in.Name,
		Description: in.Description,
		Photo:       photoURL,
		Priority:    priority,
		IsListed:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id, err := s.Repo.Insert(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, page, limit int64) ([]Category, int64, error) {
	return s.Repo.PageAll(ctx, page, limit)
}

func (s *CategoryService) Search(ctx context.Context, prefix string, page, limit int64) ([]Category, int64, error) {
	return s.Repo.SearchByPrefix(ctx, prefix, page, limit)
}

// Get hides soft-deleted categories behind not-found.
func (s *CategoryService) Get(ctx context.Context, id primitive.ObjectID) (*Category, error) {
	c, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.IsDeleted {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id primitive.ObjectID, in CategoryInput) (*Category, error) {
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
			return nil, apperr.Reject(http.StatusConflict, "category already exists")
		}
		patch.Name = &in.Name
	}
	if in.Description != "" {
		patch.Description = &in.Description
	}
	if in.Priority != nil {
		if err := validPriority(*in.Priority); err != nil {
			return nil, err
		}
		patch.Priority = in.Priority
	}
	if in.Photo != nil {
		url, err := s.upload(ctx, in.Photo)
		if err != nil {
			return nil, err
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

func (s *CategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	ok, err := s.Repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}

// ListByID marks the category visible. Listing an already-listed category is
// an error, not a no-op: callers are expected to check state first.
func (s *CategoryService) ListByID(ctx context.Context, id primitive.ObjectID) (string, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if c.IsListed {
		return "", apperr.Reject(http.StatusBadRequest, "category is already listed")
	}
	listed := true
	if _, err := s.Repo.Set(ctx, id, CategoryPatch{IsListed: &listed}); err != nil {
		return "", err
	}
	return "Category listed successfully", nil
}

func (s *CategoryService) UnlistByID(ctx context.Context, id primitive.ObjectID) (string, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !c.IsListed {
		return "", apperr.Reject(http.StatusBadRequest, "category is already unlisted")
	}
	unlisted := false
	if _, err := s.Repo.Set(ctx, id, CategoryPatch{IsListed: &unlisted}); err != nil {
		return "", err
	}
	return "Category unlisted successfully", nil
}

// AvailablePrioritySlots is {1..10} minus the priorities already in use; the
// unassigned sentinel never occupies a slot.
func (s *CategoryService) AvailablePrioritySlots(ctx context.Context) ([]int, error) {
	assigned, err := s.Repo.AssignedPriorities(ctx)
	if err != nil {
		return nil, err
	}
	return missingSlots(assigned), nil
}

func (s *CategoryService) upload(ctx context.Context, img *ImageUpload) (string, error) {
	url, err := s.Media.Upload(ctx, img.Filename, img.ContentType, bytes.NewReader(img.Data))
	if err != nil {
		return "", fmt.Errorf("upload category image: %w", err)
	}
	return url, nil
}

func validPriority(p int) error {
	if p == PriorityUnassigned {
		return nil
	}
	if p < PriorityMin || p > PriorityMax {
		return apperr.Reject(http.StatusBadRequest, "priority must be between 1 and 10, or 101 for unassigned")
	}
	return nil
}

func missingSlots(assigned []int) []int {
	used := make(map[int]bool, len(assigned))
	for _, p := range assigned {
		if p != PriorityUnassigned {
			used[p] = true
		}
	}
	free := make([]int, 0, PriorityMax)
	for p := PriorityMin; p <= PriorityMax; p++ {
		if !used[p] {
			free = append(free, p)
		}
	}
	return free
}
