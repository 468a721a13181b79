package review

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshkart/freshkart-api/internal/apperr"
	"github.com/freshkart/freshkart-api/internal/logkey"
)

type Store interface {
	Insert(ctx context.Context, rev *Review) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Review, error)
	PageByProduct(ctx context.Context, productID primitive.ObjectID, page, limit int64) ([]Review, int64, error)
	PageAll(ctx context.Context, status Status, page, limit int64) ([]Review, int64, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status Status) (*Review, error)
	ApprovedAverage(ctx context.Context, productID primitive.ObjectID) (float64, error)
}

// ProductRater pushes the recomputed average onto the product document.
type ProductRater interface {
	SetRating(ctx context.Context, id primitive.ObjectID, rating float64) error
}

type Service struct {
	Repo     Store
	Products ProductRater
}

func (s *Service) Submit(ctx context.Context, userID, productID primitive.ObjectID, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.Reject(http.StatusBadRequest, "rating must be between 1 and 5")
	}
	now := time.Now().UTC()
	rev := &Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.Repo.Insert(ctx, rev)
	if err != nil {
		return nil, err
	}
	rev.ID = id
	return rev, nil
}

func (s *Service) ListForProduct(ctx context.Context, productID primitive.ObjectID, page, limit int64) ([]Review, int64, error) {
	return s.Repo.PageByProduct(ctx, productID, page, limit)
}

func (s *Service) ListAll(ctx context.Context, status Status, page, limit int64) ([]Review, int64, error) {
	if status != "" && status != StatusPending && status != StatusApproved && status != StatusDeclined {
		return nil, 0, apperr.Reject(http.StatusBadRequest, "unknown review status")
	}
	return s.Repo.PageAll(ctx, status, page, limit)
}

func (s *Service) Approve(ctx context.Context, id primitive.ObjectID) (*Review, error) {
	return s.moderate(ctx, id, StatusApproved)
}

func (s *Service) Decline(ctx context.Context, id primitive.ObjectID) (*Review, error) {
	return s.moderate(ctx, id, StatusDeclined)
}

func (s *Service) moderate(ctx context.Context, id primitive.ObjectID, to Status) (*Review, error) {
	rev, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rev == nil {
		return nil, apperr.ErrNotFound
	}
	if !rev.Status.CanTransition(to) {
		return nil, apperr.Reject(http.StatusBadRequest,
			fmt.Sprintf("review is already %s", rev.Status))
	}
	updated, err := s.Repo.SetStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.ErrNotFound
	}
	// the approved set changed only on approval
	if to == StatusApproved && s.Products != nil {
		avg, err := s.Repo.ApprovedAverage(ctx, updated.ProductID)
		if err == nil {
			err = s.Products.SetRating(ctx, updated.ProductID, avg)
		}
		if err != nil {
			slog.Warn("product rating update failed",
				slog.String(logkey.Entity, updated.ProductID.Hex()),
				slog.String(logkey.ERROR, err.Error()))
		}
	}
	return updated, nil
}
