package review

import (
	"context"
	"net/http"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshkart/freshkart-api/internal/apperr"
)

type fakeRepo struct {
	byID map[primitive.ObjectID]*Review
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[primitive.ObjectID]*Review{}}
}

func (f *fakeRepo) Insert(_ context.Context, rev *Review) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *rev
	cp.ID = id
	f.byID[id] = &cp
	return id, nil
}

func (f *fakeRepo) FindByID(_ context.Context, id primitive.ObjectID) (*Review, error) {
	rev, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *rev
	return &cp, nil
}

func (f *fakeRepo) PageByProduct(_ context.Context, productID primitive.ObjectID, _, _ int64) ([]Review, int64, error) {
	var out []Review
	for _, rev := range f.byID {
		if rev.ProductID == productID && rev.Status == StatusApproved {
			out = append(out, *rev)
		}
	}
	return out, 1, nil
}

func (f *fakeRepo) PageAll(_ context.Context, status Status, _, _ int64) ([]Review, int64, error) {
	var out []Review
	for _, rev := range f.byID {
		if status == "" || rev.Status == status {
			out = append(out, *rev)
		}
	}
	return out, 1, nil
}

func (f *fakeRepo) SetStatus(_ context.Context, id primitive.ObjectID, status Status) (*Review, error) {
	rev, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	rev.Status = status
	cp := *rev
	return &cp, nil
}

func (f *fakeRepo) ApprovedAverage(_ context.Context, productID primitive.ObjectID) (float64, error) {
	var sum float64
	var n int
	for _, rev := range f.byID {
		if rev.ProductID == productID && rev.Status == StatusApproved {
			sum += float64(rev.Rating)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

type fakeRater struct {
	ratings map[primitive.ObjectID]float64
}

func (f *fakeRater) SetRating(_ context.Context, id primitive.ObjectID, rating float64) error {
	if f.ratings == nil {
		f.ratings = map[primitive.ObjectID]float64{}
	}
	f.ratings[id] = rating
	return nil
}

func TestSubmitStartsPending(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Repo: newFakeRepo()}

	rev, err := svc.Submit(ctx, primitive.NewObjectID(), primitive.NewObjectID(), 4, "good stuff")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rev.Status != StatusPending {
		t.Fatalf("status = %s, want pending", rev.Status)
	}
}

func TestSubmitRatingBounds(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Repo: newFakeRepo()}

	for _, r := range []int{0, 6, -1} {
		_, err := svc.Submit(ctx, primitive.NewObjectID(), primitive.NewObjectID(), r, "")
		rej, ok := apperr.AsRejection(err)
		if !ok || rej.Status != http.StatusBadRequest {
			t.Errorf("rating %d: expected 400, got %v", r, err)
		}
	}
}

func TestModerationIsOneWay(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Repo: newFakeRepo()}

	rev, err := svc.Submit(ctx, primitive.NewObjectID(), primitive.NewObjectID(), 5, "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	approved, err := svc.Approve(ctx, rev.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != StatusApproved {
		t.Fatalf("status = %s, want approved", approved.Status)
	}

	if _, err := svc.Decline(ctx, rev.ID); err == nil {
		t.Fatal("declining an approved review should fail")
	}
	if _, err := svc.Approve(ctx, rev.ID); err == nil {
		t.Fatal("re-approving should fail")
	}
}

func TestOnlyApprovedReviewsAreListed(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Repo: newFakeRepo()}
	productID := primitive.NewObjectID()

	a, _ := svc.Submit(ctx, primitive.NewObjectID(), productID, 5, "great")
	b, _ := svc.Submit(ctx, primitive.NewObjectID(), productID, 1, "spam")
	if _, err := svc.Approve(ctx, a.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.Decline(ctx, b.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}

	items, _, err := svc.ListForProduct(ctx, productID, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != a.ID {
		t.Fatalf("unexpected listing: %+v", items)
	}
}

func TestApprovalRecomputesProductRating(t *testing.T) {
	ctx := context.Background()
	rater := &fakeRater{}
	svc := &Service{Repo: newFakeRepo(), Products: rater}
	productID := primitive.NewObjectID()

	a, _ := svc.Submit(ctx, primitive.NewObjectID(), productID, 5, "")
	b, _ := svc.Submit(ctx, primitive.NewObjectID(), productID, 2, "")

	if _, err := svc.Approve(ctx, a.ID); err != nil {
		t.Fatalf("approve a: %v", err)
	}
	if got := rater.ratings[productID]; got != 5 {
		t.Fatalf("rating = %v, want 5", got)
	}
	if _, err := svc.Approve(ctx, b.ID); err != nil {
		t.Fatalf("approve b: %v", err)
	}
	if got := rater.ratings[productID]; got != 3.5 {
		t.Fatalf("rating = %v, want 3.5", got)
	}
}

func TestListAllRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Repo: newFakeRepo()}

	if _, _, err := svc.ListAll(ctx, "weird", 1, 10); err == nil {
		t.Fatal("unknown status accepted")
	}
	if _, _, err := svc.ListAll(ctx, "", 1, 10); err != nil {
		t.Fatalf("empty status should list everything: %v", err)
	}
}
