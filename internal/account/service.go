package account

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/freshkart/freshkart-api/internal/apperr"
)

type UserStore interface {
	Insert(ctx context.Context, u *User) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	PageAll(ctx context.Context, page, limit int64) ([]User, int64, error)
	SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*User, error)
}

// PendingStore keys unverified signups by email with a TTL, so any number of
// registrations can be in flight and none survive past their expiry.
type PendingStore interface {
	Put(ctx context.Context, email string, payload []byte) error
	Get(ctx context.Context, email string) ([]byte, bool, error)
	Delete(ctx context.Context, email string) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}

type Service struct {
	Users   UserStore
	Pending PendingStore
	Mail    Mailer
	Tokens  TokenIssuer
}

// Register starts a signup: the account is not created until the OTP sent to
// the email is verified.
func (s *Service) Register(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return apperr.Reject(http.StatusBadRequest, "email and password are required")
	}
	existing, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.Reject(http.StatusConflict, "user already registered")
	}

	otp, err := GenerateOTP()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(pendingSignup{Name: name, Email: email, Password: password, OTP: otp})
	if err != nil {
		return err
	}
	if err := s.Pending.Put(ctx, email, payload); err != nil {
		return err
	}
	body := fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", otp)
	if err := s.Mail.Send(ctx, email, "Verify your email", body); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

// VerifyOTP finishes a signup. The password is hashed only here, once the
// address is proven.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	raw, ok, err := s.Pending.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Reject(http.StatusBadRequest, "invalid or expired otp")
	}
	var pending pendingSignup
	if err := json.Unmarshal(raw, &pending); err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(otp), []byte(pending.OTP)) != 1 {
		return nil, apperr.Reject(http.StatusBadRequest, "invalid or expired otp")
	}

	// the email may have been taken while the OTP was in flight
	if existing, err := s.Users.FindByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		_ = s.Pending.Delete(ctx, email)
		return nil, apperr.Reject(http.StatusConflict, "user already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pending.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &User{
		Name:      pending.Name,
		Email:     email,
		Password:  string(hash),
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.Users.Insert(ctx, u)
	if err != nil {
		return nil, err
	}
	u.ID = id
	_ = s.Pending.Delete(ctx, email)
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, apperr.Reject(http.StatusUnauthorized, "invalid credentials")
	}
	if u.IsBlocked {
		return "", nil, apperr.Reject(http.StatusForbidden, "user is blocked")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", nil, apperr.Reject(http.StatusUnauthorized, "invalid credentials")
	}
	token, err := s.Tokens.Issue(u.ID.Hex(), u.Role)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *Service) ListUsers(ctx context.Context, page, limit int64) ([]User, int64, error) {
	return s.Users.PageAll(ctx, page, limit)
}

func (s *Service) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (*User, error) {
	u, err := s.Users.SetBlocked(ctx, id, blocked)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrNotFound
	}
	return u, nil
}
