package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lasmate/Alisee/internal/auth"
	"github.com/lasmate/Alisee/internal/model"
)

type AccountService struct {
	store  Store
	issuer *auth.Issuer
	ttl    time.Duration
	now    func() time.Time
}

func NewAccountService(store Store, issuer *auth.Issuer, ttl time.Duration) *AccountService {
	return &AccountService{
		store:  store,
		issuer: issuer,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the signed session token for the cookie.
type LoginResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Surname == "" || in.Email == "" || in.Password == "" {
		return nil, validationf("name, surname, email, and password are required")
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return nil, validationf("invalid email address")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Name:         in.Name,
		Surname:      in.Surname,
		Email:        in.Email,
		PasswordHash: hash,
		AccountType:  model.AccountCustomer,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, translate(err)
	}
	u.OrderIDs = []int64{}
	slog.Info("user registered", "user_id", u.ID)
	return u, nil
}

// Login checks the credentials and opens a new session. Existing sessions of the
// same user stay valid.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationf("email and password are required")
	}

	var res *LoginResult
	err := s.store.RunAtomic(ctx, func(ctx context.Context) error {
		u, err := s.store.GetUserByEmail(ctx, email)
		if err != nil {
			return translate(err)
		}
		if !auth.CheckPassword(u.PasswordHash, password) {
			return ErrInvalidCredential
		}

		now := s.now()
		sess := model.Session{
			ID:        uuid.NewString(),
			UserID:    u.ID,
			CreatedAt: now,
			ExpiresAt: now.Add(s.ttl),
		}
		if err := s.store.CreateSession(ctx, sess); err != nil {
			return err
		}
		token, err := s.issuer.Issue(sess)
		if err != nil {
			return err
		}
		res = &LoginResult{User: u, Token: token, ExpiresAt: sess.ExpiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Logout revokes the session named by token. Missing, malformed or already revoked
// tokens succeed without effect.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.issuer.ParseExpired(token)
	if err != nil {
		return nil
	}
	if err := s.store.DeleteSession(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to its user.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	sess, err := s.store.GetSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(translate(err), ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if sess.UserID != claims.UserID || !s.now().Before(sess.ExpiresAt) {
		return nil, ErrUnauthorized
	}

	u, err := s.store.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(translate(err), ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return u, nil
}

// RequireAdmin fails with ErrForbidden unless u is an administrator.
func RequireAdmin(u *model.User) error {
	if u == nil {
		return ErrUnauthorized
	}
	if !u.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
