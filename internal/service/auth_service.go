package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fsanano/inventory-cart/internal/auth"
	"fsanano/inventory-cart/internal/model"
	"fsanano/inventory-cart/internal/repository"
)

const tokenName = "auth_token"

type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,maxbytes=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

type LoginInput struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

type AuthConfig struct {
	// SessionTTL applies to logins without remember-me.
	SessionTTL  time.Duration
	RememberTTL time.Duration
	RegisterTTL time.Duration
}

type AuthService struct {
	tx     Transactor
	users  UserRepository
	tokens TokenRepository
	hasher PasswordHasher
	issuer TokenIssuer
	cfg    AuthConfig
	now    func() time.Time
}

func NewAuthService(tx Transactor, users UserRepository, tokens TokenRepository, hasher PasswordHasher, issuer TokenIssuer, cfg AuthConfig) *AuthService {
	return &AuthService{
		tx:     tx,
		users:  users,
		tokens: tokens,
		hasher: hasher,
		issuer: issuer,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the user and its first token in one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, NewValidationError("email", "The email has already been taken.")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{Name: in.Name, Email: in.Email, PasswordHash: hash}
	var res *AuthResult
	err = s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.users.CreateUser(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return NewValidationError("email", "The email has already been taken.")
			}
			return err
		}
		var err error
		res, err = s.issueToken(ctx, user, s.cfg.RegisterTTL)
		return err
	})
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return res, nil
}

// Login checks the credentials, revokes every earlier token of the user and
// issues a new one.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := s.hasher.Compare(ctx, user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	ttl := s.cfg.SessionTTL
	if in.RememberMe {
		ttl = s.cfg.RememberTTL
	}

	var res *AuthResult
	err = s.tx.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.tokens.DeleteUserTokens(ctx, user.ID); err != nil {
			return err
		}
		var err error
		res, err = s.issueToken(ctx, user, ttl)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return res, nil
}

// Logout revokes a single token.
func (s *AuthService) Logout(ctx context.Context, tokenID uuid.UUID) error {
	if err := s.tokens.DeleteToken(ctx, tokenID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Authenticate resolves the caller behind a bearer token. Every rejection
// is reported as ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (*auth.Identity, error) {
	if bearer == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.issuer.Parse(bearer)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	token, err := s.tokens.GetToken(ctx, claims.TokenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	now := s.now()
	if token.UserID != claims.UserID || token.Expired(now) {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.tokens.TouchToken(ctx, token.ID, now); err != nil {
		return nil, fmt.Errorf("touch token: %w", err)
	}
	return &auth.Identity{User: user, TokenID: token.ID}, nil
}

func (s *AuthService) issueToken(ctx context.Context, user *model.User, ttl time.Duration) (*AuthResult, error) {
	t := &model.AccessToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Name:      tokenName,
		ExpiresAt: s.now().Add(ttl),
	}
	if err := s.tokens.CreateToken(ctx, t); err != nil {
		return nil, err
	}
	signed, err := s.issuer.Issue(t.ID, user.ID, t.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: signed, ExpiresAt: t.ExpiresAt}, nil
}
