package usecase

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/polkiloo/dispatch/internal/domain/errors"
	"github.com/polkiloo/dispatch/internal/domain/model"
	"github.com/polkiloo/dispatch/internal/domain/repository"
	pkgAuth "github.com/polkiloo/dispatch/internal/pkg/auth"
)

// RegisterInput carries sign-up fields.
type RegisterInput struct {
	Email       string
	DisplayName string
	Password    string
}

// AuthUseCase handles user lifecycle and token management.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy}
}

// Register creates a customer account and returns an auth token.
func (u *AuthUseCase) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	in.Email = normalizeEmail(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)

	fields := map[string]string{}
	if !validEmail(in.Email) {
		fields["email"] = "valid email required"
	}
	if in.DisplayName == "" {
		fields["displayName"] = "required"
	}
	if len(in.Password) < pkgAuth.MinPasswordLength {
		fields["password"] = "must be at least 6 characters"
	}
	if err := domainErrors.NewValidationError(fields); err != nil {
		return nil, "", err
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", err
	}

	usr := &model.User{
		Email:        in.Email,
		DisplayName:  in.DisplayName,
		PasswordHash: hash,
		Role:         model.RoleCustomer,
	}
	if err := u.users.Create(ctx, usr); err != nil {
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}
	return usr, token, nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}
	return usr, token, nil
}

// ParseToken extracts user ID from provided token.
func (u *AuthUseCase) ParseToken(token string) (int64, error) {
	if token == "" {
		return 0, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

// Actor resolves a token to the caller it was issued for. Deleted users
// yield ErrInvalidToken.
func (u *AuthUseCase) Actor(ctx context.Context, token string) (model.Actor, error) {
	id, err := u.ParseToken(token)
	if err != nil {
		return model.Actor{}, err
	}
	usr, err := u.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return model.Actor{}, pkgAuth.ErrInvalidToken
		}
		return model.Actor{}, err
	}
	return model.ActorOf(usr), nil
}
