package test

import (
	"context"
	"errors"

	"github.com/polkiloo/dispatch/internal/domain/model"
	pkgAuth "github.com/polkiloo/dispatch/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied password.
func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return "hash:" + password, nil
}

// Compare validates password against stored hash.
func (h HasherStub) Compare(hash string, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub issues and parses tokens via function overrides.
type StrategyStub struct {
	IssueFn func(int64) (string, error)
	ParseFn func(string) (int64, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(userID int64) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(userID)
	}
	return "token", nil
}

// ParseToken parses previously issued token strings.
func (s StrategyStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// ActorResolverStub implements the middleware token contract.
type ActorResolverStub struct {
	Fixed  model.Actor
	Err    error
	Tokens map[string]model.Actor
}

// Actor returns the actor mapped to token, the fixed actor, or Err.
func (s ActorResolverStub) Actor(ctx context.Context, token string) (model.Actor, error) {
	if s.Err != nil {
		return model.Actor{}, s.Err
	}
	if s.Tokens != nil {
		a, ok := s.Tokens[token]
		if !ok {
			return model.Actor{}, pkgAuth.ErrInvalidToken
		}
		return a, nil
	}
	return s.Fixed, nil
}

var _ pkgAuth.PasswordHasher = HasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}
