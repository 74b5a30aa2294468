package auth

import (
	"errors"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

const defaultTTL = 24 * time.Hour

// Strategy issues and verifies bearer tokens that identify a user.
type Strategy interface {
	IssueToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
	Name() string
}

// Options tune token strategies.
type Options struct {
	TTL time.Duration
	Now func() time.Time
}

func (o Options) normalize() Options {
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
