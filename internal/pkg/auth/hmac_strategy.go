package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HMACStrategy signs "<user>.<expiry>" with HMAC-SHA256. Tokens are URL safe
// so WebSocket clients can pass them as a query parameter.
type HMACStrategy struct {
	secret []byte
	opts   Options
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	return &HMACStrategy{secret: []byte(secret), opts: opts.normalize()}
}

// IssueToken generates signed auth token for the user.
func (s *HMACStrategy) IssueToken(userID int64) (string, error) {
	expires := s.opts.Now().Add(s.opts.TTL).Unix()
	payload := fmt.Sprintf("%d.%d", userID, expires)
	return encode(payload) + "." + s.sign(payload), nil
}

// ParseToken validates token and returns encoded user ID.
func (s *HMACStrategy) ParseToken(token string) (int64, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok {
		return 0, ErrInvalidToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return 0, ErrInvalidToken
	}

	payload := string(raw)
	if !hmac.Equal([]byte(s.sign(payload)), []byte(sig)) {
		return 0, ErrInvalidToken
	}

	user, exp, ok := strings.Cut(payload, ".")
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(user, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	expires, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	if time.Unix(expires, 0).Before(s.opts.Now()) {
		return 0, ErrInvalidToken
	}

	return userID, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func encode(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}
