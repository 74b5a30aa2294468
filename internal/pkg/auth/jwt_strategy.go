package auth

import (
	"strconv"

	"github.com/golang-jwt/jwt"
)

const jwtIssuer = "dispatchd"

// JWTStrategy issues HS256 JSON Web Tokens with the user id as subject.
type JWTStrategy struct {
	secret []byte
	opts   Options
}

// NewJWTStrategy builds JWTStrategy with provided secret and options.
func NewJWTStrategy(secret string, opts Options) *JWTStrategy {
	return &JWTStrategy{secret: []byte(secret), opts: opts.normalize()}
}

func (s *JWTStrategy) IssueToken(userID int64) (string, error) {
	now := s.opts.Now()
	claims := jwt.StandardClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    jwtIssuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.opts.TTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *JWTStrategy) ParseToken(token string) (int64, error) {
	claims := &jwt.StandardClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	now := s.opts.Now().Unix()
	if !claims.VerifyExpiresAt(now, true) || !claims.VerifyIssuer(jwtIssuer, true) {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

func (s *JWTStrategy) Name() string {
	return "jwt"
}
