package cart

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionIssuer = "flashit-cart"

var ErrInvalidSession = errors.New("invalid session token")

// Sessions issues and verifies the signed tokens that tie an anonymous
// shopper to a cart. The token subject is the session id.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue starts a new session.
func (s *Sessions) Issue() (id, token string, err error) {
	id = uuid.NewString()
	now := s.now()

	claims := jwt.RegisteredClaims{
		Subject:   id,
		Issuer:    sessionIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return id, token, nil
}

// Parse returns the session id carried by token.
func (s *Sessions) Parse(token string) (string, error) {
	var c jwt.RegisteredClaims

	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || parsed == nil || !parsed.Valid || c.Subject == "" {
		return "", ErrInvalidSession
	}
	if _, err := uuid.Parse(c.Subject); err != nil {
		return "", ErrInvalidSession
	}
	return c.Subject, nil
}
