package token

import (
	"context"
	"errors"
	"time"

	"inkwell/pkg/requestcontext"
)

// Service binds the signing secret and TTL, and reads "now" from the
// request-scoped clock.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Service{secret: []byte(secret), ttl: ttl}, nil
}

// TTL is the lifetime of issued tokens; cookies use it as Max-Age.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue returns a signed token and its expiry.
func (s *Service) Issue(ctx context.Context, claims Claims) (string, time.Time, error) {
	now := requestcontext.Now(ctx).Truncate(time.Second)
	signed, err := Issue(claims, s.secret, s.ttl, now)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, now.Add(s.ttl), nil
}

func (s *Service) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	return Validate(tokenString, s.secret, requestcontext.Now(ctx))
}
