// Package token issues and validates the stateless session credential: a
// compact HS256 JWT carrying subject, email and role.
//
// Validation is strict and ordered. The header is checked before the
// signature, and the payload is only decoded once the signature matched.
// Every failure surfaces as the same invalid-token error; the reason is kept
// as a wrapped cause for server-side logs only.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
)

// ErrInvalidToken is matched with errors.Is on every validation failure.
var ErrInvalidToken = errors.New("invalid token")

const algorithm = "HS256"

// Claims is the identity asserted by a session token.
type Claims struct {
	UserID    id.UserID
	Email     string
	Role      id.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// sessionClaims is the wire payload: sub, email, role, iat, exp.
type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// Issue signs a token for claims valid from now until now+ttl.
// Times are truncated to whole seconds.
func Issue(claims Claims, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", dErrors.New(dErrors.CodeInternal, "token secret is not configured")
	}
	if ttl <= 0 {
		return "", dErrors.New(dErrors.CodeInternal, "token ttl must be positive")
	}
	if claims.UserID.IsNil() || claims.Email == "" || !claims.Role.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "incomplete token claims")
	}

	issuedAt := now.Truncate(time.Second)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email: claims.Email,
		Role:  claims.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	})

	signed, err := t.SignedString(secret)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// Validate verifies a token at instant now and returns its claims.
// A token is invalid from its exp second onwards.
func Validate(tokenString string, secret []byte, now time.Time) (*Claims, error) {
	if len(secret) == 0 {
		return nil, invalid(errors.New("empty secret"))
	}

	segments := strings.Split(tokenString, ".")
	if len(segments) != 3 {
		return nil, invalid(fmt.Errorf("expected 3 segments, got %d", len(segments)))
	}

	// iat is informational; only exp bounds a token's lifetime. Strict
	// decoding keeps one canonical string per signature.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{algorithm}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)

	if err := checkHeader(parser, segments[0]); err != nil {
		return nil, invalid(err)
	}

	sig, err := parser.DecodeSegment(segments[2])
	if err != nil {
		return nil, invalid(fmt.Errorf("decode signature: %w", err))
	}
	if err := jwt.SigningMethodHS256.Verify(segments[0]+"."+segments[1], sig, secret); err != nil {
		return nil, invalid(err)
	}

	wire := &sessionClaims{}
	if _, err := parser.ParseWithClaims(tokenString, wire, func(*jwt.Token) (any, error) {
		return secret, nil
	}); err != nil {
		return nil, invalid(err)
	}

	return toClaims(wire)
}

func checkHeader(parser *jwt.Parser, segment string) error {
	raw, err := parser.DecodeSegment(segment)
	if err != nil {
		return fmt.Errorf("decode header: %w", err)
	}
	var h header
	if err := json.Unmarshal(raw, &h); err != nil {
		return fmt.Errorf("parse header: %w", err)
	}
	if h.Alg != algorithm {
		return fmt.Errorf("unexpected alg %q", h.Alg)
	}
	if h.Typ != "" && h.Typ != "JWT" {
		return fmt.Errorf("unexpected typ %q", h.Typ)
	}
	return nil
}

func toClaims(wire *sessionClaims) (*Claims, error) {
	userID, err := id.ParseUserID(wire.Subject)
	if err != nil {
		return nil, invalid(fmt.Errorf("subject: %w", err))
	}
	role, err := id.ParseRole(wire.Role)
	if err != nil {
		return nil, invalid(fmt.Errorf("role: %w", err))
	}
	if wire.Email == "" {
		return nil, invalid(errors.New("missing email"))
	}

	claims := &Claims{
		UserID:    userID,
		Email:     wire.Email,
		Role:      role,
		ExpiresAt: wire.ExpiresAt.Time,
	}
	if wire.IssuedAt != nil {
		claims.IssuedAt = wire.IssuedAt.Time
	}
	return claims, nil
}

func invalid(reason error) error {
	return &dErrors.Error{
		Code:    dErrors.CodeUnauthorized,
		Message: ErrInvalidToken.Error(),
		Err:     fmt.Errorf("%w: %w", ErrInvalidToken, reason),
	}
}
