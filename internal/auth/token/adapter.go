package token

import (
	"context"

	"inkwell/pkg/platform/middleware/auth"
)

// MiddlewareAdapter exposes the Service as an auth.TokenValidator.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	claims, err := a.service.Validate(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.Claims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
