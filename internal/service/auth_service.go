package service

import (
	"context"
	"fmt"
	"time"

	"revision-history-server/internal/domain"
	"revision-history-server/pkg/jwt"
)

type AuthService struct {
	resolver          *AuthResponseFactoryResolver
	jwtSecret         string
	jwtExpiration     time.Duration
	refreshExpiration time.Duration
	timer             Timer
}

func NewAuthService(resolver *AuthResponseFactoryResolver, jwtSecret string, jwtExp, refreshExp time.Duration, timer Timer) *AuthService {
	return &AuthService{
		resolver:          resolver,
		jwtSecret:         jwtSecret,
		jwtExpiration:     jwtExp,
		refreshExpiration: refreshExp,
		timer:             timer,
	}
}

// RefreshSession rotates the session tokens and shapes the answer for the
// client's api version.
func (s *AuthService) RefreshSession(ctx context.Context, req *domain.RefreshSessionRequest) (any, error) {
	factory, err := s.resolver.Resolve(req.APIVersion)
	if err != nil {
		return nil, err
	}

	claims, err := jwt.ValidateToken(req.RefreshToken, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, fmt.Errorf("%w: not a refresh token", ErrInvalidRefreshToken)
	}

	now := s.timer.Now()

	accessToken, err := jwt.GenerateToken(claims.UserID, s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := jwt.GenerateRefreshToken(claims.UserID, s.refreshExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return factory.CreateResponse(domain.AuthUser{UUID: claims.UserID}, domain.SessionTokens{
		AccessToken:       accessToken,
		RefreshToken:      refreshToken,
		AccessExpiration:  now.Add(s.jwtExpiration).UnixMilli(),
		RefreshExpiration: now.Add(s.refreshExpiration).UnixMilli(),
	}), nil
}

func (s *AuthService) ValidateToken(token string) (*jwt.Claims, error) {
	claims, err := jwt.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}
