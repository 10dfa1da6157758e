package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"revision-history-server/internal/domain"
	"revision-history-server/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestAuthService() *AuthService {
	return NewAuthService(NewAuthResponseFactoryResolver(nil), testSecret, 15*time.Minute, 7*24*time.Hour, fixedTimer{now: testNow})
}

func TestAuthResponseFactoryResolver_Resolve(t *testing.T) {
	resolver := NewAuthResponseFactoryResolver(nil)
	tokens := domain.SessionTokens{AccessToken: "access", RefreshToken: "refresh", AccessExpiration: 1, RefreshExpiration: 2}
	user := domain.AuthUser{UUID: "user-1"}

	tests := []struct {
		name    string
		version string
		want    any
	}{
		{
			name:    "empty defaults to oldest",
			version: "",
			want:    &domain.LegacyAuthResponse{User: user, Token: "access"},
		},
		{
			name:    "20161215",
			version: "20161215",
			want:    &domain.LegacyAuthResponse{User: user, Token: "access"},
		},
		{
			name:    "20190520",
			version: "20190520",
			want:    &domain.LegacyAuthResponse{User: user, Token: "access"},
		},
		{
			name:    "20200115",
			version: "20200115",
			want: &domain.SessionAuthResponse{User: user, Session: domain.SessionBody{
				AccessToken: "access", RefreshToken: "refresh", AccessExpiration: 1, RefreshExpiration: 2,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory, err := resolver.Resolve(tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, factory.CreateResponse(user, tokens))
		})
	}
}

func TestAuthResponseFactoryResolver_UnknownVersion(t *testing.T) {
	factory, err := NewAuthResponseFactoryResolver(nil).Resolve("20991231")

	assert.Nil(t, factory)
	require.ErrorIs(t, err, ErrUnsupportedAPIVersion)
	assert.Contains(t, err.Error(), "20991231")
}

func TestAuthService_RefreshSession_Legacy(t *testing.T) {
	svc := newTestAuthService()
	refresh, err := jwt.GenerateRefreshToken("user-1", time.Hour, testSecret)
	require.NoError(t, err)

	resp, err := svc.RefreshSession(context.Background(), &domain.RefreshSessionRequest{RefreshToken: refresh})
	require.NoError(t, err)

	legacy, ok := resp.(*domain.LegacyAuthResponse)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, "user-1", legacy.User.UUID)

	claims, err := jwt.ValidateToken(legacy.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, jwt.TokenTypeAccess, claims.TokenType)
}

func TestAuthService_RefreshSession_Session(t *testing.T) {
	svc := newTestAuthService()
	refresh, err := jwt.GenerateRefreshToken("user-1", time.Hour, testSecret)
	require.NoError(t, err)

	resp, err := svc.RefreshSession(context.Background(), &domain.RefreshSessionRequest{
		RefreshToken: refresh,
		APIVersion:   string(domain.APIVersion20200115),
	})
	require.NoError(t, err)

	session, ok := resp.(*domain.SessionAuthResponse)
	require.True(t, ok, "got %T", resp)
	assert.Equal(t, testNow.Add(15*time.Minute).UnixMilli(), session.Session.AccessExpiration)
	assert.Equal(t, testNow.Add(7*24*time.Hour).UnixMilli(), session.Session.RefreshExpiration)

	claims, err := jwt.ValidateToken(session.Session.RefreshToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, jwt.TokenTypeRefresh, claims.TokenType)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestAuthService_RefreshSession_Rejections(t *testing.T) {
	svc := newTestAuthService()
	access, _ := jwt.GenerateToken("user-1", time.Hour, testSecret)
	foreign, _ := jwt.GenerateRefreshToken("user-1", time.Hour, "other-secret")
	expired, _ := jwt.GenerateRefreshToken("user-1", -time.Hour, testSecret)
	valid, _ := jwt.GenerateRefreshToken("user-1", time.Hour, testSecret)

	tests := []struct {
		name    string
		req     *domain.RefreshSessionRequest
		wantErr error
	}{
		{"access token", &domain.RefreshSessionRequest{RefreshToken: access}, ErrInvalidRefreshToken},
		{"wrong secret", &domain.RefreshSessionRequest{RefreshToken: foreign}, ErrInvalidRefreshToken},
		{"expired", &domain.RefreshSessionRequest{RefreshToken: expired}, ErrInvalidRefreshToken},
		{"garbage", &domain.RefreshSessionRequest{RefreshToken: "not-a-jwt"}, ErrInvalidRefreshToken},
		{"unknown api", &domain.RefreshSessionRequest{RefreshToken: valid, APIVersion: "1999"}, ErrUnsupportedAPIVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.RefreshSession(context.Background(), tt.req)
			assert.Nil(t, resp)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	svc := newTestAuthService()
	token, _ := jwt.GenerateToken("user-9", time.Hour, testSecret)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", claims.UserID)

	_, err = svc.ValidateToken("broken")
	assert.Error(t, err)
}
