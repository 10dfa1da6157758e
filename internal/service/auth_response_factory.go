package service

import (
	"fmt"
	"log/slog"

	"revision-history-server/internal/domain"
	"revision-history-server/pkg/logger"
)

type AuthResponseFactory interface {
	CreateResponse(user domain.AuthUser, tokens domain.SessionTokens) any
}

type authResponseFactory20161215 struct{}

func (authResponseFactory20161215) CreateResponse(user domain.AuthUser, tokens domain.SessionTokens) any {
	return &domain.LegacyAuthResponse{
		User:  user,
		Token: tokens.AccessToken,
	}
}

// 20190520 changed key derivation on the client only; the response is unchanged.
type authResponseFactory20190520 struct {
	authResponseFactory20161215
}

type authResponseFactory20200115 struct{}

func (authResponseFactory20200115) CreateResponse(user domain.AuthUser, tokens domain.SessionTokens) any {
	return &domain.SessionAuthResponse{
		User: user,
		Session: domain.SessionBody{
			AccessToken:       tokens.AccessToken,
			RefreshToken:      tokens.RefreshToken,
			AccessExpiration:  tokens.AccessExpiration,
			RefreshExpiration: tokens.RefreshExpiration,
		},
	}
}

type AuthResponseFactoryResolver struct {
	v20161215 AuthResponseFactory
	v20190520 AuthResponseFactory
	v20200115 AuthResponseFactory
	logger    *slog.Logger
}

func NewAuthResponseFactoryResolver(log *slog.Logger) *AuthResponseFactoryResolver {
	if log == nil {
		log = logger.Discard()
	}

	return &AuthResponseFactoryResolver{
		v20161215: authResponseFactory20161215{},
		v20190520: authResponseFactory20190520{},
		v20200115: authResponseFactory20200115{},
		logger:    log,
	}
}

// Resolve maps an api version tag to its response factory. An empty tag
// selects the oldest version.
func (r *AuthResponseFactoryResolver) Resolve(apiVersion string) (AuthResponseFactory, error) {
	if apiVersion == "" {
		apiVersion = string(domain.APIVersion20161215)
	}

	r.logger.Debug("resolving auth response factory", "api_version", apiVersion)

	switch domain.APIVersion(apiVersion) {
	case domain.APIVersion20161215:
		return r.v20161215, nil
	case domain.APIVersion20190520:
		return r.v20190520, nil
	case domain.APIVersion20200115:
		return r.v20200115, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAPIVersion, apiVersion)
	}
}
