package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"revision-history-server/internal/domain"
)

// AuthHTTPService fetches the caller's feature grants from the account service.
type AuthHTTPService interface {
	GetUserFeatures(ctx context.Context, userUUID string) ([]domain.Entitlement, error)
}

type authHTTPService struct {
	baseURL string
	client  *http.Client
}

func NewAuthHTTPService(baseURL string, timeout time.Duration) AuthHTTPService {
	return &authHTTPService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type userFeature struct {
	Identifier domain.FeatureIdentifier `json:"identifier"`
	ExpiresAt  *int64                   `json:"expires_at"`
}

type userFeaturesResponse struct {
	Features []userFeature `json:"features"`
}

func (s *authHTTPService) GetUserFeatures(ctx context.Context, userUUID string) ([]domain.Entitlement, error) {
	endpoint := fmt.Sprintf("%s/internal/users/%s/features", s.baseURL, url.PathEscape(userUUID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build features request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user features: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Service: "auth", StatusCode: resp.StatusCode}
	}

	var body userFeaturesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode user features: %w", err)
	}

	entitlements := make([]domain.Entitlement, 0, len(body.Features))
	for _, f := range body.Features {
		e := domain.Entitlement{Identifier: f.Identifier}
		if f.ExpiresAt != nil {
			expires := time.UnixMilli(*f.ExpiresAt).UTC()
			e.ExpiresAt = &expires
		}
		entitlements = append(entitlements, e)
	}

	return entitlements, nil
}
