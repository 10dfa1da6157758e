package service

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound          = errors.New("item not found")
	ErrUnsupportedAPIVersion = errors.New("unsupported api version")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
)

// UpstreamError reports a non-success answer from a collaborating service.
type UpstreamError struct {
	Service    string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.Service, e.StatusCode)
}
