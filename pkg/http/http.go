package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BaeKey/smartedu/pkg/auth"
	"github.com/BaeKey/smartedu/pkg/errors"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "smartedu/1.0"

// maxMetadataSize caps the metadata body read into memory.
const maxMetadataSize = 16 << 20

// StatusError reports a non-success HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

var _ Client = (*HTTPClient)(nil)

// HTTPClient handles HTTP operations for mirrors.
type HTTPClient struct {
	client    *http.Client
	userAgent string
	auth      auth.Authenticator
}

// NewHTTPClient creates a new HTTP client for metadata operations. The
// authenticator, if any, is applied to every request.
func NewHTTPClient(timeout time.Duration, userAgent string, authenticator auth.Authenticator) *HTTPClient {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
		auth:      authenticator,
	}
}

// FetchMetadata downloads the metadata document at metadataURL.
func (hc *HTTPClient) FetchMetadata(ctx context.Context, metadataURL string) ([]byte, error) {
	req, err := hc.newRequest(ctx, http.MethodGet, metadataURL)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch metadata")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: metadataURL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataSize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return data, nil
}

// CheckMirrorHealth checks if a mirror is reachable.
func (hc *HTTPClient) CheckMirrorHealth(ctx context.Context, mirrorURL string) error {
	req, err := hc.newRequest(ctx, http.MethodHead, mirrorURL)
	if err != nil {
		return err
	}

	resp, err := hc.client.Do(req)
	if err != nil {
		return fmt.Errorf("mirror not accessible: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// A bare directory commonly answers 403 or 404 while the host itself is up.
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("mirror not healthy: HTTP %d", resp.StatusCode)
	}
	return nil
}

func (hc *HTTPClient) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", hc.userAgent)
	if hc.auth != nil {
		if err := hc.auth.Apply(req); err != nil {
			return nil, errors.Wrap(err, "failed to apply authentication")
		}
	}
	return req, nil
}
