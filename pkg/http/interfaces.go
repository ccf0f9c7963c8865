package http

import "context"

// Client defines the interface for HTTP operations against the mirrors.
type Client interface {
	// FetchMetadata GETs the metadata document at metadataURL and returns its body.
	// Any non-2xx status is reported as a *StatusError.
	FetchMetadata(ctx context.Context, metadataURL string) ([]byte, error)

	// CheckMirrorHealth issues a HEAD request against a mirror base URL.
	CheckMirrorHealth(ctx context.Context, mirrorURL string) error
}
