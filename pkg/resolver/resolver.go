// Package resolver turns a document ID into metadata by probing the mirrors in
// preference order, and picks the downloadable artifact out of that metadata.
//
//go:generate mockgen -destination=./mocks/resolver.go . MetadataFetcher
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/BaeKey/smartedu/internal/logger"
	"github.com/BaeKey/smartedu/pkg/errors"
	"github.com/BaeKey/smartedu/pkg/model"
)

// MetadataFetcher fetches a metadata document. Any error means the mirror does
// not have the document.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, metadataURL string) ([]byte, error)
}

// DefaultMetadataExt is appended to the document ID to form the metadata file name.
const DefaultMetadataExt = ".json"

// Resolver probes mirrors sequentially.
type Resolver struct {
	Mirrors []string
	Fetcher MetadataFetcher
	Ext     string
}

// Resolution is a successful probe.
type Resolution struct {
	Metadata *model.Metadata
	Mirror   string
	URL      string
	Attempts int
}

// New creates a Resolver over mirrors, tried in the given order.
func New(mirrors []string, fetcher MetadataFetcher) *Resolver {
	return &Resolver{Mirrors: mirrors, Fetcher: fetcher, Ext: DefaultMetadataExt}
}

// MetadataURL returns <base>/<id><ext>.
func MetadataURL(base string, id model.DocumentID, ext string) (string, error) {
	if base == "" {
		return "", errors.Wrap(errors.ErrInvalidURL, "empty mirror URL")
	}
	if ext == "" {
		ext = DefaultMetadataExt
	}
	u, err := url.JoinPath(base, string(id)+ext)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidURL, "mirror %q: %v", base, err)
	}
	return u, nil
}

// Resolve returns the metadata from the first mirror that answers with valid
// metadata. Probes never overlap and stop at the first success. A success
// status with an unparsable body counts as a failed probe, like a network
// error or a non-2xx status. Exhausting every mirror is ErrResolutionExhausted;
// the joined attempts still match ErrMetadataInvalid when a body was bad.
func (r *Resolver) Resolve(ctx context.Context, id model.DocumentID) (*Resolution, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, errors.ErrMissingIdentifier
	}
	if r.Fetcher == nil {
		return nil, fmt.Errorf("metadata fetcher is not configured")
	}
	if len(r.Mirrors) == 0 {
		return nil, fmt.Errorf("%w: %w", errors.ErrResolutionExhausted, errors.ErrNoMirrors)
	}

	attempts := make([]error, 0, len(r.Mirrors))
	for i, mirror := range r.Mirrors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		metaURL, err := MetadataURL(mirror, id, r.Ext)
		if err != nil {
			logger.Warn("Skipping invalid mirror", logger.Fields{"mirror": mirror, "error": err.Error()})
			attempts = append(attempts, err)
			continue
		}

		logger.Debug("Probing mirror", logger.Fields{"id": string(id), "attempt": i + 1, "url": metaURL})
		data, err := r.Fetcher.FetchMetadata(ctx, metaURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Mirror probe failed", logger.Fields{"mirror": mirror, "error": err.Error()})
			attempts = append(attempts, errors.Wrapf(err, "mirror %d", i+1))
			continue
		}

		var meta model.Metadata
		if err := json.Unmarshal(data, &meta); err != nil {
			logger.Warn("Mirror returned invalid metadata", logger.Fields{"mirror": mirror, "error": err.Error()})
			attempts = append(attempts, fmt.Errorf("mirror %d: %w: %w", i+1, errors.ErrMetadataInvalid, err))
			continue
		}
		logger.Info("Fetched document metadata", logger.Fields{"id": string(id), "mirror": mirror})
		return &Resolution{Metadata: &meta, Mirror: mirror, URL: metaURL, Attempts: i + 1}, nil
	}

	return nil, fmt.Errorf("%w: document %s: %w", errors.ErrResolutionExhausted, id, errors.Join(attempts...))
}
