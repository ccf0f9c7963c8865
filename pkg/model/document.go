// Package model holds the value types that flow through the download pipeline:
// document identifiers, resolved metadata, credentials and signed requests.
package model

import (
	"net/url"
	"strings"

	"github.com/BaeKey/smartedu/pkg/errors"
)

// DocumentID identifies a logical document on the content backend.
type DocumentID string

// DefaultIDParam is the detail-page query parameter carrying the document ID.
const DefaultIDParam = "contentId"

// ParseDocumentID accepts either a bare document ID or a detail-page URL and
// returns the ID. A URL without the query parameter is ErrMissingIdentifier.
func ParseDocumentID(input, param string) (DocumentID, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.ErrMissingIdentifier
	}
	if !strings.Contains(input, "://") {
		if strings.ContainsAny(input, "/?#") {
			return "", errors.Wrapf(errors.ErrMissingIdentifier, "not a document ID: %q", input)
		}
		return DocumentID(input), nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", errors.Wrapf(errors.ErrMissingIdentifier, "parse page URL: %v", err)
	}
	if param == "" {
		param = DefaultIDParam
	}
	id := strings.TrimSpace(u.Query().Get(param))
	if id == "" {
		return "", errors.Wrapf(errors.ErrMissingIdentifier, "page URL has no %s parameter", param)
	}
	return DocumentID(id), nil
}

func (id DocumentID) String() string { return string(id) }
