// Package errors defines the failure taxonomy shared by the resolver, signer,
// orchestrator and transfer layers, plus small wrapping helpers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Common error types.
var (
	// Pipeline errors.
	ErrMissingIdentifier   = fmt.Errorf("no document identifier available")
	ErrResolutionExhausted = fmt.Errorf("no mirror returned metadata for document")
	ErrMetadataInvalid     = fmt.Errorf("metadata document could not be parsed")
	ErrArtifactNotFound    = fmt.Errorf("no artifact with the requested format")
	ErrCredentialAbsent    = fmt.Errorf("no credential found in session store")
	ErrTransferFailed      = fmt.Errorf("artifact transfer failed")
	ErrInvalidURL          = fmt.Errorf("invalid URL")
	ErrNoMirrors           = fmt.Errorf("no mirrors configured")

	// Filesystem errors.
	ErrInvalidPath = fmt.Errorf("invalid path")

	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config to YAML")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")
)

// TransferError reports a non-success status from the artifact fetch.
// StatusCode is zero when the request never got a response.
type TransferError struct {
	StatusCode int
	Err        error
}

func (e *TransferError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", ErrTransferFailed, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status code: %d", ErrTransferFailed, e.StatusCode)
}

// Unwrap lets errors.Is match both ErrTransferFailed and the transport cause.
func (e *TransferError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransferFailed}
	}
	return []error{ErrTransferFailed, e.Err}
}

// Message maps a pipeline failure to the text shown to the person running the tool.
func Message(err error) string {
	var te *TransferError
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrMissingIdentifier):
		return "could not find a document ID; pass an ID or a detail page URL with contentId"
	case stderrors.Is(err, ErrResolutionExhausted):
		return "could not fetch the document metadata from any mirror; check the network and try again later"
	case stderrors.Is(err, ErrMetadataInvalid):
		return "the document metadata could not be parsed"
	case stderrors.Is(err, ErrArtifactNotFound):
		return "the document metadata has no file in the requested format"
	case stderrors.Is(err, ErrCredentialAbsent):
		return "not authenticated: no login token found in the session store"
	case stderrors.As(err, &te):
		if te.StatusCode == http.StatusUnauthorized || te.StatusCode == http.StatusForbidden {
			return fmt.Sprintf("download rejected with status %d; make sure you are logged in to the platform", te.StatusCode)
		}
		if te.StatusCode != 0 {
			return fmt.Sprintf("download failed with status %d", te.StatusCode)
		}
		return fmt.Sprintf("download failed: %v", te.Err)
	default:
		return err.Error()
	}
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// Join returns an error wrapping all non-nil errs.
func Join(errs ...error) error { return stderrors.Join(errs...) }

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
