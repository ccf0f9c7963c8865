// Package auth provides authentication support for HTTP requests.
package auth

import "net/http"

// Authenticator defines the interface for applying authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// HeaderAuth represents authentication via custom HTTP headers.
type HeaderAuth struct {
	Headers map[string]string
}

// Type represents the type of authentication.
type Type string

// Authentication types.
const (
	// HeaderAuthType represents custom header-based authentication.
	HeaderAuthType Type = "header"
	// MACAuthType represents the signed MAC header scheme.
	MACAuthType Type = "mac"
)

// Apply adds custom headers to the HTTP request.
func (h HeaderAuth) Apply(req *http.Request) error {
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	return nil
}

// Type returns the authentication type (HeaderAuthType).
func (h HeaderAuth) Type() Type { return HeaderAuthType }

// Chain applies several authenticators in order. Nil entries are skipped.
type Chain []Authenticator

// Apply runs every authenticator and stops at the first error.
func (c Chain) Apply(req *http.Request) error {
	for _, a := range c {
		if a == nil {
			continue
		}
		if err := a.Apply(req); err != nil {
			return err
		}
	}
	return nil
}

// Type returns the type of the last authenticator, or HeaderAuthType for an empty chain.
func (c Chain) Type() Type {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i] != nil {
			return c[i].Type()
		}
	}
	return HeaderAuthType
}
