package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/BaeKey/smartedu/internal/logger"
	"github.com/BaeKey/smartedu/pkg/errors"
	"github.com/BaeKey/smartedu/pkg/model"
)

// HeaderName is the request header carrying the MAC value.
const HeaderName = "x-nd-auth"

// CredentialSource yields the current credential. It is consulted on every
// signature; implementations must not cache across calls.
type CredentialSource interface {
	Credential() (model.Credential, error)
}

// Hasher computes HMAC-SHA256.
type Hasher interface {
	HMACSHA256(key, message []byte) []byte
}

// SoftwareHMAC is the crypto/hmac implementation of Hasher.
type SoftwareHMAC struct{}

// HMACSHA256 implements Hasher.
func (SoftwareHMAC) HMACSHA256(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}

// MACSigner signs requests with the platform's MAC scheme.
type MACSigner struct {
	Credentials CredentialSource
	Nonces      NonceSource
	Hash        Hasher
	Header      string
}

// NewMACSigner returns a signer with the wall-clock nonce source and the
// software HMAC.
func NewMACSigner(creds CredentialSource) *MACSigner {
	return &MACSigner{
		Credentials: creds,
		Nonces:      NewNonceSource(nil),
		Hash:        SoftwareHMAC{},
		Header:      HeaderName,
	}
}

// HeaderKey returns the header name the signature is sent under.
func (s *MACSigner) HeaderKey() string {
	if s.Header == "" {
		return HeaderName
	}
	return s.Header
}

// Sign produces a fresh SignedRequest for method and rawURL. When no credential
// is available the request is returned unsigned together with an error
// matching ErrCredentialAbsent.
func (s *MACSigner) Sign(method, rawURL string) (model.SignedRequest, error) {
	req := model.SignedRequest{Method: method, URL: rawURL}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return req, errors.Wrapf(errors.ErrInvalidURL, "cannot sign %q", rawURL)
	}

	if s.Credentials == nil {
		return req, errors.ErrCredentialAbsent
	}
	cred, err := s.Credentials.Credential()
	if err != nil {
		if errors.Is(err, errors.ErrCredentialAbsent) {
			return req, err
		}
		return req, errors.Wrap(errors.ErrCredentialAbsent, err.Error())
	}

	nonces := s.Nonces
	if nonces == nil {
		nonces = NewNonceSource(nil)
	}
	var hasher Hasher = SoftwareHMAC{}
	if s.Hash != nil {
		hasher = s.Hash
	}

	req.Nonce = nonces.Nonce()
	req.MAC = ComputeMAC(hasher, cred.SigningSecret, CanonicalString(req.Nonce, method, u))
	req.Header = FormatHeader(cred.AccessToken, req.Nonce, req.MAC)
	logger.Debug("Signed request", logger.Fields{"method": method, "host": u.Host, "token": tokenHint(cred.AccessToken)})
	return req, nil
}

// HeaderValue returns the MAC header for method and rawURL, or the empty string
// when the request cannot be signed.
func (s *MACSigner) HeaderValue(method, rawURL string) string {
	req, err := s.Sign(method, rawURL)
	if err != nil {
		logger.Warn("Request left unsigned", logger.Fields{"error": err.Error()})
		return ""
	}
	return req.Header
}

// Apply signs req in place. An unavailable credential leaves the request
// unsigned and is not an error.
func (s *MACSigner) Apply(req *http.Request) error {
	if v := s.HeaderValue(req.Method, req.URL.String()); v != "" {
		req.Header.Set(s.HeaderKey(), v)
	}
	return nil
}

// Type returns MACAuthType.
func (s *MACSigner) Type() Type { return MACAuthType }

// CanonicalString builds the string to sign:
// nonce, method, path+query+fragment and host, each followed by a newline.
func CanonicalString(nonce, method string, u *url.URL) string {
	var b strings.Builder
	b.WriteString(nonce)
	b.WriteByte('\n')
	b.WriteString(method)
	b.WriteByte('\n')
	b.WriteString(RelativePath(u))
	b.WriteByte('\n')
	b.WriteString(Authority(u))
	b.WriteByte('\n')
	return b.String()
}

// RelativePath returns path, query and fragment the way a browser URL reports
// pathname+search+hash.
func RelativePath(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		p += "#" + u.EscapedFragment()
	}
	return p
}

// Authority returns the lower-cased host with the scheme's default port removed.
func Authority(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port == "" || (u.Scheme == "https" && port == "443") || (u.Scheme == "http" && port == "80") {
		if strings.Contains(host, ":") {
			return "[" + host + "]"
		}
		return host
	}
	return net.JoinHostPort(host, port)
}

// ComputeMAC returns base64(HMAC-SHA256(secret, canonical)).
func ComputeMAC(h Hasher, secret, canonical string) string {
	return base64.StdEncoding.EncodeToString(h.HMACSHA256([]byte(secret), []byte(canonical)))
}

// FormatHeader renders the MAC header value.
func FormatHeader(token, nonce, mac string) string {
	return fmt.Sprintf(`MAC id="%s",nonce="%s",mac="%s"`, token, nonce, mac)
}

func tokenHint(token string) string {
	if len(token) <= 6 {
		return "***"
	}
	return token[:6] + "***"
}

// CredentialFunc adapts a function to CredentialSource.
type CredentialFunc func() (model.Credential, error)

// Credential implements CredentialSource.
func (f CredentialFunc) Credential() (model.Credential, error) { return f() }
