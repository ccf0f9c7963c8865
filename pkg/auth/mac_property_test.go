package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/BaeKey/smartedu/pkg/model"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestSignerDeterminism verifies that a fixed nonce yields a fixed header.
// Property: Sign(n, m, u, k) == Sign(n, m, u, k)
func TestSignerDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("same inputs give the same header", prop.ForAll(
		func(nonce, method, segment, secret string) bool {
			rawURL := "https://cdn.example.com/" + segment + ".pdf"
			sign := func() string {
				s := &MACSigner{
					Credentials: CredentialFunc(func() (model.Credential, error) {
						return model.Credential{AccessToken: "tok", SigningSecret: secret}, nil
					}),
					Nonces: FixedNonce(nonce),
					Hash:   SoftwareHMAC{},
				}
				return s.HeaderValue(method, rawURL)
			}
			first := sign()
			return first != "" && first == sign()
		},
		gen.AlphaString(),
		gen.OneConstOf("GET", "HEAD", "POST"),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// TestSignerRoundTrip verifies the base64 MAC decodes to the HMAC of the
// canonical string.
// Property: b64decode(mac) == HMAC-SHA256(key, canonical)
func TestSignerRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("MAC digest recomputes", prop.ForAll(
		func(seed uint64, segment, query, secret string) bool {
			rawURL := "https://cdn.example.com/" + segment
			if query != "" {
				rawURL += "?q=" + query
			}
			s := &MACSigner{
				Credentials: CredentialFunc(func() (model.Credential, error) {
					return model.Credential{AccessToken: "tok", SigningSecret: secret}, nil
				}),
				Nonces: NewSeededNonceSource(seed, time.Now),
				Hash:   SoftwareHMAC{},
			}
			req, err := s.Sign("GET", rawURL)
			if err != nil {
				return false
			}
			digest, err := base64.StdEncoding.DecodeString(req.MAC)
			if err != nil {
				return false
			}
			u, err := url.Parse(rawURL)
			if err != nil {
				return false
			}
			mac := hmac.New(sha256.New, []byte(secret))
			mac.Write([]byte(CanonicalString(req.Nonce, "GET", u)))
			return hmac.Equal(digest, mac.Sum(nil)) &&
				req.Header == FormatHeader("tok", req.Nonce, req.MAC)
		},
		gen.UInt64(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

// TestNonceShape verifies every nonce carries a jitter in [700, 900] and an
// 8-character base-36 suffix.
func TestNonceShape(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("nonce layout", prop.ForAll(
		func(seed uint64, millis int64) bool {
			nonce := NewSeededNonceSource(seed, func() time.Time { return time.UnixMilli(millis) }).Nonce()
			parts := strings.SplitN(nonce, ":", 2)
			if len(parts) != 2 || len(parts[1]) != NonceSuffixLength {
				return false
			}
			ts, err := strconv.ParseInt(parts[0], 10, 64)
			if err != nil {
				return false
			}
			jitter := ts - millis
			if jitter < NonceJitterMin || jitter > NonceJitterMax {
				return false
			}
			for _, c := range parts[1] {
				if !strings.ContainsRune(nonceAlphabet, c) {
					return false
				}
			}
			return true
		},
		gen.UInt64(),
		gen.Int64Range(0, 4_000_000_000_000),
	))

	properties.TestingRun(t)
}
