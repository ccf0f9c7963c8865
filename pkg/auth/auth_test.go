package auth_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/BaeKey/smartedu/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderAuth(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		expect  map[string]string
	}{
		{
			name: "single header",
			headers: map[string]string{
				"Referer": "https://basic.smartedu.cn/",
			},
			expect: map[string]string{
				"Referer": "https://basic.smartedu.cn/",
			},
		},
		{
			name: "multiple headers",
			headers: map[string]string{
				"X-ND-Client": "web",
				"Origin":      "https://basic.smartedu.cn",
			},
			expect: map[string]string{
				"X-Nd-Client": "web", // http.Header canonicalizes headers
				"Origin":      "https://basic.smartedu.cn",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "http://example.com", nil)
			headerAuth := auth.HeaderAuth{
				Headers: tt.headers,
			}

			err := headerAuth.Apply(req)
			require.NoError(t, err)

			for k, v := range tt.expect {
				assert.Equal(t, v, req.Header.Get(k))
			}
			assert.Equal(t, auth.HeaderAuthType, headerAuth.Type())
		})
	}
}

type failingAuth struct{}

func (failingAuth) Apply(*http.Request) error { return errors.New("boom") }
func (failingAuth) Type() auth.Type           { return "failing" }

func TestChain(t *testing.T) {
	req, _ := http.NewRequest("GET", "http://example.com", nil)

	chain := auth.Chain{
		auth.HeaderAuth{Headers: map[string]string{"A": "1"}},
		nil,
		auth.HeaderAuth{Headers: map[string]string{"B": "2"}},
	}
	require.NoError(t, chain.Apply(req))
	assert.Equal(t, "1", req.Header.Get("A"))
	assert.Equal(t, "2", req.Header.Get("B"))
	assert.Equal(t, auth.HeaderAuthType, chain.Type())

	failing := auth.Chain{failingAuth{}, auth.HeaderAuth{Headers: map[string]string{"C": "3"}}}
	require.Error(t, failing.Apply(req))
	assert.Empty(t, req.Header.Get("C"))

	assert.Equal(t, auth.HeaderAuthType, auth.Chain{}.Type())
}
