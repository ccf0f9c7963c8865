package config

import "github.com/BaeKey/smartedu/pkg/auth"

// ToAuthenticator returns the static extra headers as an Authenticator, or nil
// when none are configured. These headers go on metadata requests; the MAC
// header is added separately for artifact transfers.
func (s Settings) ToAuthenticator() auth.Authenticator {
	if len(s.Headers) == 0 {
		return nil
	}
	headers := make(map[string]string, len(s.Headers))
	for k, v := range s.Headers {
		headers[k] = v
	}
	return &auth.HeaderAuth{Headers: headers}
}
