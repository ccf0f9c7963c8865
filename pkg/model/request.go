package model

// Credential is the token pair read from the browser session store.
type Credential struct {
	AccessToken   string
	SigningSecret string
}

// SignedRequest is a single-use authenticated request. Header is empty when no
// credential was available, in which case the backend is expected to reject it.
type SignedRequest struct {
	Method string `json:"method"`
	URL    string `json:"url"`
	Nonce  string `json:"nonce,omitempty"`
	MAC    string `json:"mac,omitempty"`
	Header string `json:"-"`
}

// Authenticated reports whether the request carries a MAC header.
func (r SignedRequest) Authenticated() bool { return r.Header != "" }

// Handoff is what the orchestrator gives to the transfer collaborator.
type Handoff struct {
	DocumentID DocumentID    `json:"document_id"`
	Title      string        `json:"title"`
	FileName   string        `json:"file_name"`
	HeaderName string        `json:"header_name"`
	Mirror     string        `json:"mirror"`
	Request    SignedRequest `json:"request"`
}
