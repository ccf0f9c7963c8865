// Package testutil provides fixtures shared by the integration tests.
package testutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
)

// Document is a textbook served by a MirrorServer.
type Document struct {
	Title   string
	Format  string
	Payload []byte
}

// MirrorServer fakes the metadata mirrors and the signed artifact storage on
// a single httptest server. Mirror i is served under /mirror-<i>/.
type MirrorServer struct {
	*httptest.Server

	Token     string
	SecretKey string

	mu        sync.Mutex
	docs      map[string]Document
	down      map[int]int // mirror index -> status code returned for every probe
	probes    []string
	transfers int
}

// NewMirrorServer starts a server; it is closed when the test ends.
func NewMirrorServer(t *testing.T, token, secret string) *MirrorServer {
	t.Helper()
	ms := &MirrorServer{
		Token:     token,
		SecretKey: secret,
		docs:      make(map[string]Document),
		down:      make(map[int]int),
	}
	ms.Server = httptest.NewServer(http.HandlerFunc(ms.serve))
	t.Cleanup(ms.Close)
	return ms
}

// AddDocument registers a document under id.
func (ms *MirrorServer) AddDocument(id string, doc Document) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.docs[id] = doc
}

// SetMirrorStatus makes mirror i answer every metadata probe with status.
func (ms *MirrorServer) SetMirrorStatus(i, status int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.down[i] = status
}

// MirrorURL returns the base URL of mirror i.
func (ms *MirrorServer) MirrorURL(i int) string {
	return fmt.Sprintf("%s/mirror-%d/details", ms.URL, i)
}

// Probes returns the metadata paths requested so far, in order.
func (ms *MirrorServer) Probes() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]string(nil), ms.probes...)
}

// Transfers returns how many artifact downloads succeeded.
func (ms *MirrorServer) Transfers() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.transfers
}

var metadataPath = regexp.MustCompile(`^/mirror-(\d+)/details/([^/]+)\.json$`)

func (ms *MirrorServer) serve(w http.ResponseWriter, r *http.Request) {
	if m := metadataPath.FindStringSubmatch(r.URL.Path); m != nil {
		ms.serveMetadata(w, r, m[1], m[2])
		return
	}
	if id, ok := strings.CutPrefix(r.URL.Path, "/assets/"); ok {
		ms.serveArtifact(w, r, id)
		return
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	http.NotFound(w, r)
}

func (ms *MirrorServer) serveMetadata(w http.ResponseWriter, r *http.Request, mirror, id string) {
	ms.mu.Lock()
	ms.probes = append(ms.probes, r.URL.Path)
	var status int
	_, _ = fmt.Sscanf(mirror, "%d", &status)
	status = ms.down[status]
	doc, ok := ms.docs[id]
	ms.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	body := map[string]any{
		"title": doc.Title,
		"ti_items": []map[string]any{
			{"ti_format": "jpg", "ti_storages": []string{ms.URL + "/thumbs/" + id + ".jpg"}},
			{"ti_format": doc.Format, "ti_storages": []string{ms.URL + "/assets/" + id}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

var macHeader = regexp.MustCompile(`^MAC id="([^"]*)",nonce="([^"]*)",mac="([^"]*)"$`)

func (ms *MirrorServer) serveArtifact(w http.ResponseWriter, r *http.Request, id string) {
	m := macHeader.FindStringSubmatch(r.Header.Get("x-nd-auth"))
	if m == nil || m[1] != ms.Token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	canonical := m[2] + "\n" + r.Method + "\n" + r.URL.RequestURI() + "\n" + r.Host + "\n"
	mac := hmac.New(sha256.New, []byte(ms.SecretKey))
	mac.Write([]byte(canonical))
	if m[3] != base64.StdEncoding.EncodeToString(mac.Sum(nil)) {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	ms.mu.Lock()
	doc, ok := ms.docs[id]
	if ok {
		ms.transfers++
	}
	ms.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(doc.Payload)
}

// CredentialStoreJSON returns a browser storage export holding token and secret
// under a key the locator recognises.
func CredentialStoreJSON(token, secret string) []byte {
	inner, _ := json.Marshal(map[string]string{"access_token": token, "mac_key": secret})
	outer, _ := json.Marshal(map[string]string{"value": string(inner)})
	store, _ := json.Marshal(map[string]string{
		"theme":                               "dark",
		"ND_UC_AUTH-e5649925&ncet-xedu&token": string(outer),
	})
	return store
}
