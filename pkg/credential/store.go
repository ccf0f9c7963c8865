// Package credential reads the login token pair from an exported browser
// session store. The store is read-only: nothing here ever writes to it.
package credential

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/BaeKey/smartedu/internal/logger"
	"github.com/BaeKey/smartedu/pkg/errors"
)

var errNotObject = fmt.Errorf("credential store must be an object of key-value pairs")

// Store is a read-only key-value view of the session store. Keys returns the
// keys in the store's own order.
type Store interface {
	Keys() []string
	Get(key string) (string, bool)
}

// Entry is a single key-value pair of a session store.
type Entry struct {
	Key   string
	Value string
}

// MapStore is an ordered in-memory Store.
type MapStore struct {
	entries []Entry
	index   map[string]int
}

// NewMapStore builds a store from entries; a repeated key keeps its first
// position and its last value.
func NewMapStore(entries ...Entry) *MapStore {
	s := &MapStore{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if i, ok := s.index[e.Key]; ok {
			s.entries[i].Value = e.Value
			continue
		}
		s.index[e.Key] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return s
}

// Keys implements Store.
func (s *MapStore) Keys() []string {
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.Key
	}
	return keys
}

// Get implements Store.
func (s *MapStore) Get(key string) (string, bool) {
	i, ok := s.index[key]
	if !ok {
		return "", false
	}
	return s.entries[i].Value, true
}

// Len returns the number of entries.
func (s *MapStore) Len() int { return len(s.entries) }

// Loader is a Store backed by external state. Locator takes one snapshot per
// scan so that every key it looks at comes from the same read.
type Loader interface {
	Load() (*MapStore, error)
}

// FileStore reads the store from disk on every scan so that a re-export by
// the browser session is picked up without restarting.
type FileStore struct {
	Path string
}

// Load implements Loader.
func (f FileStore) Load() (*MapStore, error) {
	return LoadFile(f.Path)
}

// Keys implements Store. A file that cannot be read or parsed is an empty store.
func (f FileStore) Keys() []string {
	s, err := f.Load()
	if err != nil {
		logLoadError(err)
		return nil
	}
	return s.Keys()
}

// Get implements Store.
func (f FileStore) Get(key string) (string, bool) {
	s, err := f.Load()
	if err != nil {
		logLoadError(err)
		return "", false
	}
	return s.Get(key)
}

func logLoadError(err error) {
	fields := logger.Fields{"error": err.Error()}
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("Credential store not found", fields)
		return
	}
	logger.Warn("Could not read credential store", fields)
}

// LoadFile parses a session store export such as the output of
// JSON.stringify(localStorage). YAML is accepted too.
func LoadFile(path string) (*MapStore, error) {
	if path == "" {
		return nil, errors.Wrap(errors.ErrInvalidPath, "credential store path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read credential store %s", path)
	}
	return Parse(data)
}

// Parse decodes a flat object of string values, keeping the key order of the
// document. Non-string values are skipped. A JSON object is walked token by
// token so that odd keys or escapes in unrelated entries are accepted as JSON
// accepts them; other documents are read as YAML.
func Parse(data []byte) (*MapStore, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return parseYAML(trimmed)
	}
	store, err := parseJSON(trimmed)
	if err == nil {
		return store, nil
	}
	// YAML flow mappings such as {a: b} also start with a brace.
	if ys, yerr := parseYAML(trimmed); yerr == nil {
		return ys, nil
	}
	return nil, err
}

func parseJSON(data []byte) (*MapStore, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse credential store")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse credential store")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errNotObject
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrapf(err, "failed to parse credential store entry %q", key)
		}
		if len(raw) == 0 || raw[0] != '"' {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			continue
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, "failed to parse credential store")
	}
	return NewMapStore(entries...), nil
}

func parseYAML(data []byte) (*MapStore, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse credential store")
	}
	if doc.Kind == 0 {
		return NewMapStore(), nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errNotObject
	}

	root := doc.Content[0]
	entries := make([]Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			continue
		}
		entries = append(entries, Entry{Key: k.Value, Value: v.Value})
	}
	return NewMapStore(entries...), nil
}
