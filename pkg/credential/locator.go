package credential

import (
	"encoding/json"
	"strings"

	"github.com/BaeKey/smartedu/internal/logger"
	"github.com/BaeKey/smartedu/pkg/errors"
	"github.com/BaeKey/smartedu/pkg/model"
)

// Naming convention of the platform's token entries.
const (
	DefaultKeyPrefix = "ND_UC_AUTH"
	DefaultKeySuffix = "token"
)

// Locator finds the token entry in a Store.
type Locator struct {
	Store  Store
	Prefix string
	Suffix string
}

// NewLocator returns a Locator using the default naming convention for empty
// prefix or suffix.
func NewLocator(store Store, prefix, suffix string) *Locator {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if suffix == "" {
		suffix = DefaultKeySuffix
	}
	return &Locator{Store: store, Prefix: prefix, Suffix: suffix}
}

type wrapper struct {
	Value *string `json:"value"`
}

type tokenPayload struct {
	AccessToken string `json:"access_token"`
	MacKey      string `json:"mac_key"`
}

// Credential scans the store and returns the first matching entry that parses.
// Malformed entries are skipped. ErrCredentialAbsent is returned when nothing
// usable is found. A Loader store is read once per call.
func (l *Locator) Credential() (model.Credential, error) {
	if l == nil || l.Store == nil {
		return model.Credential{}, errors.ErrCredentialAbsent
	}
	store := l.Store
	if ld, ok := store.(Loader); ok {
		snap, err := ld.Load()
		if err != nil {
			logLoadError(err)
			return model.Credential{}, errors.Wrap(errors.ErrCredentialAbsent, err.Error())
		}
		store = snap
	}

	for _, key := range store.Keys() {
		if !strings.HasPrefix(key, l.Prefix) || !strings.HasSuffix(key, l.Suffix) {
			continue
		}
		raw, ok := store.Get(key)
		if !ok {
			continue
		}
		cred, err := parseEntry(raw)
		if err != nil {
			logger.Debug("Skipping malformed credential entry", logger.Fields{"key": key, "error": err.Error()})
			continue
		}
		return cred, nil
	}
	return model.Credential{}, errors.ErrCredentialAbsent
}

func parseEntry(raw string) (model.Credential, error) {
	var outer wrapper
	if err := json.Unmarshal([]byte(raw), &outer); err != nil {
		return model.Credential{}, errors.Wrap(err, "outer value")
	}
	if outer.Value == nil {
		return model.Credential{}, errors.Wrap(errors.ErrCredentialAbsent, "entry has no value field")
	}
	var inner tokenPayload
	if err := json.Unmarshal([]byte(*outer.Value), &inner); err != nil {
		return model.Credential{}, errors.Wrap(err, "inner value")
	}
	if inner.AccessToken == "" || inner.MacKey == "" {
		return model.Credential{}, errors.Wrap(errors.ErrCredentialAbsent, "entry lacks access_token or mac_key")
	}
	return model.Credential{AccessToken: inner.AccessToken, SigningSecret: inner.MacKey}, nil
}
