package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/BaeKey/smartedu/internal/logger"
	"github.com/BaeKey/smartedu/pkg/auth"
	pkgerrors "github.com/BaeKey/smartedu/pkg/errors"
	"github.com/BaeKey/smartedu/pkg/fsutil"
	smarthttp "github.com/BaeKey/smartedu/pkg/http"
)

var _ Manager = (*ManagerImpl)(nil)

// ManagerImpl downloads artifacts over HTTP and writes them atomically.
// Each download directory keeps a record of which document every file
// belongs to, so a file is only reused for the document it was fetched for.
type ManagerImpl struct {
	client    *http.Client
	userAgent string
	auth      auth.Authenticator

	mu       sync.Mutex
	inflight map[string]string // absolute path -> document id
}

// NewManager creates a new download manager with the given timeout and user agent.
// A zero timeout means no timeout, which suits large textbooks. The
// authenticator, if any, is applied to every request before the item's own.
func NewManager(timeout time.Duration, userAgent string, authenticator auth.Authenticator) *ManagerImpl {
	if userAgent == "" {
		userAgent = smarthttp.DefaultUserAgent
	}
	return &ManagerImpl{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		auth:      authenticator,
		inflight:  make(map[string]string),
	}
}

// Fetch downloads a single item and returns the path to the downloaded file.
// A non-200 response is reported as *errors.TransferError carrying the status code.
func (m *ManagerImpl) Fetch(ctx context.Context, item Item, opts Options) (path string, err error) {
	if item.ID == "" {
		return "", fmt.Errorf("artifact without document id: %w", pkgerrors.ErrMissingIdentifier)
	}
	if item.URL == "" {
		return "", fmt.Errorf("empty artifact url: %w", pkgerrors.ErrInvalidURL)
	}
	if item.Filename == "" {
		return "", fmt.Errorf("empty file name: %w", pkgerrors.ErrInvalidPath)
	}
	dir, err := resolveDir(opts.Dir)
	if err != nil {
		return "", err
	}

	absPath, reuse, err := m.claim(dir, item, opts.Overwrite)
	if err != nil {
		return "", err
	}
	if reuse {
		logger.Info("Reusing existing file", logger.Fields{"id": item.ID, "path": absPath})
		return absPath, nil
	}
	defer func() { m.release(dir, absPath, item.ID, err == nil) }()
	if absPath != filepath.Join(dir, item.Filename) {
		logger.Info("File name taken by another document", logger.Fields{"id": item.ID, "path": absPath})
	}

	resp, err := m.doRequest(ctx, item)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	tmpPath, err := writeBodyToTemp(resp, absPath)
	if err != nil {
		return "", err
	}
	if err := finalizeFile(tmpPath, absPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return absPath, nil
}

func resolveDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("download dir %s: %w", dir, pkgerrors.ErrInvalidPath)
	}
	if err := os.MkdirAll(abs, fsutil.DirModeDefault); err != nil {
		return "", pkgerrors.Wrap(err, "could not create download dir")
	}
	return abs, nil
}

// claim picks the file item is written to. A file the document already owns
// is reused unless overwrite is set. Otherwise the preferred name is used when
// it is free or owned by the document, and the document ID is appended when
// it is not.
func (m *ManagerImpl) claim(dir string, item Item, overwrite bool) (path string, reuse bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := loadOwners(dir)
	if !overwrite {
		if p, ok := m.ownFile(dir, rec, item); ok {
			return p, true, nil
		}
	}

	names := []string{item.Filename}
	if alt := fsutil.WithDocumentID(item.Filename, item.ID); alt != item.Filename {
		names = append(names, alt)
	}
	for _, name := range names {
		p := filepath.Join(dir, name)
		if _, busy := m.inflight[p]; busy {
			continue
		}
		owner, known := rec.Files[name]
		switch {
		case !fsutil.NonEmptyFile(p):
		case known && owner == item.ID:
		case !known && overwrite:
		default:
			continue
		}
		m.inflight[p] = item.ID
		return p, false, nil
	}
	return "", false, fmt.Errorf("every candidate name for %s is taken: %w", item.Filename, pkgerrors.ErrInvalidPath)
}

// ownFile finds an existing file recorded for item's document under the
// preferred name or under the name with or without the document ID appended.
func (m *ManagerImpl) ownFile(dir string, rec owners, item Item) (string, bool) {
	var names []string
	for name, owner := range rec.Files {
		if owner != item.ID || name == item.Filename {
			continue
		}
		if fsutil.WithDocumentID(name, item.ID) == item.Filename || name == fsutil.WithDocumentID(item.Filename, item.ID) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if rec.Files[item.Filename] == item.ID {
		names = append([]string{item.Filename}, names...)
	}

	for _, name := range names {
		p := filepath.Join(dir, name)
		if _, busy := m.inflight[p]; busy {
			continue
		}
		if fsutil.NonEmptyFile(p) {
			return p, true
		}
	}
	return "", false
}

// release frees path and, after a successful write, records its owner.
func (m *ManagerImpl) release(dir, path, id string, written bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, path)
	if !written {
		return
	}
	rec := loadOwners(dir)
	rec.Files[filepath.Base(path)] = id
	if err := rec.save(dir); err != nil {
		logger.Warn("Could not record downloaded file", logger.Fields{"id": id, "path": path, "error": err.Error()})
	}
}

func (m *ManagerImpl) doRequest(ctx context.Context, item Item) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", item.URL, pkgerrors.ErrInvalidURL)
	}
	if err := (auth.Chain{m.auth, item.Auth}).Apply(req); err != nil {
		return nil, pkgerrors.Wrap(err, "could not authenticate request")
	}
	req.Header.Set("User-Agent", m.userAgent)

	logger.Debug("Requesting artifact", logger.Fields{
		"id":     item.ID,
		"url":    item.URL,
		"signed": item.Auth != nil,
	})
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, &pkgerrors.TransferError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, &pkgerrors.TransferError{StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func writeBodyToTemp(resp *http.Response, absPath string) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(absPath), ".dl-*.tmp")
	if err != nil {
		return "", pkgerrors.Wrap(err, "could not create temp file")
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", &pkgerrors.TransferError{Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not sync file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not close file")
	}
	return tmpPath, nil
}

func finalizeFile(tmpPath, absPath string) error {
	if err := fsutil.Move(tmpPath, absPath); err != nil {
		return pkgerrors.Wrap(err, "could not finalize file")
	}
	if err := os.Chmod(absPath, fsutil.FileModeDefault); err != nil {
		return pkgerrors.Wrap(err, "could not set permissions")
	}
	return nil
}
