package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/BaeKey/smartedu/internal/logger"
	"github.com/BaeKey/smartedu/pkg/auth"
	"github.com/BaeKey/smartedu/pkg/download"
	"github.com/BaeKey/smartedu/pkg/errors"
	"github.com/BaeKey/smartedu/pkg/fsutil"
	"github.com/BaeKey/smartedu/pkg/hook"
	"github.com/BaeKey/smartedu/pkg/model"
	"github.com/BaeKey/smartedu/pkg/resolver"
)

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

func (o *Orchestrator) fail(id model.DocumentID, err error) error {
	emit(o.Hooks, Event{Phase: PhaseError, ID: id.String(), Msg: err.Error()})
	return err
}

func (o *Orchestrator) format() string {
	if o.Format == "" {
		return resolver.DefaultFormat
	}
	return o.Format
}

func (o *Orchestrator) hasScript(t hook.Type) bool {
	return o.Scripts != nil && o.Scripts.HasScript(t)
}

func hookContext(h *model.Handoff, path string) hook.Context {
	return hook.Context{
		DocumentID: h.DocumentID.String(),
		Title:      h.Title,
		FileName:   h.FileName,
		URL:        h.Request.URL,
		Mirror:     h.Mirror,
		Path:       path,
	}
}

// Prepare resolves the document, selects its artifact and signs the transfer
// request. It stops at the first failing stage.
func (o *Orchestrator) Prepare(ctx context.Context, id model.DocumentID) (*model.Handoff, error) {
	h, err := o.locate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.sign(h); err != nil {
		return nil, err
	}
	return h, nil
}

// locate resolves the document and selects its artifact. The hand-off it
// returns is not signed yet.
func (o *Orchestrator) locate(ctx context.Context, id model.DocumentID) (*model.Handoff, error) {
	if id == "" {
		return nil, o.fail(id, errors.ErrMissingIdentifier)
	}
	if o.Resolver == nil {
		return nil, fmt.Errorf("resolver is not configured")
	}

	emit(o.Hooks, Event{Phase: PhaseResolving, ID: id.String()})
	res, err := o.Resolver.Resolve(ctx, id)
	if err != nil {
		return nil, o.fail(id, err)
	}

	emit(o.Hooks, Event{Phase: PhaseSelecting, ID: id.String(), Msg: res.Mirror})
	desc, err := resolver.SelectArtifact(res.Metadata, o.format(), o.DefaultTitle)
	if err != nil {
		return nil, o.fail(id, fmt.Errorf("document %s: %w", id, err))
	}

	return &model.Handoff{
		DocumentID: id,
		Title:      desc.Title,
		FileName:   fsutil.ArtifactFileName(desc.Title, desc.Format),
		Mirror:     res.Mirror,
		Request:    model.SignedRequest{Method: http.MethodGet, URL: desc.URL},
	}, nil
}

// sign attaches a fresh signature to h. A missing credential leaves the
// request unsigned unless RequireCredential is set.
func (o *Orchestrator) sign(h *model.Handoff) error {
	id := h.DocumentID
	if o.Signer == nil {
		if o.RequireCredential {
			return o.fail(id, errors.ErrCredentialAbsent)
		}
		return nil
	}

	emit(o.Hooks, Event{Phase: PhaseSigning, ID: id.String()})
	h.HeaderName = o.Signer.HeaderKey()
	signed, err := o.Signer.Sign(http.MethodGet, h.Request.URL)
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrCredentialAbsent) && !o.RequireCredential:
		logger.Warn("No credential found, sending unsigned request", logger.Fields{"id": id.String()})
	default:
		return o.fail(id, err)
	}
	h.Request = signed
	return nil
}

// Download runs the whole pipeline for one document and returns the written file.
func (o *Orchestrator) Download(ctx context.Context, id model.DocumentID, opts Options) (*Result, error) {
	h, err := o.Prepare(ctx, id)
	if err != nil {
		return nil, err
	}
	return o.transfer(ctx, h, opts)
}

// transfer runs the scripts around the download of a prepared hand-off.
func (o *Orchestrator) transfer(ctx context.Context, h *model.Handoff, opts Options) (*Result, error) {
	id := h.DocumentID
	if o.hasScript(hook.PreDownload) {
		res, err := o.Scripts.Execute(hook.PreDownload, hookContext(h, ""))
		if err != nil {
			return nil, o.fail(id, err)
		}
		if res.Skip {
			emit(o.Hooks, Event{Phase: PhaseDone, ID: id.String(), Msg: "skipped"})
			return &Result{ID: id, Handoff: h, Skipped: true}, nil
		}
		h.FileName = fsutil.SanitizeFileName(res.FileName)
	}

	result := &Result{ID: id, Handoff: h, Path: filepath.Join(opts.Dir, h.FileName)}
	if opts.DryRun {
		emit(o.Hooks, Event{Phase: PhaseDone, ID: id.String(), Msg: "dry-run"})
		return result, nil
	}
	if o.DL == nil {
		return nil, fmt.Errorf("downloader is not configured")
	}

	item := download.Item{ID: id.String(), URL: h.Request.URL, Filename: h.FileName}
	if h.Request.Authenticated() {
		item.Auth = auth.HeaderAuth{Headers: map[string]string{h.HeaderName: h.Request.Header}}
	}

	emit(o.Hooks, Event{Phase: PhaseDownloading, ID: id.String(), Msg: h.FileName})
	path, err := o.DL.Fetch(ctx, item, download.Options{Dir: opts.Dir, Overwrite: opts.Overwrite})
	if err != nil {
		return nil, o.fail(id, fmt.Errorf("document %s: %w", id, err))
	}
	h.FileName = filepath.Base(path)
	result.Path = path

	if o.hasScript(hook.PostDownload) {
		if _, err := o.Scripts.Execute(hook.PostDownload, hookContext(h, path)); err != nil {
			return nil, o.fail(id, err)
		}
	}

	logger.Success("Saved textbook", logger.Fields{"id": id.String(), "title": h.Title, "path": path})
	emit(o.Hooks, Event{Phase: PhaseDone, ID: id.String(), Msg: path})
	return result, nil
}

// DownloadAll runs one independent pipeline per ID with bounded concurrency.
// Every document is located first so that documents sharing a title get
// distinct file names, in input order; then each one is signed right before
// its own transfer. A failing document does not stop the others; results keep
// the input order and the returned error joins every failure.
func (o *Orchestrator) DownloadAll(ctx context.Context, ids []model.DocumentID, opts Options) ([]Result, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]Result, len(ids))
	handoffs := make([]*model.Handoff, len(ids))
	forEach(ctx, ids, limit, results, func(i int, id model.DocumentID) error {
		h, err := o.locate(ctx, id)
		handoffs[i] = h
		return err
	})

	uniqueFileNames(handoffs)

	forEach(ctx, ids, limit, results, func(i int, _ model.DocumentID) error {
		if err := o.sign(handoffs[i]); err != nil {
			return err
		}
		res, err := o.transfer(ctx, handoffs[i], opts)
		if err != nil {
			return err
		}
		results[i] = *res
		return nil
	})

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}

// forEach runs fn for every ID that has not failed yet and records failures
// in results.
func forEach(ctx context.Context, ids []model.DocumentID, limit int, results []Result, fn func(int, model.DocumentID) error) {
	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		if results[i].Err != nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{ID: id, Err: err}
				return nil
			}
			if err := fn(i, id); err != nil {
				results[i] = Result{ID: id, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()
}

// uniqueFileNames appends the document ID to every file name already used by
// an earlier document of the batch. Names are compared case-insensitively.
func uniqueFileNames(handoffs []*model.Handoff) {
	owner := make(map[string]model.DocumentID, len(handoffs))
	for _, h := range handoffs {
		if h == nil {
			continue
		}
		key := strings.ToLower(h.FileName)
		prev, taken := owner[key]
		if !taken {
			owner[key] = h.DocumentID
			continue
		}
		if prev == h.DocumentID {
			continue
		}
		h.FileName = fsutil.WithDocumentID(h.FileName, h.DocumentID.String())
		owner[strings.ToLower(h.FileName)] = h.DocumentID
	}
}
