//go:generate mockgen -destination=./mocks/orchestrator.go . DocumentResolver,RequestSigner

package orchestrator

import (
	"context"

	"github.com/BaeKey/smartedu/pkg/download"
	"github.com/BaeKey/smartedu/pkg/hook"
	"github.com/BaeKey/smartedu/pkg/model"
	"github.com/BaeKey/smartedu/pkg/resolver"
)

// DocumentResolver finds the metadata of a document on the mirrors.
type DocumentResolver interface {
	Resolve(ctx context.Context, id model.DocumentID) (*resolver.Resolution, error)
}

// RequestSigner produces the single-use auth header for a transfer.
type RequestSigner interface {
	Sign(method, rawURL string) (model.SignedRequest, error)
	HeaderKey() string
}

// Orchestrator ties resolver, selector, signer and downloader together.
type Orchestrator struct {
	Resolver          DocumentResolver
	Signer            RequestSigner
	DL                download.Manager
	Format            string // target artifact format, defaults to pdf
	DefaultTitle      string // used when metadata has no title
	RequireCredential bool   // abort before the transfer when no credential is available
	Hooks             Hooks  // Hooks for progress and event notifications
	Scripts           hook.Runner
}

// Phases reported through Hooks.
const (
	PhaseResolving   = "resolving"
	PhaseSelecting   = "selecting"
	PhaseSigning     = "signing"
	PhaseDownloading = "downloading"
	PhaseDone        = "done"
	PhaseError       = "error"
)

// Event represents a simple progress notification.
type Event struct {
	Phase string // resolving|selecting|signing|downloading|done|error
	ID    string // document ID
	Msg   string
}

// Hooks carries callbacks for progress events.
// OnEvent may be called from several goroutines during DownloadAll.
type Hooks struct {
	OnEvent func(Event)
}

// Options control orchestrator execution.
type Options struct {
	Dir         string
	Overwrite   bool
	DryRun      bool
	Concurrency int // DownloadAll only; if <=0, DefaultConcurrency is used
}

// DefaultConcurrency bounds DownloadAll when Options.Concurrency is unset.
const DefaultConcurrency = 2

// Result is the outcome of one pipeline.
type Result struct {
	ID      model.DocumentID
	Handoff *model.Handoff
	Path    string // written file, or the would-be path on a dry run
	Skipped bool   // a pre-download script skipped the document
	Err     error
}
