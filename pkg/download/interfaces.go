package download

//go:generate mockgen -destination=./mocks/download.go . Manager

import (
	"context"

	"github.com/BaeKey/smartedu/pkg/auth"
)

// Manager is the transfer collaborator: it receives a hand-off and writes the
// payload to disk.
type Manager interface {
	// Fetch downloads a single item to opts.Dir and returns the absolute local
	// file path. The path differs from Item.Filename when that name already
	// belongs to another document.
	Fetch(ctx context.Context, item Item, opts Options) (string, error)
}

// Item represents one artifact to download.
type Item struct {
	ID       string             // document id; owns the written file
	URL      string             // storage location of the artifact
	Filename string             // preferred file name inside Options.Dir
	Auth     auth.Authenticator // per-request auth such as the signed MAC header
}

// Options control where and how an artifact is written.
type Options struct {
	Dir       string // destination directory; relative paths are resolved against the working directory
	Overwrite bool   // download again instead of reusing the document's existing file
}
