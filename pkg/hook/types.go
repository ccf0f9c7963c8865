// Package hook runs user-provided Tengo scripts around each download.
package hook

// Type represents the type of hook.
type Type string

// Supported hook types.
const (
	// PreDownload runs after signing and before the transfer. The script may
	// assign fileName to rename the output or set skip to true.
	PreDownload Type = "pre-download"
	// PostDownload runs once the file is written; path holds its location.
	PostDownload Type = "post-download"
)

// Context contains information passed to hooks.
type Context struct {
	DocumentID string
	Title      string
	FileName   string
	URL        string
	Mirror     string
	Path       string
	Vars       map[string]interface{}
}

// Result is what a script hands back.
type Result struct {
	FileName string
	Skip     bool
}

// Runner executes hooks.
type Runner interface {
	Execute(hookType Type, ctx Context) (Result, error)
	HasScript(hookType Type) bool
}
