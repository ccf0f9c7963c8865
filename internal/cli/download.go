package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BaeKey/smartedu/internal/logger"
	"github.com/BaeKey/smartedu/pkg/errors"
	"github.com/BaeKey/smartedu/pkg/model"
	"github.com/BaeKey/smartedu/pkg/orchestrator"
)

type downloadFlags struct {
	outputDir         string
	format            string
	force             bool
	dryRun            bool
	concurrency       int
	requireCredential bool
}

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	var flags downloadFlags

	cmd := &cobra.Command{
		Use:   "download ID|URL...",
		Short: "Download textbooks",
		Long: `Download one or more textbooks by document ID or by detail page URL.
The metadata is looked up on the configured mirrors in order, the artifact of
the requested format is selected and the transfer is signed with the login
token found in the credential store.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd.Context(), args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "d", "", "Directory to save files in (defaults to config)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Artifact format to download (defaults to config)")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite files that already exist")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Resolve and sign but do not download")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "Number of documents downloaded at once (0=config)")
	cmd.Flags().BoolVar(&flags.requireCredential, "require-credential", false, "Fail before downloading when no login token is found")

	return cmd
}

func parseIDs(args []string) ([]model.DocumentID, error) {
	ids := make([]model.DocumentID, 0, len(args))
	seen := make(map[model.DocumentID]bool, len(args))
	for _, arg := range args {
		id, err := model.ParseDocumentID(arg, model.DefaultIDParam)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", arg, err)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func runDownload(ctx context.Context, args []string, flags downloadFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ids, err := parseIDs(args)
	if err != nil {
		return fmt.Errorf("%s: %w", errors.Message(err), err)
	}

	if flags.format != "" {
		cfg.Settings.TargetFormat = flags.format
	}
	if flags.requireCredential {
		cfg.Settings.RequireCredential = true
	}
	opts := orchestrator.Options{
		Dir:         cfg.Settings.OutputDir,
		Overwrite:   flags.force,
		DryRun:      flags.dryRun,
		Concurrency: cfg.Settings.MaxConcurrent,
	}
	if flags.outputDir != "" {
		opts.Dir = flags.outputDir
	}
	if flags.concurrency > 0 {
		opts.Concurrency = flags.concurrency
	}

	hooks := orchestrator.Hooks{OnEvent: func(e orchestrator.Event) {
		if e.Phase == orchestrator.PhaseError {
			return
		}
		logger.Info(e.Phase, logger.Fields{"id": e.ID, "detail": e.Msg})
	}}
	orch, err := loadOrchestrator(cfg, hooks)
	if err != nil {
		return err
	}

	results, batchErr := orch.DownloadAll(ctx, ids, opts)
	if err := printResults(jsonOutput(cfg), results, flags.dryRun); err != nil {
		return err
	}
	if batchErr == nil {
		return nil
	}

	for _, r := range results {
		if r.Err != nil {
			logger.Error(errors.Message(r.Err), logger.Fields{"id": r.ID.String(), "error": r.Err.Error()})
		}
	}
	if len(results) == 1 {
		return fmt.Errorf("%s", errors.Message(batchErr))
	}
	return fmt.Errorf("%d of %d downloads failed", countFailed(results), len(results))
}

func countFailed(results []orchestrator.Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

type resultView struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Path    string `json:"path,omitempty"`
	URL     string `json:"url,omitempty"`
	Mirror  string `json:"mirror,omitempty"`
	Signed  bool   `json:"signed"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

func toView(r orchestrator.Result) resultView {
	v := resultView{ID: r.ID.String(), Path: r.Path, Skipped: r.Skipped}
	if r.Handoff != nil {
		v.Title = r.Handoff.Title
		v.URL = r.Handoff.Request.URL
		v.Mirror = r.Handoff.Mirror
		v.Signed = r.Handoff.Request.Authenticated()
	}
	if r.Err != nil {
		v.Error = errors.Message(r.Err)
	}
	return v
}

func printResults(asJSON bool, results []orchestrator.Result, dryRun bool) error {
	views := make([]resultView, 0, len(results))
	for _, r := range results {
		views = append(views, toView(r))
	}
	if asJSON {
		return printJSON(views)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	if dryRun {
		_, _ = fmt.Fprintln(tw, "ID\tFILE\tSIGNED\tURL")
	} else {
		_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tPATH")
	}
	for _, v := range views {
		switch {
		case v.Error != "":
			_, _ = fmt.Fprintf(tw, "%s\tfailed\t%s\n", v.ID, v.Error)
		case v.Skipped:
			_, _ = fmt.Fprintf(tw, "%s\tskipped\t\n", v.ID)
		case dryRun:
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", v.ID, v.Path, v.Signed, v.URL)
		default:
			_, _ = fmt.Fprintf(tw, "%s\tsaved\t%s\n", v.ID, v.Path)
		}
	}
	return tw.Flush()
}
