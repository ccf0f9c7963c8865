package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BaeKey/smartedu/pkg/errors"
	"github.com/BaeKey/smartedu/pkg/resolver"
)

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "resolve ID|URL",
		Short: "Look up a textbook without downloading it",
		Long:  "Probe the mirrors for the document metadata and show the selected artifact.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Artifact format to select (defaults to config)")

	return cmd
}

type resolveView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Format   string `json:"format"`
	URL      string `json:"url"`
	Mirror   string `json:"mirror"`
	Attempts int    `json:"attempts"`
}

func runResolve(ctx context.Context, arg, format string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if format == "" {
		format = cfg.Settings.TargetFormat
	}

	ids, err := parseIDs([]string{arg})
	if err != nil {
		return fmt.Errorf("%s: %w", errors.Message(err), err)
	}

	res, err := loadResolver(cfg).Resolve(ctx, ids[0])
	if err != nil {
		return fmt.Errorf("%s: %w", errors.Message(err), err)
	}
	desc, err := resolver.SelectArtifact(res.Metadata, format, cfg.Settings.DefaultTitle)
	if err != nil {
		return fmt.Errorf("%s: %w", errors.Message(err), err)
	}

	view := resolveView{
		ID:       ids[0].String(),
		Title:    desc.Title,
		Format:   desc.Format,
		URL:      desc.URL,
		Mirror:   res.Mirror,
		Attempts: res.Attempts,
	}
	if jsonOutput(cfg) {
		return printJSON(view)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintf(tw, "ID\t%s\n", view.ID)
	_, _ = fmt.Fprintf(tw, "Title\t%s\n", view.Title)
	_, _ = fmt.Fprintf(tw, "Format\t%s\n", view.Format)
	_, _ = fmt.Fprintf(tw, "URL\t%s\n", view.URL)
	_, _ = fmt.Fprintf(tw, "Mirror\t%s (attempt %d)\n", view.Mirror, view.Attempts)
	return tw.Flush()
}
