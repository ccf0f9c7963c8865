package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/BaeKey/smartedu/internal/logger"
)

// NewMirrorsCmd creates the mirrors command.
func NewMirrorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirrors",
		Short: "Check the configured mirrors",
		Long:  "Send a HEAD request to every configured mirror, in probing order, and report which respond.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMirrors(cmd.Context())
		},
	}

	return cmd
}

type mirrorView struct {
	URL     string `json:"url"`
	OK      bool   `json:"ok"`
	Latency string `json:"latency"`
	Error   string `json:"error,omitempty"`
}

func runMirrors(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client := loadHTTPClient(cfg)
	views := make([]mirrorView, 0, len(cfg.Mirrors))
	healthy := 0
	for _, m := range cfg.Mirrors {
		start := time.Now()
		err := client.CheckMirrorHealth(ctx, m)
		v := mirrorView{URL: m, OK: err == nil, Latency: time.Since(start).Round(time.Millisecond).String()}
		if err != nil {
			v.Error = err.Error()
			logger.Debug("Mirror check failed", logger.Fields{"mirror": m, "error": err})
		} else {
			healthy++
		}
		views = append(views, v)
	}

	if jsonOutput(cfg) {
		if err := printJSON(views); err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
		_, _ = fmt.Fprintln(tw, "MIRROR\tSTATUS\tLATENCY")
		for _, v := range views {
			status := "ok"
			if !v.OK {
				status = "down: " + v.Error
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", v.URL, status, v.Latency)
		}
		_ = tw.Flush()
	}

	if healthy == 0 {
		return fmt.Errorf("none of the %d mirrors responded", len(cfg.Mirrors))
	}
	return nil
}
