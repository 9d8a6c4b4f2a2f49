package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"go.uber.org/multierr"

	"github.com/viant/flowtrace/trace"
)

var (
	rewriteTracer string
	rewriteWrite  bool
)

func init() {
	rewriteCmd.Flags().StringVar(&rewriteTracer, "tracer", trace.DefaultTracerName, "identifier the rewritten code uses for the tracer")
	rewriteCmd.Flags().BoolVar(&rewriteWrite, "write", false, "rewrite files in place instead of printing to stdout")
}

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [flags] <file.go> [file...]",
	Short: "Instrument Go sources for execution tracing",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRewrite,
}

func runRewrite(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	fs := afs.New()
	ctx := cmd.Context()
	var errs error
	for _, location := range args {
		source, err := fs.DownloadWithURL(ctx, location)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %v: %w", location, err))
			continue
		}
		rewritten, err := trace.RewriteSource(string(source), location, trace.WithTracerName(rewriteTracer))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if rewriteWrite {
			if err := fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader([]byte(rewritten))); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("write %v: %w", location, err))
			}
			continue
		}
		fmt.Fprint(cmd.OutOrStdout(), rewritten)
	}
	return errs
}
