package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Count keystroke records from a JSON lines stream",
	Long: `Read capture records (one JSON object per line) from stdin or a file and count
them in order. Records for non-counted key classes are skipped; malformed
records are reported and do not stop the stream.`,
	Example: `  keylogger-agent | typesteps ingest
  typesteps ingest --file ~/.config/typesteps/spool/keystrokes.jsonl`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "Read records from this file instead of stdin")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	var r io.Reader = cmd.InOrStdin()
	if ingestFile != "" {
		f, err := os.Open(ingestFile)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", ingestFile, err)
		}
		defer f.Close()
		r = f
	}

	mgr, err := openManager()
	if err != nil {
		return err
	}
	defer mgr.Close()

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := mgr.IngestStream(ctx, r)
	fmt.Fprintf(cmd.OutOrStdout(), "Counted %s keystrokes (%s failed)\n",
		humanize.Comma(int64(report.Ingested)), humanize.Comma(int64(report.Failed)))
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return nil
}

// contextOrBackground keeps commands usable when executed without a context.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
