package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/journal/internal/engine"
)

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the operation log and verify determinism",
		Long: `Re-execute every logged operation against an empty in-memory ledger
using the recorded ids, timestamps and signatures, then compare each
outcome and the final account set with the database.

Exit codes:
  0 - Replay reproduced the database exactly
  1 - Divergence detected
  2 - Command error (database not found, etc.)

Examples:
  journal replay --db ./journal.db
  journal replay --db ./journal.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, cmd)
		},
	}
	return cmd
}

func runReplay(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)
	return withSession(cmd, opts, func(ctx context.Context, s *session) error {
		report, err := s.engine.Replay(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "replay failed", err)
		}

		if !report.Identical() {
			if err := f.Error("E_DETERMINISM", "determinism verification failed", report); err != nil {
				return err
			}
			if opts.Format != "json" {
				printDivergences(f.Writer, report)
			}
			return NewExitError(ExitFailure, "determinism verification failed")
		}

		return f.Success(report, func(w io.Writer) {
			fmt.Fprintf(w, "Replay Summary: %d operation(s), %d committed, %d rejected, %d account(s)\n",
				report.Operations, report.Committed, report.Rejected, report.Accounts)
			fmt.Fprintln(w, "✓ Replay verified deterministic")
		})
	})
}

func printDivergences(w io.Writer, report engine.ReplayReport) {
	for _, d := range report.Divergences {
		switch {
		case d.Address != "":
			fmt.Fprintf(w, "  ✗ account %s: recorded %s, replayed %s\n", d.Address, d.Recorded, d.Replayed)
		default:
			fmt.Fprintf(w, "  ✗ seq %d (%s): recorded %s, replayed %s\n", d.Seq, d.OpID, d.Recorded, d.Replayed)
		}
	}
}
