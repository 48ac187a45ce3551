package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/journal/internal/ir"
	"github.com/roach88/journal/internal/journal"
	"github.com/roach88/journal/internal/ledger"
)

// QueryOptions holds flags for read-only commands.
type QueryOptions struct {
	*RootOptions
	Owner string
}

// CounterView is the show command's output without a sequence.
type CounterView struct {
	Address ir.Pubkey       `json:"address"`
	Counter journal.Counter `json:"counter"`
	Balance uint64          `json:"balance"` // Owner's plain balance
}

// RecordView is one record with its address.
type RecordView struct {
	Address ir.Pubkey      `json:"address"`
	Record  journal.Record `json:"record"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "show [sequence]",
		Short: "Show the owner's counter, or one record",
		Long: `Without a sequence, show the owner's counter and balance. With one,
show that record.

Exit codes:
  0 - Found
  1 - Not found (NOT_FOUND, COUNTER_NOT_INITIALIZED)
  2 - Command error`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := ownerOrSigner(opts.Owner, opts.RootOptions)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return showCounter(cmd, opts, owner)
			}
			seq, err := parseSequence(args[0])
			if err != nil {
				return err
			}
			return showRecord(cmd, opts, owner, seq)
		},
	}
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner namespace (base58, default the signer)")
	return cmd
}

func showCounter(cmd *cobra.Command, opts *QueryOptions, owner ir.Pubkey) error {
	f := newFormatter(opts.RootOptions, cmd)
	return withSession(cmd, opts.RootOptions, func(ctx context.Context, s *session) error {
		var view CounterView
		err := s.ledger.View(ctx, func(tx ledger.Tx) error {
			var err error
			view.Counter, view.Address, err = s.program.LocateCounter(ctx, tx, owner)
			if err != nil {
				return err
			}
			view.Balance, err = ledger.Balance(ctx, tx, owner)
			return err
		})
		if err != nil {
			return queryError(f, err)
		}
		return f.Success(view, func(w io.Writer) {
			fmt.Fprintf(w, "owner:         %s\n", view.Counter.Owner)
			fmt.Fprintf(w, "counter:       %s\n", view.Address)
			fmt.Fprintf(w, "next sequence: %d\n", view.Counter.NextSequence)
			fmt.Fprintf(w, "balance:       %s\n", formatLamports(view.Balance))
		})
	})
}

func showRecord(cmd *cobra.Command, opts *QueryOptions, owner ir.Pubkey, seq uint64) error {
	f := newFormatter(opts.RootOptions, cmd)
	return withSession(cmd, opts.RootOptions, func(ctx context.Context, s *session) error {
		var view RecordView
		err := s.ledger.View(ctx, func(tx ledger.Tx) error {
			stored, err := s.program.LocateRecord(ctx, tx, owner, seq)
			if err != nil {
				return err
			}
			view = RecordView{Address: stored.Address, Record: stored.Record}
			return nil
		})
		if err != nil {
			return queryError(f, err)
		}
		return f.Success(view, func(w io.Writer) {
			printRecord(w, view)
		})
	})
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List the owner's live records in sequence order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := ownerOrSigner(opts.Owner, opts.RootOptions)
			if err != nil {
				return err
			}
			f := newFormatter(opts.RootOptions, cmd)
			return withSession(cmd, opts.RootOptions, func(ctx context.Context, s *session) error {
				var views []RecordView
				err := s.ledger.View(ctx, func(tx ledger.Tx) error {
					stored, err := s.program.ListStoredRecords(ctx, tx, owner)
					if err != nil {
						return err
					}
					views = make([]RecordView, 0, len(stored))
					for _, sr := range stored {
						views = append(views, RecordView{Address: sr.Address, Record: sr.Record})
					}
					return nil
				})
				if err != nil {
					return queryError(f, err)
				}
				return f.Success(views, func(w io.Writer) {
					if len(views) == 0 {
						fmt.Fprintln(w, "No records.")
						return
					}
					for i, v := range views {
						if i > 0 {
							fmt.Fprintln(w)
						}
						printRecord(w, v)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner namespace (base58, default the signer)")
	return cmd
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}
	return &cobra.Command{
		Use:           "history",
		Short:         "Print the operation log",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts.RootOptions, cmd)
			return withSession(cmd, opts.RootOptions, func(ctx context.Context, s *session) error {
				ops, err := s.engine.History(ctx)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read history", err)
				}
				if ops == nil {
					ops = []ir.Operation{}
				}
				return f.Success(ops, func(w io.Writer) {
					if len(ops) == 0 {
						fmt.Fprintln(w, "No operations.")
						return
					}
					for _, op := range ops {
						fmt.Fprintf(w, "%6d  %s  %-18s  %-24s  %s\n",
							op.Seq, time.Unix(op.ExecutedAt, 0).UTC().Format(time.RFC3339),
							op.Instruction.Kind, op.Outcome, op.ID)
					}
				})
			})
		},
	}
}

func printRecord(w io.Writer, v RecordView) {
	fmt.Fprintf(w, "#%d %s\n", v.Record.Sequence, v.Record.Title)
	fmt.Fprintf(w, "  %s\n", v.Record.Body)
	fmt.Fprintf(w, "  updated: %s\n", time.Unix(v.Record.UpdatedAt, 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "  address: %s\n", v.Address)
}

// queryError reports program errors as exit 1 and the rest as exit 2.
func queryError(f *OutputFormatter, err error) error {
	code := journal.CodeOf(err)
	if code == "" {
		return WrapExitError(ExitCommandError, "query failed", err)
	}
	if outErr := f.Error(string(code), err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, string(code), err)
}
