package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/journal/internal/engine"
	"github.com/roach88/journal/internal/ir"
)

// OpOptions holds flags shared by the signed journal operations.
type OpOptions struct {
	*RootOptions
	Owner string
	Title string
	Body  string
	Bump  uint8
}

func (o *OpOptions) bump(cmd *cobra.Command) *uint8 {
	if !cmd.Flags().Changed("bump") {
		return nil
	}
	b := o.Bump
	return &b
}

func addOwnerFlag(cmd *cobra.Command, opts *OpOptions) {
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner namespace (base58, default the signer)")
	cmd.Flags().Uint8Var(&opts.Bump, "bump", 0, "expected address bump (default: derive the canonical one)")
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OpOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the owner's record counter",
		Long: `Create the owner's counter so records can be created. The signer pays
the counter's rent and must be the owner.

Exit codes:
  0 - Counter initialized
  1 - Operation rejected (e.g. ALREADY_INITIALIZED)
  2 - Command error`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, opts, ir.Instruction{Kind: ir.OpInitializeCounter})
		},
	}
	addOwnerFlag(cmd, opts)
	return cmd
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OpOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a journal record",
		Long: `Create a record at the owner's next sequence number.

Examples:
  journal create --title "Day 1" --body "Started the journal"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, opts, ir.Instruction{
				Kind:  ir.OpCreateRecord,
				Title: opts.Title,
				Body:  opts.Body,
			})
		},
	}
	addOwnerFlag(cmd, opts)
	cmd.Flags().StringVar(&opts.Title, "title", "", "record title (at most 50 bytes)")
	cmd.Flags().StringVar(&opts.Body, "body", "", "record body (at most 280 bytes)")
	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OpOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "update <sequence>",
		Short: "Replace a record's title and body",
		Long: `Replace the title and body of an existing record. Both are replaced;
the record's sequence never changes.

Examples:
  journal update 0 --title "Day 1" --body "Rewritten"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := parseSequence(args[0])
			if err != nil {
				return err
			}
			return submit(cmd, opts, ir.Instruction{
				Kind:     ir.OpUpdateRecord,
				Sequence: seq,
				Title:    opts.Title,
				Body:     opts.Body,
			})
		},
	}
	addOwnerFlag(cmd, opts)
	cmd.Flags().StringVar(&opts.Title, "title", "", "new title (at most 50 bytes)")
	cmd.Flags().StringVar(&opts.Body, "body", "", "new body (at most 280 bytes)")
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OpOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "delete <sequence>",
		Short: "Delete a record and reclaim its rent",
		Long: `Delete a record. Its lamports return to the signer and its sequence
number is never reused.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := parseSequence(args[0])
			if err != nil {
				return err
			}
			return submit(cmd, opts, ir.Instruction{Kind: ir.OpDeleteRecord, Sequence: seq})
		},
	}
	addOwnerFlag(cmd, opts)
	return cmd
}

// AirdropOptions holds flags for the airdrop command.
type AirdropOptions struct {
	*RootOptions
	To string
}

// NewAirdropCommand creates the airdrop command.
func NewAirdropCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AirdropOptions{RootOptions: rootOpts}
	cmd := &cobra.Command{
		Use:   "airdrop <lamports>",
		Short: "Credit lamports to an identity",
		Long: `Credit lamports to an identity's balance so it can pay rent. The
airdrop is logged like any other operation and reproduced by replay.

Examples:
  journal airdrop 100000000
  journal airdrop 5000000 --to 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			lamports, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid lamports", err)
			}
			if lamports == 0 {
				return NewExitError(ExitCommandError, "invalid lamports: must be positive")
			}
			to, err := ownerOrSigner(opts.To, opts.RootOptions)
			if err != nil {
				return err
			}
			return withSession(cmd, opts.RootOptions, func(ctx context.Context, s *session) error {
				rec, err := s.engine.Airdrop(ctx, to, lamports)
				return report(newFormatter(opts.RootOptions, cmd), rec, err)
			})
		},
	}
	cmd.Flags().StringVar(&opts.To, "to", "", "recipient (base58, default the signer)")
	return cmd
}

// submit signs in with the configured keypair and runs it.
func submit(cmd *cobra.Command, opts *OpOptions, in ir.Instruction) error {
	key, pk, err := signer(opts.RootOptions)
	if err != nil {
		return err
	}
	owner, err := resolveOwner(opts.Owner, pk)
	if err != nil {
		return err
	}
	in.Signer = pk
	in.Owner = owner
	in.Bump = opts.bump(cmd)

	return withSession(cmd, opts.RootOptions, func(ctx context.Context, s *session) error {
		rec, err := s.engine.Execute(ctx, key, in)
		return report(newFormatter(opts.RootOptions, cmd), rec, err)
	})
}

// report prints a receipt. A rejection exits 1; anything else that went
// wrong exits 2.
func report(f *OutputFormatter, rec engine.Receipt, err error) error {
	if err != nil && !engine.IsRejected(err) {
		return WrapExitError(ExitCommandError, "operation failed", err)
	}
	if err != nil {
		if outErr := f.Error(rec.Outcome, err.Error(), rec); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, fmt.Sprintf("%s rejected", rec.Kind), err)
	}

	return f.Success(rec, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s (seq %d, op %s)\n", rec.Kind, rec.Seq, rec.ID)
		for _, line := range rec.Logs {
			fmt.Fprintf(w, "  %s\n", line)
		}
		if r := rec.Result; r != nil {
			fmt.Fprintf(w, "  address: %s\n", r.Address)
			if r.Rent > 0 {
				fmt.Fprintf(w, "  rent: %s\n", formatLamports(r.Rent))
			}
			if r.Reclaimed > 0 {
				fmt.Fprintf(w, "  reclaimed: %s\n", formatLamports(r.Reclaimed))
			}
		}
		if rec.Kind == ir.OpAirdrop {
			fmt.Fprintf(w, "  balance: %s\n", formatLamports(rec.Balance))
		}
	})
}

func parseSequence(s string) (uint64, error) {
	seq, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, "invalid sequence", err)
	}
	return seq, nil
}
