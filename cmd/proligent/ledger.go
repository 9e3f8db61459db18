package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jacoelho/proligent/internal/ledger"
)

func (a *app) ledgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect recorded payload fingerprints",
		Args:  exactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			return usageError{errors.New("ledger requires a subcommand")}
		},
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded fingerprints, oldest first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd.Context(), func(l ledger.Ledger) error {
				entries, err := l.List(cmd.Context())
				if err != nil {
					return err
				}
				return a.printEntries(entries, asJSON)
			})
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print one JSON entry per line")

	lookup := &cobra.Command{
		Use:   "lookup <fingerprint>",
		Short: "Show when a fingerprint was first recorded",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd.Context(), func(l ledger.Ledger) error {
				e, err := l.Lookup(cmd.Context(), args[0])
				if errors.Is(err, ledger.ErrNotFound) {
					if err := writef(a.stderr, "%s not recorded\n", ledger.Canonical(args[0])); err != nil {
						return err
					}
					return errFailed
				}
				if err != nil {
					return err
				}
				return a.printEntries([]ledger.Entry{e}, asJSON)
			})
		},
	}
	lookup.Flags().BoolVar(&asJSON, "json", false, "print the entry as JSON")

	cmd.AddCommand(list, lookup)
	return cmd
}

func (a *app) withLedger(ctx context.Context, fn func(ledger.Ledger) error) error {
	l, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	err = fn(l)
	if closeErr := l.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("close ledger: %w", closeErr)
	}
	return err
}

func (a *app) printEntries(entries []ledger.Entry, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(a.stdout)
		for _, e := range entries {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "FINGERPRINT\tVALID\tRECORDED AT\tSOURCE"); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writef(tw, "%s\t%t\t%s\t%s\n", e.Fingerprint, e.Valid, e.RecordedAt.Format(time.RFC3339), e.Source); err != nil {
			return err
		}
	}
	return tw.Flush()
}
