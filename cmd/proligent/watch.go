package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jacoelho/proligent/internal/watch"
)

func (a *app) watchCommand() *cobra.Command {
	var scan bool
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Validate payloads as they are dropped into a folder",
		Long: `watch validates every *.xml file created or rewritten in dir and records its
fingerprint in the ledger. It runs until interrupted.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context(), args[0], scan)
		},
	}
	cmd.Flags().BoolVar(&scan, "scan-existing", false, "validate files already in dir on start")
	return cmd
}

func (a *app) watch(ctx context.Context, dir string, scan bool) error {
	v, err := a.validator()
	if err != nil {
		return err
	}
	l, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()

	w, err := watch.New(dir, v, watch.Options{
		Ledger:       l,
		Logger:       a.logger,
		Debounce:     a.cfg.Watch.Debounce,
		ScanExisting: scan,
	})
	if err != nil {
		return err
	}
	// Files pending at shutdown are still recorded.
	if err := w.Start(context.WithoutCancel(ctx)); err != nil {
		w.Stop()
		return err
	}
	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	var writeErr error
	failed := false
	for ev := range w.Events {
		if err := a.report(ev); err != nil && writeErr == nil {
			writeErr = err
		}
		if ev.Err != nil || !ev.Result.IsValid {
			failed = true
		}
	}
	switch {
	case writeErr != nil:
		return writeErr
	case failed:
		return errFailed
	default:
		return nil
	}
}

func (a *app) report(ev watch.Event) error {
	switch {
	case ev.Err != nil:
		return writef(a.stderr, "%s: ledger: %v\n", ev.File, ev.Err)
	case !ev.Result.IsValid:
		return writef(a.stderr, "%s fails to validate: %s\n", ev.File, ev.Result.Message)
	case ev.Replay:
		return writef(a.stdout, "%s validates (replayed %s)\n", ev.File, ev.Result.Fingerprint)
	default:
		return writef(a.stdout, "%s validates\n", ev.File)
	}
}
