package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jacoelho/proligent/export"
	"github.com/jacoelho/proligent/internal/ledger"
	"github.com/jacoelho/proligent/internal/manifest"
	"github.com/jacoelho/proligent/internal/sink"
)

type generateOptions struct {
	name     string
	validate bool
}

func (a *app) generateCommand() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate <manifest>",
		Short: "Build a payload from a YAML, TOML or JSON manifest",
		Long: `generate builds a Datawarehouse payload from a manifest and writes it to the
destination directory together with copies of the referenced documents.
The payload is validated and its fingerprint recorded in the ledger. When a
sink is configured the written files are uploaded to it.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().StringP("out", "o", "", "destination directory (default destination_dir)")
	cmd.Flags().StringVar(&opts.name, "name", "", "payload file name (default Proligent_<uuid>.xml)")
	cmd.Flags().BoolVar(&opts.validate, "validate", true, "validate the written payload")
	return cmd
}

func (a *app) generate(ctx context.Context, path string, opts generateOptions) error {
	loc, err := a.cfg.Location()
	if err != nil {
		return usageError{err}
	}
	m, err := manifest.Load(a.fs, path)
	if err != nil {
		return err
	}
	dw, buildOpts, err := manifest.Build(m, loc)
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}
	payload, err := export.New(a.fs, a.cfg.DestinationDir, buildOpts).Export(dw, opts.name)
	if err != nil {
		return err
	}
	a.logger.Info("payload written", "path", payload.Path, "documents", len(payload.Documents))

	if opts.validate {
		if err := a.checkPayload(ctx, payload.Path); err != nil {
			return err
		}
	}
	if err := a.publish(ctx, payload); err != nil {
		return err
	}
	return writeln(a.stdout, payload.Path)
}

// checkPayload validates the written payload and records its fingerprint.
func (a *app) checkPayload(ctx context.Context, path string) error {
	v, err := a.validator()
	if err != nil {
		return err
	}
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return fmt.Errorf("read payload %s: %w", path, err)
	}
	res := v.ValidateBytesSafe(data, path)
	if !res.IsValid {
		if err := writeln(a.stderr, res.Message); err != nil {
			return err
		}
		if err := writef(a.stderr, "%s fails to validate\n", path); err != nil {
			return err
		}
		return errFailed
	}

	l, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer l.Close()
	fresh, err := l.Record(ctx, ledger.Entry{Fingerprint: res.Fingerprint, Source: path, Valid: true})
	if err != nil {
		return err
	}
	if !fresh {
		a.logger.Warn("fingerprint already recorded", "fingerprint", res.Fingerprint, "path", path)
	}
	return nil
}

func (a *app) publish(ctx context.Context, payload export.Payload) error {
	s, err := a.openSink(ctx)
	if err != nil || s == nil {
		return err
	}
	published, skipped, err := sink.Publish(ctx, s, a.fs, a.cfg.Sink.Prefix, payload.Files()...)
	if err != nil {
		return err
	}
	for _, info := range published {
		a.logger.Info("published", "driver", s.Driver(), "key", info.Key, "size", info.Size)
	}
	for _, key := range skipped {
		a.logger.Warn("already published", "driver", s.Driver(), "key", key)
	}
	return nil
}
