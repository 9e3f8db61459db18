package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jacoelho/proligent/internal/config"
	"github.com/jacoelho/proligent/internal/ledger"
	ledgermemory "github.com/jacoelho/proligent/internal/ledger/memory"
	"github.com/jacoelho/proligent/internal/ledger/postgres"
	"github.com/jacoelho/proligent/internal/ledger/sqlite"
	"github.com/jacoelho/proligent/internal/logging"
	"github.com/jacoelho/proligent/internal/sink"
	sinkfs "github.com/jacoelho/proligent/internal/sink/fs"
	sinkmemory "github.com/jacoelho/proligent/internal/sink/memory"
	sinks3 "github.com/jacoelho/proligent/internal/sink/s3"
	"github.com/jacoelho/proligent/validator"
)

// app carries the per-invocation state shared by subcommands.
type app struct {
	stdout io.Writer
	stderr io.Writer
	fs     afero.Fs
	logger *slog.Logger
	cfg    config.Config
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr, fs: afero.NewOsFs(), logger: logging.Discard()}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "proligent",
		Short:         "Generate and validate Proligent Datawarehouse payloads",
		Long:          "proligent builds Datawarehouse XML payloads from manifests, validates them against the embedded schema and watches acquisition folders.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default .proligent.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("time-zone", "", "IANA time zone of written timestamps (default Local)")
	flags.String("schema-dir", "", "directory of XSD fragments (default embedded schema)")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return a.loadConfig(cmd)
	}

	root.AddCommand(
		a.generateCommand(),
		a.validateCommand(),
		a.watchCommand(),
		a.uniqueNameCommand(),
		a.ledgerCommand(),
	)
	return root
}

// loadConfig loads configuration: defaults, then the config file, then PROLIGENT_*
// env vars, then flags.
func (a *app) loadConfig(cmd *cobra.Command) error {
	configFile, _ := cmd.Flags().GetString("config")
	v, err := config.NewViper(a.fs, configFile)
	if err != nil {
		return err
	}
	bindings := map[string]string{
		"log.level":       "log-level",
		"log.format":      "log-format",
		"time_zone":       "time-zone",
		"schema_dir":      "schema-dir",
		"destination_dir": "out",
	}
	for key, flag := range bindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	logger, err := logging.New(a.stderr, logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return usageError{err}
	}
	a.cfg, a.logger = cfg, logger
	a.logger.Debug("config loaded", "file", v.ConfigFileUsed(), "time_zone", cfg.TimeZone)
	return nil
}

func (a *app) validator() (*validator.Validator, error) {
	if a.cfg.SchemaDir != "" {
		return validator.NewDir(a.cfg.SchemaDir)
	}
	return validator.NewDefault()
}

func (a *app) openLedger(ctx context.Context) (ledger.Ledger, error) {
	switch ledger.Driver(a.cfg.Ledger.Driver) {
	case "", ledger.DriverMemory:
		return ledgermemory.New(), nil
	case ledger.DriverSQLite:
		return sqlite.Open(ctx, a.cfg.Ledger.DSN)
	case ledger.DriverPostgres:
		return postgres.Open(ctx, a.cfg.Ledger.DSN)
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", a.cfg.Ledger.Driver)
	}
}

// openSink returns nil when no sink is configured.
func (a *app) openSink(ctx context.Context) (sink.Sink, error) {
	c := a.cfg.Sink
	switch sink.Driver(c.Driver) {
	case "":
		return nil, nil
	case sink.DriverFilesystem:
		return sinkfs.New(a.fs, c.Dir)
	case sink.DriverS3:
		return sinks3.New(ctx, sinks3.Config{
			Region:    c.Region,
			Bucket:    c.Bucket,
			Endpoint:  c.Endpoint,
			PathStyle: c.PathStyle,
		})
	case sink.DriverMemory:
		return sinkmemory.New(), nil
	default:
		return nil, fmt.Errorf("unknown sink driver %q", c.Driver)
	}
}

// exactArgs reports arity mistakes as usage errors.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}
