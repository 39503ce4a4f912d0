package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"routecleaner/internal/config"
	"routecleaner/internal/infrastructure"
	"routecleaner/internal/services"
	"routecleaner/pkg/contracts"
)

// rootOptions holds the global flags and what PersistentPreRunE derives
// from them
type rootOptions struct {
	configPath string
	logLevel   string

	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "routecleaner",
		Short: "Turn delivery exports into route sheets",
		Long: `routecleaner cleans delivery exports for the dispatch office.

Each run sorts the records, keeps one record per delivery (preferring the
one with a note in the priority column), drops records of unknown routes
and writes the rest grouped by route, each group followed by blank
separator rows.

Configuration is read from --config, $ROUTECLEANER_CONFIG or
routecleaner.yaml, then overridden by ROUTECLEANER_* variables.`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup()
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newCleanCmd(opts),
		newBatchCmd(opts),
		newServeCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

// setup loads the configuration and builds the logger
func (o *rootOptions) setup() error {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
		if err := cfg.Validate(); err != nil {
			return &usageError{err: fmt.Errorf("invalid --log-level %q", o.logLevel)}
		}
	}
	o.cfg = cfg

	if strings.EqualFold(cfg.Logging.Output, "console") {
		o.logger = infrastructure.NewLogger(o.stderr, cfg.Logging.Level)
		return nil
	}
	o.logger, err = infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}
	return nil
}

// cleaningService builds the service with telemetry from the configuration.
// The returned function flushes telemetry.
func (o *rootOptions) cleaningService() (*services.CleaningService, func(), error) {
	providers, err := infrastructure.InitializeOTel(o.cfg.Telemetry, o.logger)
	if err != nil {
		return nil, nil, err
	}
	shutdown := func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			o.logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}

	metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
	if err != nil {
		shutdown()
		return nil, nil, err
	}

	svc, err := services.NewCleaningService(o.cfg,
		services.WithLogger(o.logger),
		services.WithTracer(providers.Tracer),
		services.WithMetrics(metrics))
	if err != nil {
		shutdown()
		return nil, nil, err
	}
	return svc, shutdown, nil
}
