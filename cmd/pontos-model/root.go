package main

import (
	"io"
	"log/slog"
	"time"

	"github.com/armon/go-metrics"
	"github.com/spf13/cobra"

	"github.com/pontos-detect/pontos/config"
	"github.com/pontos-detect/pontos/telemetry"
)

const rootHelp = `
Manage the vessel detection model used by pontos.

Configuration is read from $HOME/.pontos.ini (or --config), then from
PONTOS_* environment variables, then from command-line flags.
`

// metricsInterval is the aggregation window of the --metrics sink.
const metricsInterval = 10 * time.Second

type rootOptions struct {
	configFile string
	verbose    bool
	metrics    bool

	lookupEnv func(string) (string, bool)
	errOut    io.Writer
	sink      *metrics.InmemSink
}

func newRootCmd(out, errOut io.Writer, lookupEnv func(string) (string, bool)) *cobra.Command {
	o := &rootOptions{lookupEnv: lookupEnv, errOut: errOut}

	cmd := &cobra.Command{
		Use:           "pontos-model",
		Short:         "download and verify the pontos detection model",
		Long:          rootHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !o.metrics {
				return nil
			}
			sink, err := telemetry.Setup("pontos", metricsInterval)
			if err != nil {
				return err
			}
			o.sink = sink
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if o.sink == nil {
				return nil
			}
			return telemetry.Dump(o.errOut, o.sink)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	f := cmd.PersistentFlags()
	f.StringVar(&o.configFile, "config", "", "configuration .ini file (default $HOME/"+config.DefaultFile+")")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")
	f.BoolVar(&o.metrics, "metrics", false, "print collected metrics to stderr on exit")

	cmd.AddCommand(
		newFetchCmd(o, out),
		newVerifyCmd(o, out),
		newDigestCmd(out),
	)

	return cmd
}

// load builds the configuration and a logger honouring its level.
func (o *rootOptions) load(overrides ...func(*config.Config)) (config.Config, *slog.Logger, error) {
	opts := []config.Option{config.WithLookupEnv(o.lookupEnv)}
	if o.configFile != "" {
		opts = append(opts, config.WithFile(o.configFile))
	}
	for _, fn := range overrides {
		opts = append(opts, config.WithOverride(fn))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return config.Config{}, nil, err
	}

	level := cfg.SlogLevel()
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(o.errOut, &slog.HandlerOptions{Level: level}))
	logger.Debug("configuration loaded", "config", cfg.String())

	return cfg, logger, nil
}
