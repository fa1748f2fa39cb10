// Command csvread loads delimited files with a declared schema, reports on
// them and converts them to other formats.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paveg/csvread"
	"github.com/paveg/csvread/internal/config"
	"github.com/paveg/csvread/internal/monitoring"
	"github.com/prometheus/client_golang/prometheus"
)

// settings maps each viper key to its flag name.
var settings = []struct{ key, flag string }{
	{"chunk_size", "chunk-size"},
	{"delimiter", "delimiter"},
	{"header", "header"},
	{"na_strings", "na"},
	{"string_na_policy", "string-na-policy"},
	{"verbose_logging", "verbose"},
	{"log_level", "log-level"},
	{"log_format", "log-format"},
	{"metrics_collection", "metrics"},
	{"metrics_textfile", "metrics-textfile"},
}

// app carries the state shared by all subcommands of one invocation.
type app struct {
	v        *viper.Viper
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *monitoring.Metrics
	logFile  io.Closer
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "csvread",
		Short:         "Load delimited text files into typed columns",
		Long:          `Load delimited text files into typed columns according to a declared schema, report NA and parse statistics, and convert the result to CSV, Parquet, Arrow IPC or JSON Lines.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
	}

	defaults := config.NewConfig()
	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (JSON or YAML)")
	flags.Int("chunk-size", defaults.ChunkSize, "Bytes read from the file at a time")
	flags.String("delimiter", defaults.Delimiter, "Field delimiter (one character)")
	flags.Bool("header", defaults.Header, "First line holds column names")
	flags.StringSlice("na", defaults.NAStrings, "Texts that mean a missing value")
	flags.String("string-na-policy", defaults.StringNAPolicy, "String NA policy: na-set or legacy-null")
	flags.BoolP("verbose", "v", false, "Log load progress at info level")
	flags.String("log-level", defaults.LogLevel, "Log level: debug, info, warn or error")
	flags.String("log-format", defaults.LogFormat, "Log format: text or json")
	flags.String("log-file", "", "Also write JSON logs to this file")
	flags.Bool("metrics", false, "Collect Prometheus load metrics")
	flags.String("metrics-textfile", "", "Write Prometheus metrics to this file on exit")

	root.AddCommand(
		newLoadCmd(a),
		newCountCmd(a),
		newConvertCmd(a),
		newInt64Cmd(),
		newVersionCmd(),
	)
	return root
}

// setup resolves the configuration: flags over CSVREAD_* environment over
// the config file over defaults.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.NewConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	a.v.SetEnvPrefix("CSVREAD")
	a.v.AutomaticEnv()
	a.v.SetDefault("chunk_size", cfg.ChunkSize)
	a.v.SetDefault("delimiter", cfg.Delimiter)
	a.v.SetDefault("header", cfg.Header)
	a.v.SetDefault("na_strings", cfg.NAStrings)
	a.v.SetDefault("string_na_policy", cfg.StringNAPolicy)
	a.v.SetDefault("verbose_logging", cfg.VerboseLogging)
	a.v.SetDefault("log_level", cfg.LogLevel)
	a.v.SetDefault("log_format", cfg.LogFormat)
	a.v.SetDefault("metrics_collection", cfg.MetricsCollection)
	a.v.SetDefault("metrics_textfile", cfg.MetricsTextfile)
	for _, s := range settings {
		if f := cmd.Flags().Lookup(s.flag); f != nil {
			if err := a.v.BindPFlag(s.key, f); err != nil {
				return fmt.Errorf("binding flag %s: %w", s.flag, err)
			}
		}
	}
	if err := a.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	config.SetGlobalConfig(cfg)

	logFile, _ := cmd.Flags().GetString("log-file")
	logger, closer, err := newLogger(cmd.ErrOrStderr(), cfg, logFile)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logFile = closer

	if cfg.MetricsCollection || cfg.MetricsTextfile != "" {
		a.registry = prometheus.NewRegistry()
		a.metrics = monitoring.NewMetrics(a.registry)
	}
	if cfg.MetricsCollection {
		monitoring.EnableGlobalMonitoring()
	} else {
		monitoring.SetGlobalCollector(nil)
	}
	return nil
}

func (a *app) teardown() error {
	if a.cfg.MetricsCollection {
		s := monitoring.DisableGlobalMonitoring()
		a.logger.Info("load summary",
			"loads", s.TotalOperations,
			"failed", s.FailedOperations,
			"rows", s.TotalRows,
			"na", s.TotalNA,
			"duration", s.TotalDuration,
		)
	}

	var err error
	if a.registry != nil && a.cfg.MetricsTextfile != "" {
		err = monitoring.WriteTextfile(a.registry, a.cfg.MetricsTextfile)
	}
	if a.logFile != nil {
		if cerr := a.logFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// loadOptions returns the options every load of this invocation uses.
func (a *app) loadOptions() []csvread.Option {
	opts := []csvread.Option{
		csvread.WithLogger(a.logger),
		csvread.WithChunkSize(a.cfg.ChunkSize),
	}
	if a.metrics != nil {
		opts = append(opts, csvread.WithMetrics(a.metrics))
	}
	return opts
}

// newLogger builds the console handler and, when logFile is set, fans out
// to a JSON handler on that file as well.
func newLogger(w io.Writer, cfg config.Config, logFile string) (*slog.Logger, io.Closer, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var console slog.Handler
	if cfg.LogFormat == config.LogFormatJSON {
		console = slog.NewJSONHandler(w, opts)
	} else {
		console = slog.NewTextHandler(w, opts)
	}
	if logFile == "" {
		return slog.New(console), nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	fileOpts := &slog.HandlerOptions{Level: slog.LevelDebug}
	return slog.New(slogmulti.Fanout(console, slog.NewJSONHandler(f, fileOpts))), f, nil
}
