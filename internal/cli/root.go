// Package cli wires the nebula commands: flags and NEBULA_* variables are
// bound with viper, the engine configuration is loaded and validated, and the
// chosen host is started.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/internal/observability"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/internal/terminal"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/display"
	"github.com/lao-tseu-is-alive/go-nebula-clouds/pkg/nebula"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// Options are the command line settings after flags, environment and
// defaults have been merged.
type Options struct {
	Config     string                  `mapstructure:"config"`
	Schema     string                  `mapstructure:"schema"`
	Seed       int64                   `mapstructure:"seed"`
	Fullscreen bool                    `mapstructure:"fullscreen"`
	Log        observability.LogConfig `mapstructure:"log"`
}

// Runners start the hosts. Tests replace them to avoid opening a window or
// taking over the terminal.
type Runners struct {
	Window   func(e *nebula.Engine, log *zap.Logger, fullscreen bool) error
	Terminal func(ctx context.Context, e *nebula.Engine, log *zap.Logger) error
}

func DefaultRunners() Runners {
	return Runners{
		Window:   display.Run,
		Terminal: runTerminal,
	}
}

func runTerminal(ctx context.Context, e *nebula.Engine, log *zap.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialise terminal: %w", err)
	}
	return terminal.NewHost(screen, e, log).Run(ctx)
}

// NewRootCmd builds the nebula command tree around its own viper instance.
func NewRootCmd(r Runners) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "nebula",
		Short:         "Ambient nebula clouds that drift, spin and answer to gestures",
		Long:          "nebula renders slowly living clouds of translucent polygons.\nWithout a subcommand it opens the window host.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWindow(cmd, v, r)
		},
	}

	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "engine configuration file (.json, .yaml or .yml)")
	pf.String("schema", "configs/nebula.schema.json", "JSON schema the configuration file is validated against")
	pf.Int64("seed", 0, "random seed, 0 keeps the configured one")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-format", "console", "console log encoding: console or json")
	pf.String("log-file", "", "rotating JSON log file")
	pf.Bool("fullscreen", false, "start the window in full screen")
	bind(v, pf.Lookup("config"), "config")
	bind(v, pf.Lookup("schema"), "schema")
	bind(v, pf.Lookup("seed"), "seed")
	bind(v, pf.Lookup("log-level"), "log.level")
	bind(v, pf.Lookup("log-format"), "log.format")
	bind(v, pf.Lookup("log-file"), "log.file")
	bind(v, pf.Lookup("fullscreen"), "fullscreen")

	d := observability.DefaultLogConfig()
	v.SetDefault("log.max_size_mb", d.MaxSizeMB)
	v.SetDefault("log.max_backups", d.MaxBackups)
	v.SetDefault("log.max_age_days", d.MaxAgeDays)
	v.SetDefault("log.compress", d.Compress)

	v.SetEnvPrefix("NEBULA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	root.AddCommand(newWindowCmd(v, r), newTermCmd(v, r), newConfigCmd(v))
	return root
}

// bind panics on a missing flag, which only a typo in this file can cause.
func bind(v *viper.Viper, f *pflag.Flag, key string) {
	if err := v.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("bind %s: %v", key, err))
	}
}

func newWindowCmd(v *viper.Viper, r Runners) *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Open the nebula in a window (default)",
		Long:  "Open the nebula in a window.\nTab shows the tuning panel, n reseeds, g toggles grayscale, s spawns at the cursor, Esc quits.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWindow(cmd, v, r)
		},
	}
}

func newTermCmd(v *viper.Viper, r Runners) *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Draw the nebula in the terminal with half-block characters",
		Long:  "Draw the nebula in the terminal.\nDrag the mouse to push the clouds, n reseeds, g toggles grayscale, s spawns at the pointer, q quits.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// the terminal belongs to the renderer, logs go to --log-file only
			opts, e, log, err := setup(cmd, v, false)
			if err != nil {
				return err
			}
			defer func() { _ = observability.Sync(log) }()
			log.Info("starting terminal host", zap.Int64("seed", e.Seed()), zap.String("config", opts.Config))
			return r.Terminal(cmd.Context(), e, log)
		},
	}
}

func newConfigCmd(v *viper.Viper) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Validate the configuration and print the effective values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := options(v)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			b, err := encodeConfig(cfg, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func runWindow(cmd *cobra.Command, v *viper.Viper, r Runners) error {
	opts, e, log, err := setup(cmd, v, true)
	if err != nil {
		return err
	}
	defer func() { _ = observability.Sync(log) }()
	log.Info("starting window host",
		zap.String("version", Version),
		zap.Int64("seed", e.Seed()),
		zap.Bool("fullscreen", opts.Fullscreen))
	return r.Window(e, log, opts.Fullscreen)
}

func options(v *viper.Viper) (Options, error) {
	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return opts, fmt.Errorf("failed to read options: %w", err)
	}
	return opts, nil
}

// setup merges the options, builds the logger and the engine.
func setup(cmd *cobra.Command, v *viper.Viper, console bool) (Options, *nebula.Engine, *zap.Logger, error) {
	opts, err := options(v)
	if err != nil {
		return opts, nil, nil, err
	}
	opts.Log.Console = console
	log, err := observability.NewLogger(opts.Log, zapcore.AddSync(cmd.OutOrStdout()))
	if err != nil {
		return opts, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return opts, nil, nil, err
	}
	e, err := nebula.NewEngine(cfg, nebula.WithLogger(log))
	if err != nil {
		return opts, nil, nil, err
	}
	return opts, e, log, nil
}

func loadConfig(opts Options) (*nebula.Config, error) {
	cfg := nebula.DefaultConfig()
	if opts.Config != "" {
		var err error
		if cfg, err = nebula.LoadConfig(opts.Config, opts.Schema); err != nil {
			return nil, fmt.Errorf("config %s: %w", opts.Config, err)
		}
	}
	if opts.Seed != 0 {
		cfg.Seed = opts.Seed
	}
	return cfg, nil
}

// encodeConfig prints the configuration with its file keys.
func encodeConfig(cfg *nebula.Config, format string) ([]byte, error) {
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "json":
		return append(b, '\n'), nil
	case "yaml", "yml":
		var doc map[string]interface{}
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, err
		}
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unknown format %q, want json or yaml", format)
	}
}
