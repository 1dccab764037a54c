package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"neuroflight/internal/config"
	"neuroflight/pkg/neuroflight"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	root := newRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// cli carries the persistent flags shared by every subcommand.
type cli struct {
	stdout io.Writer
	stderr *os.File

	configPath string
	storeKind  string
	dbPath     string
	logLevel   string
}

func newRootCmd(stdout io.Writer, stderr *os.File) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "neuroflightctl",
		Short:         "Evolve neural network weights with a genetic algorithm",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "YAML or INI config file layered over the defaults")
	flags.StringVar(&c.storeKind, "store", "", "store backend: memory|sqlite (overrides config)")
	flags.StringVar(&c.dbPath, "db-path", "", "sqlite database path (overrides config)")
	flags.StringVar(&c.logLevel, "log-level", "info", "log level: debug|info|warn|error")

	root.AddCommand(
		c.newRunCmd(),
		c.newRunsCmd(),
		c.newGenerationsCmd(),
		c.newExportCmd(),
		c.newReportCmd(),
		c.newScapesCmd(),
	)
	return root
}

// loadConfig reads --config and applies the persistent store overrides.
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("store") {
		cfg.Store.Kind = c.storeKind
	}
	if cmd.Flags().Changed("db-path") {
		cfg.Store.Path = c.dbPath
	}
	return cfg, nil
}

func (c *cli) openClient(cfg *config.Config, opts neuroflight.Options) (*neuroflight.Client, *slog.Logger, error) {
	logger, err := newLogger(c.stderr, c.logLevel)
	if err != nil {
		return nil, nil, err
	}
	opts.StoreKind = cfg.Store.Kind
	opts.DBPath = cfg.Store.Path
	opts.Logger = logger
	client, err := neuroflight.New(opts)
	if err != nil {
		return nil, nil, err
	}
	return client, logger, nil
}

// newLogger writes text to a terminal and JSON lines to anything else.
func newLogger(out *os.File, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		return slog.New(slog.NewTextHandler(out, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(out, opts)), nil
}
