package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"neuroflight/internal/scape"
	"neuroflight/internal/stats"
	"neuroflight/pkg/neuroflight"
)

const exportsDir = "exports"

func (c *cli) newRunCmd() *cobra.Command {
	var (
		seed        int64
		population  int
		generations int
		scapeName   string
		resume      string
		outDir      string
		metricsAddr string
		runID       string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve a population against a scape and store the run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("seed") {
				cfg.Run.Seed = seed
			}
			if flags.Changed("population") {
				cfg.Population.Size = population
			}
			if flags.Changed("generations") {
				cfg.Run.Generations = generations
			}
			if flags.Changed("scape") {
				cfg.Run.Scape = scapeName
			}
			if flags.Changed("resume") {
				cfg.Run.Resume = resume
			}
			if flags.Changed("out") {
				cfg.Output.Dir = outDir
			}
			if flags.Changed("metrics-addr") {
				cfg.Metrics.Addr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			var metrics *stats.Metrics
			if cfg.Metrics.Addr != "" {
				metrics = stats.NewMetrics()
			}
			client, logger, err := c.openClient(cfg, neuroflight.Options{Metrics: metrics})
			if err != nil {
				return err
			}
			defer client.Close()

			if metrics != nil {
				stop, err := serveMetrics(cfg.Metrics.Addr, metrics, logger)
				if err != nil {
					return err
				}
				defer stop()
			}

			summary, err := client.Run(cmd.Context(), neuroflight.RunRequest{Config: cfg, RunID: runID})
			if err != nil {
				return err
			}

			evaluations := int64(summary.PopulationSize) * int64(len(summary.Generations)+1)
			fmt.Fprintf(c.stdout, "run completed: run_id=%s scape=%s topology=%v generations=%d evaluations=%s elapsed=%s\n",
				summary.RunID,
				cfg.Run.Scape,
				[]int(summary.Topology),
				len(summary.Generations),
				humanize.Comma(evaluations),
				summary.Elapsed.Round(time.Millisecond),
			)
			fmt.Fprintf(c.stdout, "population=%d mutation_chance=%g mutation_coefficient=%g\n",
				summary.PopulationSize, summary.MutationChance, summary.MutationCoefficient)
			fmt.Fprintf(c.stdout, "final_best=%.4f best_ever=%.4f\n", summary.FinalBest, summary.BestEver)
			if summary.OutputDir != "" {
				fmt.Fprintf(c.stdout, "output=%s\n", filepath.Clean(summary.OutputDir))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Int64Var(&seed, "seed", 0, "RNG seed")
	flags.IntVar(&population, "population", 0, "population size")
	flags.IntVar(&generations, "generations", 0, "generations to evolve")
	flags.StringVar(&scapeName, "scape", "", "scape to evaluate against")
	flags.StringVar(&resume, "resume", "", "continue from the stored population of this run id")
	flags.StringVar(&outDir, "out", "", "directory for generations.csv and config.yaml")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus /metrics on this address while running")
	flags.StringVar(&runID, "run-id", "", "explicit run id (default: random uuid)")
	return cmd
}

func (c *cli) newRunsCmd() *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return errors.New("limit must be > 0")
			}
			client, err := c.clientFor(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			runs, err := client.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(c.stdout, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(c.stdout, "no runs found")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(c.stdout, "run_id=%s created=%s scape=%s population=%d generations=%d final_best=%.4f",
					r.ID,
					humanize.Time(r.CreatedAtUTC),
					r.Scape,
					r.PopulationSize,
					r.Generations,
					r.FinalBest,
				)
				if r.ResumedFrom != "" {
					fmt.Fprintf(c.stdout, " resumed_from=%s", r.ResumedFrom)
				}
				fmt.Fprintln(c.stdout)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit runs as JSON")
	return cmd
}

func (c *cli) newGenerationsCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "generations <run-id>",
		Short: "Show per-generation fitness statistics for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.clientFor(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			generations, err := client.Generations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(c.stdout, generations)
			}
			for _, g := range generations {
				fmt.Fprintf(c.stdout, "generation=%d min=%.4f max=%.4f avg=%.4f median=%.4f stddev=%.4f\n",
					g.Generation, g.Min, g.Max, g.Average, g.Median, g.StdDev)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit generations as JSON")
	return cmd
}

func (c *cli) newExportCmd() *cobra.Command {
	var (
		latest bool
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export [run-id]",
		Short: "Write run.json, generations.csv and population.json for a run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := neuroflight.ExportRequest{Latest: latest, OutDir: outDir}
			if len(args) == 1 {
				req.RunID = args[0]
			}
			client, err := c.clientFor(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			exported, err := client.Export(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "exported run_id=%s to=%s\n", exported.RunID, exported.Directory)
			return nil
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "export the most recent run")
	cmd.Flags().StringVar(&outDir, "out", exportsDir, "export output directory")
	return cmd
}

func (c *cli) newReportCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "report <export-dir>",
		Short: "Summarize a run directory written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			exported, err := neuroflight.ReadExport(args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(c.stdout, exported)
			}
			r := exported.Run
			fmt.Fprintf(c.stdout, "run_id=%s created=%s scape=%s population=%d generations=%d final_best=%.4f\n",
				r.ID, humanize.Time(r.CreatedAtUTC), r.Scape, r.PopulationSize, r.Generations, r.FinalBest)
			for _, g := range exported.Generations {
				fmt.Fprintf(c.stdout, "generation=%d min=%.4f max=%.4f avg=%.4f median=%.4f stddev=%.4f\n",
					g.Generation, g.Min, g.Max, g.Average, g.Median, g.StdDev)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the run and its generations as JSON")
	return cmd
}

func (c *cli) newScapesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scapes",
		Short: "List the built-in scapes",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, name := range scape.Names() {
				s, err := scape.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "%s inputs=%d outputs=%d\n", s.Name(), s.Inputs(), s.Outputs())
			}
			return nil
		},
	}
}

func (c *cli) clientFor(cmd *cobra.Command) (*neuroflight.Client, error) {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	client, _, err := c.openClient(cfg, neuroflight.Options{})
	return client, err
}

// serveMetrics listens on addr until the returned stop function is called.
func serveMetrics(addr string, metrics *stats.Metrics, logger *slog.Logger) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", listener.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
