package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/akmonengine/poise"
	"github.com/akmonengine/poise/config"
	"github.com/akmonengine/poise/telemetry"
)

type runOptions struct {
	configFile  string
	preset      string
	dt          float64
	duration    float64
	stiffness   float64
	plot        bool
	metricsAddr string
	logEvery    float64
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
	})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "poise",
		Short:        "closed-loop orientation stabilization of rigid bodies",
		SilenceUsage: true,
	}

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)
	}

	opts := &runOptions{}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the scene headless",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, opts)
		},
	}
	runCmd.Flags().StringVar(&opts.configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&opts.preset, "preset", "", "use preset configuration")
	runCmd.Flags().Float64Var(&opts.dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&opts.duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().Float64Var(&opts.stiffness, "stiffness", config.DefaultStiffness, "controller stiffness")
	runCmd.Flags().BoolVar(&opts.plot, "plot", false, "plot the error angle of the first body")
	runCmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	runCmd.Flags().Float64Var(&opts.logEvery, "log-every", 1.0, "seconds between progress logs, 0 to disable")

	var configPreset string
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print a configuration as yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig("", configPreset)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	configCmd.Flags().StringVar(&configPreset, "preset", "", "print this preset instead of the default")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, configCmd, presetsCmd)
	return rootCmd
}

// loadConfig picks the file, then the preset, then the defaults.
func loadConfig(path, preset string) (*config.Config, error) {
	switch {
	case path != "":
		return config.Load(path)
	case preset != "":
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		return cfg, nil
	default:
		return config.Default(), nil
	}
}

func runSimulation(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := loadConfig(opts.configFile, opts.preset)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = opts.dt
	}
	if flags.Changed("time") {
		cfg.Duration = opts.duration
	}
	if flags.Changed("stiffness") {
		cfg.Controller.Stiffness = opts.stiffness
	}

	metrics := telemetry.NewMetrics()
	if opts.metricsAddr != "" {
		shutdown := serveMetrics(opts.metricsAddr, metrics)
		defer shutdown()
	}

	logger := log.Logger.With().Str("component", "simulation").Logger()
	sim, err := poise.NewSimulation(cfg, logger, metrics)
	if err != nil {
		return err
	}

	rec := &recorder{logEvery: opts.logEvery, logger: logger, sim: sim}
	sim.AddObserver(rec)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := sim.Run(ctx, sim.Dt(), sim.Duration()); err != nil {
		if !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Warn().Float64("t", sim.Elapsed()).Msg("interrupted")
	}

	logger.Info().
		Int("ticks", sim.Ticks()).
		Dur("wall", time.Since(start)).
		Bool("perturbed", sim.Perturber != nil && sim.Perturber.Triggered()).
		Msg("simulation finished")

	out := cmd.OutOrStdout()
	printSummary(out, sim)
	if opts.plot && len(rec.angles) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(rec.angles,
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("error angle of body 0 (rad)"),
		))
	}

	return nil
}

// recorder samples the first body's error angle and logs progress.
type recorder struct {
	logEvery float64
	logger   zerolog.Logger
	sim      *poise.Simulation

	angles  []float64
	nextLog float64
}

func (r *recorder) OnTick(t float64, w *poise.World) {
	if len(w.Bodies) == 0 {
		return
	}
	angles := r.sim.ErrorAngles()
	r.angles = append(r.angles, angles[0])

	if r.logEvery <= 0 || t < r.nextLog {
		return
	}
	r.nextLog = t + r.logEvery
	r.logger.Info().
		Float64("t", t).
		Float64("error_angle", angles[0]).
		Float64("omega", w.Bodies[0].Omega.Len()).
		Msg("tick")
}

func printSummary(out io.Writer, sim *poise.Simulation) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tTYPE\tERROR (rad)\t|OMEGA| (rad/s)")
	angles := sim.ErrorAngles()
	for i, b := range sim.World().Bodies {
		fmt.Fprintf(w, "%d\t%s\t%.6f\t%.6f\n", i, b.BodyType, angles[i], b.Omega.Len())
	}
	w.Flush()
}

// serveMetrics exposes /metrics until the returned func is called.
func serveMetrics(addr string, metrics *telemetry.Metrics) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("serving metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
