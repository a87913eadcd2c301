package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/san-kum/flightdyn/internal/config"
	"github.com/san-kum/flightdyn/internal/metrics"
	"github.com/san-kum/flightdyn/internal/sim"
	"github.com/san-kum/flightdyn/internal/storage"
	"github.com/san-kum/flightdyn/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	dt         float64
	duration   float64
	gravity    string
	integrator string
	altitude   float64
	descent    float64
	mass       float64
	frameRate  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flightdyn",
		Short: "rigid-body touchdown dynamics lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".flightdyn", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a landing scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a landing scenario with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id] [out.csv]",
		Short: "export a run's trace to a CSV file",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list landing scenario presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-18s alt %.1fm, sink %.1fm/s\n",
					name, cfg.Initial.Altitude, cfg.Initial.DescentRate)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default scenario config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "flightdyn.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&gravity, "gravity", "", "gravity model (standard, wgs84)")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator (euler, trapezoidal)")
	cmd.Flags().Float64Var(&altitude, "altitude", 0, "initial altitude above terrain")
	cmd.Flags().Float64Var(&descent, "descent", 0, "initial descent rate")
	cmd.Flags().Float64Var(&mass, "mass", 0, "vehicle mass")
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// buildConfig resolves the scenario: preset, then config file, then explicit
// flags, each layer overriding the previous one.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	scenario := "default"
	cfg := config.DefaultConfig()

	if len(args) > 0 {
		preset := config.GetPreset(args[0])
		if preset == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		scenario = args[0]
		cfg = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		scenario = trimExt(filepath.Base(configFile))
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("gravity") {
		cfg.Gravity = gravity
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("altitude") {
		cfg.Initial.Altitude = altitude
	}
	if cmd.Flags().Changed("descent") {
		cfg.Initial.DescentRate = descent
	}
	if cmd.Flags().Changed("mass") {
		cfg.Vehicle.Mass = mass
	}

	return cfg, scenario, nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

func attachMetrics(s *sim.Simulator, cfg *config.Config) {
	s.AddMetric(metrics.NewPeakSolverIterations())
	s.AddMetric(metrics.NewPeakResidual())
	s.AddMetric(metrics.NewMeanContacts())
	s.AddMetric(metrics.NewTouchdownLoadFactor(cfg.Vehicle.Mass, 9.80665))
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, scenario, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	log := newLogger()
	s, err := sim.New(cfg, log)
	if err != nil {
		return err
	}
	attachMetrics(s, cfg)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s scenario...\n", scenario)
	start := time.Now()

	result, err := s.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(scenario, cfg.Dt, cfg.Duration, cfg.Gravity, cfg.Integrator, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, scenario, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	log := newLogger().Level(zerolog.Disabled)
	s, err := sim.New(cfg, log)
	if err != nil {
		return err
	}
	attachMetrics(s, cfg)

	result, err := tui.RunLive(s, cfg, frameRate)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(scenario, cfg.Dt, cfg.Duration, cfg.Gravity, cfg.Integrator, result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tDT\tGRAVITY\tINTEG\tSTEPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Gravity,
			run.Integrator,
			run.Steps,
		)
	}

	return w.Flush()
}

var plotColumns = []struct {
	name    string
	caption string
}{
	{"altitude", "altitude (m)"},
	{"w", "sink rate (m/s)"},
	{"fz", "vertical gear reaction (N)"},
	{"solver_iterations", "solver iterations"},
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	cols, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(cols["time"]) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(cols["time"]))

	for _, col := range plotColumns {
		data := cols[col.name]
		if len(data) < 2 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]
	outPath := runID + ".csv"
	if len(args) > 1 {
		outPath = args[1]
	}

	src, err := os.Open(filepath.Join(dataDir, runID, "trace.csv"))
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}
