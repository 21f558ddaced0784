package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/ventsim/internal/analysis"
	"github.com/san-kum/ventsim/internal/config"
	"github.com/san-kum/ventsim/internal/experiment"
	"github.com/san-kum/ventsim/internal/export"
	"github.com/san-kum/ventsim/internal/logging"
	"github.com/san-kum/ventsim/internal/metrics"
	"github.com/san-kum/ventsim/internal/server"
	"github.com/san-kum/ventsim/internal/storage"
	"github.com/san-kum/ventsim/internal/tui"
)

var (
	dataDir   string
	logLevel  string
	logFormat string

	// run parameters
	preset     string
	configFile string
	dt         float64
	duration   float64
	mode       string
	initial    string
	amplitude  float64
	frequency  float64
	peep       float64
	derivative string

	outFile   string
	chartKind string
	levels    int
	addr      string
	origins   []string
	frameRate int
	speed     float64
)

// main registers the commands, loads .env and exits 1 on any command error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "ventsim",
		Short: "respiratory mechanics simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Setup(os.Stderr, logLevel, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunInteractive()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", envOr("VENTSIM_DATA", ".ventsim"), "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("VENTSIM_LOG_LEVEL", "info"), "log level")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", envOr("VENTSIM_LOG_FORMAT", logging.FormatText), "log format (text|json)")

	runCmd := &cobra.Command{
		Use:   "run [name]",
		Short: "run simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	paramFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot volumes and pressure of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	pvCmd := &cobra.Command{
		Use:   "pv [run_id]",
		Short: "pressure-volume loop of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  pvPlot,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run series, parameters and metrics to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render a chart of a run to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportChart(args[0], export.PNG)
		},
	}
	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a chart of a run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportChart(args[0], export.SVG)
		},
	}
	for _, c := range []*cobra.Command{exportPNGCmd, exportSVGCmd} {
		c.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>_<chart>.<ext>)")
		c.Flags().StringVar(&chartKind, "chart", "pv", "chart (volume|pressure|pv|loops)")
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [preset] ...",
		Short: "compare presets side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE:  comparePresets,
	}

	convergeCmd := &cobra.Command{
		Use:   "converge",
		Short: "check Euler convergence by halving dt",
		RunE:  convergeRun,
	}
	paramFlags(convergeCmd)
	convergeCmd.Flags().IntVar(&levels, "levels", 4, "number of halvings")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMODE\tINITIAL\tRIGHT\tLEFT")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, cfg.Mode, cfg.Initial, cfg.Right.Fistula.Kind, cfg.Left.Fistula.Kind)
			}
			return w.Flush()
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and breath analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve simulations over websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return server.NewServer(addr, server.NewUpgrader(origins)).Serve(ctx)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", envOr("VENTSIM_ADDR", ":9000"), "listen address")
	serveCmd.Flags().StringSliceVar(&origins, "origin", nil, "extra browser origins to accept (* for any)")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive parameter tuner",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunInteractive()
		},
	}

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "animate a simulation in the terminal",
		RunE:  playRun,
	}
	paramFlags(playCmd)
	playCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	playCmd.Flags().Float64Var(&speed, "speed", 1.0, "simulated seconds per second")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, pvCmd, exportCmd, exportCSVCmd, exportJSONCmd,
		exportPNGCmd, exportSVGCmd, compareCmd, convergeCmd, presetsCmd, analyzeCmd, serveCmd, tuiCmd, playCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func paramFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep (s)")
	cmd.Flags().Float64Var(&duration, "time", 20.0, "duration (s)")
	cmd.Flags().StringVar(&mode, "mode", "coupled", "two-compartment mode (coupled|algebraic)")
	cmd.Flags().StringVar(&initial, "initial", "frc", "initial volume (frc|zero)")
	cmd.Flags().Float64Var(&amplitude, "amplitude", 0.5, "drive amplitude (L)")
	cmd.Flags().Float64Var(&frequency, "freq", 0.25, "drive frequency (Hz)")
	cmd.Flags().Float64Var(&peep, "peep", 5.0, "PEEP (cmH2O)")
	cmd.Flags().StringVar(&derivative, "derivative", "numerical", "drive derivative (numerical|analytic)")
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Time.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Time.Duration = duration
	}
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("initial") {
		cfg.Initial = initial
	}
	if flags.Changed("amplitude") {
		cfg.Drive.Amplitude = amplitude
	}
	if flags.Changed("freq") {
		cfg.Drive.Frequency = frequency
	}
	if flags.Changed("peep") {
		cfg.Drive.PEEP = peep
	}
	if flags.Changed("derivative") {
		cfg.Drive.Derivative = derivative
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.Params()
	if err != nil {
		return err
	}

	name := preset
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		name = "run"
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	log.WithFields(log.Fields{"name": name, "mode": cfg.Mode}).Info("running simulation")
	start := time.Now()

	res, err := experiment.SimulateContext(cmd.Context(), p)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(name, res)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", res.SampleCount())
	fmt.Println("\nmetrics:")
	printSummary(os.Stdout, metrics.Summarize(res))

	return nil
}

func printSummary(w io.Writer, s metrics.Summary) {
	fmt.Fprintf(w, "  peak pressure:  %.3f cmH2O\n", s.PeakPressure)
	fmt.Fprintf(w, "  mean pressure:  %.3f cmH2O\n", s.MeanPressure)
	fmt.Fprintf(w, "  min pressure:   %.3f cmH2O\n", s.MinPressure)
	fmt.Fprintf(w, "  tidal volume:   %.4f L (right %.4f, left %.4f)\n", s.TidalVolume, s.TidalRight, s.TidalLeft)
	fmt.Fprintf(w, "  compliance:     %.5f L/cmH2O\n", s.Compliance)
	fmt.Fprintf(w, "  work:           %.4f cmH2O·L\n", s.Work)
	fmt.Fprintf(w, "  leaked volume:  %.4f L\n", s.Leaked)
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
	fmt.Fprintln(w, "ID\tTIME\tMODE\tDURATION\tDT\tRIGHT\tLEFT\tPEAK P")

	for _, run := range runs {
		if run.Params == nil {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%.2f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Params.Mode,
			run.Params.Time.Duration,
			run.Params.Time.Dt,
			run.Params.Right.Fistula.Kind,
			run.Params.Left.Fistula.Kind,
			run.Metrics["peak_pressure"],
		)
	}

	return w.Flush()
}

var captions = map[string]string{
	"v_d":      "right lung volume (L)",
	"v_e":      "left lung volume (L)",
	"v_total":  "total volume (L)",
	"p":        "two-compartment pressure (cmH2O)",
	"p_single": "single-compartment pressure (cmH2O)",
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	tbl, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("mode: %s\n", meta.Params.Mode)
	fmt.Printf("samples: %d\n\n", meta.Samples)

	for _, col := range []string{"v_d", "v_e", "v_total", "p_single", "p"} {
		data := tbl.Series[col]
		if len(data) == 0 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(captions[col]),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func pvPlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	tbl, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	fmt.Printf("pressure-volume loop: %s\n", meta.ID)
	fmt.Printf("single compartment: V_in vs P_single\n\n")
	fmt.Print(analysis.ScatterToASCII(analysis.NewScatter(tbl.Series["v_in"], tbl.Series["p_single"]), 70, 16))
	fmt.Printf("\ntwo compartments: V_total vs P\n\n")
	fmt.Print(analysis.ScatterToASCII(analysis.NewScatter(tbl.Series["v_total"], tbl.Series["p"]), 70, 16))

	return nil
}

// rebuild reruns a saved run from its stored parameters.
func rebuild(ctx context.Context, runID string) (*experiment.Result, error) {
	meta, err := storage.New(dataDir).Load(runID)
	if err != nil {
		return nil, err
	}
	if meta.Params == nil {
		return nil, fmt.Errorf("run %s: no stored parameters", runID)
	}
	p, err := meta.Params.Params()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return experiment.SimulateContext(ctx, p)
}

func output(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}

	enc := jsonEncoder(os.Stdout)
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	res, err := rebuild(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	w, err := output(outFile)
	if err != nil {
		return err
	}
	defer w.Close()

	return storage.WriteCSV(w, res)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	res, err := rebuild(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	w, err := output(outFile)
	if err != nil {
		return err
	}
	defer w.Close()

	return storage.WriteJSON(w, res)
}

func exportChart(runID string, f export.Format) error {
	res, err := rebuild(context.Background(), runID)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = fmt.Sprintf("%s_%s.%s", runID, chartKind, f)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	switch chartKind {
	case "volume":
		err = export.VolumeChart(res, f, file)
	case "pressure":
		err = export.PressureChart(res, f, file)
	case "pv":
		err = export.PVChart(res, f, file)
	case "loops":
		if f != export.SVG {
			return fmt.Errorf("loops chart is only available as svg")
		}
		_, err = io.WriteString(file, export.PVLoopsToSVG(metrics.PressureVolume(res), 600, 600))
	default:
		return fmt.Errorf("unknown chart: %s", chartKind)
	}
	if err != nil {
		return err
	}

	fmt.Printf("wrote %s\n", path)
	return nil
}

func comparePresets(cmd *cobra.Command, args []string) error {
	params := make([]experiment.Params, len(args))
	for i, name := range args {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		p, err := cfg.Params()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		params[i] = p
	}

	start := time.Now()
	results, err := experiment.Sweep(cmd.Context(), params)
	if err != nil {
		return err
	}
	log.WithField("elapsed", time.Since(start)).Debug("sweep finished")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tMODE\tPEAK P\tMEAN P\tVT\tVT RIGHT\tVT LEFT\tCOMPLIANCE\tLEAKED")
	for i, res := range results {
		s := metrics.Summarize(res)
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.4f\t%.4f\t%.4f\t%.5f\t%.4f\n",
			args[i], res.Params.Mode, s.PeakPressure, s.MeanPressure,
			s.TidalVolume, s.TidalRight, s.TidalLeft, s.Compliance, s.Leaked)
	}
	return w.Flush()
}

func convergeRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.Params()
	if err != nil {
		return err
	}
	if p.Mode == experiment.Algebraic {
		return fmt.Errorf("algebraic mode is closed form; nothing to converge")
	}

	steps, err := experiment.Converge(cmd.Context(), p, levels)
	if err != nil {
		return err
	}

	fmt.Printf("explicit euler convergence (duration=%.1fs)\n\n", p.Duration)
	fmt.Printf("%-12s  %-14s  %-14s\n", "dt", "max|ΔV_D|", "max|ΔV_E|")
	fmt.Println(strings.Repeat("-", 44))
	for _, s := range steps {
		fmt.Printf("%-12g  %14.3e  %14.3e\n", s.Dt, s.MaxDeltaD, s.MaxDeltaE)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	res, err := rebuild(cmd.Context(), runID)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n\n", runID)

	ps := analysis.PowerSpectrum(res.Pressure(), res.Params.Dt)
	// breathing lives well below 2 Hz
	bins := int(2 / ps.Resolution)
	if bins < 2 || bins > len(ps.Power) {
		bins = len(ps.Power)
	}

	graph := asciigraph.Plot(ps.Power[:bins],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("pressure power spectrum, 0-2 Hz"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := analysis.DominantFrequency(res.Pressure(), res.Params.Dt)
	fmt.Printf("drive frequency:    %.3f hz\n", res.Params.Drive.Frequency)
	fmt.Printf("dominant frequency: %.3f hz (resolution %.3f)\n", freq, ps.Resolution)
	if period := analysis.BreathPeriod(res.VTotal, res.Params.Dt); period > 0 {
		fmt.Printf("breath period:      %.3f s (%.1f breaths/min)\n", period, 60/period)
	}

	return nil
}

func playRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.Params()
	if err != nil {
		return err
	}

	res, err := experiment.SimulateContext(cmd.Context(), p)
	if err != nil {
		return err
	}

	tui.NewPlayback(res, os.Stdout, frameRate).Run(speed)
	return nil
}
