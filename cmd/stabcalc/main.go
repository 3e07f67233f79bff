package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goforj/godump"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/stabcalc/internal/airframe"
	"github.com/san-kum/stabcalc/internal/analysis"
	"github.com/san-kum/stabcalc/internal/config"
	"github.com/san-kum/stabcalc/internal/log"
	"github.com/san-kum/stabcalc/internal/metrics"
	"github.com/san-kum/stabcalc/internal/optim"
	"github.com/san-kum/stabcalc/internal/polar"
	"github.com/san-kum/stabcalc/internal/project"
	"github.com/san-kum/stabcalc/internal/sim"
	"github.com/san-kum/stabcalc/internal/storage"
	"github.com/san-kum/stabcalc/internal/viz"
)

var (
	configFile string
	dataDir    string
	logLevel   string
	logDir     string
	preset     string

	projectName  string
	centerline   float64
	fuselageMass float64

	offset    float64
	mass      float64
	length    float64
	equipType string

	rootChord      float64
	tipChord       float64
	semispan       float64
	charLength     float64
	thicknessRatio float64
	aoi            float64
	xfoilData      string

	duration   float64
	thrust     float64
	airspeed   float64
	gustOffset float64
	gustForce  float64
	sweep      string

	targetMargin float64
	searchStep   float64
	series       string
)

// main registers the stabcalc commands and executes the root command,
// exiting with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "stabcalc",
		Short:        "longitudinal stability calculator for model aircraft",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset flight conditions")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "log directory")

	newCmd := &cobra.Command{
		Use:   "new [project.json]",
		Short: "create an empty project",
		Args:  cobra.ExactArgs(1),
		RunE:  newProject,
	}
	newCmd.Flags().StringVar(&projectName, "name", "untitled", "project name")
	newCmd.Flags().Float64Var(&centerline, "centerline", 1.0, "centerline length (m)")
	newCmd.Flags().Float64Var(&fuselageMass, "fuselage-mass", 0.2, "fuselage mass (kg)")

	infoCmd := &cobra.Command{
		Use:   "info [project.json]",
		Short: "show mass, CG, neutral point and verdict",
		Args:  cobra.ExactArgs(1),
		RunE:  showInfo,
	}

	surfaceCmd := &cobra.Command{
		Use:   "add-surface [project.json] [wings|htail]",
		Short: "add a lifting surface",
		Args:  cobra.ExactArgs(2),
		RunE:  addSurface,
	}
	surfaceCmd.Flags().Float64Var(&offset, "offset", 0, "leading edge offset from the nose (m)")
	surfaceCmd.Flags().Float64Var(&mass, "mass", 0, "mass (kg)")
	surfaceCmd.Flags().Float64Var(&rootChord, "root-chord", 0, "root chord (m)")
	surfaceCmd.Flags().Float64Var(&tipChord, "tip-chord", 0, "tip chord (m), defaults to the root chord")
	surfaceCmd.Flags().Float64Var(&semispan, "semispan", 0, "semispan (m)")
	surfaceCmd.Flags().Float64Var(&charLength, "char-length", 0, "characteristic length (m), defaults to the root chord")
	surfaceCmd.Flags().Float64Var(&thicknessRatio, "thickness-ratio", 0.1, "thickness to chord ratio")
	surfaceCmd.Flags().Float64Var(&aoi, "aoi", airframe.DefaultAOI, "angle of incidence (deg)")
	surfaceCmd.Flags().StringVar(&xfoilData, "xfoil", "", "polar file or directory")

	equipCmd := &cobra.Command{
		Use:   "add-equipment [project.json] [name]",
		Short: "add a non-lifting component",
		Args:  cobra.ExactArgs(2),
		RunE:  addEquipment,
	}
	equipCmd.Flags().Float64Var(&offset, "offset", 0, "front offset from the nose (m)")
	equipCmd.Flags().Float64Var(&length, "length", 0, "length along the centerline (m)")
	equipCmd.Flags().Float64Var(&mass, "mass", 0, "mass (kg)")
	equipCmd.Flags().StringVar(&equipType, "type", "", "free-form equipment type")

	removeCmd := &cobra.Command{
		Use:   "remove [project.json] [name]",
		Short: "remove a component",
		Args:  cobra.ExactArgs(2),
		RunE:  removeComponent,
	}

	moveCmd := &cobra.Command{
		Use:   "move [project.json] [name] [fore|aft|distance]",
		Short: "relocate a component along the centerline",
		Args:  cobra.ExactArgs(3),
		RunE:  moveComponent,
	}

	amendCmd := &cobra.Command{
		Use:   "amend [project.json] [name] [field=value]...",
		Short: "edit component fields atomically",
		Long:  "Fields: " + fieldList(),
		Args:  cobra.MinimumNArgs(3),
		RunE:  amendComponent,
	}

	simCmd := &cobra.Command{
		Use:   "simulate [project.json]",
		Short: "run a pitch simulation and store it",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	simCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	simCmd.Flags().Float64Var(&thrust, "thrust", 0, "thrust (N)")
	simCmd.Flags().Float64Var(&airspeed, "airspeed", 0, "initial airspeed (m/s)")
	simCmd.Flags().Float64Var(&gustOffset, "gust-offset", 0, "gust offset from the nose (m)")
	simCmd.Flags().Float64Var(&gustForce, "gust-force", 0, "gust force (N)")
	simCmd.Flags().StringVar(&sweep, "sweep", "", "comma-separated thrust values to sweep")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&series, "series", "pitch", "state to analyze")

	balanceCmd := &cobra.Command{
		Use:   "balance [project.json] [component]...",
		Short: "search component offsets for a target static margin",
		Args:  cobra.MinimumNArgs(2),
		RunE:  balancePlane,
	}
	balanceCmd.Flags().Float64Var(&targetMargin, "margin", 0.05, "target static margin (m)")
	balanceCmd.Flags().Float64Var(&searchStep, "step", 0.01, "offset step (m)")

	liveCmd := &cobra.Command{
		Use:   "live [project.json]",
		Short: "fly the plane with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available flight condition presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tAIRSPEED\tRHO\tTHRUST\tPITCH")
			for _, name := range config.ListPresets() {
				f := config.Presets[name]
				fmt.Fprintf(w, "%s\t%.1f\t%.4f\t%.1f\t%.1f\n", name, f.Airspeed, f.Rho, f.Thrust, f.Pitch)
			}
			return w.Flush()
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump [project.json]",
		Short: "dump the parsed project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := loadPlane(args[0])
			if err != nil {
				return err
			}
			godump.Dump(project.Snapshot(p))
			return nil
		},
	}

	rootCmd.AddCommand(newCmd, infoCmd, surfaceCmd, equipCmd, removeCmd, moveCmd, amendCmd,
		simCmd, listCmd, plotCmd, exportCmd, analyzeCmd, balanceCmd, liveCmd, presetsCmd, dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// settings resolves the config: defaults, then a preset, then a config
// file, then command-line flags.
func settings() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logDir != "" {
		cfg.Log.Dir = logDir
	}
	return cfg, nil
}

// session is the resolved config and the logger opened for it.
type session struct {
	cfg *config.Config
	lg  *log.Logger
}

func loadPlane(path string) (*airframe.Plane, *session, error) {
	cfg, err := settings()
	if err != nil {
		return nil, nil, err
	}
	lg := log.New(cfg.Log.Level, cfg.Log.Dir)
	loader, err := polar.NewLoader(cfg.Polars.CacheSize, lg)
	if err != nil {
		return nil, nil, err
	}
	p, err := project.Load(path, cfg.NewFlight(), loader, lg)
	if err != nil {
		return nil, nil, err
	}
	return p, &session{cfg: cfg, lg: lg}, nil
}

// edit loads the project, applies fn and saves it back when fn succeeds.
func edit(path string, fn func(p *airframe.Plane) error) error {
	p, _, err := loadPlane(path)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}
	if err := project.Save(path, p); err != nil {
		return err
	}
	fmt.Println(viz.Report(p))
	return nil
}

func newProject(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	f := project.New(projectName, centerline, fuselageMass)
	if _, err := project.Build(f, nil); err != nil {
		return err
	}
	if err := project.WriteFile(path, f); err != nil {
		return err
	}
	fmt.Printf("created %s\n", path)
	return nil
}

func showInfo(cmd *cobra.Command, args []string) error {
	p, _, err := loadPlane(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.Report(p))
	return nil
}

func addSurface(cmd *cobra.Command, args []string) error {
	return edit(args[0], func(p *airframe.Plane) error {
		params := airframe.WingParams{
			Name:                 args[1],
			Mass:                 mass,
			CharacteristicLength: charLength,
			RootChord:            rootChord,
			TipChord:             tipChord,
			Semispan:             semispan,
			ThicknessRatio:       thicknessRatio,
			PolarSource:          xfoilData,
		}
		if params.CharacteristicLength == 0 {
			params.CharacteristicLength = rootChord
		}
		if cmd.Flags().Changed("aoi") {
			params.AOI = &aoi
		}
		w, err := airframe.NewWing(params, nil)
		if err != nil {
			return err
		}
		return p.AddComponent(w, offset)
	})
}

func addEquipment(cmd *cobra.Command, args []string) error {
	return edit(args[0], func(p *airframe.Plane) error {
		e, err := airframe.NewEquipment(args[1], equipType, length, mass)
		if err != nil {
			return err
		}
		return p.AddEquipment(e, offset)
	})
}

func removeComponent(cmd *cobra.Command, args []string) error {
	return edit(args[0], func(p *airframe.Plane) error {
		return p.RemoveComponent(args[1])
	})
}

func moveComponent(cmd *cobra.Command, args []string) error {
	return edit(args[0], func(p *airframe.Plane) error {
		switch args[2] {
		case "fore":
			return p.MoveFore(args[1])
		case "aft":
			return p.MoveAft(args[1])
		}
		d, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("move: expected fore, aft or a distance, got %q", args[2])
		}
		return p.MoveComponent(args[1], d)
	})
}

func amendComponent(cmd *cobra.Command, args []string) error {
	a := airframe.Amendment{}
	for _, kv := range args[2:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("expected field=value, got %q", kv)
		}
		f, err := airframe.ParseField(k)
		if err != nil {
			return err
		}
		a[f] = v
	}
	return edit(args[0], func(p *airframe.Plane) error {
		return p.Amend(args[1], a)
	})
}

func fieldList() string {
	names := make([]string, len(airframe.Fields))
	for i, f := range airframe.Fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func parseSweep(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	thrusts := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid sweep value %q: %w", part, err)
		}
		thrusts = append(thrusts, v)
	}
	return thrusts, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	path := args[0]
	p, ss, err := loadPlane(path)
	if err != nil {
		return err
	}
	cfg, lg := ss.cfg, ss.lg

	if cmd.Flags().Changed("time") {
		cfg.Sim.Duration = duration
	}
	if cmd.Flags().Changed("thrust") {
		p.SetThrust(thrust)
	}
	if cmd.Flags().Changed("airspeed") {
		p.Flight().Airspeed = airspeed
	}
	if cmd.Flags().Changed("gust-force") {
		cfg.Sim.GustForce = gustForce
	}
	if cmd.Flags().Changed("gust-offset") {
		cfg.Sim.GustOffset = gustOffset
	}

	simCfg := sim.DefaultConfig()
	simCfg.Duration = cfg.Sim.Duration
	if cfg.Sim.GustForce != 0 {
		simCfg.Gust = &airframe.Gust{Offset: cfg.Sim.GustOffset, Force: cfg.Sim.GustForce}
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	thrusts := []float64{p.Flight().Thrust}
	if sweep != "" {
		if thrusts, err = parseSweep(sweep); err != nil {
			return err
		}
	}

	fmt.Printf("simulating %s for %.2fs...\n", p.ProjectName(), simCfg.Duration)
	start := time.Now()

	sw := sim.NewSweep(sim.New(lg), thrusts)
	sw.NewMetrics = func() []sim.Metric { return metrics.Standard(p.TotalMass()) }
	results, err := sw.Run(context.Background(), p, simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tTHRUST\tSTEPS\tAIRSPEED\tPITCH")
	for i, result := range results {
		meta := runMetadata(p, path, thrusts[i], simCfg.Duration, result)
		id, err := st.Save(meta, result)
		if err != nil {
			return err
		}
		final := result.Final()
		fmt.Fprintf(w, "%s\t%.2f\t%d\t%.3f\t%.3f\n", id, thrusts[i], result.StepsTaken, final[sim.Airspeed], final[sim.Pitch])
		for _, e := range result.Errors {
			lg.Warn("run ended early", "run", id, "error", e)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\ncompleted in %v\n", elapsed)
	if len(results) == 1 {
		fmt.Println("\nmetrics:")
		for name, val := range results[0].Metrics {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}
	return nil
}

func runMetadata(p *airframe.Plane, source string, thrust, duration float64, result *sim.Result) storage.RunMetadata {
	meta := storage.RunMetadata{
		Project:  p.ProjectName(),
		Source:   source,
		Duration: duration,
		Steps:    result.StepsTaken,
		Thrust:   thrust,
		Airspeed: p.Flight().Airspeed,
		Verdict:  p.Verdict().String(),
		CG:       p.CG(),
		Metrics:  result.Metrics,
	}
	if np, ok := p.NeutralPoint(); ok {
		meta.NP = &np
	}
	return meta
}

func openStore() (*storage.Store, error) {
	cfg, err := settings()
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROJECT\tTIME\tDURATION\tTHRUST\tVERDICT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.2f\t%s\n",
			run.ID,
			run.Project,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Thrust,
			run.Verdict,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(tr.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("project: %s\n", meta.Project)
	fmt.Printf("samples: %d\n\n", len(tr.States))

	for _, name := range tr.Names {
		graph := asciigraph.Plot(tr.Series(name),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, tr)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	data := tr.Series(series)
	if data == nil {
		return fmt.Errorf("unknown series %q (available: %v)", series, tr.Names)
	}
	sp, err := analysis.Analyze(data, airframe.TickInterval)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("project: %s\n\n", meta.Project)

	plotData := sp.Power[:len(sp.Power)/4+1]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", series)),
	)
	fmt.Println(graph)
	fmt.Println()

	fmt.Printf("dominant frequency: %.3f hz\n", sp.Frequency)
	if sp.Frequency > 0 {
		fmt.Printf("period: %.3f s\n", sp.Period())
	}
	return nil
}

func balancePlane(cmd *cobra.Command, args []string) error {
	p, _, err := loadPlane(args[0])
	if err != nil {
		return err
	}

	axes := make([]optim.Axis, 0, len(args)-1)
	for _, name := range args[1:] {
		pl, ok := p.Layout().Get(name)
		if !ok {
			return fmt.Errorf("%w: %s", airframe.ErrUnknownComponent, name)
		}
		axes = append(axes, optim.Axis{
			Name:    name,
			Offsets: optim.Range(0, p.Centerline()-pl.Length(), searchStep),
		})
	}

	best, err := optim.NewGridSearch(targetMargin, axes...).Search(context.Background(), p)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPONENT\tOFFSET")
	for _, a := range axes {
		fmt.Fprintf(w, "%s\t%.4f\n", a.Name, best.Offsets[a.Name])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nstatic margin: %.4f m (%s)\n", best.Margin, best.Verdict)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	p, _, err := loadPlane(args[0])
	if err != nil {
		return err
	}

	m := viz.NewModel(p)
	prog := tea.NewProgram(m)
	if _, err := prog.Run(); err != nil {
		return err
	}
	return nil
}
