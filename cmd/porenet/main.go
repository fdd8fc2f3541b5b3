package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/porelab/porenet/internal/config"
	"github.com/porelab/porenet/internal/geometry"
	"github.com/porelab/porenet/internal/netio"
	"github.com/porelab/porenet/internal/network"
	"github.com/porelab/porenet/internal/phase"
	"github.com/porelab/porenet/internal/physics"
	"github.com/porelab/porenet/internal/solver"
	"github.com/porelab/porenet/internal/storage"
	"github.com/porelab/porenet/internal/sweep"
	"github.com/porelab/porenet/internal/topology"
	"github.com/porelab/porenet/internal/transport"
	"github.com/porelab/porenet/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string

	nx, ny, nz int
	spacing    float64
	generator  string
	points     int
	seed       int64
	phaseName  string

	bcIn, bcOut float64
	sourceA1    float64
	sourceA2    float64

	dt        float64
	duration  float64
	scheme    string
	saveEvery int
	initial   float64

	outPath string
	inPath  string
	prefix  string

	sweepRuns    int
	sweepWorkers int
	plotAxis     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "porenet",
		Short: "pore network transport lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".porenet", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "generate a network with geometry and save it as json",
		RunE:  generateNetwork,
	}
	addNetworkFlags(generateCmd)
	generateCmd.Flags().StringVar(&outPath, "out", "network.json", "output file")

	runCmd := &cobra.Command{
		Use:   "run [fickian|stokes|reaction]",
		Short: "run a steady transport simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSteady,
	}
	addNetworkFlags(runCmd)
	addBCFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().Float64Var(&sourceA1, "source-a1", -1e-12, "source prefactor (reaction)")
	runCmd.Flags().Float64Var(&sourceA2, "source-a2", 1.0, "source exponent (reaction)")

	transientCmd := &cobra.Command{
		Use:   "transient [fickian|stokes|reaction]",
		Short: "run a transient transport simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runTransient,
	}
	addNetworkFlags(transientCmd)
	addBCFlags(transientCmd)
	addTransientFlags(transientCmd)
	transientCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	transientCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	liveCmd := &cobra.Command{
		Use:   "live [fickian|stokes]",
		Short: "run a transient simulation and replay it live",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addNetworkFlags(liveCmd)
	addBCFlags(liveCmd)
	addTransientFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and field statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	rateCmd := &cobra.Command{
		Use:   "rate [fickian|stokes|reaction]",
		Short: "solve and report the rate through each boundary face",
		Args:  cobra.ExactArgs(1),
		RunE:  runRate,
	}
	addNetworkFlags(rateCmd)
	addBCFlags(rateCmd)
	rateCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rateCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	effectiveCmd := &cobra.Command{
		Use:   "effective [diffusivity|permeability]",
		Short: "compute an effective transport property",
		Args:  cobra.ExactArgs(1),
		RunE:  runEffective,
	}
	addNetworkFlags(effectiveCmd)
	addBCFlags(effectiveCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [diffusivity|permeability]",
		Short: "average an effective property over random realizations",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addNetworkFlags(sweepCmd)
	addBCFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepRuns, "runs", 8, "number of realizations")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "parallel workers (0 = NumCPU)")

	importCmd := &cobra.Command{
		Use:   "import-statoil [dir]",
		Short: "import a statoil dat network and save it as json",
		Args:  cobra.ExactArgs(1),
		RunE:  importStatoil,
	}
	importCmd.Flags().StringVar(&prefix, "prefix", "network", "statoil file prefix")
	importCmd.Flags().StringVar(&outPath, "out", "network.json", "output file")

	exportCmd := &cobra.Command{
		Use:   "export-statoil [dir]",
		Short: "export a json network as statoil dat files",
		Args:  cobra.ExactArgs(1),
		RunE:  exportStatoil,
	}
	exportCmd.Flags().StringVar(&prefix, "prefix", "network", "statoil file prefix")
	exportCmd.Flags().StringVar(&inPath, "in", "network.json", "input network json")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a stored run to CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [algorithm]",
		Short: "list available presets for an algorithm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for algorithm: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	healthCmd := &cobra.Command{
		Use:   "health [network.json]",
		Short: "check a saved network for disconnected clusters",
		Args:  cobra.ExactArgs(1),
		RunE:  checkHealth,
	}

	rootCmd.AddCommand(generateCmd, runCmd, transientCmd, liveCmd, listCmd, showCmd,
		plotCmd, rateCmd, effectiveCmd, sweepCmd, importCmd, exportCmd, exportCSVCmd,
		exportJSONCmd, presetsCmd, healthCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addNetworkFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&generator, "generator", "cubic", "network generator (cubic, random)")
	cmd.Flags().IntVar(&nx, "nx", 10, "pores along x")
	cmd.Flags().IntVar(&ny, "ny", 10, "pores along y")
	cmd.Flags().IntVar(&nz, "nz", 10, "pores along z")
	cmd.Flags().Float64Var(&spacing, "spacing", 1e-4, "lattice spacing")
	cmd.Flags().IntVar(&points, "points", 500, "pore count (random)")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().StringVar(&phaseName, "phase", "water", "phase (water, air)")
	cmd.Flags().StringVar(&inPath, "network", "", "load network from json instead of generating")
}

func addBCFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&bcIn, "bc-in", 1.0, "value BC on the left face")
	cmd.Flags().Float64Var(&bcOut, "bc-out", 0.0, "value BC on the right face")
}

func addTransientFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0.1, "timestep")
	cmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	cmd.Flags().StringVar(&scheme, "scheme", "implicit", "time scheme (implicit, cranknicolson)")
	cmd.Flags().IntVar(&saveEvery, "save-every", 1, "snapshot decimation")
	cmd.Flags().Float64Var(&initial, "initial", 0.0, "initial field value")
}

func newLogger() *zap.Logger {
	if verbose {
		log, _ := zap.NewDevelopment()
		return log
	}
	return zap.NewNop()
}

// resolveConfig merges preset, config file and flags into one Config.
// Flags fill network fields only when no file or preset was given.
func resolveConfig(cmd *cobra.Command, algorithm string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Algorithm = algorithm

	if preset != "" {
		p := config.GetPreset(algorithm, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(algorithm))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset == "" && configFile == "" {
		cfg.Network.Generator = generator
		cfg.Network.Nx, cfg.Network.Ny, cfg.Network.Nz = nx, ny, nz
		cfg.Network.Spacing = spacing
		cfg.Network.Points = points
		cfg.Network.File = inPath
		cfg.Phase = phaseName
		cfg.Algorithm = algorithm
		cfg.BCs = []config.BCConfig{
			{Kind: "value", Face: "left", Value: bcIn},
			{Kind: "value", Face: "right", Value: bcOut},
		}
		if algorithm == "reaction" {
			cfg.BCs = cfg.BCs[:1]
			cfg.Sources = []config.SourceConfig{
				{Kind: "powerlaw", Face: "right", A1: sourceA1, A2: sourceA2},
			}
		}
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if f := cmd.Flags(); f.Lookup("dt") != nil {
		if f.Changed("dt") {
			cfg.Transient.Dt = dt
		}
		if f.Changed("time") {
			cfg.Transient.Duration = duration
		}
		if f.Changed("scheme") {
			cfg.Transient.Scheme = scheme
		}
		if f.Changed("save-every") {
			cfg.Transient.SaveEvery = saveEvery
		}
		if f.Changed("initial") {
			cfg.Transient.Initial = initial
		}
	}
	cfg.Normalize()
	return cfg, nil
}

// buildNetwork creates or loads the network and assigns stick-and-ball
// geometry plus conductances for the configured phase.
func buildNetwork(cfg *config.Config) (*network.Network, *phase.Phase, error) {
	var net *network.Network
	var err error
	switch {
	case cfg.Network.File != "":
		net, err = netio.LoadJSON(cfg.Network.File)
	case cfg.Network.Generator == "random":
		net, err = network.Random(cfg.Network.Points,
			[3]float64{
				float64(cfg.Network.Nx) * cfg.Network.Spacing,
				float64(cfg.Network.Ny) * cfg.Network.Spacing,
				float64(cfg.Network.Nz) * cfg.Network.Spacing,
			},
			cfg.Network.Rmax, cfg.Seed)
	default:
		net, err = network.Cubic([3]int{cfg.Network.Nx, cfg.Network.Ny, cfg.Network.Nz}, cfg.Network.Spacing)
	}
	if err != nil {
		return nil, nil, err
	}

	if _, ok := net.Prop("pore.diameter"); !ok {
		if err := geometry.StickAndBall(net, cfg.Seed); err != nil {
			return nil, nil, err
		}
	}

	var ph *phase.Phase
	switch cfg.Phase {
	case "air":
		ph = phase.Air(net)
	case "water", "":
		ph = phase.Water(net)
	default:
		return nil, nil, fmt.Errorf("unknown phase: %s", cfg.Phase)
	}

	if err := physics.DiffusiveConductance(net, ph); err != nil {
		return nil, nil, err
	}
	if err := physics.HydraulicConductance(net, ph); err != nil {
		return nil, nil, err
	}
	return net, ph, nil
}

func makeSolver(cfg *config.Config) solver.Solver {
	switch cfg.Solver.Kind {
	case "cg":
		return &solver.CG{Tol: cfg.Solver.Tolerance}
	case "dense":
		return solver.Dense{}
	default:
		return solver.Auto{}
	}
}

func facePores(net *network.Network, face string) ([]int, error) {
	pores, err := net.Pores([]string{"pore." + face}, network.ModeUnion)
	if err != nil {
		return nil, err
	}
	if len(pores) == 0 {
		return nil, fmt.Errorf("no pores carry label pore.%s", face)
	}
	return pores, nil
}

func applyBCs(alg *transport.Transport, net *network.Network, cfg *config.Config) error {
	for _, bc := range cfg.BCs {
		pores, err := facePores(net, bc.Face)
		if err != nil {
			return err
		}
		vals := make([]float64, len(pores))
		for i := range vals {
			vals[i] = bc.Value
		}
		switch bc.Kind {
		case "value":
			err = alg.SetValueBC(pores, vals, transport.ModeMerge)
		case "rate":
			err = alg.SetRateBC(pores, vals, transport.ModeMerge)
		default:
			err = fmt.Errorf("unknown BC kind: %s", bc.Kind)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func attachSources(alg *transport.Reactive, net *network.Network, cfg *config.Config) error {
	for _, src := range cfg.Sources {
		pores, err := facePores(net, src.Face)
		if err != nil {
			return err
		}
		var term physics.SourceTerm
		switch src.Kind {
		case "linear":
			term = physics.LinearSource{A1: src.A1, A2: src.A2}
		case "powerlaw":
			term = physics.PowerLawSource{A1: src.A1, A2: src.A2, A3: src.A3}
		default:
			return fmt.Errorf("unknown source kind: %s", src.Kind)
		}
		if err := alg.AddSource(term, pores); err != nil {
			return err
		}
	}
	return nil
}

// makeAlgorithm assembles the reactive algorithm for the configured kind.
// Plain diffusion and flow come back with no sources attached.
func makeAlgorithm(net *network.Network, ph *phase.Phase, cfg *config.Config, log *zap.Logger) (*transport.Reactive, error) {
	var alg *transport.Reactive
	switch cfg.Algorithm {
	case "fickian":
		alg = transport.NewReactive(transport.FickianDiffusion(net, ph, transport.WithLogger(log)))
	case "stokes":
		alg = transport.NewReactive(transport.StokesFlow(net, ph, transport.WithLogger(log)))
	case "reaction":
		alg = transport.FickianReaction(net, ph, transport.WithLogger(log))
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (want fickian, stokes or reaction)", cfg.Algorithm)
	}
	alg.Settings.Relaxation = cfg.Solver.Relaxation
	alg.Settings.Tolerance = cfg.Solver.Tolerance
	alg.Settings.MaxIters = cfg.Solver.MaxIters

	if err := applyBCs(alg.Transport, net, cfg); err != nil {
		return nil, err
	}
	if err := attachSources(alg, net, cfg); err != nil {
		return nil, err
	}
	return alg, nil
}

func generateNetwork(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "fickian")
	if err != nil {
		return err
	}
	net, _, err := buildNetwork(cfg)
	if err != nil {
		return err
	}
	if err := netio.SaveJSON(net, outPath); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d pores, %d throats\n", outPath, net.Np(), net.Nt())
	return nil
}

func runSteady(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	log := newLogger()
	defer log.Sync()

	net, ph, err := buildNetwork(cfg)
	if err != nil {
		return err
	}
	alg, err := makeAlgorithm(net, ph, cfg, log)
	if err != nil {
		return err
	}

	fmt.Printf("running %s on %d pores...\n", cfg.Algorithm, net.Np())
	start := time.Now()
	if err := alg.Run(context.Background(), makeSolver(cfg)); err != nil {
		return err
	}
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	metrics := faceRateMetrics(alg.Transport, net, cfg)
	runID, err := st.Save(storage.RunMetadata{
		Algorithm: cfg.Algorithm,
		Quantity:  alg.Settings.Quantity,
		Phase:     ph.Name(),
		Np:        net.Np(),
		Nt:        net.Nt(),
		Metrics:   metrics,
	}, alg.X())
	if err != nil {
		return err
	}

	min, max, mean := viz.FieldStats(alg.X())
	rows := [][2]string{
		{"run id", runID},
		{"elapsed", elapsed.String()},
		{"min", fmt.Sprintf("%.6g", min)},
		{"max", fmt.Sprintf("%.6g", max)},
		{"mean", fmt.Sprintf("%.6g", mean)},
	}
	for name, val := range metrics {
		rows = append(rows, [2]string{name, fmt.Sprintf("%.6g", val)})
	}
	fmt.Println(viz.Summary(alg.Settings.Quantity, rows))
	fmt.Println(viz.PlotProfile(net, alg.X(), 0, 30, "mean along x"))
	return nil
}

// faceRateMetrics records the net rate through each BC face, positive
// leaving the face pores.
func faceRateMetrics(alg *transport.Transport, net *network.Network, cfg *config.Config) map[string]float64 {
	metrics := make(map[string]float64)
	for _, bc := range cfg.BCs {
		pores, err := facePores(net, bc.Face)
		if err != nil {
			continue
		}
		rate, err := alg.Rate(pores, transport.RateGroup)
		if err != nil || len(rate) == 0 {
			continue
		}
		metrics["rate_"+bc.Face] = rate[0]
	}
	return metrics
}

func setupTransient(cmd *cobra.Command, args []string) (*config.Config, *network.Network, *transport.Transient, *zap.Logger, error) {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return nil, nil, nil, nil, err
	}
	log := newLogger()

	net, ph, err := buildNetwork(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	alg, err := makeAlgorithm(net, ph, cfg, log)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	tr := transport.NewTransient(alg)
	tr.Scheme = cfg.Transient.Scheme
	tr.Dt = cfg.Transient.Dt
	tr.Duration = cfg.Transient.Duration
	tr.SaveEvery = cfg.Transient.SaveEvery
	tr.Initial = cfg.Transient.Initial
	return cfg, net, tr, log, nil
}

func runTransient(cmd *cobra.Command, args []string) error {
	cfg, net, tr, log, err := setupTransient(cmd, args)
	if err != nil {
		return err
	}
	defer log.Sync()

	fmt.Printf("running transient %s on %d pores...\n", cfg.Algorithm, net.Np())
	start := time.Now()
	result, err := tr.Run(context.Background(), makeSolver(cfg))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.SaveSeries(storage.RunMetadata{
		Algorithm: cfg.Algorithm,
		Quantity:  tr.Settings.Quantity,
		Phase:     tr.Phase().Name(),
		Np:        net.Np(),
		Nt:        net.Nt(),
		Dt:        tr.Dt,
		Duration:  tr.Duration,
	}, result.Times, result.Fields)
	if err != nil {
		return err
	}

	min, max, mean := viz.FieldStats(result.Final())
	fmt.Println(viz.Summary(tr.Settings.Quantity, [][2]string{
		{"run id", runID},
		{"elapsed", elapsed.String()},
		{"snapshots", strconv.Itoa(len(result.Times))},
		{"final min", fmt.Sprintf("%.6g", min)},
		{"final max", fmt.Sprintf("%.6g", max)},
		{"final mean", fmt.Sprintf("%.6g", mean)},
	}))
	fmt.Println(viz.PlotProfile(net, result.Final(), 0, 30, "final mean along x"))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, net, tr, log, err := setupTransient(cmd, args)
	if err != nil {
		return err
	}
	defer log.Sync()

	fmt.Printf("solving %s before replay...\n", cfg.Algorithm)
	result, err := tr.Run(context.Background(), makeSolver(cfg))
	if err != nil {
		return err
	}

	model := viz.NewLiveModel(net, tr.Settings.Quantity, result.Times, result.Fields)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
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

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tALGORITHM\tQUANTITY\tPORES\tKIND\tTIMESTAMP")
	for _, run := range runs {
		kind := "steady"
		if run.Transient {
			kind = "transient"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			run.ID, run.Algorithm, run.Quantity, run.Np, kind,
			run.Timestamp.Format(time.RFC3339))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	field, err := st.LoadField(args[0])
	if err != nil {
		return err
	}
	min, max, mean := viz.FieldStats(field)

	rows := [][2]string{
		{"algorithm", meta.Algorithm},
		{"quantity", meta.Quantity},
		{"phase", meta.Phase},
		{"pores", strconv.Itoa(meta.Np)},
		{"throats", strconv.Itoa(meta.Nt)},
		{"min", fmt.Sprintf("%.6g", min)},
		{"max", fmt.Sprintf("%.6g", max)},
		{"mean", fmt.Sprintf("%.6g", mean)},
	}
	if meta.Transient {
		rows = append(rows,
			[2]string{"dt", fmt.Sprintf("%g", meta.Dt)},
			[2]string{"duration", fmt.Sprintf("%g", meta.Duration)})
	}
	for name, val := range meta.Metrics {
		rows = append(rows, [2]string{name, fmt.Sprintf("%.6g", val)})
	}
	fmt.Println(viz.Summary(meta.ID, rows))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if meta.Transient {
		times, fields, err := st.LoadSeries(args[0])
		if err != nil {
			return err
		}
		means := make([]float64, len(fields))
		for i, f := range fields {
			_, _, means[i] = viz.FieldStats(f)
		}
		fmt.Println(viz.PlotSeries(times, means, "mean "+meta.Quantity))
		return nil
	}
	field, err := st.LoadField(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.Sparkline(field, 60))
	min, max, mean := viz.FieldStats(field)
	fmt.Printf("min %.6g  max %.6g  mean %.6g\n", min, max, mean)
	return nil
}

func runRate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	log := newLogger()
	defer log.Sync()

	net, ph, err := buildNetwork(cfg)
	if err != nil {
		return err
	}
	alg, err := makeAlgorithm(net, ph, cfg, log)
	if err != nil {
		return err
	}
	if err := alg.Run(context.Background(), makeSolver(cfg)); err != nil {
		return err
	}

	rows := make([][2]string, 0, len(cfg.BCs)+1)
	total := 0.0
	for name, val := range faceRateMetrics(alg.Transport, net, cfg) {
		rows = append(rows, [2]string{name, fmt.Sprintf("%.6g", val)})
		total += val
	}
	rows = append(rows, [2]string{"balance", fmt.Sprintf("%.6g", total)})
	fmt.Println(viz.Summary(alg.Settings.Quantity+" rates", rows))
	return nil
}

// effectiveFor runs the matching steady algorithm and computes the
// requested effective property between the left and right faces.
func effectiveFor(ctx context.Context, property string, cfg *config.Config, log *zap.Logger) (float64, error) {
	switch property {
	case "diffusivity":
		cfg.Algorithm = "fickian"
	case "permeability":
		cfg.Algorithm = "stokes"
	default:
		return 0, fmt.Errorf("unknown property: %s (want diffusivity or permeability)", property)
	}

	net, ph, err := buildNetwork(cfg)
	if err != nil {
		return 0, err
	}
	alg, err := makeAlgorithm(net, ph, cfg, log)
	if err != nil {
		return 0, err
	}
	if err := alg.Run(ctx, makeSolver(cfg)); err != nil {
		return 0, err
	}

	inlets, err := facePores(net, "left")
	if err != nil {
		return 0, err
	}
	outlets, err := facePores(net, "right")
	if err != nil {
		return 0, err
	}
	if property == "permeability" {
		return transport.Permeability(alg.Transport, inlets, outlets)
	}
	return transport.EffectiveDiffusivity(alg.Transport, inlets, outlets)
}

func runEffective(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, "fickian")
	if err != nil {
		return err
	}
	log := newLogger()
	defer log.Sync()

	v, err := effectiveFor(context.Background(), args[0], cfg, log)
	if err != nil {
		return err
	}
	fmt.Printf("effective %s: %.6g\n", args[0], v)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	property := args[0]
	baseCfg, err := resolveConfig(cmd, "fickian")
	if err != nil {
		return err
	}
	log := newLogger()
	defer log.Sync()

	points := sweep.SeedRange(baseCfg.Seed, sweepRuns)
	fmt.Printf("sweeping %s over %d realizations...\n", property, len(points))
	start := time.Now()

	results, err := sweep.Run(context.Background(), points, sweepWorkers,
		func(ctx context.Context, pt sweep.Point) (float64, error) {
			cfg := *baseCfg
			cfg.Seed = pt.Seed
			return effectiveFor(ctx, property, &cfg, log)
		})
	if err != nil {
		return err
	}

	mean, std := sweep.Stats(results)
	values := make([]float64, len(results))
	for i, r := range results {
		values[i] = r.Value
	}
	fmt.Println(viz.Summary("sweep "+property, [][2]string{
		{"realizations", strconv.Itoa(len(results))},
		{"elapsed", time.Since(start).String()},
		{"mean", fmt.Sprintf("%.6g", mean)},
		{"std", fmt.Sprintf("%.6g", std)},
		{"spread", viz.Sparkline(values, 40)},
	}))
	return nil
}

func importStatoil(cmd *cobra.Command, args []string) error {
	net, err := netio.ImportStatoil(args[0], prefix)
	if err != nil {
		return err
	}
	if err := netio.SaveJSON(net, outPath); err != nil {
		return err
	}
	fmt.Printf("imported %d pores, %d throats -> %s\n", net.Np(), net.Nt(), outPath)
	return nil
}

func exportStatoil(cmd *cobra.Command, args []string) error {
	net, err := netio.LoadJSON(inPath)
	if err != nil {
		return err
	}
	if err := netio.ExportStatoil(net, args[0], prefix); err != nil {
		return err
	}
	fmt.Printf("exported %d pores, %d throats -> %s\n", net.Np(), net.Nt(), args[0])
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	field, err := st.LoadField(args[0])
	if err != nil {
		return err
	}
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	if err := w.Write([]string{"pore", "value"}); err != nil {
		return err
	}
	for i, v := range field {
		if err := w.Write([]string{strconv.Itoa(i), strconv.FormatFloat(v, 'g', 8, 64)}); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportJSON(args[0], outPath)
}

func checkHealth(cmd *cobra.Command, args []string) error {
	net, err := netio.LoadJSON(args[0])
	if err != nil {
		return err
	}
	isolated := topology.FindIsolatedPores(net.Np(), net.Conns())
	rows := [][2]string{
		{"pores", strconv.Itoa(net.Np())},
		{"throats", strconv.Itoa(net.Nt())},
		{"isolated", strconv.Itoa(len(isolated))},
	}
	fmt.Println(viz.Summary("network health", rows))
	if len(isolated) > 0 {
		fmt.Println("isolated pores can be removed with Trim before solving")
	}
	return nil
}
