package cmd

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/resvsim/schedule-sim/sim"
	"github.com/resvsim/schedule-sim/sim/deck"
	"github.com/resvsim/schedule-sim/sim/restart"
	"github.com/resvsim/schedule-sim/sim/trace"
)

var (
	// CLI flags for the run command
	deckPath     string // YAML deck to run
	logLevel     string // Log verbosity level
	archivePath  string // SQLite archive receiving restart steps (optional)
	metricsFile  string // Prometheus text exposition written after the run (optional)
	traceLevel   string // Decision trace level
	printMetrics bool   // Print the run metrics to stdout
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "schedule-sim",
	Short: "Schedule engine and restart writer for reservoir simulation runs",
}

// runConfig carries the run command's inputs.
type runConfig struct {
	DeckPath    string
	ArchivePath string
	MetricsFile string
	TraceLevel  string
}

// runCmd runs a deck through its report steps using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a deck through its report steps",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		if deckPath == "" {
			logrus.Fatalf("--deck is required")
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}
		s, err := runDeck(runConfig{
			DeckPath:    deckPath,
			ArchivePath: archivePath,
			MetricsFile: metricsFile,
			TraceLevel:  traceLevel,
		})
		if err != nil {
			logrus.Fatalf("run failed: %v", err)
		}
		if printMetrics {
			s.Metrics.Print()
		}
		if s.Trace != nil {
			ts := trace.Summarize(s.Trace)
			fmt.Printf("Trace: %d evaluations, %d triggered, %d skipped, %d sub-steps\n",
				ts.TotalEvaluations, ts.TriggeredCount, ts.SkippedCount, ts.SubStepCount)
		}
		if status, stopped := s.Exit(); stopped {
			logrus.Infof("run stopped after step %d with exit code %d", status.Step, status.Code)
			os.Exit(status.Code)
		}
	},
}

// runDeck loads, builds and runs a deck. The archive, when configured, gets a
// new run ID; the metrics file is written only for successful runs.
func runDeck(cfg runConfig) (s *sim.Simulator, retErr error) {
	d, err := deck.Load(cfg.DeckPath)
	if err != nil {
		return nil, err
	}
	sched, err := d.Build()
	if err != nil {
		return nil, fmt.Errorf("building schedule: %w", err)
	}
	reg := prometheus.NewRegistry()
	opts := sim.Options{
		Dims:       d.RestartDims(),
		Trace:      trace.TraceConfig{Level: trace.TraceLevel(cfg.TraceLevel)},
		Registerer: reg,
	}
	if cfg.ArchivePath != "" {
		ar, err := restart.OpenArchive(cfg.ArchivePath)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := ar.Close(); err != nil && retErr == nil {
				retErr = err
			}
		}()
		if _, err := ar.BeginRun(sched.UnitSystem().String(), sched.NumReportSteps()); err != nil {
			return nil, err
		}
		opts.Output = ar
	}
	s, err = sim.NewSimulator(sched, opts)
	if err != nil {
		return nil, err
	}
	if err := s.Run(); err != nil {
		return s, err
	}
	if cfg.MetricsFile != "" {
		if err := writeMetricsFile(reg, cfg.MetricsFile); err != nil {
			return s, err
		}
	}
	return s, nil
}

// writeMetricsFile writes every gathered family in the Prometheus text format.
func writeMetricsFile(g prometheus.Gatherer, path string) (retErr error) {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating metrics file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}()
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			return fmt.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	logrus.Infof("metrics written to %s", path)
	return nil
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&deckPath, "deck", "", "Path to the YAML deck")
	runCmd.Flags().StringVar(&archivePath, "archive", "", "SQLite archive receiving the restart data of every report step")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions, steps)")
	runCmd.Flags().BoolVar(&printMetrics, "print-metrics", true, "Print run metrics to stdout")

	validateCmd.Flags().StringVar(&deckPath, "deck", "", "Path to the YAML deck")

	inspectCmd.Flags().StringVar(&archivePath, "archive", "schedule-sim.db", "SQLite archive to read")
	inspectCmd.Flags().StringVar(&inspectRun, "run", "", "Run ID (default: the latest run)")
	inspectCmd.Flags().IntVar(&inspectStep, "step", 0, "Report step to show (default: list the steps)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(inspectCmd)
}
