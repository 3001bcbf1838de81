package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jihwankim/cascadesim/pkg/config"
	"github.com/jihwankim/cascadesim/pkg/glitch"
	"github.com/jihwankim/cascadesim/pkg/graph"
	"github.com/jihwankim/cascadesim/pkg/ledger"
	"github.com/jihwankim/cascadesim/pkg/query"
	"github.com/jihwankim/cascadesim/pkg/simmetrics"
	"github.com/jihwankim/cascadesim/pkg/simulator"
	"github.com/jihwankim/cascadesim/pkg/topology"
	"github.com/jihwankim/cascadesim/pkg/tracelog"
)

var (
	queryString string
	interactive bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run the simulation",
	Long:  `Loads the configured topology and runs the simulation for the configured number of ticks.`,
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringVar(&queryString, "query", "", "run one diagnostic query after the simulation completes, then exit")
	runCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "enter the interactive query REPL after the simulation completes")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if strings.Contains(err.Error(), "parse") {
			return fmt.Errorf("%w: %s: %v", ErrConfigParse, cfgPath, err)
		}
		return fmt.Errorf("%w: %s: %v", ErrConfigIO, cfgPath, err)
	}

	descriptors, err := topology.Load(inputPath)
	if err != nil {
		if strings.Contains(err.Error(), "parse") {
			return fmt.Errorf("%w: %s: %v", ErrInputParse, inputPath, err)
		}
		return fmt.Errorf("%w: %s: %v", ErrInputIO, inputPath, err)
	}

	g, err := graph.Build(descriptors)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInputParse, inputPath, err)
	}

	logLevel := tracelog.LevelInfo
	if verbose {
		logLevel = tracelog.LevelDebug
	}
	logger := tracelog.New(tracelog.Config{
		Level:  logLevel,
		Format: tracelog.Format(cfg.Logging.Format),
		Output: os.Stdout,
	})
	logger.Info("cascadesim starting", "version", version, "ticks", cfg.Ticks, "seed", cfg.Seed)

	sink, err := tracelog.OpenRun("runs", time.Now())
	if err != nil {
		return fmt.Errorf("cascadesim: open trace sink: %w", err)
	}
	defer sink.Close()

	rng := glitch.Default(cfg.Seed)
	l := ledger.New()
	metrics := simmetrics.New()

	sim := simulator.New(g, cfg, rng, l, metrics, sink, sink.RunID)

	logger.Info("simulation running", "run_id", sink.RunID)
	result, err := sim.Run(context.Background())
	if err != nil {
		logger.Error("simulation stopped early", "error", err)
		return err
	}
	logger.Info("simulation complete", "ticks", result.Ticks)

	if block, gatherErr := metrics.Gather(); gatherErr == nil {
		sink.Raw("[METRICS]\n" + block)
	} else {
		logger.Warn("failed to gather metrics", "error", gatherErr)
	}

	engine := query.New(g, l, cfg.Threshold, sim.Tick())

	if queryString != "" {
		fmt.Println(engine.Handle(queryString))
	}

	if interactive {
		runREPL(engine)
	}

	return nil
}
