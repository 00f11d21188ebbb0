package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kanban-sim/kanban-sim/sim"
	"github.com/kanban-sim/kanban-sim/sim/trace"
	"github.com/kanban-sim/kanban-sim/store"
)

var (
	mcBoardFile string // board definition YAML
	mcTrials    int    // number of independent trials
	mcWorkers   int    // parallel workers (1 = sequential)
	mcSeed      int64  // base simulation key seed
	mcMaxDays   int    // per-trial non-termination guard
	mcDBPath    string // optional sqlite database for outcomes
)

// montecarloCmd replays the board N times and summarizes finish days.
var montecarloCmd = &cobra.Command{
	Use:   "montecarlo",
	Short: "Run a Monte Carlo batch and summarize the finish-day distribution",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := sim.LoadBoardSpec(mcBoardFile)
		if err != nil {
			logrus.Fatalf("Invalid board definition: %v", err)
		}
		template, err := spec.Build()
		if err != nil {
			logrus.Fatalf("Invalid board definition: %v", err)
		}

		seed := int64Setting(cmd, "seed", "seed", mcSeed)
		trials := intSetting(cmd, "trials", "trials", mcTrials)
		workers := intSetting(cmd, "workers", "workers", mcWorkers)
		maxDays := intSetting(cmd, "max-days", "max_days", mcMaxDays)
		if maxDays <= 0 && spec.MaxDays > 0 {
			maxDays = spec.MaxDays
		}

		outcomes, err := sim.RunMonteCarlo(template, sim.MonteCarloOptions{
			Trials:  trials,
			Workers: workers,
			MaxDays: maxDays,
			Key:     sim.NewSimulationKey(seed),
		})
		if err != nil {
			logrus.Fatalf("Monte Carlo failed: %v", err)
		}

		summary := trace.NewSummary(sim.FinishDays(outcomes))
		fmt.Printf("board %s: %s\n", template.Name, summary)

		if mcDBPath != "" {
			persistOutcomes(template.Name, seed, outcomes)
		}
	},
}

// persistOutcomes writes trial results to the sqlite results store.
func persistOutcomes(board string, seed int64, outcomes []sim.Outcome) {
	db, err := store.New(mcDBPath)
	if err != nil {
		logrus.Fatalf("Could not open results store: %v", err)
	}
	defer db.Close()

	results := make([]store.TrialResult, 0, len(outcomes))
	for _, o := range outcomes {
		results = append(results, store.TrialResult{
			Trial:     o.Trial,
			FinishDay: o.FinishDay,
			CardsDone: o.Board.Donelog.Len(),
		})
	}
	run, err := db.SaveRun(board, seed, results)
	if err != nil {
		logrus.Fatalf("Could not persist outcomes: %v", err)
	}
	fmt.Printf("saved run %s (%d trials) to %s\n", run.ID, run.Trials, mcDBPath)
}

func init() {
	montecarloCmd.Flags().StringVar(&mcBoardFile, "board", "", "Board definition YAML file (required)")
	montecarloCmd.Flags().IntVar(&mcTrials, "trials", 100, "Number of independent trials")
	montecarloCmd.Flags().IntVar(&mcWorkers, "workers", 1, "Parallel trial workers (1 = strictly sequential)")
	montecarloCmd.Flags().Int64Var(&mcSeed, "seed", 42, "Base seed; trial n derives its own key from it")
	montecarloCmd.Flags().IntVar(&mcMaxDays, "max-days", 0, "Per-trial day guard (0 = default guard)")
	montecarloCmd.Flags().StringVar(&mcDBPath, "db", "", "SQLite file to persist outcomes (optional)")
	montecarloCmd.MarkFlagRequired("board")

	rootCmd.AddCommand(montecarloCmd)
}
