package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kanban-sim/kanban-sim/sim"
	"github.com/kanban-sim/kanban-sim/sim/trace"
)

var (
	runBoardFile string // board definition YAML
	runSeed      int64  // simulation key seed
	runMaxDays   int    // non-termination guard
	runShowTrace bool   // print per-day occupancy
)

// runCmd replays the board definition once and prints the outcome.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation of a board definition",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := sim.LoadBoardSpec(runBoardFile)
		if err != nil {
			logrus.Fatalf("Invalid board definition: %v", err)
		}
		template, err := spec.Build()
		if err != nil {
			logrus.Fatalf("Invalid board definition: %v", err)
		}

		seed := int64Setting(cmd, "seed", "seed", runSeed)
		maxDays := intSetting(cmd, "max-days", "max_days", runMaxDays)
		if maxDays <= 0 && spec.MaxDays > 0 {
			maxDays = spec.MaxDays
		}

		board := template.CloneWithKey(sim.NewSimulationKey(seed))
		rt := trace.NewRunTrace(board.Name)
		stepper := board.Stepper()
		for {
			day, b, ok := stepper.Next()
			if !ok {
				break
			}
			if maxDays > 0 && day > maxDays {
				logrus.Fatalf("Board %s did not drain within %d days", b.Name, maxDays)
			}
			rt.Record(b.Snapshot(day))
		}

		fmt.Printf("board %s finished in %d days, %d cards done\n", board.Name, stepper.Day(), board.Donelog.Len())
		if runShowTrace {
			for _, rec := range rt.Records {
				fmt.Printf("day %4d: backlog=%d in-flight=%d done=%d\n", rec.Day, rec.Backlog, rec.InFlight(), rec.Done)
			}
		}
		for _, card := range board.Donelog.Cards() {
			fmt.Printf("  %-20s age=%3d touch=%3d\n", card.Name, card.Age, card.Touch)
		}
	},
}

func init() {
	runCmd.Flags().StringVar(&runBoardFile, "board", "", "Board definition YAML file (required)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 42, "Seed for effort sampling")
	runCmd.Flags().IntVar(&runMaxDays, "max-days", 0, "Abort if the board is not drained after this many days (0 = default guard)")
	runCmd.Flags().BoolVar(&runShowTrace, "trace", false, "Print per-day occupancy records")
	runCmd.MarkFlagRequired("board")

	rootCmd.AddCommand(runCmd)
}
