// Implements the Monte Carlo runner: N independent replays of a cloned
// board template, each with its own derived RNG key, aggregated in trial
// order for external sorting and quantile analysis.

package sim

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Outcome is the result of one Monte Carlo trial.
type Outcome struct {
	Trial     int
	FinishDay int
	Board     *Board // the drained clone, donelog included
}

// MonteCarloOptions configures RunMonteCarlo.
type MonteCarloOptions struct {
	Trials  int
	Workers int // <= 1 runs trials strictly sequentially
	MaxDays int // per-trial guard; <= 0 selects DefaultMaxDays
	Key     SimulationKey
}

// RunMonteCarlo replays trials independent clones of the template to
// completion and returns one Outcome per trial, in trial order (not sorted
// by finish day). Trial n runs under TrialKey(opts.Key, n), so no two
// trials share random draws and no trial observes another's state; with
// Workers > 1 trials run concurrently on isolated clones.
func RunMonteCarlo(template *Board, opts MonteCarloOptions) ([]Outcome, error) {
	if opts.Trials <= 0 {
		return nil, fmt.Errorf("monte carlo requires at least 1 trial, got %d", opts.Trials)
	}

	outcomes := make([]Outcome, opts.Trials)
	errs := make([]error, opts.Trials)

	runTrial := func(n int) {
		board := template.CloneWithKey(TrialKey(opts.Key, n))
		day, err := board.RunSimulation(opts.MaxDays)
		outcomes[n] = Outcome{Trial: n, FinishDay: day, Board: board}
		errs[n] = err
	}

	if opts.Workers <= 1 {
		for n := 0; n < opts.Trials; n++ {
			runTrial(n)
		}
	} else {
		trials := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < opts.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for n := range trials {
					runTrial(n)
				}
			}()
		}
		for n := 0; n < opts.Trials; n++ {
			trials <- n
		}
		close(trials)
		wg.Wait()
	}

	for n, err := range errs {
		if err != nil {
			return outcomes, fmt.Errorf("trial %d: %w", n, err)
		}
	}
	logrus.Infof("monte carlo: %d trials of board %s complete", opts.Trials, template.Name)
	return outcomes, nil
}

// FinishDays extracts the finish day of every outcome, in trial order.
func FinishDays(outcomes []Outcome) []int {
	days := make([]int, len(outcomes))
	for i, o := range outcomes {
		days[i] = o.FinishDay
	}
	return days
}
