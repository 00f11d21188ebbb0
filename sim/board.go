// Implements the Board, the top-level container driving lanes day by day,
// and the run drivers built on repeated stepping.

package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kanban-sim/kanban-sim/sim/trace"
)

// DefaultMaxDays guards RunSimulation against misconfigured boards that
// never drain.
const DefaultMaxDays = 100000

// Board is the top-level simulator: one or more lanes sharing (or
// individually owning) backlogs, plus a donelog collecting finished cards.
//
// A board built from a definition is a reusable template. Running mutates
// state in place, so drive a Clone and keep the template pristine.
type Board struct {
	Name    string
	Lanes   []*Lane
	Backlog *Backlog
	Donelog *Donelog

	key SimulationKey
	rng *PartitionedRNG
}

// NewBoard assembles a board and wires it: lanes without their own backlog
// share the board's, and every column is bound to its RNG stream derived
// from key.
func NewBoard(name string, lanes []*Lane, backlog *Backlog, key SimulationKey) *Board {
	b := &Board{
		Name:    name,
		Lanes:   lanes,
		Backlog: backlog,
		Donelog: NewDonelog("Done"),
		key:     key,
	}
	b.wire()
	return b
}

// wire attaches shared backlogs and binds RNG streams. Called on
// construction and again after cloning.
func (b *Board) wire() {
	b.rng = NewPartitionedRNG(b.key)
	for _, lane := range b.Lanes {
		if lane.Backlog == nil {
			lane.Backlog = b.Backlog
		}
		lane.bind(b.rng)
	}
}

// Key returns the SimulationKey controlling this board's randomness.
func (b *Board) Key() SimulationKey {
	return b.key
}

// Step advances the board one day: for every lane in order, pull cards from
// its backlog, then tick its columns. Finished cards land in the donelog.
func (b *Board) Step(day int) {
	for _, lane := range b.Lanes {
		lane.PullFromBacklog(day)
		lane.TickLane(day, b.Donelog)
	}
}

// Empty reports whether the simulation is complete: every backlog chain is
// exhausted and every lane (including active sub-lanes) holds zero cards.
func (b *Board) Empty() bool {
	if !b.Backlog.Empty() {
		return false
	}
	for _, lane := range b.Lanes {
		if !lane.Empty() {
			return false
		}
		if lane.Backlog != nil && !lane.Backlog.Empty() {
			return false
		}
	}
	return true
}

// Clone deep-copies the entire board into an independent instance with the
// same SimulationKey, so two clones of one template replay identically.
func (b *Board) Clone() *Board {
	return b.CloneWithKey(b.key)
}

// CloneWithKey deep-copies the board under a different SimulationKey,
// giving the clone independent random draws. Used per Monte Carlo trial.
// Each distinct backlog instance is cloned exactly once, so lanes sharing
// a backlog in the template keep sharing its copy in the clone.
func (b *Board) CloneWithKey(key SimulationKey) *Board {
	backlog := b.Backlog.Clone()
	cloned := map[*Backlog]*Backlog{b.Backlog: backlog}
	lanes := make([]*Lane, 0, len(b.Lanes))
	for _, lane := range b.Lanes {
		clone := lane.Clone(lane.Name)
		if lane.Backlog != nil {
			cp, ok := cloned[lane.Backlog]
			if !ok {
				cp = lane.Backlog.Clone()
				cloned[lane.Backlog] = cp
			}
			clone.Backlog = cp
		}
		lanes = append(lanes, clone)
	}
	nb := &Board{
		Name:    b.Name,
		Lanes:   lanes,
		Backlog: backlog,
		Donelog: b.Donelog.Clone(),
		key:     key,
	}
	nb.wire()
	return nb
}

// RunSimulation drives the board until it is empty and returns the number
// of days taken. maxDays <= 0 selects DefaultMaxDays; exceeding the guard
// returns an error rather than looping forever on a starved board.
func (b *Board) RunSimulation(maxDays int) (int, error) {
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}
	day := 0
	for !b.Empty() {
		day++
		if day > maxDays {
			return day, fmt.Errorf("board %s did not drain within %d days", b.Name, maxDays)
		}
		b.Step(day)
		logrus.Debugf("[day %04d] board %s: %d in flight, %d done", day, b.Name, b.CardsInFlight(), b.Donelog.Len())
	}
	logrus.Debugf("[day %04d] board %s drained", day, b.Name)
	return day, nil
}

// CardsInFlight returns the number of cards resident in lanes (excluding
// backlogs and the donelog).
func (b *Board) CardsInFlight() int {
	total := 0
	for _, lane := range b.Lanes {
		total += lane.Len()
	}
	return total
}

// Snapshot captures the board's occupancy as a read-only trace record.
func (b *Board) Snapshot(day int) trace.DayRecord {
	rec := trace.DayRecord{
		Day:     day,
		Backlog: b.Backlog.Len(),
		Done:    b.Donelog.Len(),
	}
	for _, lane := range b.Lanes {
		for _, col := range lane.Columns {
			rec.Occupancy = append(rec.Occupancy, trace.ColumnOccupancy{
				Lane:   lane.Name,
				Column: col.Name(),
				Cards:  col.Len(),
			})
		}
	}
	return rec
}

// Stepper returns a single-use day-by-day iterator over this board.
// Iterating mutates the board; to replay, clone the template again.
type Stepper struct {
	board *Board
	day   int
}

// Stepper creates an iterator positioned before day 1.
func (b *Board) Stepper() *Stepper {
	return &Stepper{board: b}
}

// Next advances one day and returns (day, board, true), or (lastDay, board,
// false) once the board is empty.
func (s *Stepper) Next() (int, *Board, bool) {
	if s.board.Empty() {
		return s.day, s.board, false
	}
	s.day++
	s.board.Step(s.day)
	return s.day, s.board, true
}

// Day returns the last completed day.
func (s *Stepper) Day() int {
	return s.day
}

func (b *Board) String() string {
	return fmt.Sprintf("<Board %s: %d lanes, %d in flight, %d done>", b.Name, len(b.Lanes), b.CardsInFlight(), b.Donelog.Len())
}
