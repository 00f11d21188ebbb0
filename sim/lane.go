// Implements the Lane, an ordered pipeline of columns working one card type,
// fed by a backlog and optionally bounded by a lane-wide WIP limit.

package sim

import (
	"fmt"
)

// Lane is an ordered sequence of columns. Cards are pulled from the backlog
// into the head column and advance toward the tail; cards leaving the tail
// are handed to the donelog passed to TickLane.
type Lane struct {
	Name     string
	WIPLimit int // 0 = unbounded; bounds total resident cards across columns
	Columns  []Column

	// Backlog is the lane's card source. Lanes without their own backlog
	// are wired to the board's shared backlog.
	Backlog *Backlog
}

// NewLane creates a lane over the given columns.
func NewLane(name string, wipLimit int, columns ...Column) *Lane {
	return &Lane{Name: name, WIPLimit: wipLimit, Columns: columns}
}

// Len returns the total number of cards resident anywhere in the lane.
func (l *Lane) Len() int {
	total := 0
	for _, col := range l.Columns {
		total += col.Len()
	}
	return total
}

// Empty reports whether every column in the lane holds zero cards.
// The backlog is checked separately by the board, since it may be shared.
func (l *Lane) Empty() bool {
	for _, col := range l.Columns {
		if !col.Empty() {
			return false
		}
	}
	return true
}

// PullFromBacklog admits cards into the head column while the lane-wide WIP
// limit and the head column's capacity allow. Exhaustion of the backlog
// chain simply stops the pull.
func (l *Lane) PullFromBacklog(day int) {
	if len(l.Columns) == 0 || l.Backlog == nil {
		return
	}
	head := l.Columns[0]
	for {
		if l.WIPLimit > 0 && l.Len() >= l.WIPLimit {
			return
		}
		if !head.HasCapacity() {
			return
		}
		card := l.Backlog.Next(head.CardType())
		if card == nil {
			return
		}
		head.Admit(card)
	}
}

// TickLane processes columns in reverse pipeline order so a card that
// becomes ready in column i is not processed again in column i+1 within the
// same tick. Ready cards move forward only if the downstream column admits
// them; otherwise they stay resident and are retried next tick. Cards ready
// to leave the final column are appended to done.
func (l *Lane) TickLane(day int, done *Donelog) {
	last := len(l.Columns) - 1
	for i := last; i >= 0; i-- {
		col := l.Columns[i]
		for _, card := range col.TickColumn(day) {
			if i == last {
				col.Release(card)
				done.Append(card)
				continue
			}
			next := l.Columns[i+1]
			if next.CanAdmit(card) {
				col.Release(card)
				next.Admit(card)
			}
		}
	}
}

// Clone produces a structurally independent copy of the lane under a new
// name: fresh column state, same backlog reference. The board rewires
// backlogs and RNG streams when it is cloned itself.
func (l *Lane) Clone(name string) *Lane {
	clone := &Lane{Name: name, WIPLimit: l.WIPLimit, Backlog: l.Backlog}
	clone.Columns = make([]Column, 0, len(l.Columns))
	for _, col := range l.Columns {
		clone.Columns = append(clone.Columns, col.Clone())
	}
	return clone
}

// bind attaches each column to its RNG stream, named after this lane.
func (l *Lane) bind(part *PartitionedRNG) {
	for _, col := range l.Columns {
		col.bind(part, l.Name)
	}
}

func (l *Lane) String() string {
	return fmt.Sprintf("<Lane %s: %d columns, %d cards>", l.Name, len(l.Columns), l.Len())
}
