// Implements the SublaneColumn, a stage that fans an epic out into a batch
// of stories worked in a nested lane. The epic stays resident until its
// sub-lane has delivered every story.

package sim

import (
	"fmt"
	"math/rand"
)

// sublaneEntry tracks one resident epic and the sub-lane working its split
// stories. lane is nil when the epic declared no split for this column.
type sublaneEntry struct {
	epic     *Card
	lane     *Lane
	doneLog  *Donelog
	required int // the epic's own nominal effort, drawn at admission
	done     int
}

// SublaneColumn holds epics and runs one nested lane per epic, instantiated
// fresh from a template against the epic's split-generated backlog. The WIP
// limit bounds how many sub-lanes may be concurrently active.
type SublaneColumn struct {
	name     string
	cardType CardType
	wipLimit int
	template *Lane
	effort   EffortSampler // optional; nil means the epic itself needs no work

	rng     *rand.Rand
	part    *PartitionedRNG
	entries []*sublaneEntry
}

// NewSublaneColumn creates a sublane column working cards of the given type
// (normally epics) with one sub-lane per card, built from template.
func NewSublaneColumn(name string, cardType CardType, wipLimit int, template *Lane, effort EffortSampler) *SublaneColumn {
	return &SublaneColumn{
		name:     name,
		cardType: cardType,
		wipLimit: wipLimit,
		template: template,
		effort:   effort,
	}
}

func (sc *SublaneColumn) Name() string       { return sc.name }
func (sc *SublaneColumn) CardType() CardType { return sc.cardType }
func (sc *SublaneColumn) WIPLimit() int      { return sc.wipLimit }

func (sc *SublaneColumn) HasCapacity() bool {
	return sc.wipLimit == 0 || len(sc.entries) < sc.wipLimit
}

func (sc *SublaneColumn) CanAdmit(c *Card) bool {
	return c.Type == sc.cardType && sc.HasCapacity()
}

// Admit accepts an epic, resolving its split for this column exactly once:
// the spawned stories become the backlog of a fresh sub-lane cloned from the
// template. An epic without a split for this column passes through after its
// nominal effort alone.
func (sc *SublaneColumn) Admit(c *Card) {
	if !sc.CanAdmit(c) {
		panic(fmt.Sprintf("Admit: column %s cannot accept card %s", sc.name, c.Name))
	}
	c.Enter(sc.name)

	entry := &sublaneEntry{
		epic:    c,
		doneLog: NewDonelog(sc.name + "/" + c.Name + " done"),
	}
	if sc.effort != nil {
		entry.required = sc.effort.Sample(sc.rng)
	}
	if count, ok := c.ResolveSplit(sc.name); ok && count > 0 {
		backlog := NewBacklog(c.Name + " split")
		for _, story := range c.SpawnStories(count) {
			backlog.Push(story)
		}
		sub := sc.template.Clone(fmt.Sprintf("%s/%s", sc.name, c.Name))
		sub.Backlog = backlog
		if sc.part != nil {
			sub.bind(sc.part)
		}
		entry.lane = sub
	}
	sc.entries = append(sc.entries, entry)
}

// TickColumn ages every resident epic and steps its sub-lane one day
// (backlog pull, then lane tick). An epic is ready only when its sub-lane is
// fully drained and its own nominal effort is satisfied.
func (sc *SublaneColumn) TickColumn(day int) []*Card {
	var ready []*Card
	for _, entry := range sc.entries {
		apply := entry.done < entry.required
		entry.epic.Advance(day, apply)
		if apply {
			entry.done++
		}
		if entry.lane != nil {
			entry.lane.PullFromBacklog(day)
			entry.lane.TickLane(day, entry.doneLog)
		}
		if sc.drained(entry) && entry.done >= entry.required {
			ready = append(ready, entry.epic)
		}
	}
	return ready
}

// drained reports whether the entry's sub-lane has delivered every story.
func (sc *SublaneColumn) drained(entry *sublaneEntry) bool {
	if entry.lane == nil {
		return true
	}
	return entry.lane.Backlog.Empty() && entry.lane.Empty()
}

// Release removes a ready epic, attaching its delivered stories.
func (sc *SublaneColumn) Release(c *Card) {
	for i, entry := range sc.entries {
		if entry.epic == c {
			c.Completed = append(c.Completed, entry.doneLog.Cards()...)
			sc.entries = append(sc.entries[:i], sc.entries[i+1:]...)
			c.Leave()
			return
		}
	}
	panic(fmt.Sprintf("Release: card %s not resident in column %s", c.Name, sc.name))
}

func (sc *SublaneColumn) Cards() []*Card {
	cards := make([]*Card, 0, len(sc.entries))
	for _, entry := range sc.entries {
		cards = append(cards, entry.epic)
	}
	return cards
}

func (sc *SublaneColumn) Len() int    { return len(sc.entries) }
func (sc *SublaneColumn) Empty() bool { return len(sc.entries) == 0 }

// Sublanes returns the currently active sub-lanes for observation.
func (sc *SublaneColumn) Sublanes() []*Lane {
	lanes := make([]*Lane, 0, len(sc.entries))
	for _, entry := range sc.entries {
		if entry.lane != nil {
			lanes = append(lanes, entry.lane)
		}
	}
	return lanes
}

func (sc *SublaneColumn) Clone() Column {
	clone := &SublaneColumn{
		name:     sc.name,
		cardType: sc.cardType,
		wipLimit: sc.wipLimit,
		template: sc.template.Clone(sc.template.Name),
		effort:   sc.effort,
	}
	for _, entry := range sc.entries {
		cp := &sublaneEntry{
			epic:     entry.epic.Clone(),
			doneLog:  entry.doneLog.Clone(),
			required: entry.required,
			done:     entry.done,
		}
		if entry.lane != nil {
			cp.lane = entry.lane.Clone(entry.lane.Name)
			cp.lane.Backlog = entry.lane.Backlog.Clone()
		}
		clone.entries = append(clone.entries, cp)
	}
	return clone
}

func (sc *SublaneColumn) bind(part *PartitionedRNG, lane string) {
	sc.part = part
	sc.rng = part.ForSubsystem(SubsystemColumn(lane, sc.name))
	for _, entry := range sc.entries {
		if entry.lane != nil {
			entry.lane.bind(part)
		}
	}
}

func (sc *SublaneColumn) String() string {
	return fmt.Sprintf("<SublaneColumn %s: %d active sub-lanes>", sc.name, len(sc.entries))
}
