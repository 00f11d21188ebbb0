// Defines the Card struct that models a unit of work flowing across a board.
// Tracks age, touch time, active days, and a per-column history log.

package sim

import (
	"fmt"
)

// CardType tags the kind of work a card represents. Columns admit a single
// card type; the tag is an open string so boards can define their own kinds.
type CardType string

const (
	CardTypeEpic  CardType = "epic"
	CardTypeStory CardType = "story"
)

// ColumnRecord is the history entry snapshotted when a card leaves a column.
type ColumnRecord struct {
	Column string // column name
	Age    int    // days the card was resident
	Touch  int    // days the card was actively worked
	Dates  []int  // day numbers the card was resident
}

// Card models a single unit of work.
// Aggregate counters (Age, Touch, Dates) cover the card's whole life;
// the current record accumulates since the card entered its present column
// and is appended to History when the card leaves. Touch <= Age always.
type Card struct {
	Name   string
	Type   CardType
	Parent string // name of the epic this card was split from, "" if none

	Age   int
	Touch int
	Dates []int

	// Splits maps column name -> number of stories to split into when this
	// card (an epic) first enters that column. Resolved at most once per
	// named column.
	Splits map[string]int

	// Completed holds the finished stories delivered by this epic's
	// sub-lane. Empty for non-epics.
	Completed []*Card

	history  []ColumnRecord
	current  *ColumnRecord
	resolved map[string]bool
}

// NewCard creates a card with no history.
func NewCard(name string, cardType CardType) *Card {
	return &Card{Name: name, Type: cardType}
}

// NewEpic creates an epic card with the given split table.
func NewEpic(name string, splits map[string]int) *Card {
	return &Card{Name: name, Type: CardTypeEpic, Splits: splits}
}

// NewStory creates a story card spawned from a parent epic.
func NewStory(name string, parent string) *Card {
	return &Card{Name: name, Type: CardTypeStory, Parent: parent}
}

// Enter records that the card was admitted into a column, starting a fresh
// per-column accumulator. The entry day shows up in the record's Dates on
// the first Advance of that day.
func (c *Card) Enter(column string) {
	c.current = &ColumnRecord{Column: column}
}

// Advance records one day of residency. applied reports whether the holding
// column spent an effort unit on the card this tick.
func (c *Card) Advance(day int, applied bool) {
	c.Age++
	c.Dates = append(c.Dates, day)
	if applied {
		c.Touch++
	}
	if c.current != nil {
		c.current.Age++
		c.current.Dates = append(c.current.Dates, day)
		if applied {
			c.current.Touch++
		}
	}
}

// Leave snapshots the accumulated record into History. The record is never
// overwritten afterwards; re-entering a column of the same name appends a
// new entry.
func (c *Card) Leave() {
	if c.current == nil {
		return
	}
	c.history = append(c.history, *c.current)
	c.current = nil
}

// History returns the per-column records in the order columns were visited.
// The returned slice is the card's internal storage; callers must not
// modify it.
func (c *Card) History() []ColumnRecord {
	return c.history
}

// CurrentRecord returns the record accumulating in the card's present
// column, or a zero record if the card is between containers.
func (c *Card) CurrentRecord() ColumnRecord {
	if c.current == nil {
		return ColumnRecord{}
	}
	return *c.current
}

// ResolveSplit returns the number of stories to spawn on entering the named
// column, resolving the split at most once. The second result is false when
// no split applies (absent or already resolved).
func (c *Card) ResolveSplit(column string) (int, bool) {
	count, ok := c.Splits[column]
	if !ok || c.resolved[column] {
		return 0, false
	}
	if c.resolved == nil {
		c.resolved = make(map[string]bool)
	}
	c.resolved[column] = true
	return count, true
}

// SpawnStories creates the split-generated stories for this epic, named
// "<epic>-01" onwards so lineage is readable in downstream reports.
func (c *Card) SpawnStories(count int) []*Card {
	stories := make([]*Card, 0, count)
	for i := 0; i < count; i++ {
		stories = append(stories, NewStory(fmt.Sprintf("%s-%02d", c.Name, i+1), c.Name))
	}
	return stories
}

// Clone deep-copies the card, including history and split state, producing
// fresh identity for board cloning.
func (c *Card) Clone() *Card {
	clone := &Card{
		Name:   c.Name,
		Type:   c.Type,
		Parent: c.Parent,
		Age:    c.Age,
		Touch:  c.Touch,
		Dates:  append([]int(nil), c.Dates...),
	}
	if c.Splits != nil {
		clone.Splits = make(map[string]int, len(c.Splits))
		for k, v := range c.Splits {
			clone.Splits[k] = v
		}
	}
	if c.resolved != nil {
		clone.resolved = make(map[string]bool, len(c.resolved))
		for k, v := range c.resolved {
			clone.resolved[k] = v
		}
	}
	for _, done := range c.Completed {
		clone.Completed = append(clone.Completed, done.Clone())
	}
	for _, rec := range c.history {
		cp := rec
		cp.Dates = append([]int(nil), rec.Dates...)
		clone.history = append(clone.history, cp)
	}
	if c.current != nil {
		cp := *c.current
		cp.Dates = append([]int(nil), c.current.Dates...)
		clone.current = &cp
	}
	return clone
}

// String returns a human-readable representation of the card.
func (c *Card) String() string {
	return fmt.Sprintf("Card: (Name: %s, Type: %s, Age: %d, Touch: %d)", c.Name, c.Type, c.Age, c.Touch)
}
