// Implements the capacity-limited stages of a lane. A WorkColumn spends one
// effort unit per resident card per tick; a QueueColumn is a pure holding
// stage that meters WIP into the next column.

package sim

import (
	"fmt"
	"math/rand"
)

// Column is a capacity-limited pipeline stage. Implementations accept a
// single card type, hold at most WIPLimit cards, and report cards ready to
// move forward from TickColumn. Admission beyond capacity is refused, never
// an error: the caller retries next tick (backpressure).
type Column interface {
	Name() string
	CardType() CardType
	// WIPLimit returns the maximum number of concurrently held cards;
	// 0 means unbounded.
	WIPLimit() int
	// HasCapacity reports whether one more card fits.
	HasCapacity() bool
	// CanAdmit reports whether the card's type matches and capacity allows.
	CanAdmit(c *Card) bool
	// Admit accepts a card, drawing its required effort once.
	// Callers must check CanAdmit first.
	Admit(c *Card)
	// TickColumn applies one day to every resident card and returns the
	// cards ready to leave. Ready cards stay resident until Release.
	TickColumn(day int) []*Card
	// Release removes a ready card, snapshotting its column history.
	Release(c *Card)
	// Cards returns the resident cards for read-only iteration.
	Cards() []*Card
	Len() int
	Empty() bool
	// Clone deep-copies the column, including resident cards. The clone's
	// RNG stream is rebound when its board is wired.
	Clone() Column

	bind(part *PartitionedRNG, lane string)
}

// workItem pairs a resident card with its effort bookkeeping. The required
// effort is drawn once at admission; done accumulates one unit per tick.
type workItem struct {
	card     *Card
	required int
	done     int
}

// WorkColumn is a stage that actively works its resident cards.
type WorkColumn struct {
	name     string
	cardType CardType
	wipLimit int
	effort   EffortSampler
	rng      *rand.Rand
	items    []*workItem
}

// NewWorkColumn creates a work column. A nil effort sampler means zero
// effort (cards pass through after a single tick).
func NewWorkColumn(name string, cardType CardType, wipLimit int, effort EffortSampler) *WorkColumn {
	if effort == nil {
		effort = &ConstantEffort{value: 0}
	}
	return &WorkColumn{name: name, cardType: cardType, wipLimit: wipLimit, effort: effort}
}

func (wc *WorkColumn) Name() string       { return wc.name }
func (wc *WorkColumn) CardType() CardType { return wc.cardType }
func (wc *WorkColumn) WIPLimit() int      { return wc.wipLimit }

func (wc *WorkColumn) HasCapacity() bool {
	return wc.wipLimit == 0 || len(wc.items) < wc.wipLimit
}

func (wc *WorkColumn) CanAdmit(c *Card) bool {
	return c.Type == wc.cardType && wc.HasCapacity()
}

func (wc *WorkColumn) Admit(c *Card) {
	if !wc.CanAdmit(c) {
		panic(fmt.Sprintf("Admit: column %s cannot accept card %s", wc.name, c.Name))
	}
	c.Enter(wc.name)
	wc.items = append(wc.items, &workItem{card: c, required: wc.effort.Sample(wc.rng)})
}

func (wc *WorkColumn) TickColumn(day int) []*Card {
	var ready []*Card
	for _, item := range wc.items {
		apply := item.done < item.required
		item.card.Advance(day, apply)
		if apply {
			item.done++
		}
		if item.done >= item.required {
			ready = append(ready, item.card)
		}
	}
	return ready
}

func (wc *WorkColumn) Release(c *Card) {
	for i, item := range wc.items {
		if item.card == c {
			wc.items = append(wc.items[:i], wc.items[i+1:]...)
			c.Leave()
			return
		}
	}
	panic(fmt.Sprintf("Release: card %s not resident in column %s", c.Name, wc.name))
}

func (wc *WorkColumn) Cards() []*Card {
	cards := make([]*Card, 0, len(wc.items))
	for _, item := range wc.items {
		cards = append(cards, item.card)
	}
	return cards
}

func (wc *WorkColumn) Len() int    { return len(wc.items) }
func (wc *WorkColumn) Empty() bool { return len(wc.items) == 0 }

func (wc *WorkColumn) Clone() Column {
	clone := &WorkColumn{
		name:     wc.name,
		cardType: wc.cardType,
		wipLimit: wc.wipLimit,
		effort:   wc.effort,
	}
	for _, item := range wc.items {
		clone.items = append(clone.items, &workItem{
			card:     item.card.Clone(),
			required: item.required,
			done:     item.done,
		})
	}
	return clone
}

func (wc *WorkColumn) bind(part *PartitionedRNG, lane string) {
	wc.rng = part.ForSubsystem(SubsystemColumn(lane, wc.name))
}

func (wc *WorkColumn) String() string {
	return fmt.Sprintf("<Column %s: %d cards>", wc.name, len(wc.items))
}

// QueueColumn is a zero-effort holding stage. A card admitted during the
// pull phase becomes ready on that day's tick, so the queue adds exactly one
// waiting day before the downstream stage can pull it.
type QueueColumn struct {
	name     string
	cardType CardType
	wipLimit int
	cards    []*Card
}

// NewQueueColumn creates a queue column.
func NewQueueColumn(name string, cardType CardType, wipLimit int) *QueueColumn {
	return &QueueColumn{name: name, cardType: cardType, wipLimit: wipLimit}
}

func (qc *QueueColumn) Name() string       { return qc.name }
func (qc *QueueColumn) CardType() CardType { return qc.cardType }
func (qc *QueueColumn) WIPLimit() int      { return qc.wipLimit }

func (qc *QueueColumn) HasCapacity() bool {
	return qc.wipLimit == 0 || len(qc.cards) < qc.wipLimit
}

func (qc *QueueColumn) CanAdmit(c *Card) bool {
	return c.Type == qc.cardType && qc.HasCapacity()
}

func (qc *QueueColumn) Admit(c *Card) {
	if !qc.CanAdmit(c) {
		panic(fmt.Sprintf("Admit: column %s cannot accept card %s", qc.name, c.Name))
	}
	c.Enter(qc.name)
	qc.cards = append(qc.cards, c)
}

func (qc *QueueColumn) TickColumn(day int) []*Card {
	ready := make([]*Card, 0, len(qc.cards))
	for _, c := range qc.cards {
		c.Advance(day, false)
		ready = append(ready, c)
	}
	return ready
}

func (qc *QueueColumn) Release(c *Card) {
	for i, card := range qc.cards {
		if card == c {
			qc.cards = append(qc.cards[:i], qc.cards[i+1:]...)
			c.Leave()
			return
		}
	}
	panic(fmt.Sprintf("Release: card %s not resident in column %s", c.Name, qc.name))
}

func (qc *QueueColumn) Cards() []*Card { return qc.cards }
func (qc *QueueColumn) Len() int       { return len(qc.cards) }
func (qc *QueueColumn) Empty() bool    { return len(qc.cards) == 0 }

func (qc *QueueColumn) Clone() Column {
	clone := &QueueColumn{name: qc.name, cardType: qc.cardType, wipLimit: qc.wipLimit}
	for _, c := range qc.cards {
		clone.cards = append(clone.cards, c.Clone())
	}
	return clone
}

func (qc *QueueColumn) bind(_ *PartitionedRNG, _ string) {}

func (qc *QueueColumn) String() string {
	return fmt.Sprintf("<QueueColumn %s: %d cards>", qc.name, len(qc.cards))
}
