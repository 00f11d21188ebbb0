// Implements the Backlog, the FIFO source of not-yet-started cards, and the
// Donelog that collects finished ones. Backlogs may chain to a parent source
// that is drawn from once the local queue is exhausted.

package sim

import (
	"fmt"
	"strings"
)

// Backlog is an ordered FIFO source of cards that have not entered a lane
// yet. When the local queue runs out and Source is set, cards are pulled
// from the parent backlog instead, so a card is emitted at most once across
// the whole chain.
type Backlog struct {
	Name   string
	Source *Backlog // optional parent, consulted on exhaustion

	cards []*Card
}

// NewBacklog creates a backlog preloaded with cards, in emission order.
func NewBacklog(name string, cards ...*Card) *Backlog {
	return &Backlog{Name: name, cards: cards}
}

// Push appends a card to the back of the backlog.
func (b *Backlog) Push(c *Card) {
	b.cards = append(b.cards, c)
}

// Next pops the next card of the wanted type, walking the Source chain when
// the local queue has none. cardType "" matches any card. Returns nil when
// the whole chain is exhausted for that type.
func (b *Backlog) Next(cardType CardType) *Card {
	for i, c := range b.cards {
		if cardType == "" || c.Type == cardType {
			b.cards = append(b.cards[:i], b.cards[i+1:]...)
			return c
		}
	}
	if b.Source != nil {
		return b.Source.Next(cardType)
	}
	return nil
}

// Len returns the number of cards waiting locally (excluding the chain).
func (b *Backlog) Len() int {
	return len(b.cards)
}

// Cards returns the waiting cards for read-only iteration.
func (b *Backlog) Cards() []*Card {
	return b.cards
}

// Empty reports whether the backlog and its whole Source chain are
// exhausted.
func (b *Backlog) Empty() bool {
	if len(b.cards) > 0 {
		return false
	}
	return b.Source == nil || b.Source.Empty()
}

// Clone deep-copies the backlog, its cards, and its Source chain.
func (b *Backlog) Clone() *Backlog {
	clone := &Backlog{Name: b.Name}
	clone.cards = make([]*Card, 0, len(b.cards))
	for _, c := range b.cards {
		clone.cards = append(clone.cards, c.Clone())
	}
	if b.Source != nil {
		clone.Source = b.Source.Clone()
	}
	return clone
}

func (b *Backlog) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Backlog %s [", b.Name))
	for i, c := range b.cards {
		sb.WriteString(c.Name)
		if i < len(b.cards)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Donelog is the append-only terminal collector of finished cards.
// Cards are appended in completion order and treated as immutable after.
type Donelog struct {
	Name  string
	cards []*Card
}

// NewDonelog creates an empty donelog.
func NewDonelog(name string) *Donelog {
	return &Donelog{Name: name}
}

// Append records a finished card.
func (d *Donelog) Append(c *Card) {
	d.cards = append(d.cards, c)
}

// Cards returns the finished cards in completion order.
func (d *Donelog) Cards() []*Card {
	return d.cards
}

// Len returns the number of finished cards.
func (d *Donelog) Len() int {
	return len(d.cards)
}

// Clone deep-copies the donelog and its cards.
func (d *Donelog) Clone() *Donelog {
	clone := &Donelog{Name: d.Name}
	clone.cards = make([]*Card, 0, len(d.cards))
	for _, c := range d.cards {
		clone.cards = append(clone.cards, c.Clone())
	}
	return clone
}
