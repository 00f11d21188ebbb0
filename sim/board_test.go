package sim

import (
	"testing"
)

// singleColumnBoard is the canonical scenario: one lane, one WIP-1 column
// with fixed effort of 2 days, fed a backlog of 3 cards.
func singleColumnBoard() *Board {
	backlog := NewBacklog("Backlog",
		NewCard("A", CardTypeStory), NewCard("B", CardTypeStory), NewCard("C", CardTypeStory))
	lane := NewLane("Team", 0,
		NewWorkColumn("Dev", CardTypeStory, 1, &ConstantEffort{value: 2}))
	return NewBoard("Board", []*Lane{lane}, backlog, NewSimulationKey(42))
}

func TestBoard_CanonicalScenarioTakesSixDays(t *testing.T) {
	// GIVEN 3 cards through a WIP-1 column needing 2 days each
	board := singleColumnBoard().Clone()

	// WHEN the simulation runs to completion
	days, err := board.RunSimulation(0)
	if err != nil {
		t.Fatal(err)
	}

	// THEN it takes exactly 6 days with no overlap
	if days != 6 {
		t.Errorf("finish day: got %d, want 6", days)
	}

	// AND the donelog holds all 3 cards in FIFO order with age == touch == 2
	done := board.Donelog.Cards()
	if len(done) != 3 {
		t.Fatalf("donelog: got %d cards, want 3", len(done))
	}
	want := []string{"A", "B", "C"}
	for i, card := range done {
		if card.Name != want[i] {
			t.Errorf("donelog[%d]: got %s, want %s", i, card.Name, want[i])
		}
		if card.Age != 2 || card.Touch != 2 {
			t.Errorf("%s counters: got age=%d touch=%d, want 2/2", card.Name, card.Age, card.Touch)
		}
	}
}

func TestBoard_CloneLeavesTemplatePristine(t *testing.T) {
	// GIVEN a board template
	template := singleColumnBoard()

	// WHEN a clone runs to completion
	if _, err := template.Clone().RunSimulation(0); err != nil {
		t.Fatal(err)
	}

	// THEN the template still holds its full backlog and an empty donelog
	if template.Backlog.Len() != 3 {
		t.Errorf("template backlog: got %d cards, want 3", template.Backlog.Len())
	}
	if template.Donelog.Len() != 0 {
		t.Errorf("template donelog: got %d cards, want 0", template.Donelog.Len())
	}
}

func TestBoard_ClonesWithSameKeyReplayIdentically(t *testing.T) {
	// GIVEN a board with genuinely random effort
	backlog := NewBacklog("Backlog",
		NewCard("A", CardTypeStory), NewCard("B", CardTypeStory),
		NewCard("C", CardTypeStory), NewCard("D", CardTypeStory))
	lane := NewLane("Team", 0,
		NewWorkColumn("Dev", CardTypeStory, 2, &UniformEffort{min: 1, max: 30}))
	template := NewBoard("Board", []*Lane{lane}, backlog, NewSimulationKey(42))

	// WHEN two clones with the same key run
	b1 := template.Clone()
	b2 := template.Clone()
	d1, err1 := b1.RunSimulation(0)
	d2, err2 := b2.RunSimulation(0)
	if err1 != nil || err2 != nil {
		t.Fatal(err1, err2)
	}

	// THEN outcomes are identical, card by card
	if d1 != d2 {
		t.Fatalf("finish days diverged: %d vs %d", d1, d2)
	}
	for i, c1 := range b1.Donelog.Cards() {
		c2 := b2.Donelog.Cards()[i]
		if c1.Name != c2.Name || c1.Age != c2.Age || c1.Touch != c2.Touch {
			t.Errorf("card %d diverged: %v vs %v", i, c1, c2)
		}
	}

	// AND a clone under a derived key draws independently
	b3 := template.CloneWithKey(TrialKey(template.Key(), 1))
	d3, err := b3.RunSimulation(0)
	if err != nil {
		t.Fatal(err)
	}
	sameEverything := d3 == d1
	for i, c3 := range b3.Donelog.Cards() {
		if c3.Touch != b1.Donelog.Cards()[i].Touch {
			sameEverything = false
		}
	}
	if sameEverything {
		t.Error("derived-key clone reproduced the base run draw for draw")
	}
}

func TestBoard_ChainedBacklogDrainsParentToo(t *testing.T) {
	// GIVEN a backlog chained to a parent source
	parent := NewBacklog("Next Quarter", NewCard("P1", CardTypeStory), NewCard("P2", CardTypeStory))
	backlog := NewBacklog("Backlog", NewCard("A", CardTypeStory))
	backlog.Source = parent
	lane := NewLane("Team", 0,
		NewWorkColumn("Dev", CardTypeStory, 1, &ConstantEffort{value: 1}))
	board := NewBoard("Board", []*Lane{lane}, backlog, NewSimulationKey(1)).Clone()

	// WHEN the simulation runs
	days, err := board.RunSimulation(0)
	if err != nil {
		t.Fatal(err)
	}

	// THEN all 3 cards across the chain are delivered
	if board.Donelog.Len() != 3 {
		t.Errorf("donelog: got %d, want 3", board.Donelog.Len())
	}
	if days != 3 {
		t.Errorf("finish day: got %d, want 3", days)
	}
}

func TestBoard_MultipleLanesShareTheBacklog(t *testing.T) {
	// GIVEN two cloned team lanes pulling from one backlog
	backlog := NewBacklog("Backlog",
		NewCard("A", CardTypeStory), NewCard("B", CardTypeStory),
		NewCard("C", CardTypeStory), NewCard("D", CardTypeStory))
	template := NewLane("Team", 0,
		NewWorkColumn("Dev", CardTypeStory, 1, &ConstantEffort{value: 2}))
	lanes := []*Lane{template.Clone("Team A"), template.Clone("Team B")}
	board := NewBoard("Board", lanes, backlog, NewSimulationKey(1)).Clone()

	// WHEN the simulation runs
	days, err := board.RunSimulation(0)
	if err != nil {
		t.Fatal(err)
	}

	// THEN the teams halve the wall clock of the canonical scenario shape
	if days != 4 {
		t.Errorf("finish day: got %d, want 4 (2 cards per team, 2 days each)", days)
	}
	if board.Donelog.Len() != 4 {
		t.Errorf("donelog: got %d, want 4", board.Donelog.Len())
	}
}

func TestBoard_ClonePreservesPrivateBacklogSharing(t *testing.T) {
	// GIVEN two lanes sharing one private backlog distinct from the board's
	private := NewBacklog("Team Pool", NewCard("A", CardTypeStory))
	template := NewLane("Team", 0,
		NewWorkColumn("Dev", CardTypeStory, 1, &ConstantEffort{value: 2}))
	laneA := template.Clone("Team A")
	laneB := template.Clone("Team B")
	laneA.Backlog = private
	laneB.Backlog = private
	board := NewBoard("Board", []*Lane{laneA, laneB}, NewBacklog("Backlog"), NewSimulationKey(1))
	if board.Lanes[0].Backlog != board.Lanes[1].Backlog {
		t.Fatal("template lanes no longer alias the private backlog")
	}

	// WHEN the board is cloned
	clone := board.Clone()

	// THEN the cloned lanes share one copy, not a copy each
	if clone.Lanes[0].Backlog != clone.Lanes[1].Backlog {
		t.Fatal("clone split the shared private backlog into independent copies")
	}
	if clone.Lanes[0].Backlog == private {
		t.Fatal("clone still references the template's backlog instance")
	}

	// AND a cloned run delivers the single card exactly once
	if _, err := clone.RunSimulation(0); err != nil {
		t.Fatal(err)
	}
	if clone.Donelog.Len() != 1 {
		t.Errorf("donelog after cloned run: got %d cards, want 1", clone.Donelog.Len())
	}
}

func TestBoard_RunSimulationGuardsNonTermination(t *testing.T) {
	// GIVEN a board that cannot finish in the allotted days
	board := singleColumnBoard().Clone()

	_, err := board.RunSimulation(3)

	if err == nil {
		t.Error("expected a guard error for an undrained board")
	}
}

func TestBoard_StepperYieldsEveryDayOnce(t *testing.T) {
	// GIVEN a stepper over a cloned board
	board := singleColumnBoard().Clone()
	stepper := board.Stepper()

	// WHEN iterated to exhaustion
	var days []int
	for {
		day, b, ok := stepper.Next()
		if !ok {
			break
		}
		if b != board {
			t.Fatal("stepper observed a different board instance")
		}
		days = append(days, day)
	}

	// THEN days are 1..6 and further calls keep reporting completion
	if len(days) != 6 || days[0] != 1 || days[5] != 6 {
		t.Errorf("iterated days: got %v, want 1..6", days)
	}
	if _, _, ok := stepper.Next(); ok {
		t.Error("exhausted stepper yielded another day")
	}
}

func TestBoard_SnapshotReportsOccupancy(t *testing.T) {
	board := singleColumnBoard().Clone()
	board.Step(1)

	rec := board.Snapshot(1)

	if rec.Backlog != 2 || rec.InFlight() != 1 || rec.Done != 0 {
		t.Errorf("snapshot: backlog=%d inflight=%d done=%d, want 2/1/0", rec.Backlog, rec.InFlight(), rec.Done)
	}
	if len(rec.Occupancy) != 1 || rec.Occupancy[0].Column != "Dev" || rec.Occupancy[0].Lane != "Team" {
		t.Errorf("occupancy: got %+v", rec.Occupancy)
	}
}

func TestBoard_ColumnWIPNeverExceededDuringRun(t *testing.T) {
	// GIVEN a board with tight WIP limits and random effort
	backlog := NewBacklog("Backlog",
		NewCard("A", CardTypeStory), NewCard("B", CardTypeStory), NewCard("C", CardTypeStory),
		NewCard("D", CardTypeStory), NewCard("E", CardTypeStory), NewCard("F", CardTypeStory))
	lane := NewLane("Team", 4,
		NewWorkColumn("Dev", CardTypeStory, 2, &UniformEffort{min: 1, max: 4}),
		NewQueueColumn("Ready", CardTypeStory, 1),
		NewWorkColumn("Test", CardTypeStory, 2, &UniformEffort{min: 1, max: 3}))
	board := NewBoard("Board", []*Lane{lane}, backlog, NewSimulationKey(7)).Clone()

	// WHEN stepping manually and checking occupancy after every tick
	stepper := board.Stepper()
	for {
		_, _, ok := stepper.Next()
		if !ok {
			break
		}
		for _, ln := range board.Lanes {
			total := 0
			for _, col := range ln.Columns {
				if col.WIPLimit() > 0 && col.Len() > col.WIPLimit() {
					t.Fatalf("column %s holds %d > limit %d", col.Name(), col.Len(), col.WIPLimit())
				}
				total += col.Len()
			}
			if ln.WIPLimit > 0 && total > ln.WIPLimit {
				t.Fatalf("lane %s holds %d > limit %d", ln.Name, total, ln.WIPLimit)
			}
		}
	}

	if board.Donelog.Len() != 6 {
		t.Errorf("donelog: got %d, want 6", board.Donelog.Len())
	}
}
