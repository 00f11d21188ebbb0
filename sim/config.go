package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BoardSpec is the top-level board definition.
// Loaded from YAML via LoadBoardSpec(path). Specs are immutable blueprints:
// Build produces the mutable runtime graph and may be called many times.
type BoardSpec struct {
	Name    string      `yaml:"name"`
	Seed    int64       `yaml:"seed"`
	MaxDays int         `yaml:"max_days,omitempty"` // 0 = DefaultMaxDays
	Backlog BacklogSpec `yaml:"backlog"`
	Lanes   []LaneSpec  `yaml:"lanes"`
}

// LaneSpec defines a lane template. Clones expands the template into one
// independent lane per listed name (e.g. several teams working the same
// pipeline shape), all pulling from the shared board backlog.
type LaneSpec struct {
	Name     string       `yaml:"name"`
	CardType string       `yaml:"card_type,omitempty"` // default "story"
	WIPLimit *int         `yaml:"wip_limit,omitempty"` // nil = unbounded
	Clones   []string     `yaml:"clones,omitempty"`
	Columns  []ColumnSpec `yaml:"columns"`
	Backlog  *BacklogSpec `yaml:"backlog,omitempty"` // lane-private source
}

// ColumnSpec defines one stage of a lane.
type ColumnSpec struct {
	Name     string      `yaml:"name"`
	Kind     string      `yaml:"kind,omitempty"` // "work" (default), "queue", "sublane"
	WIPLimit *int        `yaml:"wip_limit,omitempty"`
	Touch    *EffortSpec `yaml:"touch,omitempty"`
	Sublane  *LaneSpec   `yaml:"sublane,omitempty"` // required for kind "sublane"
}

// BacklogSpec defines an ordered card source, optionally chained to a
// parent consulted once this one is exhausted.
type BacklogSpec struct {
	Name   string       `yaml:"name"`
	Cards  []CardSpec   `yaml:"cards"`
	Source *BacklogSpec `yaml:"source,omitempty"`
}

// CardSpec defines a single card in a backlog.
type CardSpec struct {
	Name   string         `yaml:"name"`
	Type   string         `yaml:"type,omitempty"` // default "story"
	Splits map[string]int `yaml:"splits,omitempty"`
}

const (
	ColumnKindWork    = "work"
	ColumnKindQueue   = "queue"
	ColumnKindSublane = "sublane"
)

// LoadBoardSpec reads and validates a board definition from a YAML file.
func LoadBoardSpec(path string) (*BoardSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read board spec: %w", err)
	}
	var spec BoardSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse board spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks the definition for configuration errors: empty pipelines,
// WIP limits of 0 (which would starve forever), malformed effort specs,
// splits referencing columns that do not exist, and epics routed nowhere.
// Capacity contention and backlog exhaustion are runtime conditions, not
// validation concerns.
func (spec *BoardSpec) Validate() error {
	if spec.Name == "" {
		return fmt.Errorf("board requires a name")
	}
	if len(spec.Lanes) == 0 {
		return fmt.Errorf("board %q requires at least one lane", spec.Name)
	}

	sublaneColumns := make(map[string]bool)
	laneNames := make(map[string]bool)
	for i := range spec.Lanes {
		lane := &spec.Lanes[i]
		if err := validateLane(lane, sublaneColumns); err != nil {
			return err
		}
		names := append([]string{lane.Name}, lane.Clones...)
		for _, n := range names {
			if laneNames[n] {
				return fmt.Errorf("duplicate lane name %q", n)
			}
			laneNames[n] = true
		}
	}

	if err := validateBacklog(&spec.Backlog, sublaneColumns); err != nil {
		return err
	}
	for i := range spec.Lanes {
		if lb := spec.Lanes[i].Backlog; lb != nil {
			if err := validateBacklog(lb, sublaneColumns); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateLane(lane *LaneSpec, sublaneColumns map[string]bool) error {
	if lane.Name == "" {
		return fmt.Errorf("lane requires a name")
	}
	if len(lane.Columns) == 0 {
		return fmt.Errorf("lane %q requires at least one column", lane.Name)
	}
	if lane.WIPLimit != nil && *lane.WIPLimit <= 0 {
		return fmt.Errorf("lane %q: wip_limit must be positive (omit for unbounded), got %d", lane.Name, *lane.WIPLimit)
	}

	colNames := make(map[string]bool)
	for i := range lane.Columns {
		col := &lane.Columns[i]
		if col.Name == "" {
			return fmt.Errorf("lane %q: column %d requires a name", lane.Name, i)
		}
		if colNames[col.Name] {
			return fmt.Errorf("lane %q: duplicate column name %q", lane.Name, col.Name)
		}
		colNames[col.Name] = true
		if col.WIPLimit != nil && *col.WIPLimit <= 0 {
			return fmt.Errorf("lane %q: column %q: wip_limit must be positive (omit for unbounded), got %d", lane.Name, col.Name, *col.WIPLimit)
		}
		if col.Touch != nil {
			if _, err := NewEffortSampler(*col.Touch); err != nil {
				return fmt.Errorf("lane %q: column %q: %w", lane.Name, col.Name, err)
			}
		}

		switch col.Kind {
		case "", ColumnKindWork:
		case ColumnKindQueue:
			if col.Touch != nil {
				return fmt.Errorf("lane %q: queue column %q cannot have a touch distribution", lane.Name, col.Name)
			}
		case ColumnKindSublane:
			if col.Sublane == nil {
				return fmt.Errorf("lane %q: sublane column %q requires a sublane template", lane.Name, col.Name)
			}
			if len(col.Sublane.Clones) > 0 {
				return fmt.Errorf("lane %q: sublane column %q: sub-lane templates cannot declare clones", lane.Name, col.Name)
			}
			if err := validateLane(col.Sublane, sublaneColumns); err != nil {
				return fmt.Errorf("lane %q: sublane column %q: %w", lane.Name, col.Name, err)
			}
			sublaneColumns[col.Name] = true
		default:
			return fmt.Errorf("lane %q: column %q: unknown kind %q", lane.Name, col.Name, col.Kind)
		}
	}
	return nil
}

func validateBacklog(spec *BacklogSpec, sublaneColumns map[string]bool) error {
	for i := range spec.Cards {
		card := &spec.Cards[i]
		if card.Name == "" {
			return fmt.Errorf("backlog %q: card %d requires a name", spec.Name, i)
		}
		cardType := CardType(card.Type)
		if cardType == "" {
			cardType = CardTypeStory
		}
		if len(card.Splits) > 0 && cardType != CardTypeEpic {
			return fmt.Errorf("backlog %q: card %q: only epics may declare splits", spec.Name, card.Name)
		}
		for column, count := range card.Splits {
			if count <= 0 {
				return fmt.Errorf("backlog %q: card %q: split into %q must be positive, got %d", spec.Name, card.Name, column, count)
			}
			if !sublaneColumns[column] {
				return fmt.Errorf("backlog %q: card %q: split references unknown sublane column %q", spec.Name, card.Name, column)
			}
		}
	}
	if spec.Source != nil {
		return validateBacklog(spec.Source, sublaneColumns)
	}
	return nil
}

// Build validates the definition and constructs the runtime board template.
func (spec *BoardSpec) Build() (*Board, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	lanes := make([]*Lane, 0, len(spec.Lanes))
	for i := range spec.Lanes {
		lane, err := buildLane(&spec.Lanes[i])
		if err != nil {
			return nil, err
		}
		if len(spec.Lanes[i].Clones) == 0 {
			lanes = append(lanes, lane)
			continue
		}
		for _, name := range spec.Lanes[i].Clones {
			lanes = append(lanes, lane.Clone(name))
		}
	}

	name := spec.Name
	if name == "" {
		name = "Board"
	}
	return NewBoard(name, lanes, buildBacklog(&spec.Backlog), NewSimulationKey(spec.Seed)), nil
}

func buildLane(spec *LaneSpec) (*Lane, error) {
	cardType := CardType(spec.CardType)
	if cardType == "" {
		cardType = CardTypeStory
	}

	columns := make([]Column, 0, len(spec.Columns))
	for i := range spec.Columns {
		col, err := buildColumn(&spec.Columns[i], cardType)
		if err != nil {
			return nil, fmt.Errorf("lane %q: %w", spec.Name, err)
		}
		columns = append(columns, col)
	}

	lane := NewLane(spec.Name, limitOf(spec.WIPLimit), columns...)
	if spec.Backlog != nil {
		lane.Backlog = buildBacklog(spec.Backlog)
	}
	return lane, nil
}

func buildColumn(spec *ColumnSpec, cardType CardType) (Column, error) {
	wip := limitOf(spec.WIPLimit)

	var effort EffortSampler
	if spec.Touch != nil {
		sampler, err := NewEffortSampler(*spec.Touch)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", spec.Name, err)
		}
		effort = sampler
	}

	switch spec.Kind {
	case "", ColumnKindWork:
		return NewWorkColumn(spec.Name, cardType, wip, effort), nil
	case ColumnKindQueue:
		return NewQueueColumn(spec.Name, cardType, wip), nil
	case ColumnKindSublane:
		template, err := buildLane(spec.Sublane)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", spec.Name, err)
		}
		return NewSublaneColumn(spec.Name, cardType, wip, template, effort), nil
	default:
		return nil, fmt.Errorf("column %q: unknown kind %q", spec.Name, spec.Kind)
	}
}

func buildBacklog(spec *BacklogSpec) *Backlog {
	name := spec.Name
	if name == "" {
		name = "Backlog"
	}
	backlog := NewBacklog(name)
	for i := range spec.Cards {
		card := &spec.Cards[i]
		cardType := CardType(card.Type)
		if cardType == "" {
			cardType = CardTypeStory
		}
		if cardType == CardTypeEpic {
			backlog.Push(NewEpic(card.Name, card.Splits))
		} else {
			backlog.Push(NewCard(card.Name, cardType))
		}
	}
	if spec.Source != nil {
		backlog.Source = buildBacklog(spec.Source)
	}
	return backlog
}

func limitOf(wip *int) int {
	if wip == nil {
		return 0
	}
	return *wip
}
