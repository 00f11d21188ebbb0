package trace

// ColumnOccupancy is the card count of one column at the end of a day.
type ColumnOccupancy struct {
	Lane   string
	Column string
	Cards  int
}

// DayRecord is a read-only snapshot of board occupancy after one tick.
// External consumers (HTML renderers, calendar views, exporters) build
// their views from sequences of these records.
type DayRecord struct {
	Day       int
	Backlog   int // cards still waiting in the board backlog
	Done      int // cards in the donelog
	Occupancy []ColumnOccupancy
}

// InFlight returns the total number of cards resident in columns.
func (r DayRecord) InFlight() int {
	total := 0
	for _, occ := range r.Occupancy {
		total += occ.Cards
	}
	return total
}
