// Package trace holds the read-only records a simulation run emits for
// external consumers. The sim core appends records here; all formatting,
// rendering, and file I/O stays outside.
package trace

// RunTrace collects one DayRecord per simulation step, in day order.
type RunTrace struct {
	Board   string
	Records []DayRecord
}

// NewRunTrace creates a RunTrace ready for recording.
func NewRunTrace(board string) *RunTrace {
	return &RunTrace{Board: board, Records: make([]DayRecord, 0)}
}

// Record appends a day snapshot.
func (rt *RunTrace) Record(rec DayRecord) {
	rt.Records = append(rt.Records, rec)
}

// Days returns the number of recorded days.
func (rt *RunTrace) Days() int {
	return len(rt.Records)
}

// Last returns the final recorded day, or a zero record if none.
func (rt *RunTrace) Last() DayRecord {
	if len(rt.Records) == 0 {
		return DayRecord{}
	}
	return rt.Records[len(rt.Records)-1]
}
