package realtime

import (
	"sort"

	"github.com/comalice/tickfsm/internal/primitives"
)

// EventWithMeta adds sequencing metadata for deterministic ordering.
type EventWithMeta struct {
	Event       primitives.Event
	SequenceNum uint64
	Priority    int
}

// sortEvents orders a batch: higher priority first, then submission order.
func sortEvents(events []EventWithMeta) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Priority != events[j].Priority {
			return events[i].Priority > events[j].Priority
		}
		return events[i].SequenceNum < events[j].SequenceNum
	})
}

// Event ordering guarantees:
// 1. Events from same source processed in submission order (sequence number)
// 2. Higher priority events processed first
// 3. Deterministic tie-breaking via sequence number
