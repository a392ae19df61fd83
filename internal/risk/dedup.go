package risk

import (
	"sort"
	"time"

	"perilwatch/internal/types"
)

// dedupWindow is the start-date proximity within which two events of the
// same peril are considered duplicates.
const dedupWindow = 48 * time.Hour

// DeduplicateEvents collapses temporally-overlapping detections of the same
// peril, keeping only the most severe. Events are considered in descending
// severity order (stable among equals), and an event is dropped when an
// already-accepted event of the same type starts within two days of it.
//
// The returned slice is a new list; the input is not modified.
func DeduplicateEvents(events []types.TriggerEvent) []types.TriggerEvent {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]types.TriggerEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() > sorted[j].Severity.Rank()
	})

	var unique []types.TriggerEvent
	for _, event := range sorted {
		overlaps := false
		for _, accepted := range unique {
			if accepted.EventType != event.EventType {
				continue
			}
			gap := accepted.StartDate.Sub(event.StartDate)
			if gap < 0 {
				gap = -gap
			}
			if gap < dedupWindow {
				overlaps = true
				break
			}
		}
		if !overlaps {
			unique = append(unique, event)
		}
	}

	return unique
}
