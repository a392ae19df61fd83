package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perilwatch/internal/types"
)

func floodEvent(start int, severity types.Severity) types.TriggerEvent {
	return types.TriggerEvent{
		EventType: types.PerilFlood,
		Severity:  severity,
		StartDate: day(start),
		EndDate:   day(start + 2),
		Duration:  3,
	}
}

func TestDeduplicateEvents_AdjacentSameSeverityCollapse(t *testing.T) {
	events := []types.TriggerEvent{
		floodEvent(0, types.SeverityMedium),
		floodEvent(1, types.SeverityMedium),
	}

	unique := DeduplicateEvents(events)

	require.Len(t, unique, 1)
	assert.Equal(t, day(0), unique[0].StartDate)
}

func TestDeduplicateEvents_MoreSevereWinsRegardlessOfOrder(t *testing.T) {
	events := []types.TriggerEvent{
		floodEvent(0, types.SeverityMedium),
		floodEvent(1, types.SeverityExtreme),
	}

	unique := DeduplicateEvents(events)

	require.Len(t, unique, 1)
	assert.Equal(t, types.SeverityExtreme, unique[0].Severity)
	assert.Equal(t, day(1), unique[0].StartDate)
}

func TestDeduplicateEvents_TwoDayGapIsNotADuplicate(t *testing.T) {
	// The proximity check is strictly less than 48 hours, so starts exactly
	// two days apart both survive.
	events := []types.TriggerEvent{
		floodEvent(0, types.SeverityMedium),
		floodEvent(2, types.SeverityMedium),
	}

	unique := DeduplicateEvents(events)

	assert.Len(t, unique, 2)
}

func TestDeduplicateEvents_DifferentPerilsNeverCollapse(t *testing.T) {
	events := []types.TriggerEvent{
		floodEvent(0, types.SeverityMedium),
		{
			EventType: types.PerilWind,
			Severity:  types.SeverityMedium,
			StartDate: day(0),
			EndDate:   day(0),
			Duration:  1,
		},
	}

	unique := DeduplicateEvents(events)

	assert.Len(t, unique, 2)
}

func TestDeduplicateEvents_ChainDoesNotExtendTheWindow(t *testing.T) {
	// Days 0, 1, 2: day 1 is within 48h of day 0 and drops; day 2 is exactly
	// 48h from day 0 and survives. The dropped middle event does not bridge
	// the two survivors.
	events := []types.TriggerEvent{
		floodEvent(0, types.SeverityMedium),
		floodEvent(1, types.SeverityMedium),
		floodEvent(2, types.SeverityMedium),
	}

	unique := DeduplicateEvents(events)

	require.Len(t, unique, 2)
	assert.Equal(t, day(0), unique[0].StartDate)
	assert.Equal(t, day(2), unique[1].StartDate)
}

func TestDeduplicateEvents_InputNotModified(t *testing.T) {
	events := []types.TriggerEvent{
		floodEvent(3, types.SeverityLow),
		floodEvent(0, types.SeverityExtreme),
	}

	DeduplicateEvents(events)

	assert.Equal(t, day(3), events[0].StartDate)
	assert.Equal(t, types.SeverityLow, events[0].Severity)
}

func TestDeduplicateEvents_Empty(t *testing.T) {
	assert.Nil(t, DeduplicateEvents(nil))
	assert.Nil(t, DeduplicateEvents([]types.TriggerEvent{}))
}
