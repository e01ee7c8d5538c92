package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/counseling-api/internal/models"
)

// 2026-09-07 is a Monday.
var monday = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 510, minutes)

	_, err = ParseClock("8am")
	assert.Error(t, err)
	_, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:00", FormatClock(480))
	assert.Equal(t, "00:05", FormatClock(5))
	assert.Equal(t, "13:45", FormatClock(825))
}

func TestGenerateSlotsCutsWindowAndDiscardsRemainder(t *testing.T) {
	rows := []models.CounselorAvailability{
		{DayOfWeek: "MONDAY", StartTime: "08:00", EndTime: "12:00", SlotDurationMinutes: 45, IsActive: true},
	}

	slots := GenerateSlots(rows, monday)
	require.Len(t, slots, 5)
	assert.Equal(t, models.Slot{StartTime: "08:00", EndTime: "08:45", Available: true}, slots[0])
	assert.Equal(t, models.Slot{StartTime: "11:00", EndTime: "11:45", Available: true}, slots[4])
	// 11:45-12:30 would run past the window end.
	for _, slot := range slots {
		assert.True(t, slot.Available)
	}
}

func TestGenerateSlotsSkipsInactiveAndOtherDays(t *testing.T) {
	rows := []models.CounselorAvailability{
		{DayOfWeek: "MONDAY", StartTime: "08:00", EndTime: "09:00", SlotDurationMinutes: 30, IsActive: false},
		{DayOfWeek: "TUESDAY", StartTime: "08:00", EndTime: "09:00", SlotDurationMinutes: 30, IsActive: true},
	}

	assert.Empty(t, GenerateSlots(rows, monday))
}

func TestGenerateSlotsSkipsMalformedRows(t *testing.T) {
	rows := []models.CounselorAvailability{
		{DayOfWeek: "MONDAY", StartTime: "late", EndTime: "12:00", SlotDurationMinutes: 30, IsActive: true},
		{DayOfWeek: "MONDAY", StartTime: "10:00", EndTime: "09:00", SlotDurationMinutes: 30, IsActive: true},
		{DayOfWeek: "MONDAY", StartTime: "08:00", EndTime: "09:00", SlotDurationMinutes: 0, IsActive: true},
		{DayOfWeek: "MONDAY", StartTime: "13:00", EndTime: "14:00", SlotDurationMinutes: 30, IsActive: true},
	}

	slots := GenerateSlots(rows, monday)
	require.Len(t, slots, 2)
	assert.Equal(t, "13:00", slots[0].StartTime)
	assert.Equal(t, "13:30", slots[1].StartTime)
}

func TestGenerateSlotsMergesOverlappingWindows(t *testing.T) {
	rows := []models.CounselorAvailability{
		{DayOfWeek: "MONDAY", StartTime: "09:00", EndTime: "11:00", SlotDurationMinutes: 30, IsActive: true},
		{DayOfWeek: "MONDAY", StartTime: "08:00", EndTime: "10:00", SlotDurationMinutes: 30, IsActive: true},
	}

	slots := GenerateSlots(rows, monday)
	require.Len(t, slots, 6)
	seen := make(map[string]int)
	for i, slot := range slots {
		seen[slot.StartTime+"-"+slot.EndTime]++
		if i > 0 {
			assert.Less(t, slots[i-1].StartTime, slot.StartTime)
		}
	}
	for key, count := range seen {
		assert.Equal(t, 1, count, key)
	}
}

func TestGenerateSlotsEmptyWhenNoWindows(t *testing.T) {
	assert.Empty(t, GenerateSlots(nil, monday))
}

func TestAnnotateSlotsBlocksOccupiedStartTimes(t *testing.T) {
	slots := []models.Slot{
		{StartTime: "08:00", EndTime: "08:45", Available: true},
		{StartTime: "08:45", EndTime: "09:30", Available: true},
		{StartTime: "09:30", EndTime: "10:15", Available: true},
	}
	sessions := []models.BookingSession{
		{StartTime: "08:00", Status: models.StatusPending},
		{StartTime: "08:45", Status: models.StatusRejected},
		{StartTime: "09:30", Status: models.StatusApproved},
	}

	annotated := AnnotateSlots(slots, sessions)
	require.Len(t, annotated, 3)
	assert.False(t, annotated[0].Available)
	assert.True(t, annotated[1].Available, "rejected sessions release the slot")
	assert.False(t, annotated[2].Available)
}

func TestContainsSlotRequiresExactMatch(t *testing.T) {
	slots := []models.Slot{{StartTime: "08:00", EndTime: "08:45"}}

	assert.True(t, containsSlot(slots, "08:00", "08:45"))
	assert.False(t, containsSlot(slots, "08:00", "08:30"), "containment is not enough")
	assert.False(t, containsSlot(slots, "08:15", "08:45"))
}
