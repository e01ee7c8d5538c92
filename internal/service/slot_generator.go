package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/counseling-api/internal/models"
)

// ParseClock converts an HH:MM wall-clock string into minutes since midnight.
func ParseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as an HH:MM string.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// GenerateSlots resolves recurring weekly availability windows into the
// ordered candidate slots for one calendar date. Pure and deterministic: rows
// that are inactive or fall on another weekday are skipped, each surviving
// window is cut into fixed-duration slots with any trailing remainder
// discarded, and duplicate slots produced by overlapping windows collapse into
// one. A date with no matching windows yields an empty slice, not an error.
func GenerateSlots(rows []models.CounselorAvailability, date time.Time) []models.Slot {
	day := models.WeekdayName(date.Weekday())

	seen := make(map[string]struct{})
	var slots []models.Slot

	for _, row := range rows {
		if !row.IsActive || row.DayOfWeek != day {
			continue
		}
		if row.SlotDurationMinutes <= 0 {
			continue
		}
		start, err := ParseClock(row.StartTime)
		if err != nil {
			continue
		}
		end, err := ParseClock(row.EndTime)
		if err != nil || start >= end {
			continue
		}

		for cursor := start; cursor+row.SlotDurationMinutes <= end; cursor += row.SlotDurationMinutes {
			slot := models.Slot{
				StartTime: FormatClock(cursor),
				EndTime:   FormatClock(cursor + row.SlotDurationMinutes),
				Available: true,
			}
			key := slot.StartTime + "-" + slot.EndTime
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			slots = append(slots, slot)
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].StartTime == slots[j].StartTime {
			return slots[i].EndTime < slots[j].EndTime
		}
		return slots[i].StartTime < slots[j].StartTime
	})
	return slots
}

// AnnotateSlots marks candidate slots unavailable when a slot-occupying
// session shares their start time. Rejected and cancelled sessions do not
// block a slot.
func AnnotateSlots(slots []models.Slot, sessions []models.BookingSession) []models.Slot {
	taken := make(map[string]struct{}, len(sessions))
	for _, session := range sessions {
		if session.Status.OccupiesSlot() {
			taken[session.StartTime] = struct{}{}
		}
	}

	annotated := make([]models.Slot, len(slots))
	for i, slot := range slots {
		slot.Available = true
		if _, blocked := taken[slot.StartTime]; blocked {
			slot.Available = false
		}
		annotated[i] = slot
	}
	return annotated
}

// containsSlot reports whether the requested window exactly matches one of the
// generated candidates. Containment within a window is not enough.
func containsSlot(slots []models.Slot, startTime, endTime string) bool {
	for _, slot := range slots {
		if slot.StartTime == startTime && slot.EndTime == endTime {
			return true
		}
	}
	return false
}
