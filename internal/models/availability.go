package models

import (
	"strings"
	"time"
)

// CounselorAvailability represents one recurring weekly window a counselor
// offers. Windows only describe future slot generation; editing or
// deactivating a window never touches sessions already booked against it.
type CounselorAvailability struct {
	ID                  string    `db:"id" json:"id"`
	CounselorID         string    `db:"counselor_id" json:"counselor_id"`
	DayOfWeek           string    `db:"day_of_week" json:"day_of_week"`
	StartTime           string    `db:"start_time" json:"start_time"`
	EndTime             string    `db:"end_time" json:"end_time"`
	SlotDurationMinutes int       `db:"slot_duration_minutes" json:"slot_duration_minutes"`
	IsActive            bool      `db:"is_active" json:"is_active"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// AvailabilityFilter describes query params for listing availability windows.
type AvailabilityFilter struct {
	CounselorID string
	DayOfWeek   string
	ActiveOnly  bool
}

// Weekdays in storage order. Day names are stored uppercase.
var Weekdays = []string{"SUNDAY", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY"}

// WeekdayName maps a time.Weekday onto the stored day name.
func WeekdayName(d time.Weekday) string {
	return Weekdays[int(d)%7]
}

// IsWeekdayName reports whether the provided value is a known day name.
func IsWeekdayName(name string) bool {
	upper := strings.ToUpper(name)
	for _, day := range Weekdays {
		if day == upper {
			return true
		}
	}
	return false
}
