package models

// Slot is a fixed-duration candidate time interval derived from a counselor's
// recurring availability for one calendar date. Times are HH:MM wall clock.
type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}
