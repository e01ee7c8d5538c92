package models

import "time"

// SessionStatus enumerates booking session lifecycle states.
type SessionStatus string

const (
	StatusPending   SessionStatus = "pending"
	StatusApproved  SessionStatus = "approved"
	StatusRejected  SessionStatus = "rejected"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"
)

// ActiveStatuses are the statuses that occupy a slot. Rejected and cancelled
// sessions release it.
var ActiveStatuses = []SessionStatus{StatusPending, StatusApproved, StatusCompleted}

// IsTerminal reports whether the status accepts no further transitions.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted || s == StatusCancelled
}

// OccupiesSlot reports whether a session in this status blocks its slot.
func (s SessionStatus) OccupiesSlot() bool {
	return s == StatusPending || s == StatusApproved || s == StatusCompleted
}

// TransitionAction enumerates the operations the state machine accepts.
type TransitionAction string

const (
	ActionApprove  TransitionAction = "approve"
	ActionReject   TransitionAction = "reject"
	ActionComplete TransitionAction = "complete"
	ActionCancel   TransitionAction = "cancel"
)

// MeetingMethod describes how a session is held.
type MeetingMethod string

const (
	MethodOnline  MeetingMethod = "online"
	MethodOffline MeetingMethod = "offline"
)

// BookingSession represents one concrete, dated reservation of a slot.
// Sessions are never deleted, only terminally transitioned.
type BookingSession struct {
	ID                 string        `db:"id" json:"id"`
	CounselorID        string        `db:"counselor_id" json:"counselor_id"`
	RequesterID        string        `db:"requester_id" json:"requester_id"`
	Date               string        `db:"session_date" json:"date"`
	StartTime          string        `db:"start_time" json:"start_time"`
	EndTime            string        `db:"end_time" json:"end_time"`
	Method             MeetingMethod `db:"method" json:"method"`
	MeetingLink        string        `db:"meeting_link" json:"meeting_link,omitempty"`
	Location           string        `db:"location" json:"location,omitempty"`
	Status             SessionStatus `db:"status" json:"status"`
	RejectionReason    string        `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ComplaintReference string        `db:"complaint_reference" json:"complaint_reference,omitempty"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionFilter captures filtering criteria for listing sessions.
type SessionFilter struct {
	CounselorID string
	RequesterID string
	Status      string
	DateFrom    string
	DateTo      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// SessionStats aggregates counts over a filtered session set.
type SessionStats struct {
	Total     int `db:"total" json:"total"`
	Pending   int `db:"pending" json:"pending"`
	Approved  int `db:"approved" json:"approved"`
	Rejected  int `db:"rejected" json:"rejected"`
	Completed int `db:"completed" json:"completed"`
	Cancelled int `db:"cancelled" json:"cancelled"`
	Today     int `db:"today" json:"today"`
	Upcoming  int `db:"upcoming" json:"upcoming"`
}
