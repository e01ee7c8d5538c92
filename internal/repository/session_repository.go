package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

// activeSlotConstraint is the partial unique index over
// (counselor_id, session_date, start_time) restricted to slot-occupying
// statuses. It is the single mechanism that guarantees at most one live
// booking per slot under concurrent reservations.
const activeSlotConstraint = "uq_booking_sessions_active_slot"

// SessionRepository is the sole write path for booking sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = "id, counselor_id, requester_id, session_date, start_time, end_time, method, meeting_link, location, status, rejection_reason, complaint_reference, created_at, updated_at"

// List returns sessions with filtering and pagination.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.BookingSession, int, error) {
	base, args := sessionFilterClause(filter)

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"session_date": true,
		"start_time":   true,
		"status":       true,
		"created_at":   true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "session_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_time ASC LIMIT %d OFFSET %d", sessionColumns, base, sortBy, order, size, offset)
	var sessions []models.BookingSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	return sessions, total, nil
}

// Stats aggregates status counts over the filtered set. Today and upcoming are
// evaluated against the provided reference date (YYYY-MM-DD).
func (r *SessionRepository) Stats(ctx context.Context, filter models.SessionFilter, today string) (*models.SessionStats, error) {
	base, args := sessionFilterClause(filter)
	dateArg := len(args) + 1
	args = append(args, today)

	query := fmt.Sprintf(`SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'approved') AS approved,
		COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
		COUNT(*) FILTER (WHERE status = 'completed') AS completed,
		COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
		COUNT(*) FILTER (WHERE session_date = $%d) AS today,
		COUNT(*) FILTER (WHERE session_date > $%d AND status IN ('pending', 'approved')) AS upcoming
		%s`, dateArg, dateArg, base)

	var stats models.SessionStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("session stats: %w", err)
	}
	return &stats, nil
}

// FindByID loads a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.BookingSession, error) {
	query := fmt.Sprintf("SELECT %s FROM booking_sessions WHERE id = $1", sessionColumns)
	var session models.BookingSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListForCounselorDate returns every session booked against a counselor on a
// date regardless of status. Callers decide which statuses occupy slots.
func (r *SessionRepository) ListForCounselorDate(ctx context.Context, counselorID, date string) ([]models.BookingSession, error) {
	query := fmt.Sprintf("SELECT %s FROM booking_sessions WHERE counselor_id = $1 AND session_date = $2 ORDER BY start_time ASC", sessionColumns)
	var sessions []models.BookingSession
	if err := r.db.SelectContext(ctx, &sessions, query, counselorID, date); err != nil {
		return nil, fmt.Errorf("list sessions for counselor date: %w", err)
	}
	return sessions, nil
}

// Reserve inserts a pending session inside one transaction. When a concurrent
// reservation holds the same slot the insert trips the active-slot unique
// index and the caller observes a booking conflict; an expired context
// surfaces as the transient timeout category instead.
func (r *SessionRepository) Reserve(ctx context.Context, session *models.BookingSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	session.Status = models.StatusPending

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return translateWriteError(err, "begin reserve session")
	}

	const query = `INSERT INTO booking_sessions (id, counselor_id, requester_id, session_date, start_time, end_time, method, meeting_link, location, status, rejection_reason, complaint_reference, created_at, updated_at) VALUES (:id, :counselor_id, :requester_id, :session_date, :start_time, :end_time, :method, :meeting_link, :location, :status, :rejection_reason, :complaint_reference, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, session); err != nil {
		_ = tx.Rollback()
		return translateWriteError(err, "reserve session")
	}

	if err = tx.Commit(); err != nil {
		return translateWriteError(err, "commit reserve session")
	}
	return nil
}

// Transition loads the session under a row lock, lets apply mutate it, and
// persists the result, all in one transaction. apply returning an error
// rolls back with nothing written.
func (r *SessionRepository) Transition(ctx context.Context, id string, apply func(*models.BookingSession) error) (*models.BookingSession, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, translateWriteError(err, "begin session transition")
	}

	query := fmt.Sprintf("SELECT %s FROM booking_sessions WHERE id = $1 FOR UPDATE", sessionColumns)
	var session models.BookingSession
	if err = tx.GetContext(ctx, &session, query, id); err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, translateWriteError(err, "load session for transition")
	}

	if err = apply(&session); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	session.UpdatedAt = time.Now().UTC()
	const update = `UPDATE booking_sessions SET status = :status, rejection_reason = :rejection_reason, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, update, &session); err != nil {
		_ = tx.Rollback()
		return nil, translateWriteError(err, "persist session transition")
	}

	if err = tx.Commit(); err != nil {
		return nil, translateWriteError(err, "commit session transition")
	}
	return &session, nil
}

func sessionFilterClause(filter models.SessionFilter) (string, []interface{}) {
	base := "FROM booking_sessions WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CounselorID != "" {
		conditions = append(conditions, fmt.Sprintf("counselor_id = $%d", len(args)+1))
		args = append(args, filter.CounselorID)
	}
	if filter.RequesterID != "" {
		conditions = append(conditions, fmt.Sprintf("requester_id = $%d", len(args)+1))
		args = append(args, filter.RequesterID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.DateFrom != "" {
		conditions = append(conditions, fmt.Sprintf("session_date >= $%d", len(args)+1))
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		conditions = append(conditions, fmt.Sprintf("session_date <= $%d", len(args)+1))
		args = append(args, filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	return base, args
}

func translateWriteError(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, "booking transaction aborted")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == activeSlotConstraint {
		return appErrors.Wrap(err, appErrors.ErrBookingConflict.Code, appErrors.ErrBookingConflict.Status, "slot already booked")
	}
	return fmt.Errorf("%s: %w", action, err)
}
