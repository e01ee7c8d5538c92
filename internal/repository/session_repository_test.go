package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

func newSessionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sessionRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "counselor_id", "requester_id", "session_date", "start_time", "end_time",
		"method", "meeting_link", "location", "status", "rejection_reason", "complaint_reference",
		"created_at", "updated_at",
	}).AddRow("s1", "c1", "stu1", "2026-09-07", "08:00", "08:45",
		"online", "https://meet.example.edu/c/abc", "", "pending", "", "", now, now)
}

func TestSessionRepositoryReserve(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO booking_sessions").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	session := &models.BookingSession{
		CounselorID: "c1",
		RequesterID: "stu1",
		Date:        "2026-09-07",
		StartTime:   "08:00",
		EndTime:     "08:45",
		Method:      models.MethodOnline,
	}
	require.NoError(t, repo.Reserve(context.Background(), session))
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, models.StatusPending, session.Status)
	assert.False(t, session.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryReserveConflict(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO booking_sessions").
		WillReturnError(&pq.Error{Code: "23505", Constraint: activeSlotConstraint})
	mock.ExpectRollback()

	err := repo.Reserve(context.Background(), &models.BookingSession{
		CounselorID: "c1", RequesterID: "stu1", Date: "2026-09-07", StartTime: "08:00", EndTime: "08:45",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBookingConflict.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryReserveOtherUniqueViolationIsNotConflict(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO booking_sessions").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "booking_sessions_pkey"})
	mock.ExpectRollback()

	err := repo.Reserve(context.Background(), &models.BookingSession{
		CounselorID: "c1", RequesterID: "stu1", Date: "2026-09-07", StartTime: "08:00", EndTime: "08:45",
	})
	require.Error(t, err)
	assert.NotEqual(t, appErrors.ErrBookingConflict.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryReserveTimeout(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO booking_sessions").
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	err := repo.Reserve(context.Background(), &models.BookingSession{
		CounselorID: "c1", RequesterID: "stu1", Date: "2026-09-07", StartTime: "08:00", EndTime: "08:45",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTimeout.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryTransition(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM booking_sessions WHERE id = \\$1 FOR UPDATE").
		WithArgs("s1").
		WillReturnRows(sessionRows())
	mock.ExpectExec("UPDATE booking_sessions SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	session, err := repo.Transition(context.Background(), "s1", func(s *models.BookingSession) error {
		s.Status = models.StatusApproved
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, session.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryTransitionApplyErrorRollsBack(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM booking_sessions WHERE id = \\$1 FOR UPDATE").
		WithArgs("s1").
		WillReturnRows(sessionRows())
	mock.ExpectRollback()

	refusal := appErrors.Clone(appErrors.ErrInvalidTransition, "cannot complete a pending session")
	_, err := repo.Transition(context.Background(), "s1", func(s *models.BookingSession) error {
		return refusal
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryTransitionNotFound(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM booking_sessions WHERE id = \\$1 FOR UPDATE").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Transition(context.Background(), "missing", func(s *models.BookingSession) error {
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryList(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM booking_sessions WHERE 1=1 AND counselor_id = $1 AND status = $2 ORDER BY session_date DESC, start_time ASC LIMIT 20 OFFSET 0")).
		WithArgs("c1", "pending").
		WillReturnRows(sessionRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM booking_sessions WHERE 1=1 AND counselor_id = $1 AND status = $2")).
		WithArgs("c1", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	sessions, total, err := repo.List(context.Background(), models.SessionFilter{CounselorID: "c1", Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryStats(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	rows := sqlmock.NewRows([]string{"total", "pending", "approved", "rejected", "completed", "cancelled", "today", "upcoming"}).
		AddRow(4, 1, 1, 1, 1, 0, 1, 2)
	mock.ExpectQuery("COUNT\\(\\*\\) FILTER").
		WithArgs("c1", "2026-09-07").
		WillReturnRows(rows)

	stats, err := repo.Stats(context.Background(), models.SessionFilter{CounselorID: "c1"}, "2026-09-07")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Upcoming)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListForCounselorDate(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM booking_sessions WHERE counselor_id = $1 AND session_date = $2 ORDER BY start_time ASC")).
		WithArgs("c1", "2026-09-07").
		WillReturnRows(sessionRows())

	sessions, err := repo.ListForCounselorDate(context.Background(), "c1", "2026-09-07")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
