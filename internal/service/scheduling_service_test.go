package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/pkg/config"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

type fakeAvailability struct {
	windows []models.CounselorAvailability
	err     error
}

func (f *fakeAvailability) ListActiveForDay(ctx context.Context, counselorID, dayOfWeek string) ([]models.CounselorAvailability, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.CounselorAvailability
	for _, w := range f.windows {
		if w.CounselorID == counselorID && w.DayOfWeek == dayOfWeek && w.IsActive {
			out = append(out, w)
		}
	}
	return out, nil
}

// fakeLedger mimics the partial unique index: at most one occupying session
// per (counselor, date, start_time), enforced under a mutex.
type fakeLedger struct {
	mu       sync.Mutex
	sessions map[string]*models.BookingSession
	nextID   int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{sessions: make(map[string]*models.BookingSession)}
}

func (f *fakeLedger) slotKey(s *models.BookingSession) string {
	return s.CounselorID + "/" + s.Date + "/" + s.StartTime
}

func (f *fakeLedger) FindByID(ctx context.Context, id string) (*models.BookingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeLedger) List(ctx context.Context, filter models.SessionFilter) ([]models.BookingSession, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BookingSession
	for _, s := range f.sessions {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (f *fakeLedger) Stats(ctx context.Context, filter models.SessionFilter, today string) (*models.SessionStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &models.SessionStats{}
	for _, s := range f.sessions {
		stats.Total++
		switch s.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusApproved:
			stats.Approved++
		case models.StatusRejected:
			stats.Rejected++
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (f *fakeLedger) ListForCounselorDate(ctx context.Context, counselorID, date string) ([]models.BookingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BookingSession
	for _, s := range f.sessions {
		if s.CounselorID == counselorID && s.Date == date {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeLedger) Reserve(ctx context.Context, session *models.BookingSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := f.slotKey(session)
	for _, existing := range f.sessions {
		if f.slotKey(existing) == key && existing.Status.OccupiesSlot() {
			return appErrors.Clone(appErrors.ErrBookingConflict, "")
		}
	}
	f.nextID++
	session.ID = fmt.Sprintf("s-%d", f.nextID)
	session.Status = models.StatusPending
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeLedger) Transition(ctx context.Context, id string, apply func(*models.BookingSession) error) (*models.BookingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	cp := *s
	if err := apply(&cp); err != nil {
		return nil, err
	}
	f.sessions[id] = &cp
	out := cp
	return &out, nil
}

func newSchedulingFixture(ledger *fakeLedger) *SchedulingService {
	availability := &fakeAvailability{windows: []models.CounselorAvailability{
		{ID: "w1", CounselorID: "c1", DayOfWeek: "MONDAY", StartTime: "08:00", EndTime: "12:00", SlotDurationMinutes: 45, IsActive: true},
	}}
	svc := NewSchedulingService(availability, ledger, nil, nil, nil, nil, config.SchedulingConfig{
		MeetingLinkBaseURL: "https://meet.example.edu/c",
		ReserveTimeout:     time.Second,
		MaxBookingHorizon:  90 * 24 * time.Hour,
	}, 0)
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func validRequest() RequestSessionRequest {
	return RequestSessionRequest{
		CounselorID: "c1",
		RequesterID: "stu1",
		Date:        "2026-09-07",
		StartTime:   "08:00",
		EndTime:     "08:45",
		Method:      "online",
	}
}

func TestListAvailableSlotsValidation(t *testing.T) {
	svc := newSchedulingFixture(newFakeLedger())

	_, err := svc.ListAvailableSlots(context.Background(), "", "2026-09-07")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.ListAvailableSlots(context.Background(), "c1", "07-09-2026")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestListAvailableSlotsAnnotatesBookings(t *testing.T) {
	ledger := newFakeLedger()
	svc := newSchedulingFixture(ledger)

	_, err := svc.RequestSession(context.Background(), validRequest())
	require.NoError(t, err)

	slots, err := svc.ListAvailableSlots(context.Background(), "c1", "2026-09-07")
	require.NoError(t, err)
	require.Len(t, slots, 5)
	assert.False(t, slots[0].Available)
	for _, slot := range slots[1:] {
		assert.True(t, slot.Available)
	}
}

func TestListAvailableSlotsEmptyDay(t *testing.T) {
	svc := newSchedulingFixture(newFakeLedger())

	// 2026-09-08 is a Tuesday with no windows.
	slots, err := svc.ListAvailableSlots(context.Background(), "c1", "2026-09-08")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestRequestSessionRejectsUnknownSlot(t *testing.T) {
	svc := newSchedulingFixture(newFakeLedger())

	req := validRequest()
	req.StartTime = "08:15"
	req.EndTime = "09:00"
	_, err := svc.RequestSession(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSlotInvalid.Code, appErrors.FromError(err).Code)
}

func TestRequestSessionRejectsPastDate(t *testing.T) {
	svc := newSchedulingFixture(newFakeLedger())

	req := validRequest()
	req.Date = "2026-08-31"
	_, err := svc.RequestSession(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRequestSessionRejectsBeyondHorizon(t *testing.T) {
	svc := newSchedulingFixture(newFakeLedger())

	req := validRequest()
	req.Date = "2027-09-06" // a Monday far past the 90 day horizon
	_, err := svc.RequestSession(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRequestSessionOnlineGeneratesMeetingLink(t *testing.T) {
	svc := newSchedulingFixture(newFakeLedger())

	session, err := svc.RequestSession(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, session.Status)
	assert.True(t, strings.HasPrefix(session.MeetingLink, "https://meet.example.edu/c/"))
	assert.NotEmpty(t, session.ID)
}

func TestRequestSessionOfflineRequiresLocation(t *testing.T) {
	svc := newSchedulingFixture(newFakeLedger())

	req := validRequest()
	req.Method = "offline"
	_, err := svc.RequestSession(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req.Location = "Room 204"
	session, err := svc.RequestSession(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Room 204", session.Location)
	assert.Empty(t, session.MeetingLink)
}

func TestRequestSessionConflictSurfaces(t *testing.T) {
	ledger := newFakeLedger()
	svc := newSchedulingFixture(ledger)

	_, err := svc.RequestSession(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.RequestSession(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBookingConflict.Code, appErrors.FromError(err).Code)
}

func TestRequestSessionConcurrentSameSlot(t *testing.T) {
	ledger := newFakeLedger()
	svc := newSchedulingFixture(ledger)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := validRequest()
			req.RequesterID = fmt.Sprintf("stu-%d", n)
			_, err := svc.RequestSession(context.Background(), req)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var reserved, conflicts int
	for err := range results {
		if err == nil {
			reserved++
			continue
		}
		require.Equal(t, appErrors.ErrBookingConflict.Code, appErrors.FromError(err).Code)
		conflicts++
	}
	assert.Equal(t, 1, reserved)
	assert.Equal(t, attempts-1, conflicts)
}

func TestTransitionSessionAuthorization(t *testing.T) {
	ledger := newFakeLedger()
	svc := newSchedulingFixture(ledger)

	session, err := svc.RequestSession(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.TransitionSession(context.Background(), session.ID, models.ActionApprove, nil, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	requester := &models.JWTClaims{UserID: "stu1", Role: models.RoleStudent}
	_, err = svc.TransitionSession(context.Background(), session.ID, models.ActionApprove, requester, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	otherCounselor := &models.JWTClaims{UserID: "c2", Role: models.RoleCounselor}
	_, err = svc.TransitionSession(context.Background(), session.ID, models.ActionApprove, otherCounselor, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	owner := &models.JWTClaims{UserID: "c1", Role: models.RoleCounselor}
	approved, err := svc.TransitionSession(context.Background(), session.ID, models.ActionApprove, owner, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
}

func TestTransitionSessionOperatorMayAct(t *testing.T) {
	ledger := newFakeLedger()
	svc := newSchedulingFixture(ledger)

	session, err := svc.RequestSession(context.Background(), validRequest())
	require.NoError(t, err)

	operator := &models.JWTClaims{UserID: "op1", Role: models.RoleOperator}
	rejected, err := svc.TransitionSession(context.Background(), session.ID, models.ActionReject, operator, "counselor unavailable")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
	assert.Equal(t, "counselor unavailable", rejected.RejectionReason)
}

func TestTransitionSessionInvalidEdgeLeavesSessionUntouched(t *testing.T) {
	ledger := newFakeLedger()
	svc := newSchedulingFixture(ledger)

	session, err := svc.RequestSession(context.Background(), validRequest())
	require.NoError(t, err)

	owner := &models.JWTClaims{UserID: "c1", Role: models.RoleCounselor}
	_, err = svc.TransitionSession(context.Background(), session.ID, models.ActionComplete, owner, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)

	stored, err := svc.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestRejectedSlotBecomesBookableAgain(t *testing.T) {
	ledger := newFakeLedger()
	svc := newSchedulingFixture(ledger)

	session, err := svc.RequestSession(context.Background(), validRequest())
	require.NoError(t, err)

	owner := &models.JWTClaims{UserID: "c1", Role: models.RoleCounselor}
	_, err = svc.TransitionSession(context.Background(), session.ID, models.ActionReject, owner, "conflict")
	require.NoError(t, err)

	slots, err := svc.ListAvailableSlots(context.Background(), "c1", "2026-09-07")
	require.NoError(t, err)
	assert.True(t, slots[0].Available)

	_, err = svc.RequestSession(context.Background(), validRequest())
	require.NoError(t, err)
}

func TestGetSessionNotFound(t *testing.T) {
	svc := newSchedulingFixture(newFakeLedger())

	_, err := svc.GetSession(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListSessionsValidatesFilter(t *testing.T) {
	svc := newSchedulingFixture(newFakeLedger())

	_, _, err := svc.ListSessions(context.Background(), models.SessionFilter{Status: "archived"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, _, err = svc.ListSessions(context.Background(), models.SessionFilter{DateFrom: "last week"})
	require.Error(t, err)
}

func TestListSessionsReturnsStatsAndPagination(t *testing.T) {
	ledger := newFakeLedger()
	svc := newSchedulingFixture(ledger)

	_, err := svc.RequestSession(context.Background(), validRequest())
	require.NoError(t, err)

	result, pagination, err := svc.ListSessions(context.Background(), models.SessionFilter{})
	require.NoError(t, err)
	require.NotNil(t, result.Stats)
	assert.Equal(t, 1, result.Stats.Total)
	assert.Equal(t, 1, result.Stats.Pending)
	assert.Len(t, result.Sessions, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}
