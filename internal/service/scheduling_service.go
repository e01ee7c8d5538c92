package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/pkg/config"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type availabilityReader interface {
	ListActiveForDay(ctx context.Context, counselorID, dayOfWeek string) ([]models.CounselorAvailability, error)
}

type sessionLedger interface {
	FindByID(ctx context.Context, id string) (*models.BookingSession, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.BookingSession, int, error)
	Stats(ctx context.Context, filter models.SessionFilter, today string) (*models.SessionStats, error)
	ListForCounselorDate(ctx context.Context, counselorID, date string) ([]models.BookingSession, error)
	Reserve(ctx context.Context, session *models.BookingSession) error
	Transition(ctx context.Context, id string, apply func(*models.BookingSession) error) (*models.BookingSession, error)
}

// RequestSessionRequest describes the payload for reserving a slot. The
// requester is taken from the authenticated context, never the body.
type RequestSessionRequest struct {
	CounselorID        string `json:"counselor_id" validate:"required"`
	RequesterID        string `json:"-"`
	Date               string `json:"date" validate:"required"`
	StartTime          string `json:"start_time" validate:"required"`
	EndTime            string `json:"end_time" validate:"required"`
	Method             string `json:"method" validate:"required,oneof=online offline"`
	MeetingLink        string `json:"meeting_link"`
	Location           string `json:"location"`
	ComplaintReference string `json:"complaint_reference"`
}

// SessionListResult bundles a page of sessions with aggregate counts over the
// whole filtered set.
type SessionListResult struct {
	Sessions []models.BookingSession `json:"sessions"`
	Stats    *models.SessionStats    `json:"stats"`
}

// SchedulingService is the single boundary the HTTP layer talks to for slot
// resolution and booking lifecycle.
type SchedulingService struct {
	availability availabilityReader
	sessions     sessionLedger
	cache        *CacheService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          config.SchedulingConfig
	slotTTL      time.Duration
	now          func() time.Time
}

// NewSchedulingService instantiates SchedulingService.
func NewSchedulingService(availability availabilityReader, sessions sessionLedger, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg config.SchedulingConfig, slotTTL time.Duration) *SchedulingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulingService{
		availability: availability,
		sessions:     sessions,
		cache:        cache,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
		slotTTL:      slotTTL,
		now:          time.Now,
	}
}

func slotCacheKey(counselorID, date string) string {
	return fmt.Sprintf("slots:%s:%s", counselorID, date)
}

// ListAvailableSlots resolves the bookable slots for a counselor on a date,
// annotated with availability against the current ledger.
func (s *SchedulingService) ListAvailableSlots(ctx context.Context, counselorID, date string) ([]models.Slot, error) {
	if counselorID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "counselor_id is required")
	}
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	key := slotCacheKey(counselorID, date)
	var cached []models.Slot
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	slots, err := s.resolveSlots(ctx, counselorID, date, day)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, key, slots, s.slotTTL)
	return slots, nil
}

func (s *SchedulingService) resolveSlots(ctx context.Context, counselorID, date string, day time.Time) ([]models.Slot, error) {
	windows, err := s.availability.ListActiveForDay(ctx, counselorID, models.WeekdayName(day.Weekday()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	candidates := GenerateSlots(windows, day)
	if len(candidates) == 0 {
		return []models.Slot{}, nil
	}

	booked, err := s.sessions.ListForCounselorDate(ctx, counselorID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booked sessions")
	}

	return AnnotateSlots(candidates, booked), nil
}

// RequestSession validates the requested window against the generated
// candidates and reserves it atomically. A conflicting concurrent reservation
// surfaces as a booking conflict, never as a silent double booking.
func (s *SchedulingService) RequestSession(ctx context.Context, req RequestSessionRequest) (*models.BookingSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	if req.RequesterID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "requester identity missing")
	}

	day, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	if day.Before(today) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot book a past date")
	}
	if s.cfg.MaxBookingHorizon > 0 && day.After(today.Add(s.cfg.MaxBookingHorizon)) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date is beyond the booking horizon")
	}

	windows, err := s.availability.ListActiveForDay(ctx, req.CounselorID, models.WeekdayName(day.Weekday()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	candidates := GenerateSlots(windows, day)
	if !containsSlot(candidates, req.StartTime, req.EndTime) {
		s.metrics.RecordBookingOutcome(BookingOutcomeInvalidSlot)
		return nil, appErrors.Clone(appErrors.ErrSlotInvalid,
			fmt.Sprintf("%s-%s is not a bookable slot on %s", req.StartTime, req.EndTime, req.Date))
	}

	session := &models.BookingSession{
		CounselorID:        req.CounselorID,
		RequesterID:        req.RequesterID,
		Date:               req.Date,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		Method:             models.MeetingMethod(req.Method),
		MeetingLink:        strings.TrimSpace(req.MeetingLink),
		Location:           strings.TrimSpace(req.Location),
		ComplaintReference: strings.TrimSpace(req.ComplaintReference),
	}

	switch session.Method {
	case models.MethodOnline:
		if session.MeetingLink == "" {
			session.MeetingLink = s.generateMeetingLink()
		}
	case models.MethodOffline:
		if session.Location == "" {
			s.metrics.RecordBookingOutcome(BookingOutcomeRejected)
			return nil, appErrors.Clone(appErrors.ErrValidation, "location is required for offline sessions")
		}
	}

	reserveCtx := ctx
	if s.cfg.ReserveTimeout > 0 {
		var cancel context.CancelFunc
		reserveCtx, cancel = context.WithTimeout(ctx, s.cfg.ReserveTimeout)
		defer cancel()
	}

	if err := s.sessions.Reserve(reserveCtx, session); err != nil {
		if appErrors.FromError(err).Code == appErrors.ErrBookingConflict.Code {
			s.metrics.RecordBookingOutcome(BookingOutcomeConflict)
			return nil, err
		}
		return nil, err
	}

	s.metrics.RecordBookingOutcome(BookingOutcomeReserved)
	_ = s.cache.Invalidate(ctx, slotCacheKey(req.CounselorID, req.Date))
	s.logger.Info("session reserved",
		zap.String("session_id", session.ID),
		zap.String("counselor_id", session.CounselorID),
		zap.String("date", session.Date),
		zap.String("start_time", session.StartTime),
	)
	return session, nil
}

// TransitionSession applies a lifecycle action to a session on behalf of an
// actor. Only the owning counselor or an operator may act; the decision runs
// under the ledger's row lock so concurrent transitions serialise.
func (s *SchedulingService) TransitionSession(ctx context.Context, sessionID string, action models.TransitionAction, actor *models.JWTClaims, reason string) (*models.BookingSession, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}

	session, err := s.sessions.Transition(ctx, sessionID, func(current *models.BookingSession) error {
		if !actor.IsOperator() && actor.UserID != current.CounselorID {
			return appErrors.Clone(appErrors.ErrForbidden, "only the owning counselor or an operator may act on this session")
		}
		return ApplyTransition(current, action, reason)
	})
	s.metrics.RecordTransition(string(action), err == nil)
	if err != nil {
		return nil, err
	}

	// Rejecting or cancelling releases the slot; drop the stale annotation.
	if !session.Status.OccupiesSlot() {
		_ = s.cache.Invalidate(ctx, slotCacheKey(session.CounselorID, session.Date))
	}
	s.logger.Info("session transitioned",
		zap.String("session_id", session.ID),
		zap.String("action", string(action)),
		zap.String("status", string(session.Status)),
	)
	return session, nil
}

// GetSession loads one session by id.
func (s *SchedulingService) GetSession(ctx context.Context, id string) (*models.BookingSession, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// ListSessions returns a filtered page of sessions plus aggregate stats over
// the filtered set.
func (s *SchedulingService) ListSessions(ctx context.Context, filter models.SessionFilter) (*SessionListResult, *models.Pagination, error) {
	if filter.Status != "" && !isKnownStatus(filter.Status) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	if filter.DateFrom != "" {
		if _, err := parseDate(filter.DateFrom); err != nil {
			return nil, nil, err
		}
	}
	if filter.DateTo != "" {
		if _, err := parseDate(filter.DateTo); err != nil {
			return nil, nil, err
		}
	}

	sessions, total, err := s.sessions.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}

	stats, err := s.sessions.Stats(ctx, filter, s.now().UTC().Format(dateLayout))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate sessions")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return &SessionListResult{Sessions: sessions, Stats: stats}, pagination, nil
}

func (s *SchedulingService) generateMeetingLink() string {
	base := strings.TrimRight(s.cfg.MeetingLinkBaseURL, "/")
	return fmt.Sprintf("%s/%s", base, uuid.NewString())
}

func parseDate(value string) (time.Time, error) {
	day, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}
	return day, nil
}

func isKnownStatus(status string) bool {
	switch models.SessionStatus(status) {
	case models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusCompleted, models.StatusCancelled:
		return true
	}
	return false
}
