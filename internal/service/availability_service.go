package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/models"
	appErrors "github.com/noah-isme/counseling-api/pkg/errors"
)

type availabilityRepository interface {
	List(ctx context.Context, filter models.AvailabilityFilter) ([]models.CounselorAvailability, error)
	FindByID(ctx context.Context, id string) (*models.CounselorAvailability, error)
	Create(ctx context.Context, window *models.CounselorAvailability) error
	Update(ctx context.Context, window *models.CounselorAvailability) error
	Delete(ctx context.Context, id string) error
}

// CreateAvailabilityRequest describes the payload for a new weekly window.
type CreateAvailabilityRequest struct {
	CounselorID         string `json:"counselor_id" validate:"required"`
	DayOfWeek           string `json:"day_of_week" validate:"required"`
	StartTime           string `json:"start_time" validate:"required"`
	EndTime             string `json:"end_time" validate:"required"`
	SlotDurationMinutes int    `json:"slot_duration_minutes" validate:"required,gt=0"`
	IsActive            *bool  `json:"is_active"`
}

// UpdateAvailabilityRequest updates an existing window. The owning counselor
// cannot be reassigned.
type UpdateAvailabilityRequest struct {
	DayOfWeek           string `json:"day_of_week" validate:"required"`
	StartTime           string `json:"start_time" validate:"required"`
	EndTime             string `json:"end_time" validate:"required"`
	SlotDurationMinutes int    `json:"slot_duration_minutes" validate:"required,gt=0"`
	IsActive            *bool  `json:"is_active"`
}

// AvailabilityService manages recurring weekly windows. All writes are
// prospective: sessions already booked against previously generated slots are
// never touched when a window changes.
type AvailabilityService struct {
	repo      availabilityRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(repo availabilityRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns availability windows matching the filter.
func (s *AvailabilityService) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.CounselorAvailability, error) {
	if filter.DayOfWeek != "" && !models.IsWeekdayName(filter.DayOfWeek) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown day of week")
	}
	filter.DayOfWeek = strings.ToUpper(filter.DayOfWeek)
	windows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability windows")
	}
	return windows, nil
}

// Create stores a new window after overlap validation.
func (s *AvailabilityService) Create(ctx context.Context, req CreateAvailabilityRequest, actor *models.JWTClaims) (*models.CounselorAvailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	if err := requireOwnership(actor, req.CounselorID); err != nil {
		return nil, err
	}

	window := models.CounselorAvailability{
		CounselorID:         req.CounselorID,
		DayOfWeek:           strings.ToUpper(req.DayOfWeek),
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		SlotDurationMinutes: req.SlotDurationMinutes,
		IsActive:            true,
	}
	if req.IsActive != nil {
		window.IsActive = *req.IsActive
	}

	if err := s.validateWindow(ctx, &window, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create availability window")
	}
	s.invalidateSlots(ctx, window.CounselorID)
	return &window, nil
}

// Update modifies an existing window after overlap validation.
func (s *AvailabilityService) Update(ctx context.Context, id string, req UpdateAvailabilityRequest, actor *models.JWTClaims) (*models.CounselorAvailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "availability window not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability window")
	}
	if err := requireOwnership(actor, existing.CounselorID); err != nil {
		return nil, err
	}

	updated := models.CounselorAvailability{
		ID:                  existing.ID,
		CounselorID:         existing.CounselorID,
		DayOfWeek:           strings.ToUpper(req.DayOfWeek),
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		SlotDurationMinutes: req.SlotDurationMinutes,
		IsActive:            existing.IsActive,
		CreatedAt:           existing.CreatedAt,
	}
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
	}

	if err := s.validateWindow(ctx, &updated, existing.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability window")
	}
	s.invalidateSlots(ctx, updated.CounselorID)
	return &updated, nil
}

// Delete removes a window. Booked sessions survive; only future slot
// generation changes.
func (s *AvailabilityService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "availability window not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability window")
	}
	if err := requireOwnership(actor, existing.CounselorID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability window")
	}
	s.invalidateSlots(ctx, existing.CounselorID)
	return nil
}

// validateWindow checks time sanity and rejects overlaps with other active
// windows for the same counselor and weekday at write time.
func (s *AvailabilityService) validateWindow(ctx context.Context, window *models.CounselorAvailability, ignoreID string) error {
	if !models.IsWeekdayName(window.DayOfWeek) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown day of week")
	}
	start, err := ParseClock(window.StartTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must be HH:MM")
	}
	end, err := ParseClock(window.EndTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be HH:MM")
	}
	if start >= end {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
	}

	if !window.IsActive {
		return nil
	}

	siblings, err := s.repo.List(ctx, models.AvailabilityFilter{
		CounselorID: window.CounselorID,
		DayOfWeek:   window.DayOfWeek,
		ActiveOnly:  true,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check window overlaps")
	}

	for _, sibling := range siblings {
		if sibling.ID == ignoreID {
			continue
		}
		sibStart, err := ParseClock(sibling.StartTime)
		if err != nil {
			continue
		}
		sibEnd, err := ParseClock(sibling.EndTime)
		if err != nil {
			continue
		}
		if start < sibEnd && sibStart < end {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("window overlaps existing %s %s-%s", sibling.DayOfWeek, sibling.StartTime, sibling.EndTime))
		}
	}
	return nil
}

func (s *AvailabilityService) invalidateSlots(ctx context.Context, counselorID string) {
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("slots:%s:*", counselorID))
}

func requireOwnership(actor *models.JWTClaims, counselorID string) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.IsOperator() || actor.UserID == counselorID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "only the owning counselor or an operator may manage this schedule")
}
