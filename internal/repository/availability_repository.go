package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/counseling-api/internal/models"
)

// AvailabilityRepository provides persistence for recurring availability windows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository creates a new availability repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

const availabilityColumns = "id, counselor_id, day_of_week, start_time, end_time, slot_duration_minutes, is_active, created_at, updated_at"

// List returns availability windows matching the filter.
func (r *AvailabilityRepository) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.CounselorAvailability, error) {
	base := "FROM counselor_availabilities WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CounselorID != "" {
		conditions = append(conditions, fmt.Sprintf("counselor_id = $%d", len(args)+1))
		args = append(args, filter.CounselorID)
	}
	if filter.DayOfWeek != "" {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY day_of_week ASC, start_time ASC", availabilityColumns, base)
	var windows []models.CounselorAvailability
	if err := r.db.SelectContext(ctx, &windows, query, args...); err != nil {
		return nil, fmt.Errorf("list availabilities: %w", err)
	}
	return windows, nil
}

// ListActiveForDay returns a counselor's active windows for one weekday.
func (r *AvailabilityRepository) ListActiveForDay(ctx context.Context, counselorID, dayOfWeek string) ([]models.CounselorAvailability, error) {
	query := fmt.Sprintf("SELECT %s FROM counselor_availabilities WHERE counselor_id = $1 AND day_of_week = $2 AND is_active = TRUE ORDER BY start_time ASC", availabilityColumns)
	var windows []models.CounselorAvailability
	if err := r.db.SelectContext(ctx, &windows, query, counselorID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list active availabilities: %w", err)
	}
	return windows, nil
}

// FindByID loads an availability window by id.
func (r *AvailabilityRepository) FindByID(ctx context.Context, id string) (*models.CounselorAvailability, error) {
	query := fmt.Sprintf("SELECT %s FROM counselor_availabilities WHERE id = $1", availabilityColumns)
	var window models.CounselorAvailability
	if err := r.db.GetContext(ctx, &window, query, id); err != nil {
		return nil, err
	}
	return &window, nil
}

// Create stores a new availability window.
func (r *AvailabilityRepository) Create(ctx context.Context, window *models.CounselorAvailability) error {
	if window.ID == "" {
		window.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if window.CreatedAt.IsZero() {
		window.CreatedAt = now
	}
	window.UpdatedAt = now

	const query = `INSERT INTO counselor_availabilities (id, counselor_id, day_of_week, start_time, end_time, slot_duration_minutes, is_active, created_at, updated_at) VALUES (:id, :counselor_id, :day_of_week, :start_time, :end_time, :slot_duration_minutes, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, window); err != nil {
		return fmt.Errorf("create availability: %w", err)
	}
	return nil
}

// Update modifies an availability window.
func (r *AvailabilityRepository) Update(ctx context.Context, window *models.CounselorAvailability) error {
	window.UpdatedAt = time.Now().UTC()
	const query = `UPDATE counselor_availabilities SET day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, slot_duration_minutes = :slot_duration_minutes, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, window); err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	return nil
}

// Delete removes an availability window by id. Existing sessions keep their
// booked windows; only future slot generation is affected.
func (r *AvailabilityRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM counselor_availabilities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	return nil
}
