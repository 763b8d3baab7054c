package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kthdsp/teachalloc/internal/app/models"
	"github.com/kthdsp/teachalloc/internal/db"
	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
	"github.com/kthdsp/teachalloc/internal/pkg/dberrors"
)

// ActivityRepository handles database access for the teaching activity
// catalog and the planned activity associations of course instances.
type ActivityRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewActivityRepository creates a new ActivityRepository bound to the given
// querier.
func NewActivityRepository(q db.Querier) *ActivityRepository {
	return &ActivityRepository{
		db: q,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindAll retrieves the whole activity catalog.
func (r *ActivityRepository) FindAll(ctx context.Context) ([]*models.TeachingActivity, error) {
	sql, args, err := r.sb.Select("activity_id", "activity_name", "factor", "is_derived").
		From("teaching_activity").
		OrderBy("activity_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build activity query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing teaching activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.TeachingActivity
	for rows.Next() {
		var activity models.TeachingActivity
		if err := rows.Scan(&activity.ActivityID, &activity.ActivityName,
			&activity.Factor, &activity.IsDerived); err != nil {
			return nil, err
		}
		activities = append(activities, &activity)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return activities, nil
}

// FindByID retrieves a teaching activity by its ID.
func (r *ActivityRepository) FindByID(ctx context.Context, activityID int) (*models.TeachingActivity, error) {
	var activity models.TeachingActivity
	err := r.db.QueryRow(ctx,
		`SELECT activity_id, activity_name, factor, is_derived
		 FROM teaching_activity WHERE activity_id = $1`,
		activityID).Scan(&activity.ActivityID, &activity.ActivityName,
		&activity.Factor, &activity.IsDerived)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrActivityNotFound
		}
		return nil, fmt.Errorf("error retrieving activity %d: %w", activityID, err)
	}

	return &activity, nil
}

// FindByName retrieves a teaching activity by name, case-insensitively.
func (r *ActivityRepository) FindByName(ctx context.Context, name string) (*models.TeachingActivity, error) {
	var activity models.TeachingActivity
	err := r.db.QueryRow(ctx,
		`SELECT activity_id, activity_name, factor, is_derived
		 FROM teaching_activity WHERE LOWER(activity_name) = LOWER($1)`,
		name).Scan(&activity.ActivityID, &activity.ActivityName,
		&activity.Factor, &activity.IsDerived)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrActivityNotFound
		}
		return nil, fmt.Errorf("error retrieving activity %q: %w", name, err)
	}

	return &activity, nil
}

// Create inserts a new activity into the catalog and returns its ID.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.TeachingActivity) (int, error) {
	sql, args, err := r.sb.Insert("teaching_activity").
		Columns("activity_name", "factor", "is_derived").
		Values(activity.ActivityName, activity.Factor, activity.IsDerived).
		Suffix("RETURNING activity_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create activity query: %w", err)
	}

	var id int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrActivityAlreadyExists
		}
		return 0, fmt.Errorf("error creating activity %q: %w", activity.ActivityName, err)
	}

	return id, nil
}

// CreatePlanned associates an activity with a course instance for the given
// planned hours. The composite primary key enforces at most one association
// per (instance, activity) pair.
func (r *ActivityRepository) CreatePlanned(ctx context.Context, planned *models.PlannedActivity) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO planned_activity (course_instance_id, activity_id, planned_hours)
		 VALUES ($1, $2, $3)`,
		planned.CourseInstanceID, planned.ActivityID, planned.PlannedHours)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrPlannedActivityExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrInstanceNotFound
		}
		return fmt.Errorf("error creating planned activity: %w", err)
	}
	return nil
}

// SumPlannedEffectiveHours sums planned hours scaled by each activity's hour
// factor across all planned activities of an instance. Returns zero when the
// instance has no planned activities.
func (r *ActivityRepository) SumPlannedEffectiveHours(ctx context.Context, instanceID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(pa.planned_hours * ta.factor), 0)
		 FROM planned_activity pa
		 JOIN teaching_activity ta ON ta.activity_id = pa.activity_id
		 WHERE pa.course_instance_id = $1`,
		instanceID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error reading planned hours for %s: %w", instanceID, err)
	}

	return total, nil
}
