package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kthdsp/teachalloc/internal/app/models"
	"github.com/kthdsp/teachalloc/internal/db"
	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
	"github.com/kthdsp/teachalloc/internal/pkg/validation"
)

// CatalogService handles the teaching activity catalog and the association
// of planned activities with course instances.
type CatalogService struct {
	runner    db.TxRunner
	newStores StoreFactory
	reads     *Stores
	logger    zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(runner db.TxRunner, newStores StoreFactory, reads *Stores, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		runner:    runner,
		newStores: newStores,
		reads:     reads,
		logger:    logger,
	}
}

// GetAllActivities lists the activity catalog.
func (s *CatalogService) GetAllActivities(ctx context.Context) ([]*models.TeachingActivity, error) {
	return s.reads.Activities.FindAll(ctx)
}

// CreateActivity adds a new activity to the catalog. New activities are
// never derived; derived activities exist only in the seeded catalog.
func (s *CatalogService) CreateActivity(ctx context.Context, name string, factor decimal.Decimal) (*models.TeachingActivity, error) {
	name = strings.TrimSpace(name)
	if !validation.ValidActivityName(name) {
		return nil, fmt.Errorf("%w: activity name must be %d-%d characters of letters, digits, spaces or hyphens",
			apperrors.ErrValidationFailed, validation.ActivityNameMinLength, validation.ActivityNameMaxLength)
	}
	if !factor.IsPositive() {
		return nil, fmt.Errorf("%w: activity factor must be positive, got %s",
			apperrors.ErrValidationFailed, factor)
	}

	activity := &models.TeachingActivity{
		ActivityName: name,
		Factor:       factor,
		IsDerived:    false,
	}

	err := s.runner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		stores := s.newStores(tx)

		id, err := stores.Activities.Create(ctx, activity)
		if err != nil {
			return err
		}
		activity.ActivityID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("activityId", activity.ActivityID).
		Str("name", activity.ActivityName).
		Msg("Teaching activity created")
	return activity, nil
}

// AssociateActivity plans hours for an activity on a course instance.
// Derived activities have their hours computed from course size, so
// associating one is rejected as a business-rule violation, not corrected
// silently.
func (s *CatalogService) AssociateActivity(ctx context.Context, instanceID string, activityID int, plannedHours decimal.Decimal) error {
	if instanceID == "" {
		return fmt.Errorf("%w: instance ID must not be empty", apperrors.ErrValidationFailed)
	}
	if plannedHours.IsNegative() {
		return fmt.Errorf("%w: planned hours must not be negative, got %s",
			apperrors.ErrValidationFailed, plannedHours)
	}

	return s.runner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		stores := s.newStores(tx)

		activity, err := stores.Activities.FindByID(ctx, activityID)
		if err != nil {
			return err
		}
		if activity.IsDerived {
			return apperrors.NewCustomError(apperrors.ErrDerivedActivity,
				fmt.Sprintf("activity %q is derived; its hours are computed, not planned",
					activity.ActivityName))
		}

		if err := stores.Activities.CreatePlanned(ctx, &models.PlannedActivity{
			CourseInstanceID: instanceID,
			ActivityID:       activityID,
			PlannedHours:     plannedHours,
		}); err != nil {
			return err
		}

		s.logger.Info().
			Str("instanceId", instanceID).
			Int("activityId", activityID).
			Str("plannedHours", plannedHours.String()).
			Msg("Activity associated with course instance")
		return nil
	})
}
