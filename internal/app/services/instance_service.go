package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/kthdsp/teachalloc/internal/app/models"
	"github.com/kthdsp/teachalloc/internal/db"
	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
)

// InstanceService handles course instance operations: listings, the locked
// student-count increase, and the planned-vs-actual cost summary.
type InstanceService struct {
	runner        db.TxRunner
	newStores     StoreFactory
	reads         *Stores
	avgHourlyRate decimal.Decimal
	logger        zerolog.Logger
}

// NewInstanceService creates a new InstanceService. avgHourlyRate is the
// configured average salary used for planned cost estimation.
func NewInstanceService(runner db.TxRunner, newStores StoreFactory, reads *Stores, avgHourlyRate decimal.Decimal, logger zerolog.Logger) *InstanceService {
	return &InstanceService{
		runner:        runner,
		newStores:     newStores,
		reads:         reads,
		avgHourlyRate: avgHourlyRate,
		logger:        logger,
	}
}

// GetAllInstances lists all course instances.
func (s *InstanceService) GetAllInstances(ctx context.Context) ([]*models.CourseInstance, error) {
	return s.reads.Instances.FindAll(ctx)
}

// GetInstancesByYear lists course instances for one study year.
func (s *InstanceService) GetInstancesByYear(ctx context.Context, year int) ([]*models.CourseInstance, error) {
	return s.reads.Instances.FindByYear(ctx, year)
}

// GetInstanceByID retrieves a single course instance.
func (s *InstanceService) GetInstanceByID(ctx context.Context, instanceID string) (*models.CourseInstance, error) {
	if instanceID == "" {
		return nil, fmt.Errorf("%w: instance ID must not be empty", apperrors.ErrValidationFailed)
	}

	return s.reads.Instances.FindByID(ctx, instanceID, false)
}

// IncreaseStudentCount adds count students to an instance. The instance row
// is locked before the read and the write happens in the same lock scope, so
// two racing increases cannot lose an update. A negative count is rejected
// before any lock is taken.
func (s *InstanceService) IncreaseStudentCount(ctx context.Context, instanceID string, count int) error {
	if instanceID == "" {
		return fmt.Errorf("%w: instance ID must not be empty", apperrors.ErrValidationFailed)
	}
	if count < 0 {
		return fmt.Errorf("%w: student increase must not be negative, got %d",
			apperrors.ErrValidationFailed, count)
	}

	return s.runner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		stores := s.newStores(tx)

		instance, err := stores.Instances.FindByID(ctx, instanceID, true)
		if err != nil {
			return err
		}

		if err := instance.IncreaseStudents(count); err != nil {
			return err
		}

		if err := stores.Instances.UpdateStudents(ctx, instance); err != nil {
			return err
		}

		s.logger.Info().
			Str("instanceId", instanceID).
			Int("added", count).
			Int("numStudents", instance.NumStudents).
			Msg("Student count increased")
		return nil
	})
}

// ComputeCost derives the planned and actual teaching cost of an instance.
// Planned cost is the factor-scaled planned hours times the configured
// average hourly rate; actual cost sums allocated hours times the salary
// rate pinned at allocation time over active allocations. Both are reported
// in KSEK, rounded half-up to two decimals. Pure function of stored state:
// no locks, no writes.
func (s *InstanceService) ComputeCost(ctx context.Context, instanceID string) (*models.CostSummary, error) {
	if instanceID == "" {
		return nil, fmt.Errorf("%w: instance ID must not be empty", apperrors.ErrValidationFailed)
	}

	var summary *models.CostSummary
	err := s.runner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		stores := s.newStores(tx)

		instance, err := stores.Instances.FindByID(ctx, instanceID, false)
		if err != nil {
			return err
		}

		plannedHours, err := stores.Activities.SumPlannedEffectiveHours(ctx, instanceID)
		if err != nil {
			return err
		}

		actualSEK, err := stores.Allocations.SumActualCost(ctx, instanceID)
		if err != nil {
			return err
		}

		summary = &models.CostSummary{
			CourseCode:       instance.CourseCode,
			CourseInstanceID: instance.InstanceID,
			StudyPeriod:      instance.StudyPeriod,
			PlannedCostKSEK:  models.ToReportingUnit(plannedHours.Mul(s.avgHourlyRate)),
			ActualCostKSEK:   models.ToReportingUnit(actualSEK),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}
