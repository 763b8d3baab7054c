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

// AllocationService is the transactional allocation engine. Every mutating
// operation runs inside exactly one transaction with a fresh store bundle,
// and follows the global lock order: employee anchor first, course instance
// second. That order makes the capacity check an effectively serial critical
// section per employee and rules out deadlock against a concurrent
// student-count increase on the same instance.
type AllocationService struct {
	runner       db.TxRunner
	newStores    StoreFactory
	reads        *Stores
	defaultLimit int
	logger       zerolog.Logger
}

// NewAllocationService creates a new allocation engine. reads is a
// pool-bound store bundle used for non-locking listing queries;
// defaultLimit applies when the allocation_rule table holds no row.
func NewAllocationService(runner db.TxRunner, newStores StoreFactory, reads *Stores, defaultLimit int, logger zerolog.Logger) *AllocationService {
	return &AllocationService{
		runner:       runner,
		newStores:    newStores,
		reads:        reads,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Allocate assigns an employee to teach an activity on a course instance for
// the given hours.
//
// Inside one transaction: lock the employee anchor row before any other
// read, lock the instance, check the activity exists, read the per-period
// limit, then resolve the
// (employee, instance, activity) triple. A terminated row is reactivated in
// place with the current salary version and the requested hours; the limit
// check is skipped on that path, as the instance was already counted before
// termination. An active row is a duplicate-allocation rejection. Otherwise
// the allocation only consumes a new slot when the instance is new to the
// employee in that period, and is rejected at or above the limit.
func (s *AllocationService) Allocate(ctx context.Context, employeeID int, instanceID string, activityID int, hours decimal.Decimal) error {
	if hours.IsNegative() {
		return fmt.Errorf("%w: allocated hours must not be negative, got %s",
			apperrors.ErrValidationFailed, hours)
	}
	if instanceID == "" {
		return fmt.Errorf("%w: instance ID must not be empty", apperrors.ErrValidationFailed)
	}

	return s.runner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		stores := s.newStores(tx)

		// The anchor lock must precede every other read. Taking it after
		// the count would let two transactions both observe a pre-limit
		// count and both insert.
		if err := stores.Allocations.LockEmployee(ctx, employeeID); err != nil {
			return err
		}

		instance, err := stores.Instances.FindByID(ctx, instanceID, true)
		if err != nil {
			return err
		}

		if _, err := stores.Activities.FindByID(ctx, activityID); err != nil {
			return err
		}

		limit, found, err := stores.Rules.FindMaxInstancesPerPeriod(ctx)
		if err != nil {
			return err
		}
		if !found {
			limit = s.defaultLimit
		}

		existing, err := stores.Allocations.FindTriple(ctx, employeeID, instanceID, activityID)
		if err != nil {
			return err
		}
		if existing != nil {
			if !existing.IsTerminated {
				return apperrors.NewCustomError(apperrors.ErrDuplicateAllocation,
					fmt.Sprintf("employee %d is already allocated to instance %s activity %d",
						employeeID, instanceID, activityID))
			}
			return s.reactivate(ctx, stores, existing, hours)
		}

		count, err := stores.Allocations.CountDistinctInstances(ctx, employeeID, instance.StudyPeriod, instance.StudyYear)
		if err != nil {
			return err
		}

		// A second activity on an instance the employee already teaches
		// does not consume a new slot.
		active, err := stores.Allocations.FindByEmployeePeriod(ctx, employeeID, instance.StudyPeriod, instance.StudyYear)
		if err != nil {
			return err
		}
		alreadyOnInstance := false
		for _, a := range active {
			if a.CourseInstanceID == instanceID {
				alreadyOnInstance = true
				break
			}
		}

		if !alreadyOnInstance && count >= limit {
			return apperrors.NewCustomError(apperrors.ErrAllocationLimitExceeded,
				fmt.Sprintf("employee %d already teaches %d course instances in %s %d, limit is %d",
					employeeID, count, instance.StudyPeriod, instance.StudyYear, limit))
		}

		salary, err := stores.Salaries.FindLatestVersion(ctx, employeeID)
		if err != nil {
			return err
		}

		allocation := &models.Allocation{
			EmployeeID:       employeeID,
			CourseInstanceID: instanceID,
			ActivityID:       activityID,
			SalaryVersionID:  salary.SalaryVersionID,
			AllocatedHours:   hours,
		}
		if err := stores.Allocations.Create(ctx, allocation); err != nil {
			return err
		}

		s.logger.Info().
			Int("employeeId", employeeID).
			Str("instanceId", instanceID).
			Int("activityId", activityID).
			Str("hours", hours.String()).
			Msg("Teaching allocated")
		return nil
	})
}

// reactivate revives a terminated triple in place with the employee's
// current salary version and the requested hours.
func (s *AllocationService) reactivate(ctx context.Context, stores *Stores, existing *models.Allocation, hours decimal.Decimal) error {
	salary, err := stores.Salaries.FindLatestVersion(ctx, existing.EmployeeID)
	if err != nil {
		return err
	}

	if err := existing.Reactivate(salary.SalaryVersionID, hours); err != nil {
		return err
	}
	if err := stores.Allocations.Reactivate(ctx, existing); err != nil {
		return err
	}

	s.logger.Info().
		Int("employeeId", existing.EmployeeID).
		Str("instanceId", existing.CourseInstanceID).
		Int("activityId", existing.ActivityID).
		Str("hours", hours.String()).
		Msg("Terminated allocation reactivated")
	return nil
}

// Deallocate terminates the active allocation for a triple. The row is kept
// with its hours and salary version so history survives for reporting.
// Deallocating a triple with no active row fails with a not-found rejection
// rather than succeeding silently.
func (s *AllocationService) Deallocate(ctx context.Context, employeeID int, instanceID string, activityID int) error {
	if instanceID == "" {
		return fmt.Errorf("%w: instance ID must not be empty", apperrors.ErrValidationFailed)
	}

	return s.runner.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		stores := s.newStores(tx)

		if err := stores.Allocations.Terminate(ctx, employeeID, instanceID, activityID); err != nil {
			return err
		}

		s.logger.Info().
			Int("employeeId", employeeID).
			Str("instanceId", instanceID).
			Int("activityId", activityID).
			Msg("Teaching deallocated")
		return nil
	})
}

// GetTeacherAllocations lists an employee's active allocations in a period.
func (s *AllocationService) GetTeacherAllocations(ctx context.Context, employeeID int, period models.StudyPeriod, year int) ([]*models.Allocation, error) {
	if !period.IsValid() {
		return nil, fmt.Errorf("%w: unknown study period %q", apperrors.ErrValidationFailed, period)
	}

	return s.reads.Allocations.FindByEmployeePeriod(ctx, employeeID, period, year)
}

// GetInstanceAllocations lists the active allocations of a course instance.
func (s *AllocationService) GetInstanceAllocations(ctx context.Context, instanceID string) ([]*models.Allocation, error) {
	return s.reads.Allocations.FindByInstance(ctx, instanceID)
}

// GetAllocationsByActivityName lists active allocations for an activity by
// name, with course and teacher names. An unknown name is a not-found
// failure, not an empty listing.
func (s *AllocationService) GetAllocationsByActivityName(ctx context.Context, activityName string) ([]*models.ActivityTeacherAllocation, error) {
	if activityName == "" {
		return nil, fmt.Errorf("%w: activity name must not be empty", apperrors.ErrValidationFailed)
	}

	if _, err := s.reads.Activities.FindByName(ctx, activityName); err != nil {
		return nil, err
	}

	return s.reads.Allocations.FindByActivityName(ctx, activityName)
}
