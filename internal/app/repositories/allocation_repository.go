package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kthdsp/teachalloc/internal/app/models"
	"github.com/kthdsp/teachalloc/internal/db"
	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
	"github.com/kthdsp/teachalloc/internal/pkg/dberrors"
)

// AllocationRepository is the ledger of teacher-to-activity assignments.
// Rows are soft-terminated, never deleted: the (employee, instance, activity)
// primary key guarantees at most one row per triple, ever.
type AllocationRepository struct {
	db db.Querier
}

// NewAllocationRepository creates a new AllocationRepository bound to the
// given querier.
func NewAllocationRepository(q db.Querier) *AllocationRepository {
	return &AllocationRepository{db: q}
}

// LockEmployee takes an exclusive lock on the employee's anchor row. Every
// allocation attempt for the employee acquires this lock first, which turns
// the count-then-insert capacity check into a serial critical section per
// employee while leaving other employees unaffected.
func (r *AllocationRepository) LockEmployee(ctx context.Context, employeeID int) error {
	var id int
	err := r.db.QueryRow(ctx,
		`SELECT employee_id FROM employee WHERE employee_id = $1 FOR NO KEY UPDATE`,
		employeeID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrEmployeeNotFound
		}
		return fmt.Errorf("error locking employee %d: %w", employeeID, err)
	}
	return nil
}

// FindTriple looks up the allocation row for an exact (employee, instance,
// activity) triple, active or terminated, locking it for the rest of the
// transaction. Returns nil without error when no row exists.
func (r *AllocationRepository) FindTriple(ctx context.Context, employeeID int, instanceID string, activityID int) (*models.Allocation, error) {
	var allocation models.Allocation
	err := r.db.QueryRow(ctx,
		`SELECT employee_id, course_instance_id, activity_id, salary_version_id,
		        allocated_hours, is_terminated
		 FROM allocation
		 WHERE employee_id = $1 AND course_instance_id = $2 AND activity_id = $3
		 FOR NO KEY UPDATE`,
		employeeID, instanceID, activityID).Scan(
		&allocation.EmployeeID,
		&allocation.CourseInstanceID,
		&allocation.ActivityID,
		&allocation.SalaryVersionID,
		&allocation.AllocatedHours,
		&allocation.IsTerminated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading allocation: %w", err)
	}

	return &allocation, nil
}

// Create inserts a new active allocation row.
func (r *AllocationRepository) Create(ctx context.Context, allocation *models.Allocation) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO allocation (employee_id, course_instance_id, activity_id,
		                         salary_version_id, allocated_hours, is_terminated)
		 VALUES ($1, $2, $3, $4, $5, false)`,
		allocation.EmployeeID, allocation.CourseInstanceID, allocation.ActivityID,
		allocation.SalaryVersionID, allocation.AllocatedHours)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrDuplicateAllocation
		}
		return fmt.Errorf("error creating allocation: %w", err)
	}
	return nil
}

// Reactivate revives a terminated allocation row in place, overwriting the
// salary version and hours and clearing the terminated flag.
func (r *AllocationRepository) Reactivate(ctx context.Context, allocation *models.Allocation) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE allocation
		 SET salary_version_id = $1, allocated_hours = $2, is_terminated = false
		 WHERE employee_id = $3 AND course_instance_id = $4 AND activity_id = $5
		   AND is_terminated = true`,
		allocation.SalaryVersionID, allocation.AllocatedHours,
		allocation.EmployeeID, allocation.CourseInstanceID, allocation.ActivityID)
	if err != nil {
		return fmt.Errorf("error reactivating allocation: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAllocationNotFound
	}
	return nil
}

// Terminate soft-deletes the active allocation for a triple. Fails when no
// active row exists; terminating a terminated allocation is not a no-op.
func (r *AllocationRepository) Terminate(ctx context.Context, employeeID int, instanceID string, activityID int) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE allocation SET is_terminated = true
		 WHERE employee_id = $1 AND course_instance_id = $2 AND activity_id = $3
		   AND is_terminated = false`,
		employeeID, instanceID, activityID)
	if err != nil {
		return fmt.Errorf("error terminating allocation: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAllocationNotFound
	}
	return nil
}

// CountDistinctInstances counts the distinct course instances an employee is
// actively allocated to in one (period, year). Terminated rows never count
// toward the limit.
func (r *AllocationRepository) CountDistinctInstances(ctx context.Context, employeeID int, period models.StudyPeriod, year int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(DISTINCT a.course_instance_id)
		 FROM allocation a
		 JOIN course_instance ci ON ci.instance_id = a.course_instance_id
		 WHERE a.employee_id = $1 AND ci.study_period = $2 AND ci.study_year = $3
		   AND a.is_terminated = false`,
		employeeID, period, year).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting allocations for employee %d: %w", employeeID, err)
	}

	return count, nil
}

// FindByEmployeePeriod lists an employee's active allocations in a period.
func (r *AllocationRepository) FindByEmployeePeriod(ctx context.Context, employeeID int, period models.StudyPeriod, year int) ([]*models.Allocation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.employee_id, a.course_instance_id, a.activity_id, ta.activity_name,
		        a.salary_version_id, a.allocated_hours, a.is_terminated
		 FROM allocation a
		 JOIN course_instance ci ON ci.instance_id = a.course_instance_id
		 JOIN teaching_activity ta ON ta.activity_id = a.activity_id
		 WHERE a.employee_id = $1 AND ci.study_period = $2 AND ci.study_year = $3
		   AND a.is_terminated = false`,
		employeeID, period, year)
	if err != nil {
		return nil, fmt.Errorf("error listing allocations for employee %d: %w", employeeID, err)
	}
	defer rows.Close()

	return scanAllocations(rows)
}

// FindByInstance lists the active allocations of a course instance.
func (r *AllocationRepository) FindByInstance(ctx context.Context, instanceID string) ([]*models.Allocation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.employee_id, a.course_instance_id, a.activity_id, ta.activity_name,
		        a.salary_version_id, a.allocated_hours, a.is_terminated
		 FROM allocation a
		 JOIN teaching_activity ta ON ta.activity_id = a.activity_id
		 WHERE a.course_instance_id = $1 AND a.is_terminated = false`,
		instanceID)
	if err != nil {
		return nil, fmt.Errorf("error listing allocations for instance %s: %w", instanceID, err)
	}
	defer rows.Close()

	return scanAllocations(rows)
}

// FindByActivityName lists active allocations for an activity by name,
// joined with course and teacher names for reporting.
func (r *AllocationRepository) FindByActivityName(ctx context.Context, activityName string) ([]*models.ActivityTeacherAllocation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.employee_id, p.first_name || ' ' || p.last_name,
		        a.course_instance_id, cl.course_name, ta.activity_name,
		        a.allocated_hours, ci.study_year, ci.study_period
		 FROM allocation a
		 JOIN teaching_activity ta ON ta.activity_id = a.activity_id
		 JOIN course_instance ci ON ci.instance_id = a.course_instance_id
		 JOIN course_layout cl ON cl.course_code = ci.course_code
		 JOIN employee e ON e.employee_id = a.employee_id
		 JOIN person p ON p.personal_number = e.personal_number
		 WHERE LOWER(ta.activity_name) = LOWER($1) AND a.is_terminated = false`,
		activityName)
	if err != nil {
		return nil, fmt.Errorf("error listing allocations for activity %q: %w", activityName, err)
	}
	defer rows.Close()

	var allocations []*models.ActivityTeacherAllocation
	for rows.Next() {
		var a models.ActivityTeacherAllocation
		if err := rows.Scan(&a.EmployeeID, &a.TeacherName, &a.CourseInstanceID,
			&a.CourseName, &a.ActivityName, &a.AllocatedHours,
			&a.StudyYear, &a.StudyPeriod); err != nil {
			return nil, err
		}
		allocations = append(allocations, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return allocations, nil
}

// SumActualCost sums allocated hours times the salary rate pinned at
// allocation time, across the active allocations of an instance, in SEK.
func (r *AllocationRepository) SumActualCost(ctx context.Context, instanceID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(a.allocated_hours * sh.hourly_rate), 0)
		 FROM allocation a
		 JOIN employee_salary_history sh ON sh.salary_version_id = a.salary_version_id
		 WHERE a.course_instance_id = $1 AND a.is_terminated = false`,
		instanceID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error reading actual cost for %s: %w", instanceID, err)
	}

	return total, nil
}

func scanAllocations(rows pgx.Rows) ([]*models.Allocation, error) {
	var allocations []*models.Allocation
	for rows.Next() {
		var a models.Allocation
		if err := rows.Scan(&a.EmployeeID, &a.CourseInstanceID, &a.ActivityID,
			&a.ActivityName, &a.SalaryVersionID, &a.AllocatedHours,
			&a.IsTerminated); err != nil {
			return nil, err
		}
		allocations = append(allocations, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return allocations, nil
}
