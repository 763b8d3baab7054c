package models

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
)

// Allocation assigns one employee to teach one activity on one course
// instance for a number of hours. The (employee, instance, activity) triple
// is the immutable identity; at most one row exists per triple, ever.
//
// Lifecycle: absent -> active -> terminated -> active (reactivated) -> ...
// Deallocation terminates the row in place instead of deleting it, so the
// hours and salary-version history survive for reporting. Reactivation
// revives the same row with the employee's current salary version.
type Allocation struct {
	EmployeeID       int             `json:"employeeId"`
	CourseInstanceID string          `json:"courseInstanceId"`
	ActivityID       int             `json:"activityId"`
	ActivityName     string          `json:"activityName,omitempty"`
	SalaryVersionID  int             `json:"salaryVersionId"`
	AllocatedHours   decimal.Decimal `json:"allocatedHours"`
	IsTerminated     bool            `json:"isTerminated"`
}

// Terminate marks an active allocation as terminated. Terminating an already
// terminated allocation is illegal.
func (a *Allocation) Terminate() error {
	if a.IsTerminated {
		return fmt.Errorf("%w: allocation for employee %d on %s activity %d is already terminated",
			apperrors.ErrAllocationNotActive, a.EmployeeID, a.CourseInstanceID, a.ActivityID)
	}
	a.IsTerminated = true
	return nil
}

// Reactivate revives a terminated allocation in place, overwriting the salary
// version and hours with current values. Reactivating an active allocation is
// the illegal active -> active transition and fails as a duplicate.
func (a *Allocation) Reactivate(salaryVersionID int, hours decimal.Decimal) error {
	if !a.IsTerminated {
		return fmt.Errorf("%w: employee %d is already allocated to %s activity %d",
			apperrors.ErrDuplicateAllocation, a.EmployeeID, a.CourseInstanceID, a.ActivityID)
	}
	a.SalaryVersionID = salaryVersionID
	a.AllocatedHours = hours
	a.IsTerminated = false
	return nil
}
