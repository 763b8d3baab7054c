package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kthdsp/teachalloc/internal/app/models"
	"github.com/kthdsp/teachalloc/internal/db"
	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
)

// SalaryRepository reads the append-only salary history of employees.
type SalaryRepository struct {
	db db.Querier
}

// NewSalaryRepository creates a new SalaryRepository bound to the given
// querier.
func NewSalaryRepository(q db.Querier) *SalaryRepository {
	return &SalaryRepository{db: q}
}

// FindLatestVersion returns the employee's current salary version, the entry
// with the highest version number. Employees without salary history cannot
// be allocated.
func (r *SalaryRepository) FindLatestVersion(ctx context.Context, employeeID int) (*models.SalaryVersion, error) {
	var version models.SalaryVersion
	err := r.db.QueryRow(ctx,
		`SELECT salary_version_id, employee_id, version_no, hourly_rate
		 FROM employee_salary_history
		 WHERE employee_id = $1
		 ORDER BY version_no DESC
		 LIMIT 1`,
		employeeID).Scan(&version.SalaryVersionID, &version.EmployeeID,
		&version.VersionNo, &version.HourlyRate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoSalaryVersion
		}
		return nil, fmt.Errorf("error reading salary version for employee %d: %w", employeeID, err)
	}

	return &version, nil
}
