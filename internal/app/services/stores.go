package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kthdsp/teachalloc/internal/app/models"
	"github.com/kthdsp/teachalloc/internal/app/repositories"
	"github.com/kthdsp/teachalloc/internal/db"
)

// The engine orchestrates the stores below. They are satisfied by the pgx
// repositories in production; tests substitute in-memory fakes so the
// engine's decision rules and lock ordering are checkable without a
// database.

// InstanceStore reads and updates course instances.
type InstanceStore interface {
	FindAll(ctx context.Context) ([]*models.CourseInstance, error)
	FindByYear(ctx context.Context, year int) ([]*models.CourseInstance, error)
	FindByID(ctx context.Context, instanceID string, lock bool) (*models.CourseInstance, error)
	UpdateStudents(ctx context.Context, instance *models.CourseInstance) error
}

// ActivityStore reads the activity catalog and planned associations.
type ActivityStore interface {
	FindAll(ctx context.Context) ([]*models.TeachingActivity, error)
	FindByID(ctx context.Context, activityID int) (*models.TeachingActivity, error)
	FindByName(ctx context.Context, name string) (*models.TeachingActivity, error)
	Create(ctx context.Context, activity *models.TeachingActivity) (int, error)
	CreatePlanned(ctx context.Context, planned *models.PlannedActivity) error
	SumPlannedEffectiveHours(ctx context.Context, instanceID string) (decimal.Decimal, error)
}

// AllocationStore is the allocation ledger.
type AllocationStore interface {
	LockEmployee(ctx context.Context, employeeID int) error
	FindTriple(ctx context.Context, employeeID int, instanceID string, activityID int) (*models.Allocation, error)
	Create(ctx context.Context, allocation *models.Allocation) error
	Reactivate(ctx context.Context, allocation *models.Allocation) error
	Terminate(ctx context.Context, employeeID int, instanceID string, activityID int) error
	CountDistinctInstances(ctx context.Context, employeeID int, period models.StudyPeriod, year int) (int, error)
	FindByEmployeePeriod(ctx context.Context, employeeID int, period models.StudyPeriod, year int) ([]*models.Allocation, error)
	FindByInstance(ctx context.Context, instanceID string) ([]*models.Allocation, error)
	FindByActivityName(ctx context.Context, activityName string) ([]*models.ActivityTeacherAllocation, error)
	SumActualCost(ctx context.Context, instanceID string) (decimal.Decimal, error)
}

// SalaryStore reads employee salary history.
type SalaryStore interface {
	FindLatestVersion(ctx context.Context, employeeID int) (*models.SalaryVersion, error)
}

// RuleStore reads the operator-tunable allocation rules.
type RuleStore interface {
	FindMaxInstancesPerPeriod(ctx context.Context) (limit int, found bool, err error)
}

// Stores bundles the store handles bound to one querier. Exactly one bundle
// is created per transaction and never reused across transactions.
type Stores struct {
	Instances   InstanceStore
	Activities  ActivityStore
	Allocations AllocationStore
	Salaries    SalaryStore
	Rules       RuleStore
}

// StoreFactory builds a store bundle bound to a querier (transaction or
// pool).
type StoreFactory func(q db.Querier) *Stores

// RepositoryStores is the production StoreFactory, backed by the pgx
// repositories.
func RepositoryStores(q db.Querier) *Stores {
	repos := repositories.NewRepositories(q)
	return &Stores{
		Instances:   repos.CourseInstances,
		Activities:  repos.Activities,
		Allocations: repos.Allocations,
		Salaries:    repos.Salaries,
		Rules:       repos.Rules,
	}
}
