package repositories

import (
	"github.com/kthdsp/teachalloc/internal/db"
)

// Repositories holds all the repository instances bound to one querier.
// The allocation engine constructs a fresh set per transaction so locked
// reads and writes share the transaction; read-only listings bind a set to
// the pool directly.
type Repositories struct {
	CourseInstances *CourseInstanceRepository
	Activities      *ActivityRepository
	Allocations     *AllocationRepository
	Salaries        *SalaryRepository
	Rules           *RuleRepository
}

// NewRepositories initializes all repositories against the given querier.
func NewRepositories(q db.Querier) *Repositories {
	return &Repositories{
		CourseInstances: NewCourseInstanceRepository(q),
		Activities:      NewActivityRepository(q),
		Allocations:     NewAllocationRepository(q),
		Salaries:        NewSalaryRepository(q),
		Rules:           NewRuleRepository(q),
	}
}
