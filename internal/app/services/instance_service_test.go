package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kthdsp/teachalloc/internal/app/models"
	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
)

func newInstanceService(state *fakeState, avgRate string) *InstanceService {
	reads, factory := fakeStores(state)
	return NewInstanceService(&fakeRunner{}, factory, reads, hours(avgRate), zerolog.Nop())
}

func TestGetInstancesByYear(t *testing.T) {
	state := newFakeState()
	state.addInstance("A-2025-P1", "A", 2025, models.PeriodP1)
	state.addInstance("B-2024-P1", "B", 2024, models.PeriodP1)

	svc := newInstanceService(state, "600.00")

	instances, err := svc.GetInstancesByYear(context.Background(), 2025)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, "A-2025-P1", instances[0].InstanceID)

	all, err := svc.GetAllInstances(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetInstanceByIDValidation(t *testing.T) {
	svc := newInstanceService(newFakeState(), "600.00")

	_, err := svc.GetInstanceByID(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.GetInstanceByID(context.Background(), "NOPE")
	assert.ErrorIs(t, err, apperrors.ErrInstanceNotFound)
}

func TestIncreaseStudentCount(t *testing.T) {
	state := newFakeState()
	state.addInstance("IV1351-2025-P2", "IV1351", 2025, models.PeriodP2)
	state.instances["IV1351-2025-P2"].NumStudents = 100

	svc := newInstanceService(state, "600.00")
	require.NoError(t, svc.IncreaseStudentCount(context.Background(), "IV1351-2025-P2", 25))
	assert.Equal(t, 125, state.instances["IV1351-2025-P2"].NumStudents)

	// Zero is a no-op but legal.
	require.NoError(t, svc.IncreaseStudentCount(context.Background(), "IV1351-2025-P2", 0))
	assert.Equal(t, 125, state.instances["IV1351-2025-P2"].NumStudents)
}

func TestIncreaseStudentCountRejectsNegative(t *testing.T) {
	state := newFakeState()
	state.addInstance("IV1351-2025-P2", "IV1351", 2025, models.PeriodP2)
	state.instances["IV1351-2025-P2"].NumStudents = 100

	svc := newInstanceService(state, "600.00")
	err := svc.IncreaseStudentCount(context.Background(), "IV1351-2025-P2", -5)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, 100, state.instances["IV1351-2025-P2"].NumStudents, "state must be untouched")
}

func TestIncreaseStudentCountUnknownInstance(t *testing.T) {
	svc := newInstanceService(newFakeState(), "600.00")
	err := svc.IncreaseStudentCount(context.Background(), "NOPE", 10)
	assert.ErrorIs(t, err, apperrors.ErrInstanceNotFound)
}

func TestComputeCostPlannedAndActual(t *testing.T) {
	state := newFakeState()
	state.addInstance("IV1351-2025-P2", "IV1351", 2025, models.PeriodP2)
	state.addEmployee(1, "600.00")
	lectureID := state.addActivity("Lecture", "1.00", false)
	seminarID := state.addActivity("Seminar", "1.50", false)

	reads, factory := fakeStores(state)
	runner := &fakeRunner{}
	instanceSvc := NewInstanceService(runner, factory, reads, hours("500.00"), zerolog.Nop())
	catalogSvc := NewCatalogService(runner, factory, reads, zerolog.Nop())
	allocationSvc := NewAllocationService(runner, factory, reads, 4, zerolog.Nop())

	ctx := context.Background()
	// Planned: 40 * 1.0 + 10 * 1.5 = 55 effective hours, at 500 SEK/h
	// = 27500 SEK = 27.50 KSEK.
	require.NoError(t, catalogSvc.AssociateActivity(ctx, "IV1351-2025-P2", lectureID, hours("40")))
	require.NoError(t, catalogSvc.AssociateActivity(ctx, "IV1351-2025-P2", seminarID, hours("10")))

	// Actual: 20 h at the pinned 600 SEK/h = 12000 SEK = 12.00 KSEK.
	require.NoError(t, allocationSvc.Allocate(ctx, 1, "IV1351-2025-P2", lectureID, hours("20")))

	summary, err := instanceSvc.ComputeCost(ctx, "IV1351-2025-P2")
	require.NoError(t, err)
	assert.Equal(t, "IV1351", summary.CourseCode)
	assert.Equal(t, models.PeriodP2, summary.StudyPeriod)
	assert.Equal(t, "27.5", summary.PlannedCostKSEK.String())
	assert.Equal(t, "12", summary.ActualCostKSEK.String())
}

func TestComputeCostExcludesTerminatedAllocations(t *testing.T) {
	state := newFakeState()
	state.addInstance("IV1351-2025-P2", "IV1351", 2025, models.PeriodP2)
	state.addEmployee(1, "600.00")
	state.addEmployee(2, "700.00")
	lectureID := state.addActivity("Lecture", "1.00", false)
	exerciseID := state.addActivity("Exercise", "1.00", false)

	reads, factory := fakeStores(state)
	runner := &fakeRunner{}
	instanceSvc := NewInstanceService(runner, factory, reads, hours("600.00"), zerolog.Nop())
	allocationSvc := NewAllocationService(runner, factory, reads, 4, zerolog.Nop())

	ctx := context.Background()
	require.NoError(t, allocationSvc.Allocate(ctx, 1, "IV1351-2025-P2", lectureID, hours("10")))
	require.NoError(t, allocationSvc.Allocate(ctx, 2, "IV1351-2025-P2", exerciseID, hours("10")))
	require.NoError(t, allocationSvc.Deallocate(ctx, 2, "IV1351-2025-P2", exerciseID))

	summary, err := instanceSvc.ComputeCost(ctx, "IV1351-2025-P2")
	require.NoError(t, err)
	// Only the active 10 h at 600 SEK/h remain: 6.00 KSEK.
	assert.Equal(t, "6", summary.ActualCostKSEK.String())
}

func TestComputeCostEmptyInstance(t *testing.T) {
	state := newFakeState()
	state.addInstance("IV1351-2026-P2", "IV1351", 2026, models.PeriodP2)

	svc := newInstanceService(state, "600.00")
	summary, err := svc.ComputeCost(context.Background(), "IV1351-2026-P2")
	require.NoError(t, err)
	assert.True(t, summary.PlannedCostKSEK.IsZero())
	assert.True(t, summary.ActualCostKSEK.IsZero())
}

func TestComputeCostRoundsHalfUp(t *testing.T) {
	state := newFakeState()
	state.addInstance("IV1351-2025-P2", "IV1351", 2025, models.PeriodP2)
	state.addEmployee(1, "617.00")
	lectureID := state.addActivity("Lecture", "1.00", false)

	reads, factory := fakeStores(state)
	runner := &fakeRunner{}
	instanceSvc := NewInstanceService(runner, factory, reads, hours("600.00"), zerolog.Nop())
	allocationSvc := NewAllocationService(runner, factory, reads, 4, zerolog.Nop())

	ctx := context.Background()
	// 12.5 h * 617 SEK/h = 7712.50 SEK = 7.7125 KSEK, rounds to 7.71.
	require.NoError(t, allocationSvc.Allocate(ctx, 1, "IV1351-2025-P2", lectureID, hours("12.5")))

	summary, err := instanceSvc.ComputeCost(ctx, "IV1351-2025-P2")
	require.NoError(t, err)
	assert.Equal(t, "7.71", summary.ActualCostKSEK.String())
}

func TestComputeCostUnknownInstance(t *testing.T) {
	svc := newInstanceService(newFakeState(), "600.00")
	_, err := svc.ComputeCost(context.Background(), "NOPE")
	assert.ErrorIs(t, err, apperrors.ErrInstanceNotFound)
}
