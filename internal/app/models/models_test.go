package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
)

func TestStudyPeriodIsValid(t *testing.T) {
	for _, p := range []StudyPeriod{PeriodP1, PeriodP2, PeriodP3, PeriodP4} {
		assert.True(t, p.IsValid(), "period %s", p)
	}
	for _, p := range []StudyPeriod{"", "P0", "P5", "p1", "X"} {
		assert.False(t, p.IsValid(), "period %q", p)
	}
}

func TestIncreaseStudents(t *testing.T) {
	ci := &CourseInstance{InstanceID: "IV1351-2025-P2", NumStudents: 100}

	require.NoError(t, ci.IncreaseStudents(30))
	assert.Equal(t, 130, ci.NumStudents)

	require.NoError(t, ci.IncreaseStudents(0))
	assert.Equal(t, 130, ci.NumStudents)

	err := ci.IncreaseStudents(-10)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, 130, ci.NumStudents)
}

func TestAllocationTerminate(t *testing.T) {
	a := &Allocation{EmployeeID: 1, CourseInstanceID: "IV1351-2025-P2", ActivityID: 2}

	require.NoError(t, a.Terminate())
	assert.True(t, a.IsTerminated)

	err := a.Terminate()
	assert.ErrorIs(t, err, apperrors.ErrAllocationNotActive)
}

func TestAllocationReactivate(t *testing.T) {
	a := &Allocation{
		EmployeeID:       1,
		CourseInstanceID: "IV1351-2025-P2",
		ActivityID:       2,
		SalaryVersionID:  101,
		AllocatedHours:   decimal.RequireFromString("20"),
	}

	// active -> active is illegal
	err := a.Reactivate(102, decimal.RequireFromString("10"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateAllocation)
	assert.Equal(t, 101, a.SalaryVersionID)

	require.NoError(t, a.Terminate())
	require.NoError(t, a.Reactivate(102, decimal.RequireFromString("10")))
	assert.False(t, a.IsTerminated)
	assert.Equal(t, 102, a.SalaryVersionID)
	assert.True(t, a.AllocatedHours.Equal(decimal.RequireFromString("10")))
}

func TestToReportingUnit(t *testing.T) {
	cases := []struct {
		sek  string
		ksek string
	}{
		{"0", "0"},
		{"1000", "1"},
		{"12000", "12"},
		{"27500", "27.5"},
		{"7712.50", "7.71"},
		{"1235", "1.24"},   // half rounds up
		{"1234.9", "1.23"}, // below the midpoint rounds down
		{"5", "0.01"},
		{"4.9", "0"},
	}

	for _, tc := range cases {
		got := ToReportingUnit(decimal.RequireFromString(tc.sek))
		assert.Equal(t, tc.ksek, got.String(), "%s SEK", tc.sek)
	}
}
