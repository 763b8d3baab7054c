package models

import "github.com/shopspring/decimal"

// reportingDivisor converts SEK amounts to the KSEK reporting unit.
var reportingDivisor = decimal.NewFromInt(1000)

// CostSummary is a derived view comparing planned teaching cost against
// actual allocation-based cost for one course instance. Both figures are in
// KSEK. It is recomputed on every request, never persisted.
type CostSummary struct {
	CourseCode       string          `json:"courseCode"`
	CourseInstanceID string          `json:"courseInstanceId"`
	StudyPeriod      StudyPeriod     `json:"studyPeriod"`
	PlannedCostKSEK  decimal.Decimal `json:"plannedCostKsek"`
	ActualCostKSEK   decimal.Decimal `json:"actualCostKsek"`
}

// ToReportingUnit converts a cost in SEK to KSEK, rounded half-up to two
// decimals.
func ToReportingUnit(costSEK decimal.Decimal) decimal.Decimal {
	return costSEK.Div(reportingDivisor).Round(2)
}
