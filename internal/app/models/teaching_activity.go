package models

import "github.com/shopspring/decimal"

// TeachingActivity is a catalog entry describing a category of teaching work.
// Derived activities (examination, administration) have their effective hours
// computed from course size and must never receive manually planned hours.
type TeachingActivity struct {
	ActivityID   int             `json:"activityId"`
	ActivityName string          `json:"activityName"`
	Factor       decimal.Decimal `json:"factor"`
	IsDerived    bool            `json:"isDerived"`
}

// PlannedActivity associates a teaching activity with a course instance and
// the hours planned for it before any teacher is assigned. At most one row
// exists per (instance, activity) pair.
type PlannedActivity struct {
	CourseInstanceID string          `json:"courseInstanceId"`
	ActivityID       int             `json:"activityId"`
	PlannedHours     decimal.Decimal `json:"plannedHours"`
}
