package models

import "github.com/shopspring/decimal"

// SalaryVersion is one entry in an employee's append-only salary history.
// The highest version number is the employee's current rate. Allocations pin
// the version that applied at allocation time so historical cost reports stay
// stable after a raise.
type SalaryVersion struct {
	SalaryVersionID int             `json:"salaryVersionId"`
	EmployeeID      int             `json:"employeeId"`
	VersionNo       int             `json:"versionNo"`
	HourlyRate      decimal.Decimal `json:"hourlyRate"`
}

// ActivityTeacherAllocation is the extended allocation row used by the
// by-activity listing: allocation data joined with course and teacher names.
type ActivityTeacherAllocation struct {
	EmployeeID       int             `json:"employeeId"`
	TeacherName      string          `json:"teacherName"`
	CourseInstanceID string          `json:"courseInstanceId"`
	CourseName       string          `json:"courseName"`
	ActivityName     string          `json:"activityName"`
	AllocatedHours   decimal.Decimal `json:"allocatedHours"`
	StudyYear        int             `json:"studyYear"`
	StudyPeriod      StudyPeriod     `json:"studyPeriod"`
}
