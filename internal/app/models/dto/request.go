package dto

import "github.com/shopspring/decimal"

// AllocateRequest creates or reactivates a teaching allocation.
type AllocateRequest struct {
	EmployeeID int             `json:"employeeId" binding:"required"`
	InstanceID string          `json:"instanceId" binding:"required"`
	ActivityID int             `json:"activityId" binding:"required"`
	Hours      decimal.Decimal `json:"hours"`
}

// DeallocateRequest terminates a teaching allocation.
type DeallocateRequest struct {
	EmployeeID int    `json:"employeeId" binding:"required"`
	InstanceID string `json:"instanceId" binding:"required"`
	ActivityID int    `json:"activityId" binding:"required"`
}

// IncreaseStudentsRequest adds students to a course instance.
type IncreaseStudentsRequest struct {
	Count int `json:"count"`
}

// CreateActivityRequest adds an activity to the catalog.
type CreateActivityRequest struct {
	Name   string          `json:"name" binding:"required"`
	Factor decimal.Decimal `json:"factor" binding:"required"`
}

// AssociateActivityRequest plans hours for an activity on an instance.
type AssociateActivityRequest struct {
	ActivityID   int             `json:"activityId" binding:"required"`
	PlannedHours decimal.Decimal `json:"plannedHours"`
}
