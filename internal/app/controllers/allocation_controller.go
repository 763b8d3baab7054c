package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kthdsp/teachalloc/internal/app/models"
	"github.com/kthdsp/teachalloc/internal/app/models/dto"
	"github.com/kthdsp/teachalloc/internal/app/services"
	"github.com/kthdsp/teachalloc/internal/middleware"
	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
)

// AllocationController handles allocation lifecycle endpoints.
type AllocationController struct {
	allocationService *services.AllocationService
}

func NewAllocationController(allocationService *services.AllocationService) *AllocationController {
	return &AllocationController{allocationService: allocationService}
}

// CreateAllocation allocates a teacher to an activity on a course instance.
// A previously terminated allocation for the same triple is reactivated.
func (ac *AllocationController) CreateAllocation(c *gin.Context) {
	var req dto.AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, fmt.Errorf("%w: invalid request body: %s",
			apperrors.ErrValidationFailed, err.Error()))
		return
	}

	err := ac.allocationService.Allocate(c.Request.Context(),
		req.EmployeeID, req.InstanceID, req.ActivityID, req.Hours)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewDataResponse(gin.H{
		"employeeId": req.EmployeeID,
		"instanceId": req.InstanceID,
		"activityId": req.ActivityID,
	}))
}

// DeleteAllocation terminates an active allocation. The row is retained for
// bookkeeping and can be reactivated by a later allocation.
func (ac *AllocationController) DeleteAllocation(c *gin.Context) {
	var req dto.DeallocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, fmt.Errorf("%w: invalid request body: %s",
			apperrors.ErrValidationFailed, err.Error()))
		return
	}

	err := ac.allocationService.Deallocate(c.Request.Context(),
		req.EmployeeID, req.InstanceID, req.ActivityID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDataResponse(gin.H{
		"employeeId": req.EmployeeID,
		"instanceId": req.InstanceID,
		"activityId": req.ActivityID,
		"terminated": true,
	}))
}

// GetTeacherAllocations lists a teacher's active allocations in a study period.
func (ac *AllocationController) GetTeacherAllocations(c *gin.Context) {
	employeeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		middleware.HandleAPIError(c, fmt.Errorf("%w: employee id must be an integer",
			apperrors.ErrValidationFailed))
		return
	}

	period := models.StudyPeriod(c.Query("period"))
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		middleware.HandleAPIError(c, fmt.Errorf("%w: year must be an integer",
			apperrors.ErrValidationFailed))
		return
	}

	allocations, err := ac.allocationService.GetTeacherAllocations(c.Request.Context(), employeeID, period, year)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDataResponse(allocations))
}
