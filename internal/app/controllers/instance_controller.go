package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kthdsp/teachalloc/internal/app/models/dto"
	"github.com/kthdsp/teachalloc/internal/app/services"
	"github.com/kthdsp/teachalloc/internal/middleware"
	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
)

// InstanceController handles course instance endpoints.
type InstanceController struct {
	instanceService   *services.InstanceService
	allocationService *services.AllocationService
	catalogService    *services.CatalogService
}

func NewInstanceController(
	instanceService *services.InstanceService,
	allocationService *services.AllocationService,
	catalogService *services.CatalogService,
) *InstanceController {
	return &InstanceController{
		instanceService:   instanceService,
		allocationService: allocationService,
		catalogService:    catalogService,
	}
}

// GetInstances lists course instances, optionally filtered by study year.
func (ic *InstanceController) GetInstances(c *gin.Context) {
	if yearParam := c.Query("year"); yearParam != "" {
		year, err := strconv.Atoi(yearParam)
		if err != nil {
			middleware.HandleAPIError(c, fmt.Errorf("%w: year must be an integer",
				apperrors.ErrValidationFailed))
			return
		}
		instances, err := ic.instanceService.GetInstancesByYear(c.Request.Context(), year)
		if err != nil {
			middleware.HandleAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewDataResponse(instances))
		return
	}

	instances, err := ic.instanceService.GetAllInstances(c.Request.Context())
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDataResponse(instances))
}

// GetInstance returns a single course instance.
func (ic *InstanceController) GetInstance(c *gin.Context) {
	instance, err := ic.instanceService.GetInstanceByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDataResponse(instance))
}

// GetInstanceCost returns the planned and actual cost of an instance in KSEK.
func (ic *InstanceController) GetInstanceCost(c *gin.Context) {
	summary, err := ic.instanceService.ComputeCost(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDataResponse(summary))
}

// GetInstanceAllocations lists active allocations on an instance.
func (ic *InstanceController) GetInstanceAllocations(c *gin.Context) {
	allocations, err := ic.allocationService.GetInstanceAllocations(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDataResponse(allocations))
}

// IncreaseStudents adds to the registered student count of an instance.
func (ic *InstanceController) IncreaseStudents(c *gin.Context) {
	var req dto.IncreaseStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, fmt.Errorf("%w: invalid request body: %s",
			apperrors.ErrValidationFailed, err.Error()))
		return
	}

	instanceID := c.Param("id")
	if err := ic.instanceService.IncreaseStudentCount(c.Request.Context(), instanceID, req.Count); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	instance, err := ic.instanceService.GetInstanceByID(c.Request.Context(), instanceID)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDataResponse(instance))
}

// AssociateActivity plans hours for an activity on an instance.
func (ic *InstanceController) AssociateActivity(c *gin.Context) {
	var req dto.AssociateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, fmt.Errorf("%w: invalid request body: %s",
			apperrors.ErrValidationFailed, err.Error()))
		return
	}

	err := ic.catalogService.AssociateActivity(c.Request.Context(),
		c.Param("id"), req.ActivityID, req.PlannedHours)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewDataResponse(gin.H{
		"instanceId":   c.Param("id"),
		"activityId":   req.ActivityID,
		"plannedHours": req.PlannedHours,
	}))
}
