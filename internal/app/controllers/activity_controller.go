package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kthdsp/teachalloc/internal/app/models/dto"
	"github.com/kthdsp/teachalloc/internal/app/services"
	"github.com/kthdsp/teachalloc/internal/middleware"
	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
)

// ActivityController handles the teaching activity catalog.
type ActivityController struct {
	catalogService    *services.CatalogService
	allocationService *services.AllocationService
}

func NewActivityController(catalogService *services.CatalogService, allocationService *services.AllocationService) *ActivityController {
	return &ActivityController{
		catalogService:    catalogService,
		allocationService: allocationService,
	}
}

// GetActivities lists all activity types in the catalog.
func (ac *ActivityController) GetActivities(c *gin.Context) {
	activities, err := ac.catalogService.GetAllActivities(c.Request.Context())
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDataResponse(activities))
}

// CreateActivity adds a new directly allocatable activity type.
func (ac *ActivityController) CreateActivity(c *gin.Context) {
	var req dto.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, fmt.Errorf("%w: invalid request body: %s",
			apperrors.ErrValidationFailed, err.Error()))
		return
	}

	activity, err := ac.catalogService.CreateActivity(c.Request.Context(), req.Name, req.Factor)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewDataResponse(activity))
}

// GetActivityAllocations lists every active allocation of a named activity
// across all course instances, with teacher and course details.
func (ac *ActivityController) GetActivityAllocations(c *gin.Context) {
	rows, err := ac.allocationService.GetAllocationsByActivityName(c.Request.Context(), c.Param("name"))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDataResponse(rows))
}
