package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kthdsp/teachalloc/internal/app/controllers"
)

// Controllers bundles the HTTP handlers wired by the bootstrap layer.
type Controllers struct {
	Instances   *controllers.InstanceController
	Activities  *controllers.ActivityController
	Allocations *controllers.AllocationController
}

// RegisterRoutes mounts all API endpoints on the router.
func RegisterRoutes(router *gin.Engine, ctrl *Controllers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		instances := v1.Group("/instances")
		{
			instances.GET("", ctrl.Instances.GetInstances)
			instances.GET("/:id", ctrl.Instances.GetInstance)
			instances.GET("/:id/cost", ctrl.Instances.GetInstanceCost)
			instances.GET("/:id/allocations", ctrl.Instances.GetInstanceAllocations)
			instances.POST("/:id/students", ctrl.Instances.IncreaseStudents)
			instances.POST("/:id/activities", ctrl.Instances.AssociateActivity)
		}

		activities := v1.Group("/activities")
		{
			activities.GET("", ctrl.Activities.GetActivities)
			activities.POST("", ctrl.Activities.CreateActivity)
			activities.GET("/:name/allocations", ctrl.Activities.GetActivityAllocations)
		}

		v1.GET("/employees/:id/allocations", ctrl.Allocations.GetTeacherAllocations)

		allocations := v1.Group("/allocations")
		{
			allocations.POST("", ctrl.Allocations.CreateAllocation)
			allocations.DELETE("", ctrl.Allocations.DeleteAllocation)
		}
	}
}
