package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartPricing/internal/rest"
)

func SetupProjectRoutes(api *echo.Group, handler *rest.ProjectHandler) {
	projects := api.Group("/projects")

	projects.GET("", handler.GetAllProjects)
	projects.POST("", handler.CreateProject)
	projects.GET("/:id", handler.GetProjectByID)
	projects.GET("/:id/bandits", handler.GetBandits)
	projects.POST("/:id/bandits", handler.AddBandit)

	api.PUT("/bandits/:id/price", handler.UpdatePrice)
	api.GET("/algorithm/optimal_price/:id", handler.GetOptimalPrice)
}

func SetupThompsonRoutes(api *echo.Group, handler *rest.ThompsonHandler) {
	api.POST("/projects/:id/thompson/select", handler.Select)
	api.GET("/projects/:id/thompson/distributions", handler.Distributions)
	api.POST("/bandits/:id/thompson/reward", handler.Reward)

	algorithm := api.Group("/algorithm")
	algorithm.POST("/run/:id", handler.Select)
	algorithm.POST("/run_all", handler.RunAll)
}

func SetupExperimentRoutes(api *echo.Group, handler *rest.ExperimentHandler) {
	api.GET("/projects/:id/experiments", handler.ListByProject)
}

func SetupOpsRoutes(e *echo.Echo, health *rest.HealthHandler) {
	e.GET("/health", health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
