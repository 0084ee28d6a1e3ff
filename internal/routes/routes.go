package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/denverparsonswork-debug/dockside-helper/internal/authz"
	"github.com/denverparsonswork-debug/dockside-helper/internal/handlers"
	"github.com/denverparsonswork-debug/dockside-helper/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	driverHandler *handlers.DriverHandler,
	customerHandler *handlers.CustomerHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)
	r.POST("/login/verify", authHandler.VerifyLogin)
	r.POST("/login/resend", authHandler.ResendCode)
	r.POST("/refresh", authHandler.RefreshToken)

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	// CUSTOMERS (справочник: читают все, правят диспетчер/админ)
	customers := r.Group("/customers")
	{
		customers.GET("/", customerHandler.List)
		customers.GET("/search", customerHandler.Search)
		customers.GET("/routesheet", customerHandler.RouteSheet)
		customers.GET("/:id", customerHandler.GetByID)
		customers.POST("/", customerHandler.Create)
		customers.PUT("/:id", customerHandler.Update)
		customers.DELETE("/:id", customerHandler.Delete)
	}

	// DRIVERS (Admin)
	drivers := r.Group("/drivers", middleware.RequireRoles(authz.RoleAdmin))
	{
		drivers.POST("/", driverHandler.Create)
		drivers.GET("/count", driverHandler.GetCount)
		drivers.GET("/", driverHandler.List)
		drivers.GET("/:id", driverHandler.GetByID)
		drivers.PUT("/:id", driverHandler.Update)
		drivers.DELETE("/:id", driverHandler.Delete)
	}

	// REPORTS (dispatcher/admin)
	reports := r.Group("/reports",
		middleware.RequireRoles(authz.RoleDispatcher, authz.RoleAdmin),
	)
	{
		reports.GET("/summary", reportHandler.GetSummary)
	}

	return r
}
