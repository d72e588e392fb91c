package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/middleware"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/internal/models"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/config"
	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/logger"
	corsmiddleware "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/middleware/cors"
	reqidmiddleware "github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, app *application, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(app.metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", app.metricsHandler.Health)
	r.GET("/ready", app.metricsHandler.Ready)
	r.GET("/metrics", app.metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", app.authHandler.Login)
	api.POST("/auth/refresh", app.authHandler.Refresh)

	if app.reportHandler != nil {
		api.GET("/reports/download/:token",
			middleware.Audit(app.audit, logr, models.AuditActionReportDownload, models.AuditResourceReport, ""),
			app.reportHandler.Download)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(app.auth))

	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleProfessional, models.RoleIntake)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	intake := middleware.RequireRoles(models.RoleAdmin, models.RoleIntake)
	clinical := middleware.RequireRoles(models.RoleAdmin, models.RoleProfessional)

	secured.POST("/auth/logout", app.authHandler.Logout)
	secured.POST("/auth/change-password", app.authHandler.ChangePassword)
	secured.GET("/auth/me", app.authHandler.Me)
	secured.GET("/catalogs", app.catalogHandler.List)

	students := secured.Group("/students")
	{
		students.GET("", app.studentHandler.List)
		students.GET("/alerts", app.studentHandler.Alerts)
		students.GET("/active-by-year", app.studentHandler.ActiveByYear)
		students.POST("", intake, app.studentHandler.Create)
		// Assignment checks for profesional happen in the service layer.
		students.GET("/:rut", app.studentHandler.Detail)
		students.PUT("/:rut", app.studentHandler.Update)
		students.POST("/:rut/reentries", intake, app.studentHandler.Reentry)
		students.GET("/:rut/sessions/form", clinical, app.sessionHandler.FormContext)
		students.POST("/:rut/sessions", clinical, app.sessionHandler.Create)
	}

	sessions := secured.Group("/sessions")
	{
		sessions.GET("/:id", clinical, app.sessionHandler.Get)
		sessions.PUT("/:id", clinical, app.sessionHandler.Update)
		sessions.DELETE("/:id", adminOnly, app.sessionHandler.Delete)
	}

	secured.GET("/dashboard", anyRole, app.dashboardHandler.Summary)

	users := secured.Group("/users", adminOnly)
	{
		users.GET("", app.userHandler.List)
		users.GET("/:id", app.userHandler.Get)
		users.POST("", app.userHandler.Create)
		users.PUT("/:id", app.userHandler.Update)
	}

	exports := secured.Group("/exports", adminOnly)
	{
		exports.GET("/students.csv", app.exportHandler.Students)
		exports.GET("/sessions.csv", app.exportHandler.Sessions)
	}

	if app.reportHandler != nil {
		reports := secured.Group("/reports", adminOnly)
		reports.POST("", middleware.Audit(app.audit, logr, models.AuditActionReportRequest, models.AuditResourceReport, ""), app.reportHandler.Create)
		reports.GET("/:id", app.reportHandler.Status)
	}

	maintenance := secured.Group("/admin/maintenance", adminOnly)
	{
		maintenance.POST("/trim-text", app.maintenanceHandler.TrimText)
		maintenance.POST("/backfill-periods", app.maintenanceHandler.BackfillPeriods)
	}

	return r
}
