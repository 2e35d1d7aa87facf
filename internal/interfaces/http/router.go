package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/polizas-reportes/internal/application/reports"
	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Reports   *reports.OverviewUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token y un rol del back-office)
	protected := api.Group("/",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(entity.RoleAdmin, entity.RoleOwner, entity.RoleExecutive, entity.RoleRM, entity.RoleAssociate),
	)

	// Reports
	rep := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.Reports)
	rep.Get("/overview", reportHandler.GetOverview)
	rep.Get("/overview/export", reportHandler.ExportOverview)
	rep.Get("/distribution/:dimension", reportHandler.GetDistribution)
	rep.Get("/timeline", reportHandler.GetTimeline)
	rep.Get("/status", reportHandler.GetStatus)
	rep.Post("/refresh", reportHandler.Refresh)
}
