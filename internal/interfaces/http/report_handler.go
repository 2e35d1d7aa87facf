package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/polizas-reportes/internal/application/dto"
	"github.com/jhoicas/polizas-reportes/internal/application/reports"
	"github.com/jhoicas/polizas-reportes/internal/domain"
)

// ReportHandler maneja los endpoints del dashboard de reportes.
type ReportHandler struct {
	uc *reports.OverviewUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.OverviewUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// GetOverview godoc
// @Summary      Overview del dashboard
// @Description  KPIs, distribuciones Top-N + Others por dimensión y serie temporal de la
//               cartera visible para el usuario. admin/owner/executive ven todo; un RM sus
//               entradas y las de sus asociados; un asociado solo las suyas.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "Inicio del período (YYYY-MM-DD). Vacío = sin límite."
// @Param        end_date    query  string  false  "Fin del período inclusivo (YYYY-MM-DD). Vacío = sin límite."
// @Param        timeline    query  string  false  "day | week | month (default month)"
// @Param        metric      query  string  false  "revenue | premium (default revenue)"
// @Param        top_n       query  int     false  "Grupos antes de Others (default 5, max 50)"
// @Param        buckets     query  int     false  "Periodos más recientes a devolver (0 = todos)"
// @Success      200  {object}  dto.OverviewDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/reports/overview [get]
func (h *ReportHandler) GetOverview(c *fiber.Ctx) error {
	req, err := parseOverviewRequest(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetOverview(c.Context(), principal(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetDistribution godoc
// @Summary      Distribución de una dimensión
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        dimension   path   string  true   "broker | insurer | state | rm | associate | product"
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Param        metric      query  string  false  "revenue | premium"
// @Param        top_n       query  int     false  "Grupos antes de Others"
// @Success      200  {object}  dto.DistributionDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/reports/distribution/{dimension} [get]
func (h *ReportHandler) GetDistribution(c *fiber.Ctx) error {
	req, err := parseOverviewRequest(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetDistribution(c.Context(), principal(c), c.Params("dimension"), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetTimeline godoc
// @Summary      Serie temporal
// @Description  Serie por día, semana (lunes a domingo) o mes. Con más de REPORT_SAMPLE_MAX_POINTS
//               entradas se calcula sobre una muestra y sampled=true.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Param        timeline    query  string  false  "day | week | month"
// @Param        buckets     query  int     false  "Periodos más recientes a devolver"
// @Success      200  {object}  dto.TimelineDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/reports/timeline [get]
func (h *ReportHandler) GetTimeline(c *fiber.Ctx) error {
	req, err := parseOverviewRequest(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetTimeline(c.Context(), principal(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetStatus godoc
// @Summary      Estado de la carga de datos del usuario
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SnapshotStatusDTO
// @Router       /api/reports/status [get]
func (h *ReportHandler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(h.uc.Status(principal(c)))
}

// Refresh godoc
// @Summary      Volver a descargar los datos del backend
// @Description  Descarta el snapshot del usuario; cualquier carga anterior en curso queda obsoleta.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SnapshotStatusDTO
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/reports/refresh [post]
func (h *ReportHandler) Refresh(c *fiber.Ctx) error {
	out, err := h.uc.Refresh(c.Context(), principal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExportOverview godoc
// @Summary      Exportar el overview
// @Tags         reports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      application/pdf
// @Param        format      query  string  false  "xlsx | pdf (default xlsx)"
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/reports/overview/export [get]
func (h *ReportHandler) ExportOverview(c *fiber.Ctx) error {
	req, err := parseOverviewRequest(c)
	if err != nil {
		return writeError(c, err)
	}
	file, err := h.uc.ExportOverview(c.Context(), principal(c), req, c.Query("format"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	return c.Send(file.Content)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func parseOverviewRequest(c *fiber.Ctx) (dto.OverviewRequest, error) {
	var req dto.OverviewRequest
	if err := c.QueryParser(&req); err != nil {
		return req, fmt.Errorf("%w: parámetros de consulta inválidos", domain.ErrInvalidInput)
	}
	return req, nil
}

// writeError traduce los errores de dominio a status HTTP.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrSnapshotStale):
		status, code = fiber.StatusConflict, "STALE"
	case errors.Is(err, domain.ErrUpstream):
		status, code = fiber.StatusBadGateway, "UPSTREAM_ERROR"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}
