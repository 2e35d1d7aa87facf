package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Query parameters ──────────────────────────────────────────────────────────

// OverviewRequest parámetros para GET /api/reports/overview (y timeline/distribution).
type OverviewRequest struct {
	StartDate string `query:"start_date"` // YYYY-MM-DD; vacío = sin límite inferior
	EndDate   string `query:"end_date"`   // YYYY-MM-DD; vacío = sin límite superior (fin de día inclusivo)
	Timeline  string `query:"timeline"`   // day|week|month (sin distinguir mayúsculas); default month
	Metric    string `query:"metric"`     // revenue|premium; default revenue
	TopN      int    `query:"top_n"`      // grupos antes de "Others" (default 5, max 50)
	Buckets   int    `query:"buckets"`    // periodos más recientes a devolver; 0 = todos
}

// ── Respuestas ────────────────────────────────────────────────────────────────

// PeriodDTO rango efectivo del reporte; vacío si no hay límite.
type PeriodDTO struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// TotalsDTO KPIs del periodo.
type TotalsDTO struct {
	TotalPolicies int             `json:"total_policies"`
	TotalPremium  decimal.Decimal `json:"total_premium"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgTicket     decimal.Decimal `json:"avg_ticket"` // sin redondear
}

// DistributionItemDTO un grupo de la distribución (Top-N + Others).
type DistributionItemDTO struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"`
	Share decimal.Decimal `json:"share_pct"` // participación % sobre el total de la métrica
}

// DistributionDTO distribución de una dimensión.
type DistributionDTO struct {
	Dimension string                `json:"dimension"`
	Metric    string                `json:"metric"`
	Items     []DistributionItemDTO `json:"items"`
}

// TimeBucketDTO un punto de la serie temporal.
type TimeBucketDTO struct {
	Key     string          `json:"key"`   // inicio del periodo (YYYY-MM-DD)
	Label   string          `json:"label"` // "05 Nov" | "Week of 03 Nov" | "Nov 25"
	Count   int             `json:"count"`
	Premium decimal.Decimal `json:"premium"`
	Revenue decimal.Decimal `json:"revenue"`
}

// TimelineDTO serie temporal; Sampled indica que es una aproximación.
type TimelineDTO struct {
	Granularity  string          `json:"granularity"`
	Sampled      bool            `json:"sampled"`
	SampledCount int             `json:"sampled_count"`
	Buckets      []TimeBucketDTO `json:"buckets"`
}

// OverviewDTO respuesta de GET /api/reports/overview.
type OverviewDTO struct {
	SnapshotID    string            `json:"snapshot_id"`
	FetchedAt     time.Time         `json:"fetched_at"`
	Period        PeriodDTO         `json:"period"`
	Scope         string            `json:"scope"` // all | rm:<id> | associate:<id>
	Totals        TotalsDTO         `json:"totals"`
	Distributions []DistributionDTO `json:"distributions"`
	Timeline      TimelineDTO       `json:"timeline"`
}

// SnapshotStatusDTO estado de la carga de datos del usuario (GET /api/reports/status).
type SnapshotStatusDTO struct {
	Status     string     `json:"status"` // idle | loading | ready | failed
	SnapshotID string     `json:"snapshot_id,omitempty"`
	Entries    int        `json:"entries"`
	FetchedAt  *time.Time `json:"fetched_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// ExportFileDTO documento generado por GET /api/reports/overview/export.
type ExportFileDTO struct {
	Filename    string
	ContentType string
	Content     []byte
}
