// Package reports contiene los casos de uso del dashboard de reportes: KPIs,
// distribuciones Top-N y series temporales sobre la cartera visible para el usuario.
package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/polizas-reportes/internal/application/dto"
	"github.com/jhoicas/polizas-reportes/internal/application/ports"
	"github.com/jhoicas/polizas-reportes/internal/application/snapshot"
	"github.com/jhoicas/polizas-reportes/internal/domain"
	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
	"github.com/jhoicas/polizas-reportes/internal/domain/reporting"
	"github.com/jhoicas/polizas-reportes/internal/domain/repository"
)

const (
	maxTopN    = 50
	dateLayout = "2006-01-02"
)

var hundred = decimal.NewFromInt(100)

// Principal usuario autenticado que pide el reporte.
type Principal struct {
	UserID string
	Role   string
	Name   string
	Token  string
}

// Credentials credenciales para la fuente de datos.
func (p Principal) Credentials() repository.Credentials {
	return repository.Credentials{Token: p.Token, UserID: p.UserID, Role: p.Role}
}

// snapshotKey un snapshot por usuario y rol.
func (p Principal) snapshotKey() string {
	return p.Role + ":" + p.UserID
}

// Options parámetros de despliegue del caso de uso.
type Options struct {
	Location  *time.Location
	TopN      int // default de top_n
	MaxPoints int // tope de entradas para la serie temporal
}

// OverviewUseCase construye el overview del dashboard para un usuario.
//
// Fuente de datos: EntrySource vía snapshot.Store (una descarga por usuario,
// reutilizada mientras no caduque). Los reportes derivados se memorizan en
// ReportCache con una clave que incluye el hash del contenido del snapshot, de
// modo que réplicas con los mismos datos comparten las entradas.
type OverviewUseCase struct {
	source    repository.EntrySource
	store     *snapshot.Store
	cache     repository.ReportCache
	exporters map[string]ports.ReportExporter
	opts      Options
}

// NewOverviewUseCase construye el caso de uso. cache puede ser nil.
func NewOverviewUseCase(
	source repository.EntrySource,
	store *snapshot.Store,
	cache repository.ReportCache,
	opts Options,
	exporters ...ports.ReportExporter,
) *OverviewUseCase {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.TopN <= 0 {
		opts.TopN = reporting.DefaultTopN
	}
	if opts.MaxPoints <= 0 {
		opts.MaxPoints = reporting.DefaultMaxPoints
	}
	byFormat := make(map[string]ports.ReportExporter, len(exporters))
	for _, ex := range exporters {
		byFormat[ex.Format()] = ex
	}
	return &OverviewUseCase{
		source:    source,
		store:     store,
		cache:     cache,
		exporters: byFormat,
		opts:      opts,
	}
}

// ── Consultas ─────────────────────────────────────────────────────────────────

// GetOverview KPIs, distribuciones por dimensión y serie temporal del periodo.
func (uc *OverviewUseCase) GetOverview(ctx context.Context, p Principal, req dto.OverviewRequest) (*dto.OverviewDTO, error) {
	params, period, err := uc.params(req)
	if err != nil {
		return nil, err
	}
	if err := checkPrincipal(p); err != nil {
		return nil, err
	}

	snap, err := uc.store.Load(ctx, p.snapshotKey(), snapshot.FetchFrom(uc.source, p.Credentials()))
	if err != nil {
		return nil, loadError(err)
	}

	scope := scopeOf(p)
	key := memoKey(snap.ContentKey(), scope, params)
	if uc.cache != nil {
		if cached, ok, err := uc.cache.Get(ctx, key); err == nil && ok {
			// Puede venir de otra réplica: se sella con el snapshot local.
			hit := *cached
			hit.SnapshotID = snap.ID
			hit.FetchedAt = snap.FetchedAt
			return &hit, nil
		}
	}

	params.Directory = snap.Directory()
	entries := scopeEntries(snap.Entries, snap.Associates, p)
	ov := reporting.BuildOverview(entries, params)

	out := toOverviewDTO(ov, params)
	out.SnapshotID = snap.ID
	out.FetchedAt = snap.FetchedAt
	out.Period = period
	out.Scope = scope

	if uc.cache != nil {
		// Un fallo de la caché solo cuesta recalcular en la próxima petición.
		_ = uc.cache.Set(ctx, key, out)
	}
	return out, nil
}

// GetDistribution distribución Top-N + Others de una sola dimensión.
func (uc *OverviewUseCase) GetDistribution(ctx context.Context, p Principal, dimension string, req dto.OverviewRequest) (*dto.DistributionDTO, error) {
	dim, err := reporting.ParseDimension(dimension)
	if err != nil {
		return nil, err
	}
	ov, err := uc.GetOverview(ctx, p, req)
	if err != nil {
		return nil, err
	}
	for i := range ov.Distributions {
		if ov.Distributions[i].Dimension == string(dim) {
			d := ov.Distributions[i]
			return &d, nil
		}
	}
	return nil, fmt.Errorf("%w: distribución %q", domain.ErrNotFound, dim)
}

// GetTimeline serie temporal del periodo.
func (uc *OverviewUseCase) GetTimeline(ctx context.Context, p Principal, req dto.OverviewRequest) (*dto.TimelineDTO, error) {
	ov, err := uc.GetOverview(ctx, p, req)
	if err != nil {
		return nil, err
	}
	tl := ov.Timeline
	return &tl, nil
}

// ── Ciclo de vida del snapshot ────────────────────────────────────────────────

// Refresh descarta el snapshot del usuario y lo descarga de nuevo.
func (uc *OverviewUseCase) Refresh(ctx context.Context, p Principal) (*dto.SnapshotStatusDTO, error) {
	if err := checkPrincipal(p); err != nil {
		return nil, err
	}
	if _, err := uc.store.Refresh(ctx, p.snapshotKey(), snapshot.FetchFrom(uc.source, p.Credentials())); err != nil {
		return nil, loadError(err)
	}
	st := uc.Status(p)
	return &st, nil
}

// Status estado de la carga del usuario.
func (uc *OverviewUseCase) Status(p Principal) dto.SnapshotStatusDTO {
	st := uc.store.State(p.snapshotKey())
	out := dto.SnapshotStatusDTO{Status: string(st.Status)}
	if st.Snapshot != nil {
		fetched := st.Snapshot.FetchedAt
		out.SnapshotID = st.Snapshot.ID
		out.Entries = len(st.Snapshot.Entries)
		out.FetchedAt = &fetched
	}
	if st.Err != nil {
		out.Error = st.Err.Error()
	}
	return out
}

// Forget olvida el snapshot del usuario (cierre de sesión).
func (uc *OverviewUseCase) Forget(p Principal) {
	uc.store.Invalidate(p.snapshotKey())
}

// ── Exportación ───────────────────────────────────────────────────────────────

// Formats formatos de exportación registrados.
func (uc *OverviewUseCase) Formats() []string {
	out := make([]string, 0, len(uc.exporters))
	for f := range uc.exporters {
		out = append(out, f)
	}
	return out
}

// ExportOverview genera el overview y lo serializa con el exportador del formato pedido.
func (uc *OverviewUseCase) ExportOverview(ctx context.Context, p Principal, req dto.OverviewRequest, format string) (*dto.ExportFileDTO, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "xlsx"
	}
	ex, ok := uc.exporters[format]
	if !ok {
		return nil, fmt.Errorf("%w: formato de exportación %q no soportado", domain.ErrInvalidInput, format)
	}

	ov, err := uc.GetOverview(ctx, p, req)
	if err != nil {
		return nil, err
	}
	content, err := ex.Export(ctx, ov)
	if err != nil {
		return nil, fmt.Errorf("reports: exportar %s: %w", format, err)
	}
	return &dto.ExportFileDTO{
		Filename:    exportFilename(ov, format),
		ContentType: ex.ContentType(),
		Content:     content,
	}, nil
}

func exportFilename(ov *dto.OverviewDTO, format string) string {
	name := "overview"
	if ov.Period.StartDate != "" {
		name += "_" + ov.Period.StartDate
	}
	if ov.Period.EndDate != "" {
		name += "_" + ov.Period.EndDate
	}
	return name + "." + format
}

// ── Parámetros ────────────────────────────────────────────────────────────────

func (uc *OverviewUseCase) params(req dto.OverviewRequest) (reporting.OverviewParams, dto.PeriodDTO, error) {
	var (
		p      reporting.OverviewParams
		period dto.PeriodDTO
		err    error
	)
	p.Location = uc.opts.Location
	p.MaxPoints = uc.opts.MaxPoints

	if p.Range.Start, err = parseDay(req.StartDate, p.Location, "start_date"); err != nil {
		return p, period, err
	}
	if p.Range.End, err = parseDay(req.EndDate, p.Location, "end_date"); err != nil {
		return p, period, err
	}
	if !p.Range.Start.IsZero() && !p.Range.End.IsZero() && p.Range.End.Before(p.Range.Start) {
		return p, period, fmt.Errorf("%w: end_date anterior a start_date", domain.ErrInvalidInput)
	}
	if !p.Range.Start.IsZero() {
		period.StartDate = p.Range.Start.Format(dateLayout)
	}
	if !p.Range.End.IsZero() {
		period.EndDate = p.Range.End.Format(dateLayout)
	}

	if p.Timeline, err = reporting.ParseTimeline(req.Timeline); err != nil {
		return p, period, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if p.Metric, err = reporting.ParseMetric(req.Metric); err != nil {
		return p, period, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	switch {
	case req.TopN < 0 || req.TopN > maxTopN:
		return p, period, fmt.Errorf("%w: top_n debe estar entre 1 y %d", domain.ErrInvalidInput, maxTopN)
	case req.TopN == 0:
		p.TopN = uc.opts.TopN
	default:
		p.TopN = req.TopN
	}
	if req.Buckets < 0 {
		return p, period, fmt.Errorf("%w: buckets no puede ser negativo", domain.ErrInvalidInput)
	}
	p.BucketLimit = req.Buckets
	return p, period, nil
}

func parseDay(s string, loc *time.Location, field string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s debe tener formato YYYY-MM-DD", domain.ErrInvalidInput, field)
	}
	return t, nil
}

func memoKey(contentKey, scope string, p reporting.OverviewParams) string {
	from, to := p.Range.Bounds(p.Location)
	bound := func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format(dateLayout)
	}
	return fmt.Sprintf("overview:%s:%s:%s:%s:%s:%s:%d:%d",
		contentKey, scope, bound(from), bound(to), p.Timeline, p.Metric, p.TopN, p.BucketLimit)
}

// ── Alcance por rol ───────────────────────────────────────────────────────────

func checkPrincipal(p Principal) error {
	if p.UserID == "" {
		return domain.ErrUnauthorized
	}
	if !entity.ValidRole(p.Role) {
		return fmt.Errorf("%w: rol %q", domain.ErrForbidden, p.Role)
	}
	return nil
}

func scopeOf(p Principal) string {
	switch p.Role {
	case entity.RoleRM, entity.RoleAssociate:
		return p.Role + ":" + p.UserID
	}
	return "all"
}

// scopeEntries reduce el snapshot a la cartera visible para el usuario:
// admin, owner y executive ven todo; un RM ve sus entradas y las de los asociados
// que dio de alta; un asociado solo las suyas.
func scopeEntries(entries []entity.BusinessEntry, associates []entity.Associate, p Principal) []entity.BusinessEntry {
	var keep func(e *entity.BusinessEntry) bool
	switch p.Role {
	case entity.RoleRM:
		own := make(map[string]struct{})
		for _, a := range associates {
			if a.RMID.String() == p.UserID && a.ID.Present() {
				own[a.ID.String()] = struct{}{}
			}
		}
		keep = func(e *entity.BusinessEntry) bool {
			if e.RMID() == p.UserID {
				return true
			}
			_, ok := own[e.AssociateID()]
			return ok
		}
	case entity.RoleAssociate:
		keep = func(e *entity.BusinessEntry) bool { return e.AssociateID() == p.UserID }
	default:
		return entries
	}

	out := make([]entity.BusinessEntry, 0, len(entries)/4)
	for i := range entries {
		if keep(&entries[i]) {
			out = append(out, entries[i])
		}
	}
	return out
}

// loadError distingue fallos del backend del resto. El núcleo nunca corre sobre
// una carga fallida.
func loadError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrUpstream),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("reports: cargar datos: %w", err)
	}
	return fmt.Errorf("%w: %w", domain.ErrUpstream, err)
}

// ── Mapeo a DTOs ──────────────────────────────────────────────────────────────

func toOverviewDTO(ov reporting.Overview, p reporting.OverviewParams) *dto.OverviewDTO {
	out := &dto.OverviewDTO{
		Totals: dto.TotalsDTO{
			TotalPolicies: ov.Totals.TotalPolicies,
			TotalPremium:  ov.Totals.TotalPremium,
			TotalRevenue:  ov.Totals.TotalRevenue,
			AvgTicket:     ov.Totals.AvgTicket,
		},
		Distributions: make([]dto.DistributionDTO, 0, len(reporting.AllDimensions)),
		Timeline: dto.TimelineDTO{
			Granularity:  string(p.Timeline),
			Sampled:      ov.TimelineSampled,
			SampledCount: ov.SampledCount,
			Buckets:      make([]dto.TimeBucketDTO, 0, len(ov.Timeline)),
		},
	}

	total := ov.Totals.TotalRevenue
	if p.Metric == reporting.MetricPremium {
		total = ov.Totals.TotalPremium
	}
	for _, dim := range reporting.AllDimensions {
		items := ov.Distributions[dim]
		d := dto.DistributionDTO{
			Dimension: string(dim),
			Metric:    string(p.Metric),
			Items:     make([]dto.DistributionItemDTO, 0, len(items)),
		}
		for _, it := range items {
			d.Items = append(d.Items, dto.DistributionItemDTO{
				Label: it.Label,
				Value: it.Value,
				Count: it.Count,
				Share: share(it.Value, total),
			})
		}
		out.Distributions = append(out.Distributions, d)
	}

	for _, b := range ov.Timeline {
		out.Timeline.Buckets = append(out.Timeline.Buckets, dto.TimeBucketDTO{
			Key:     b.Key,
			Label:   b.Label,
			Count:   b.Count,
			Premium: b.Premium,
			Revenue: b.Revenue,
		})
	}
	return out
}

// share porcentaje con 2 decimales; 0 si el total no es positivo.
func share(value, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return value.Mul(hundred).Div(total).Round(2)
}
