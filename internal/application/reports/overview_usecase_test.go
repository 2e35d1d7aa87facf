package reports_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/polizas-reportes/internal/application/dto"
	"github.com/jhoicas/polizas-reportes/internal/application/reports"
	"github.com/jhoicas/polizas-reportes/internal/application/snapshot"
	"github.com/jhoicas/polizas-reportes/internal/domain"
	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
	"github.com/jhoicas/polizas-reportes/internal/domain/repository"
	"github.com/jhoicas/polizas-reportes/internal/infrastructure/cache"
)

// ── Fakes ─────────────────────────────────────────────────────────────────────

type fakeSource struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSource) ListBusinessEntries(context.Context, repository.Credentials) ([]entity.BusinessEntry, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []entity.BusinessEntry{
		{
			ID: "e1", PolicyIssueDate: "2025-11-05", NetPremium: "1,000", NetRevenue: "100",
			InsuranceCompany: "ACKO", RMData: &entity.RMData{RMID: "rm-1"},
		},
		{
			ID: "e2", PolicyIssueDate: "2025-11-10", NetPremium: "2000", NetRevenue: "200",
			InsuranceCompany: "HDFC", AssociateData: &entity.AssociateData{AssociateID: "as-1"},
		},
		{
			ID: "e3", PolicyIssueDate: "2025-10-01", NetPremium: "3000", NetRevenue: "300",
			InsuranceCompany: "ACKO", RMData: &entity.RMData{RMID: "rm-2"},
			AssociateData: &entity.AssociateData{AssociateID: "as-2"},
		},
	}, nil
}

func (f *fakeSource) ListRelationshipManagers(context.Context, repository.Credentials) ([]entity.RelationshipManager, error) {
	return []entity.RelationshipManager{{ID: "rm-1", Name: "Anita Rao"}, {ID: "rm-2", Name: "Vikram Shah"}}, nil
}

func (f *fakeSource) ListAssociates(context.Context, repository.Credentials) ([]entity.Associate, error) {
	return []entity.Associate{
		{ID: "as-1", Name: "Ravi POS", RMID: "rm-1"},
		{ID: "as-2", Name: "Meena POS", RMID: "rm-2"},
	}, nil
}

// otherSource mismas RMs y asociados que fakeSource pero una sola entrada.
type otherSource struct{ fakeSource }

func (o *otherSource) ListBusinessEntries(context.Context, repository.Credentials) ([]entity.BusinessEntry, error) {
	return []entity.BusinessEntry{
		{ID: "e9", PolicyIssueDate: "2025-11-20", NetPremium: "500", NetRevenue: "50", InsuranceCompany: "ICICI"},
	}, nil
}

type fakeExporter struct{}

func (fakeExporter) Format() string      { return "csv" }
func (fakeExporter) ContentType() string { return "text/csv" }
func (fakeExporter) Export(_ context.Context, ov *dto.OverviewDTO) ([]byte, error) {
	return []byte(ov.Scope), nil
}

func newUseCase(src *fakeSource) (*reports.OverviewUseCase, *cache.MemoryReportCache) {
	ist, _ := time.LoadLocation("Asia/Kolkata")
	c := cache.NewMemoryReportCache(time.Minute, 0)
	uc := reports.NewOverviewUseCase(src, snapshot.NewStore(time.Minute), c,
		reports.Options{Location: ist}, fakeExporter{})
	return uc, c
}

var admin = reports.Principal{UserID: "u-admin", Role: entity.RoleAdmin, Token: "t"}

func distribution(t *testing.T, ov *dto.OverviewDTO, dim string) dto.DistributionDTO {
	t.Helper()
	for _, d := range ov.Distributions {
		if d.Dimension == dim {
			return d
		}
	}
	t.Fatalf("sin distribución %q", dim)
	return dto.DistributionDTO{}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestGetOverview_AdminVeTodo(t *testing.T) {
	uc, _ := newUseCase(&fakeSource{})

	ov, err := uc.GetOverview(context.Background(), admin, dto.OverviewRequest{})
	require.NoError(t, err)

	assert.Equal(t, "all", ov.Scope)
	assert.Equal(t, 3, ov.Totals.TotalPolicies)
	assert.Equal(t, "6000", ov.Totals.TotalPremium.String())
	assert.Equal(t, "600", ov.Totals.TotalRevenue.String())
	assert.Equal(t, "2000", ov.Totals.AvgTicket.String())

	insurers := distribution(t, ov, "insurer")
	assert.Equal(t, "revenue", insurers.Metric)
	require.Len(t, insurers.Items, 2)
	assert.Equal(t, "ACKO", insurers.Items[0].Label)
	assert.Equal(t, "400", insurers.Items[0].Value.String())
	assert.Equal(t, 2, insurers.Items[0].Count)
	assert.Equal(t, "66.67", insurers.Items[0].Share.String())

	rms := distribution(t, ov, "rm")
	labels := make([]string, 0, len(rms.Items))
	for _, it := range rms.Items {
		labels = append(labels, it.Label)
	}
	assert.ElementsMatch(t, []string{"Anita Rao", "Vikram Shah", "Unmapped RM"}, labels)

	assert.Equal(t, "month", ov.Timeline.Granularity)
	assert.False(t, ov.Timeline.Sampled)
	require.Len(t, ov.Timeline.Buckets, 2)
	assert.Equal(t, "Oct 25", ov.Timeline.Buckets[0].Label)
	assert.Equal(t, "Nov 25", ov.Timeline.Buckets[1].Label)
}

func TestGetOverview_AlcancePorRol(t *testing.T) {
	uc, _ := newUseCase(&fakeSource{})
	ctx := context.Background()

	rm, err := uc.GetOverview(ctx, reports.Principal{UserID: "rm-1", Role: entity.RoleRM}, dto.OverviewRequest{})
	require.NoError(t, err)
	assert.Equal(t, "rm:rm-1", rm.Scope)
	assert.Equal(t, 2, rm.Totals.TotalPolicies, "entradas propias y de sus asociados")
	assert.Equal(t, "300", rm.Totals.TotalRevenue.String())

	as, err := uc.GetOverview(ctx, reports.Principal{UserID: "as-2", Role: entity.RoleAssociate}, dto.OverviewRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, as.Totals.TotalPolicies)
	assert.Equal(t, "300", as.Totals.TotalRevenue.String())

	_, err = uc.GetOverview(ctx, reports.Principal{UserID: "x", Role: "guest"}, dto.OverviewRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestGetOverview_FiltroDeFechasYMemo(t *testing.T) {
	src := &fakeSource{}
	uc, memo := newUseCase(src)
	ctx := context.Background()
	req := dto.OverviewRequest{StartDate: "2025-11-01", EndDate: "2025-11-30", Metric: "premium", Timeline: "Day"}

	first, err := uc.GetOverview(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Totals.TotalPolicies)
	assert.Equal(t, dto.PeriodDTO{StartDate: "2025-11-01", EndDate: "2025-11-30"}, first.Period)
	assert.Equal(t, "premium", distribution(t, first, "insurer").Metric)
	assert.Equal(t, "day", first.Timeline.Granularity)
	assert.Equal(t, "05 Nov", first.Timeline.Buckets[0].Label)

	second, err := uc.GetOverview(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, first, second, "el mismo snapshot y parámetros se sirven de la caché")
	assert.Equal(t, 1, memo.Len())
	assert.EqualValues(t, 1, src.calls.Load(), "el snapshot se descarga una sola vez")

	_, err = uc.GetOverview(ctx, admin, dto.OverviewRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, memo.Len())
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestGetOverview_CacheCompartidaEntreReplicas(t *testing.T) {
	ist, _ := time.LoadLocation("Asia/Kolkata")
	shared := cache.NewMemoryReportCache(time.Minute, 0)
	srcA, srcB := &fakeSource{}, &fakeSource{}
	replicaA := reports.NewOverviewUseCase(srcA, snapshot.NewStore(time.Minute), shared, reports.Options{Location: ist})
	replicaB := reports.NewOverviewUseCase(srcB, snapshot.NewStore(time.Minute), shared, reports.Options{Location: ist})
	ctx := context.Background()
	req := dto.OverviewRequest{StartDate: "2025-11-01", Metric: "premium"}

	a, err := replicaA.GetOverview(ctx, admin, req)
	require.NoError(t, err)
	b, err := replicaB.GetOverview(ctx, admin, req)
	require.NoError(t, err)

	assert.Equal(t, 1, shared.Len(), "mismos datos y parámetros producen la misma clave en ambas réplicas")
	assert.EqualValues(t, 1, srcB.calls.Load(), "cada réplica descarga su propio snapshot")
	assert.NotEqual(t, a.SnapshotID, b.SnapshotID, "el acierto se sella con el snapshot local")
	assert.Equal(t, a.Totals, b.Totals)
	assert.Equal(t, a.Distributions, b.Distributions)

	// Con otros datos la clave cambia.
	replicaC := reports.NewOverviewUseCase(&otherSource{}, snapshot.NewStore(time.Minute), shared, reports.Options{Location: ist})
	_, err = replicaC.GetOverview(ctx, admin, req)
	require.NoError(t, err)
	assert.Equal(t, 2, shared.Len())
}

func TestGetOverview_ParametrosInvalidos(t *testing.T) {
	uc, _ := newUseCase(&fakeSource{})
	ctx := context.Background()

	for name, req := range map[string]dto.OverviewRequest{
		"fecha":        {StartDate: "05/11/2025"},
		"rango":        {StartDate: "2025-11-10", EndDate: "2025-11-01"},
		"timeline":     {Timeline: "quarter"},
		"metrica":      {Metric: "margin"},
		"top_n":        {TopN: 51},
		"buckets":      {Buckets: -1},
		"top_negativo": {TopN: -2},
	} {
		_, err := uc.GetOverview(ctx, admin, req)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}

	_, err := uc.GetOverview(ctx, admin, dto.OverviewRequest{Timeline: "quarter"})
	assert.ErrorIs(t, err, domain.ErrInvalidTimeline)
}

func TestGetOverview_FalloDelBackend(t *testing.T) {
	uc, _ := newUseCase(&fakeSource{err: errors.New("connection reset")})

	_, err := uc.GetOverview(context.Background(), admin, dto.OverviewRequest{})
	assert.ErrorIs(t, err, domain.ErrUpstream)

	st := uc.Status(admin)
	assert.Equal(t, "failed", st.Status)
	assert.Contains(t, st.Error, "connection reset")
}

func TestGetDistributionYTimeline(t *testing.T) {
	uc, _ := newUseCase(&fakeSource{})
	ctx := context.Background()

	d, err := uc.GetDistribution(ctx, admin, "Insurer", dto.OverviewRequest{TopN: 1})
	require.NoError(t, err)
	require.Len(t, d.Items, 2)
	assert.Equal(t, "ACKO", d.Items[0].Label)
	assert.Equal(t, "Others", d.Items[1].Label)
	assert.Equal(t, "200", d.Items[1].Value.String())

	_, err = uc.GetDistribution(ctx, admin, "city", dto.OverviewRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	tl, err := uc.GetTimeline(ctx, admin, dto.OverviewRequest{Buckets: 1})
	require.NoError(t, err)
	require.Len(t, tl.Buckets, 1)
	assert.Equal(t, "Nov 25", tl.Buckets[0].Label)
}

func TestRefreshStatusYForget(t *testing.T) {
	src := &fakeSource{}
	uc, _ := newUseCase(src)
	ctx := context.Background()

	assert.Equal(t, "idle", uc.Status(admin).Status)

	ov, err := uc.GetOverview(ctx, admin, dto.OverviewRequest{})
	require.NoError(t, err)

	st, err := uc.Refresh(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "ready", st.Status)
	assert.Equal(t, 3, st.Entries)
	assert.NotEqual(t, ov.SnapshotID, st.SnapshotID)
	assert.EqualValues(t, 2, src.calls.Load())

	uc.Forget(admin)
	assert.Equal(t, "idle", uc.Status(admin).Status)
}

func TestExportOverview(t *testing.T) {
	uc, _ := newUseCase(&fakeSource{})
	ctx := context.Background()

	file, err := uc.ExportOverview(ctx, admin, dto.OverviewRequest{StartDate: "2025-11-01"}, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "overview_2025-11-01.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "all", string(file.Content))

	_, err = uc.ExportOverview(ctx, admin, dto.OverviewRequest{}, "docx")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
