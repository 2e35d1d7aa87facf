package reporting

import (
	"time"

	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
)

// OverviewParams parámetros de una pasada completa del pipeline.
// Los valores cero aplican los defaults de cada etapa.
type OverviewParams struct {
	Range       DateRange
	Timeline    Timeline
	Metric      Metric
	TopN        int // grupos antes de "Others"
	BucketLimit int // periodos más recientes a conservar; 0 = todos
	MaxPoints   int // tope de entradas para la serie temporal
	Location    *time.Location
	Directory   Directory
}

// Overview resultado de Source → Filter → {Aggregation, Time-Bucketing}.
type Overview struct {
	Totals          Totals
	Distributions   map[Dimension][]DistributionItem
	Timeline        []TimeBucket
	FilteredCount   int
	TimelineSampled bool // la serie se calculó sobre una muestra (aproximada)
	SampledCount    int
}

// BuildOverview ejecuta el pipeline completo sobre un snapshot de entradas.
// Totales y distribuciones usan todas las entradas filtradas; la serie temporal se
// calcula sobre SampleForDisplay cuando el volumen supera MaxPoints.
func BuildOverview(entries []entity.BusinessEntry, p OverviewParams) Overview {
	if p.Timeline == "" {
		p.Timeline = TimelineMonth
	}
	if p.Metric == "" {
		p.Metric = MetricRevenue
	}

	filtered := FilterByDateRange(entries, p.Range, p.Location)

	ov := Overview{
		Totals:        ComputeTotals(filtered),
		Distributions: make(map[Dimension][]DistributionItem, len(AllDimensions)),
		FilteredCount: len(filtered),
	}
	for _, dim := range AllDimensions {
		dist := BuildDistributionBy(filtered, p.Directory.LabelFor(dim), p.Metric)
		ov.Distributions[dim] = TopNWithOthers(dist, p.TopN)
	}

	series := SampleForDisplay(filtered, p.MaxPoints, p.Location)
	ov.TimelineSampled = len(series) != len(filtered)
	ov.SampledCount = len(series)
	ov.Timeline = LastBuckets(BucketByTimeline(series, p.Timeline, p.Location), p.BucketLimit)
	return ov
}
