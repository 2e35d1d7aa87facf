package export

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/polizas-reportes/internal/application/dto"
	"github.com/jhoicas/polizas-reportes/internal/application/ports"
)

// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + alcance  │  periodo + snapshot            │
//	│  KPIs: pólizas | prima | revenue | ticket medio             │
//	│  DISTRIBUCIONES: una tabla Top-N por dimensión              │
//	│  SERIE TEMPORAL: periodo | pólizas | prima | revenue        │
//	└─────────────────────────────────────────────────────────────┘

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ ports.ReportExporter = (*PDFExporter)(nil)

// PDFExporter genera el overview como documento PDF con Maroto v2.
type PDFExporter struct {
	author string
}

// NewPDFExporter author aparece en los metadatos del documento.
func NewPDFExporter(author string) *PDFExporter { return &PDFExporter{author: author} }

func (*PDFExporter) Format() string      { return "pdf" }
func (*PDFExporter) ContentType() string { return "application/pdf" }

// Export genera el PDF y devuelve sus bytes.
func (e *PDFExporter) Export(_ context.Context, ov *dto.OverviewDTO) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Business Overview", true).
		WithAuthor(nonEmpty(e.author, "polizas-reportes"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(ov))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(kpiRow(ov.Totals))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	for _, d := range ov.Distributions {
		m.AddRows(distributionRows(d)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(timelineRows(ov.Timeline)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(ov *dto.OverviewDTO) core.Row {
	period := nonEmpty(ov.Period.StartDate, "beginning") + " to " + nonEmpty(ov.Period.EndDate, "today")
	return row.New(18).Add(
		col.New(7).Add(
			text.New("BUSINESS OVERVIEW", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Scope: "+ov.Scope, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(period, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2,
			}),
			text.New("Data as of "+ov.FetchedAt.Format("02 Jan 2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func kpiRow(t dto.TotalsDTO) core.Row {
	kpi := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 8, Color: colorGray, Align: align.Center, Top: 1}),
			text.New(value, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Align: align.Center, Top: 6,
			}),
		)
	}
	return row.New(16).Add(
		kpi("Policies", fmt.Sprint(t.TotalPolicies)),
		kpi("Premium", formatMoney(t.TotalPremium)),
		kpi("Revenue", formatMoney(t.TotalRevenue)),
		kpi("Avg. ticket", formatMoney(t.AvgTicket)),
	)
}

func distributionRows(d dto.DistributionDTO) []core.Row {
	rows := []core.Row{
		row.New(8).Add(col.New(12).Add(text.New(
			strings.ToUpper(d.Dimension)+" BY "+strings.ToUpper(d.Metric),
			props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3},
		))),
		tableHeader([]string{"Label", "Value", "Policies", "Share %"}, []int{6, 3, 1, 2}),
	}
	for _, it := range d.Items {
		rows = append(rows, tableRow(
			[]string{it.Label, formatMoney(it.Value), fmt.Sprint(it.Count), it.Share.StringFixed(2)},
			[]int{6, 3, 1, 2},
		))
	}
	return rows
}

func timelineRows(tl dto.TimelineDTO) []core.Row {
	title := "TIMELINE (" + strings.ToUpper(tl.Granularity) + ")"
	if tl.Sampled {
		title += fmt.Sprintf(" - approximate, %d sampled entries", tl.SampledCount)
	}
	sizes := []int{4, 2, 3, 3}
	rows := []core.Row{
		row.New(8).Add(col.New(12).Add(text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3,
		}))),
		tableHeader([]string{"Period", "Policies", "Premium", "Revenue"}, sizes),
	}
	for _, b := range tl.Buckets {
		rows = append(rows, tableRow(
			[]string{b.Label, fmt.Sprint(b.Count), formatMoney(b.Premium), formatMoney(b.Revenue)},
			sizes,
		))
	}
	return rows
}

func tableHeader(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(labels))
	for i, l := range labels {
		a := align.Right
		if i == 0 {
			a = align.Left
		}
		cols = append(cols, col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(6).Add(cols...)
}

func tableRow(values []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(values))
	for i, v := range values {
		a := align.Right
		if i == 0 {
			a = align.Left
		}
		cols = append(cols, col.New(sizes[i]).Add(text.New(v, props.Text{
			Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(5).Add(cols...)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney 2 decimales con comas de miles. Ej: 1234567.5 → "1,234,567.50"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return sign + string(buf) + "." + frac
}
