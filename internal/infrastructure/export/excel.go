// Package export implementa ports.ReportExporter: el overview del dashboard como
// libro Excel (excelize) o como documento PDF (Maroto v2).
package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/polizas-reportes/internal/application/dto"
	"github.com/jhoicas/polizas-reportes/internal/application/ports"
)

const (
	sheetSummary       = "Summary"
	sheetDistributions = "Distributions"
	sheetTimeline      = "Timeline"
)

var _ ports.ReportExporter = (*ExcelExporter)(nil)

// ExcelExporter genera un .xlsx con tres hojas: Summary, Distributions y Timeline.
type ExcelExporter struct{}

// NewExcelExporter construye el exportador.
func NewExcelExporter() *ExcelExporter { return &ExcelExporter{} }

func (*ExcelExporter) Format() string { return "xlsx" }

func (*ExcelExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export escribe el libro en memoria y devuelve sus bytes.
func (*ExcelExporter) Export(_ context.Context, ov *dto.OverviewDTO) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("excel: hoja %s: %w", sheetSummary, err)
	}
	for _, name := range []string{sheetDistributions, sheetTimeline} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("excel: hoja %s: %w", name, err)
		}
	}

	if err := writeSummary(f, ov); err != nil {
		return nil, err
	}
	if err := writeDistributions(f, ov); err != nil {
		return nil, err
	}
	if err := writeTimeline(f, ov); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

// ── Hojas ─────────────────────────────────────────────────────────────────────

func writeSummary(f *excelize.File, ov *dto.OverviewDTO) error {
	rows := [][]any{
		{"Metric", "Value"},
		{"Snapshot", ov.SnapshotID},
		{"Fetched at", ov.FetchedAt.Format("2006-01-02 15:04:05")},
		{"Scope", ov.Scope},
		{"Start date", nonEmpty(ov.Period.StartDate, "-")},
		{"End date", nonEmpty(ov.Period.EndDate, "-")},
		{"Total policies", ov.Totals.TotalPolicies},
		{"Total premium", ov.Totals.TotalPremium.InexactFloat64()},
		{"Total revenue", ov.Totals.TotalRevenue.InexactFloat64()},
		{"Average ticket", ov.Totals.AvgTicket.Round(2).InexactFloat64()},
	}
	return writeRows(f, sheetSummary, rows)
}

func writeDistributions(f *excelize.File, ov *dto.OverviewDTO) error {
	rows := [][]any{{"Dimension", "Metric", "Label", "Value", "Policies", "Share %"}}
	for _, d := range ov.Distributions {
		for _, it := range d.Items {
			rows = append(rows, []any{
				d.Dimension, d.Metric, it.Label,
				it.Value.InexactFloat64(), it.Count, it.Share.InexactFloat64(),
			})
		}
	}
	return writeRows(f, sheetDistributions, rows)
}

func writeTimeline(f *excelize.File, ov *dto.OverviewDTO) error {
	rows := [][]any{{"Period", "Label", "Policies", "Premium", "Revenue"}}
	for _, b := range ov.Timeline.Buckets {
		rows = append(rows, []any{
			b.Key, b.Label, b.Count, b.Premium.InexactFloat64(), b.Revenue.InexactFloat64(),
		})
	}
	if ov.Timeline.Sampled {
		rows = append(rows, []any{}, []any{
			fmt.Sprintf("Approximate: computed on a sample of %d entries", ov.Timeline.SampledCount),
		})
	}
	return writeRows(f, sheetTimeline, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, values := range rows {
		if len(values) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("excel: %s: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("excel: %s fila %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
