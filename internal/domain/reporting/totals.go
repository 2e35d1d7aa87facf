package reporting

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
)

// Totals KPIs escalares de un conjunto de entradas.
// AvgTicket no se redondea aquí; el redondeo es cosa de presentación.
type Totals struct {
	TotalPolicies int             `json:"total_policies"`
	TotalPremium  decimal.Decimal `json:"total_premium"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgTicket     decimal.Decimal `json:"avg_ticket"`
}

// ComputeTotals suma prima y revenue resueltos de cada entrada.
// Con cero entradas todos los valores son cero.
func ComputeTotals(entries []entity.BusinessEntry) Totals {
	totals := Totals{
		TotalPolicies: len(entries),
		TotalPremium:  decimal.Zero,
		TotalRevenue:  decimal.Zero,
		AvgTicket:     decimal.Zero,
	}
	for i := range entries {
		totals.TotalPremium = totals.TotalPremium.Add(ResolvePremium(&entries[i]))
		totals.TotalRevenue = totals.TotalRevenue.Add(ResolveRevenue(&entries[i]))
	}
	if totals.TotalPolicies > 0 {
		totals.AvgTicket = totals.TotalPremium.Div(decimal.NewFromInt(int64(totals.TotalPolicies)))
	}
	return totals
}
