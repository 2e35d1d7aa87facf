// Package reporting contiene el núcleo de reportes del back-office: resolución de
// montos y fechas por entrada, filtro por rango, totales, distribuciones,
// series por timeline y muestreo para gráficas.
//
// Todas las funciones son puras: no hacen I/O ni modifican las entradas recibidas.
package reporting

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
)

// dateLayouts formatos aceptados para las fechas del backend, del más al menos específico.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
}

// zonedLayouts formatos que llevan su propia zona horaria.
var zonedLayouts = map[string]bool{time.RFC3339Nano: true}

// ResolveEffectiveDate devuelve la fecha efectiva de la entrada: el primer valor
// parseable entre policyIssueDate, policyStartDate y createdAt.
// Las fechas sin zona se interpretan en loc; las que traen zona se convierten a loc.
func ResolveEffectiveDate(e *entity.BusinessEntry, loc *time.Location) (time.Time, bool) {
	if e == nil {
		return time.Time{}, false
	}
	for _, candidate := range []entity.Text{e.PolicyIssueDate, e.PolicyStartDate, e.CreatedAt} {
		if t, ok := parseDate(candidate.String(), loc); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate interpreta un string de fecha con los mismos formatos que las entradas.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	return parseDate(strings.TrimSpace(s), loc)
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	loc = orLocal(loc)
	for _, layout := range dateLayouts {
		if zonedLayouts[layout] {
			if t, err := time.Parse(layout, s); err == nil {
				return t.In(loc), true
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ResolvePremium devuelve la prima de la entrada: el primer valor distinto de cero
// entre netPremium, grossPremium, totalPayin y totalPayout. Cero si ninguno aplica.
func ResolvePremium(e *entity.BusinessEntry) decimal.Decimal {
	if e == nil {
		return decimal.Zero
	}
	for _, candidate := range []entity.Amount{e.NetPremium, e.GrossPremium, e.TotalPayin, e.TotalPayout} {
		if d, ok := candidate.Decimal(); ok && !d.IsZero() {
			return d
		}
	}
	return decimal.Zero
}

// ResolveRevenue devuelve el revenue de la entrada:
//  1. netRevenue si está presente y es distinto de cero;
//  2. pay-in − pay-out si alguno de los dos está presente
//     (pay-in = netPremiumPayin o totalPayin; pay-out = netPremiumPayout o totalPayout);
//  3. en otro caso, la prima resuelta.
func ResolveRevenue(e *entity.BusinessEntry) decimal.Decimal {
	if e == nil {
		return decimal.Zero
	}
	if d, ok := e.NetRevenue.Decimal(); ok && !d.IsZero() {
		return d
	}
	payin, hasPayin := firstPresent(e.NetPremiumPayin, e.TotalPayin)
	payout, hasPayout := firstPresent(e.NetPremiumPayout, e.TotalPayout)
	if hasPayin || hasPayout {
		return payin.Value().Sub(payout.Value())
	}
	return ResolvePremium(e)
}

// firstPresent devuelve el primer monto con valor (equivalente a a ?? b).
func firstPresent(amounts ...entity.Amount) (entity.Amount, bool) {
	for _, a := range amounts {
		if a.Present() {
			return a, true
		}
	}
	return "", false
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
