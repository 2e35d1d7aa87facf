package reporting

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/polizas-reportes/internal/domain"
	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
)

const (
	// DefaultTopN grupos individuales antes de agrupar el resto en "Others".
	DefaultTopN = 5
	// OthersLabel etiqueta del grupo sintético con el resto de la distribución.
	OthersLabel = "Others"
)

// Metric magnitud que se acumula en Value de cada grupo.
type Metric string

const (
	MetricRevenue Metric = "revenue"
	MetricPremium Metric = "premium"
)

// ParseMetric acepta "revenue" o "premium"; vacío equivale a revenue.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MetricRevenue, nil
	case MetricRevenue, MetricPremium:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidMetric, s)
}

func (m Metric) value(e *entity.BusinessEntry) decimal.Decimal {
	if m == MetricPremium {
		return ResolvePremium(e)
	}
	return ResolveRevenue(e)
}

// DistributionItem un grupo de la distribución.
type DistributionItem struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"`
}

// BuildDistribution agrupa por labelFn acumulando revenue y número de entradas.
func BuildDistribution(entries []entity.BusinessEntry, labelFn LabelFunc) []DistributionItem {
	return BuildDistributionBy(entries, labelFn, MetricRevenue)
}

// BuildDistributionBy agrupa por labelFn acumulando la métrica indicada.
// Una etiqueta vacía cae en "Unmapped". El resultado se ordena por Value
// descendente, luego Count descendente y por último Label ascendente, de modo que
// el orden no depende de la iteración del mapa.
func BuildDistributionBy(entries []entity.BusinessEntry, labelFn LabelFunc, metric Metric) []DistributionItem {
	groups := make(map[string]*DistributionItem)
	for i := range entries {
		label := strings.TrimSpace(labelFn(&entries[i]))
		if label == "" {
			label = UnmappedLabel
		}
		item, ok := groups[label]
		if !ok {
			item = &DistributionItem{Label: label, Value: decimal.Zero}
			groups[label] = item
		}
		item.Value = item.Value.Add(metric.value(&entries[i]))
		item.Count++
	}

	out := make([]DistributionItem, 0, len(groups))
	for _, item := range groups {
		out = append(out, *item)
	}
	slices.SortFunc(out, compareItems)
	return out
}

func compareItems(a, b DistributionItem) int {
	if c := b.Value.Cmp(a.Value); c != 0 {
		return c
	}
	if a.Count != b.Count {
		return b.Count - a.Count
	}
	return strings.Compare(a.Label, b.Label)
}

// TopNWithOthers conserva los primeros n grupos en el orden recibido y colapsa el
// resto en un grupo "Others" con la suma de Value y Count. "Others" solo se añade
// si su Value acumulado es positivo. n <= 0 usa DefaultTopN.
func TopNWithOthers(dist []DistributionItem, n int) []DistributionItem {
	if n <= 0 {
		n = DefaultTopN
	}
	if len(dist) <= n {
		return slices.Clone(dist)
	}
	out := slices.Clone(dist[:n])
	others := DistributionItem{Label: OthersLabel, Value: decimal.Zero}
	for _, item := range dist[n:] {
		others.Value = others.Value.Add(item.Value)
		others.Count += item.Count
	}
	if others.Value.IsPositive() {
		out = append(out, others)
	}
	return out
}
