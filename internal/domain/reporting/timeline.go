package reporting

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/polizas-reportes/internal/domain"
	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
)

// Timeline granularidad de las series temporales.
type Timeline string

const (
	TimelineDay   Timeline = "day"
	TimelineWeek  Timeline = "week"
	TimelineMonth Timeline = "month"
)

// ParseTimeline acepta day/week/month sin distinguir mayúsculas ("Day", "WEEK"...)
// y las variantes daily/weekly/monthly. Vacío equivale a month.
func ParseTimeline(s string) (Timeline, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "daily":
		return TimelineDay, nil
	case "week", "weekly":
		return TimelineWeek, nil
	case "month", "monthly", "":
		return TimelineMonth, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidTimeline, s)
}

// TimeBucket acumulado de un periodo. Start es la clave de orden; Label es solo
// para mostrar ("05 Nov", "Week of 03 Nov", "Nov 25").
type TimeBucket struct {
	Key     string          `json:"key"`
	Label   string          `json:"label"`
	Start   time.Time       `json:"start"`
	Count   int             `json:"count"`
	Premium decimal.Decimal `json:"premium"`
	Revenue decimal.Decimal `json:"revenue"`
}

// BucketStart inicio del periodo al que pertenece t. Las semanas empiezan en lunes.
func (tl Timeline) BucketStart(t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch tl {
	case TimelineDay:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case TimelineWeek:
		offset := (int(t.Weekday()) + 6) % 7 // lunes = 0
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	}
}

// Label etiqueta legible del periodo que empieza en start.
func (tl Timeline) Label(start time.Time) string {
	switch tl {
	case TimelineDay:
		return start.Format("02 Jan")
	case TimelineWeek:
		return "Week of " + start.Format("02 Jan")
	default:
		return start.Format("Jan 06")
	}
}

// BucketByTimeline agrupa las entradas por periodo de su fecha efectiva, acumulando
// número de pólizas, prima y revenue. Las entradas sin fecha se omiten.
// El resultado va en orden cronológico por Start (nunca por etiqueta).
func BucketByTimeline(entries []entity.BusinessEntry, tl Timeline, loc *time.Location) []TimeBucket {
	loc = orLocal(loc)
	buckets := make(map[int64]*TimeBucket)
	for i := range entries {
		t, ok := ResolveEffectiveDate(&entries[i], loc)
		if !ok {
			continue
		}
		start := tl.BucketStart(t)
		b, ok := buckets[start.Unix()]
		if !ok {
			b = &TimeBucket{
				Key:     start.Format("2006-01-02"),
				Label:   tl.Label(start),
				Start:   start,
				Premium: decimal.Zero,
				Revenue: decimal.Zero,
			}
			buckets[start.Unix()] = b
		}
		b.Count++
		b.Premium = b.Premium.Add(ResolvePremium(&entries[i]))
		b.Revenue = b.Revenue.Add(ResolveRevenue(&entries[i]))
	}

	out := make([]TimeBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b TimeBucket) int { return a.Start.Compare(b.Start) })
	return out
}

// LastBuckets conserva los n periodos más recientes de una serie ya ordenada.
// n <= 0 devuelve la serie completa.
func LastBuckets(buckets []TimeBucket, n int) []TimeBucket {
	if n <= 0 || len(buckets) <= n {
		return buckets
	}
	return buckets[len(buckets)-n:]
}
