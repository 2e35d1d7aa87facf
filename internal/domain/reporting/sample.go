package reporting

import (
	"slices"
	"time"

	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
)

const (
	// DefaultMaxPoints tope de entradas que se envían a las gráficas.
	DefaultMaxPoints = 20000
	// RecentWindow entradas más recientes que se conservan siempre completas.
	RecentWindow = 5000
)

// SampleForDisplay acota el volumen de datos para gráficas.
//
// Si hay maxPoints entradas o menos, devuelve el mismo slice. Si no, ordena por
// fecha efectiva descendente (las entradas sin fecha van al final, y el empate
// respeta el orden recibido), conserva las RecentWindow más recientes y de las
// más antiguas toma una de cada N, con N = ceil(antiguas / (maxPoints - RecentWindow)).
// Si maxPoints no supera RecentWindow solo se devuelven las maxPoints más recientes.
//
// Es determinista: la misma entrada produce siempre la misma muestra.
func SampleForDisplay(entries []entity.BusinessEntry, maxPoints int, loc *time.Location) []entity.BusinessEntry {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	if len(entries) <= maxPoints {
		return entries
	}

	type dated struct {
		idx int
		at  time.Time
		ok  bool
	}
	order := make([]dated, len(entries))
	for i := range entries {
		t, ok := ResolveEffectiveDate(&entries[i], loc)
		order[i] = dated{idx: i, at: t, ok: ok}
	}
	slices.SortStableFunc(order, func(a, b dated) int {
		switch {
		case a.ok && !b.ok:
			return -1
		case !a.ok && b.ok:
			return 1
		case !a.ok && !b.ok:
			return 0
		}
		return b.at.Compare(a.at)
	})

	if maxPoints <= RecentWindow {
		out := make([]entity.BusinessEntry, 0, maxPoints)
		for _, d := range order[:maxPoints] {
			out = append(out, entries[d.idx])
		}
		return out
	}

	recent := order[:RecentWindow]
	older := order[RecentWindow:]
	budget := maxPoints - RecentWindow
	step := (len(older) + budget - 1) / budget

	out := make([]entity.BusinessEntry, 0, RecentWindow+budget)
	for _, d := range recent {
		out = append(out, entries[d.idx])
	}
	for i := 0; i < len(older); i += step {
		out = append(out, entries[older[i].idx])
	}
	return out
}
