package reporting

import (
	"time"

	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
)

// DateRange límites opcionales del filtro; un time.Time cero significa "sin límite".
// Solo se usa la fecha calendario de cada límite.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Active indica si al menos uno de los límites está definido.
func (r DateRange) Active() bool {
	return !r.Start.IsZero() || !r.End.IsZero()
}

// Bounds devuelve los instantes efectivos en loc:
// inicio a las 00:00:00.000 y fin a las 23:59:59.999 (fin de día inclusivo).
func (r DateRange) Bounds(loc *time.Location) (from, to time.Time) {
	loc = orLocal(loc)
	if !r.Start.IsZero() {
		y, m, d := r.Start.Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	if !r.End.IsZero() {
		y, m, d := r.End.Date()
		to = time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
	}
	return from, to
}

// FilterByDateRange reduce las entradas al rango dado.
//
//   - Sin límites devuelve el mismo slice recibido.
//   - Excluye entradas anteriores al inicio (medianoche) o posteriores al fin (23:59:59.999).
//   - Con cualquier límite activo, las entradas sin fecha efectiva parseable se excluyen.
//
// El orden del resultado sigue el de la entrada.
func FilterByDateRange(entries []entity.BusinessEntry, r DateRange, loc *time.Location) []entity.BusinessEntry {
	if !r.Active() {
		return entries
	}
	from, to := r.Bounds(loc)
	out := make([]entity.BusinessEntry, 0, len(entries))
	for i := range entries {
		t, ok := ResolveEffectiveDate(&entries[i], loc)
		if !ok {
			continue
		}
		if !from.IsZero() && t.Before(from) {
			continue
		}
		if !to.IsZero() && t.After(to) {
			continue
		}
		out = append(out, entries[i])
	}
	return out
}
