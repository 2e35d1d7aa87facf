package snapshot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/polizas-reportes/internal/domain"
)

// Store guarda el último snapshot publicado por alcance y coordina las cargas.
// Es seguro para uso concurrente.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	current    *Snapshot
	err        error
	generation uint64 // generación de la última carga iniciada
	inflight   *call
}

// call carga en curso; los que llegan mientras tanto esperan su resultado.
type call struct {
	done chan struct{}
	snap *Snapshot
	err  error
}

// NewStore crea el store. ttl <= 0 significa que un snapshot nunca caduca
// (solo se renueva con Refresh/Invalidate).
func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, now: time.Now, slots: make(map[string]*slot)}
}

// Load devuelve el snapshot vigente del alcance o lo descarga con fetch.
// Si ya hay una carga en curso para la misma clave se espera a ella.
// Un resultado que llega tarde (hubo una carga más nueva) no se publica y se
// devuelve domain.ErrSnapshotStale.
func (s *Store) Load(ctx context.Context, key string, fetch FetchFunc) (*Snapshot, error) {
	for attempt := 0; ; attempt++ {
		s.mu.Lock()
		sl := s.slot(key)
		if sl.current != nil && s.fresh(sl.current) && sl.inflight == nil {
			snap := sl.current
			s.mu.Unlock()
			return snap, nil
		}
		if c := sl.inflight; c != nil {
			s.mu.Unlock()
			select {
			case <-c.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			// Si la carga ajena se canceló o quedó obsoleta, reintentar con la nuestra.
			if c.err != nil && attempt == 0 && retryable(c.err) && ctx.Err() == nil {
				continue
			}
			return c.snap, c.err
		}

		sl.generation++
		gen := sl.generation
		c := &call{done: make(chan struct{})}
		sl.inflight = c
		s.mu.Unlock()

		snap, err := fetch(ctx)

		s.mu.Lock()
		switch {
		case sl.generation != gen:
			c.err = domain.ErrSnapshotStale
		case ctx.Err() != nil:
			// Quien pidió la carga ya no está: no se aplica el resultado.
			c.err = ctx.Err()
		case err != nil:
			sl.err = err
			c.err = err
		default:
			sl.current = snap
			sl.err = nil
			c.snap = snap
		}
		if sl.inflight == c {
			sl.inflight = nil
		}
		s.mu.Unlock()
		close(c.done)
		return c.snap, c.err
	}
}

// Refresh descarta el snapshot del alcance y descarga uno nuevo. Cualquier carga
// anterior aún en curso quedará obsoleta.
func (s *Store) Refresh(ctx context.Context, key string, fetch FetchFunc) (*Snapshot, error) {
	s.Invalidate(key)
	return s.Load(ctx, key, fetch)
}

// Invalidate olvida el snapshot del alcance y deja obsoletas las cargas en curso.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.slots[key]; ok {
		sl.generation++
		sl.current = nil
		sl.err = nil
		sl.inflight = nil
	}
}

// Reset olvida todos los alcances (cierre de sesión global).
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sl := range s.slots {
		sl.generation++
	}
	s.slots = make(map[string]*slot)
}

// State estado observable del alcance.
func (s *Store) State(key string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[key]
	switch {
	case !ok:
		return State{Status: StatusIdle}
	case sl.inflight != nil:
		return State{Status: StatusLoading, Snapshot: sl.current}
	case sl.err != nil:
		return State{Status: StatusFailed, Snapshot: sl.current, Err: sl.err}
	case sl.current != nil:
		return State{Status: StatusReady, Snapshot: sl.current}
	}
	return State{Status: StatusIdle}
}

func (s *Store) slot(key string) *slot {
	sl, ok := s.slots[key]
	if !ok {
		s.sweep()
		sl = &slot{}
		s.slots[key] = sl
	}
	return sl
}

// sweep elimina alcances inactivos con snapshots caducados. Requiere s.mu.
func (s *Store) sweep() {
	if s.ttl <= 0 {
		return
	}
	for key, sl := range s.slots {
		if sl.inflight == nil && (sl.current == nil || s.now().Sub(sl.current.FetchedAt) > 4*s.ttl) {
			delete(s.slots, key)
		}
	}
}

func (s *Store) fresh(snap *Snapshot) bool {
	return s.ttl <= 0 || s.now().Sub(snap.FetchedAt) <= s.ttl
}

func retryable(err error) bool {
	return errors.Is(err, domain.ErrSnapshotStale) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
