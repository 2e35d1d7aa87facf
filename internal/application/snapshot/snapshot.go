// Package snapshot gestiona la carga de datos del backend para los reportes.
//
// Un Snapshot es una foto inmutable de entradas, RMs y asociados. El Store guarda
// uno por alcance (usuario) y coordina las cargas: cada carga lleva un número de
// generación y su resultado se descarta si mientras tanto empezó otra más nueva o
// si el contexto de quien la pidió se canceló. La sustitución es atómica: nunca
// se mezclan datos de dos cargas.
package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
	"github.com/jhoicas/polizas-reportes/internal/domain/reporting"
	"github.com/jhoicas/polizas-reportes/internal/domain/repository"
)

// Snapshot datos descargados en una carga. No se modifica después de publicarse.
type Snapshot struct {
	ID         string
	Digest     string // sha256 del contenido; igual en cualquier proceso que descargue los mismos datos
	Entries    []entity.BusinessEntry
	RMs        []entity.RelationshipManager
	Associates []entity.Associate
	FetchedAt  time.Time
}

// Directory directorio de nombres para etiquetar RMs y asociados.
func (s *Snapshot) Directory() reporting.Directory {
	return reporting.NewDirectory(s.RMs, s.Associates)
}

// ContentKey identifica el contenido del snapshot entre procesos. Sin Digest
// (snapshots construidos a mano) cae al ID local.
func (s *Snapshot) ContentKey() string {
	if s.Digest != "" {
		return s.Digest
	}
	return s.ID
}

// Status estado de la carga de un alcance.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// State resultado observable de la carga: Loading | Ready(snapshot) | Failed(err).
// Durante una recarga Snapshot conserva la foto anterior si existe.
type State struct {
	Status   Status
	Snapshot *Snapshot
	Err      error
}

// FetchFunc descarga un snapshot completo.
type FetchFunc func(ctx context.Context) (*Snapshot, error)

// FetchFrom construye la carga estándar: entradas, RMs y asociados en paralelo.
// Las tres consultas deben terminar bien antes de publicar nada.
func FetchFrom(source repository.EntrySource, cred repository.Credentials) FetchFunc {
	return func(ctx context.Context) (*Snapshot, error) {
		type entriesResult struct {
			rows []entity.BusinessEntry
			err  error
		}
		type rmsResult struct {
			rows []entity.RelationshipManager
			err  error
		}
		type associatesResult struct {
			rows []entity.Associate
			err  error
		}

		entriesCh := make(chan entriesResult, 1)
		rmsCh := make(chan rmsResult, 1)
		associatesCh := make(chan associatesResult, 1)

		go func() {
			rows, err := source.ListBusinessEntries(ctx, cred)
			entriesCh <- entriesResult{rows, err}
		}()
		go func() {
			rows, err := source.ListRelationshipManagers(ctx, cred)
			rmsCh <- rmsResult{rows, err}
		}()
		go func() {
			rows, err := source.ListAssociates(ctx, cred)
			associatesCh <- associatesResult{rows, err}
		}()

		entries := <-entriesCh
		rms := <-rmsCh
		associates := <-associatesCh

		if entries.err != nil {
			return nil, fmt.Errorf("snapshot: entradas: %w", entries.err)
		}
		if rms.err != nil {
			return nil, fmt.Errorf("snapshot: RMs: %w", rms.err)
		}
		if associates.err != nil {
			return nil, fmt.Errorf("snapshot: asociados: %w", associates.err)
		}

		sum, err := digest(entries.rows, rms.rows, associates.rows)
		if err != nil {
			return nil, fmt.Errorf("snapshot: digest: %w", err)
		}

		return &Snapshot{
			ID:         uuid.New().String(),
			Digest:     sum,
			Entries:    entries.rows,
			RMs:        rms.rows,
			Associates: associates.rows,
			FetchedAt:  time.Now(),
		}, nil
	}
}

// digest hash del contenido en el orden recibido de la fuente.
func digest(entries []entity.BusinessEntry, rms []entity.RelationshipManager, associates []entity.Associate) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, part := range []any{entries, rms, associates} {
		if err := enc.Encode(part); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
