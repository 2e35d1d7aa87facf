package backend

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
	"github.com/jhoicas/polizas-reportes/internal/domain/repository"
)

var _ repository.EntrySource = (*FileSource)(nil)

// FileSource lee volcados JSON de los endpoints del backend (mismo formato de
// respuesta: array directo o envelope con "data"/"items"). Lo usa el CLI para
// reportes offline. Los archivos de RMs y asociados son opcionales.
type FileSource struct {
	EntriesPath    string
	RMsPath        string
	AssociatesPath string
}

func (s *FileSource) ListBusinessEntries(ctx context.Context, _ repository.Credentials) ([]entity.BusinessEntry, error) {
	var out []entity.BusinessEntry
	return out, readList(ctx, s.EntriesPath, &out)
}

func (s *FileSource) ListRelationshipManagers(ctx context.Context, _ repository.Credentials) ([]entity.RelationshipManager, error) {
	var out []entity.RelationshipManager
	if s.RMsPath == "" {
		return out, nil
	}
	return out, readList(ctx, s.RMsPath, &out)
}

func (s *FileSource) ListAssociates(ctx context.Context, _ repository.Credentials) ([]entity.Associate, error) {
	var out []entity.Associate
	if s.AssociatesPath == "" {
		return out, nil
	}
	return out, readList(ctx, s.AssociatesPath, &out)
}

func readList(ctx context.Context, path string, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("backend: leer %s: %w", path, err)
	}
	if err := decodeList(raw, dest); err != nil {
		return fmt.Errorf("backend: decodificar %s: %w", path, err)
	}
	return nil
}
