package repository

import (
	"context"

	"github.com/jhoicas/polizas-reportes/internal/domain/entity"
)

// Credentials identidad con la que se consulta el backend de pólizas.
// Token es el bearer del usuario; puede ir vacío en fuentes que no lo necesitan.
type Credentials struct {
	Token  string
	UserID string
	Role   string
}

// EntrySource fuente de solo lectura de entradas de negocio y de las partes
// (RMs y asociados) necesarias para cruzarlas.
type EntrySource interface {
	ListBusinessEntries(ctx context.Context, cred Credentials) ([]entity.BusinessEntry, error)
	ListRelationshipManagers(ctx context.Context, cred Credentials) ([]entity.RelationshipManager, error)
	ListAssociates(ctx context.Context, cred Credentials) ([]entity.Associate, error)
}
