package repository

import (
	"context"

	"github.com/jhoicas/polizas-reportes/internal/application/dto"
)

// ReportCache memoriza reportes derivados. La clave incluye el id del snapshot,
// así que un refresco invalida implícitamente todo lo calculado antes.
type ReportCache interface {
	// Get devuelve (nil, false, nil) si la clave no existe.
	Get(ctx context.Context, key string) (*dto.OverviewDTO, bool, error)
	Set(ctx context.Context, key string, overview *dto.OverviewDTO) error
}
