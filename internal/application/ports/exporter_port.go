package ports

import (
	"context"

	"github.com/jhoicas/polizas-reportes/internal/application/dto"
)

// ReportExporter define el puerto de salida para exportar un overview a un
// documento descargable. Cada adaptador (Excel, PDF) atiende un único formato.
type ReportExporter interface {
	// Format identificador usado en ?format= (p. ej. "xlsx", "pdf").
	Format() string
	// ContentType tipo MIME del documento generado.
	ContentType() string
	// Export serializa el overview. No debe modificarlo.
	Export(ctx context.Context, overview *dto.OverviewDTO) ([]byte, error)
}
