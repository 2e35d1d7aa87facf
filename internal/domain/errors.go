package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrInvalidTimeline = errors.New("timeline inválido: use day, week o month")
	ErrInvalidMetric   = errors.New("métrica inválida: use revenue o premium")
	ErrUnauthorized    = errors.New("no autorizado")
	ErrForbidden       = errors.New("acceso denegado")
	ErrUpstream        = errors.New("el backend de pólizas no respondió correctamente")
	ErrNoSession       = errors.New("no hay una sesión activa")
	ErrSnapshotStale   = errors.New("respuesta descartada: existe una carga más reciente")
)
