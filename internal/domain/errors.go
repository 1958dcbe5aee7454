package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrFacilityUnresolved = errors.New("no se pudo obtener el CEDI del usuario")
	ErrEmptyFile          = errors.New("el archivo no contiene datos válidos")
	ErrFileTooLarge       = errors.New("el archivo excede el tamaño máximo permitido")
	ErrUnsupportedFormat  = errors.New("formato de archivo no soportado")
	ErrBatchCancelled     = errors.New("procesamiento del lote cancelado")
)
