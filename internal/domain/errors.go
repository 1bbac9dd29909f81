package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrPartialTransfer: el débito en origen quedó confirmado pero fallaron el crédito
	// en destino y la compensación. Requiere reconciliación manual del operador.
	ErrPartialTransfer = errors.New("transferencia parcial: débito sin crédito")
)
