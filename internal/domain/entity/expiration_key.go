package entity

import (
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// ExpirationKey partición de vencimiento de un registro de stock. La ausencia de fecha
// es una partición propia: el mismo producto/bodega puede tener a la vez un registro
// con fecha y otro sin fecha.
type ExpirationKey struct {
	date  time.Time
	valid bool
}

// NoExpiration devuelve la partición sin vencimiento.
func NoExpiration() ExpirationKey {
	return ExpirationKey{}
}

// ExpirationOn devuelve la partición para la fecha dada, normalizada a medianoche UTC.
func ExpirationOn(t time.Time) ExpirationKey {
	y, m, d := t.UTC().Date()
	return ExpirationKey{date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), valid: true}
}

// ParseExpiration interpreta una fecha "2006-01-02"; cadena vacía = sin vencimiento.
func ParseExpiration(s string) (ExpirationKey, error) {
	if s == "" {
		return NoExpiration(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return ExpirationKey{}, domain.ErrInvalidInput
	}
	return ExpirationOn(t), nil
}

// ExpirationFromPtr construye la clave desde una columna nullable (nil = sin vencimiento).
func ExpirationFromPtr(t *time.Time) ExpirationKey {
	if t == nil {
		return NoExpiration()
	}
	return ExpirationOn(*t)
}

// HasDate indica si la partición tiene fecha de vencimiento.
func (k ExpirationKey) HasDate() bool { return k.valid }

// Ptr devuelve la fecha para binding SQL (nil cuando no hay vencimiento).
func (k ExpirationKey) Ptr() *time.Time {
	if !k.valid {
		return nil
	}
	d := k.date
	return &d
}

// Equal compara dos particiones.
func (k ExpirationKey) Equal(other ExpirationKey) bool {
	if k.valid != other.valid {
		return false
	}
	return !k.valid || k.date.Equal(other.date)
}

// String representación para logs y subjects de eventos.
func (k ExpirationKey) String() string {
	if !k.valid {
		return "none"
	}
	return k.date.Format("2006-01-02")
}
