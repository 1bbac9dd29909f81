package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestParseExpiration(t *testing.T) {
	exp, err := entity.ParseExpiration("2026-06-30")
	require.NoError(t, err)
	assert.True(t, exp.HasDate())
	assert.Equal(t, "2026-06-30", exp.String())

	none, err := entity.ParseExpiration("")
	require.NoError(t, err)
	assert.False(t, none.HasDate())
	assert.Equal(t, "none", none.String())

	_, err = entity.ParseExpiration("30/06/2026")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// La partición sin fecha es distinta de cualquier partición con fecha: el mismo
// producto/bodega puede tener un registro con vencimiento y otro sin él a la vez.
func TestExpirationKey_ParticionesDistintas(t *testing.T) {
	dated := entity.ExpirationOn(time.Date(2026, 6, 30, 15, 45, 0, 0, time.UTC))
	undated := entity.NoExpiration()

	assert.False(t, dated.Equal(undated))
	assert.False(t, undated.Equal(dated))
	assert.True(t, undated.Equal(entity.NoExpiration()))
}

func TestExpirationOn_NormalizaAMedianocheUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	a := entity.ExpirationOn(time.Date(2026, 6, 30, 23, 30, 0, 0, time.UTC))
	b := entity.ExpirationOn(time.Date(2026, 6, 30, 18, 30, 0, 0, loc)) // 23:30 UTC

	assert.True(t, a.Equal(b), "la hora del día no participa en la partición")
}

func TestExpirationKey_Ptr(t *testing.T) {
	assert.Nil(t, entity.NoExpiration().Ptr())

	exp := entity.ExpirationOn(time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC))
	ptr := exp.Ptr()
	require.NotNil(t, ptr)
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), *ptr)

	assert.True(t, entity.ExpirationFromPtr(ptr).Equal(exp))
	assert.False(t, entity.ExpirationFromPtr(nil).HasDate())
}

func TestQuantity_Sub(t *testing.T) {
	q := entity.Quantity(10)

	rest, ok := q.Sub(4)
	assert.True(t, ok)
	assert.Equal(t, entity.Quantity(6), rest)

	same, ok := q.Sub(11)
	assert.False(t, ok, "restar más de lo disponible no está permitido")
	assert.Equal(t, q, same, "la cantidad no cambia en un intento inválido")
}
