package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/event"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

const (
	companyID   = "00000000-0000-0000-0000-000000000001"
	productID   = "00000000-0000-0000-0000-000000000010"
	warehouseW1 = "00000000-0000-0000-0000-000000000021"
	warehouseW2 = "00000000-0000-0000-0000-000000000022"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria
// ──────────────────────────────────────────────────────────────────────────────

// journal registra el orden de operaciones sobre store y publicador, para poder
// afirmar persistir-luego-publicar.
type journal struct {
	entries []string
}

func (j *journal) add(s string) { j.entries = append(j.entries, s) }

func key(productID, warehouseID string, exp entity.ExpirationKey) string {
	return productID + "|" + warehouseID + "|" + exp.String()
}

type fakeStockRepo struct {
	j       *journal
	records map[string]entity.StockRecord

	conflicts map[string]int   // conflictos de versión a inyectar, por bodega
	insertErr map[string]error // fallo de Insert, por bodega
	updateErr map[string]error // fallo de Update por bodega, tras updatesOK exitosos
	updatesOK map[string]int
	updates   map[string]int
}

func newFakeStockRepo(j *journal) *fakeStockRepo {
	return &fakeStockRepo{
		j:         j,
		records:   map[string]entity.StockRecord{},
		conflicts: map[string]int{},
		insertErr: map[string]error{},
		updateErr: map[string]error{},
		updatesOK: map[string]int{},
		updates:   map[string]int{},
	}
}

func (f *fakeStockRepo) FindByKey(_ context.Context, productID, warehouseID string, exp entity.ExpirationKey) (*entity.StockRecord, error) {
	rec, ok := f.records[key(productID, warehouseID, exp)]
	if !ok {
		return nil, nil
	}
	cp := rec
	return &cp, nil
}

func (f *fakeStockRepo) Insert(_ context.Context, rec *entity.StockRecord) error {
	if err := f.insertErr[rec.WarehouseID]; err != nil {
		f.j.add("insert-error:" + rec.WarehouseID)
		return err
	}
	k := key(rec.ProductID, rec.WarehouseID, rec.Expiration)
	if _, exists := f.records[k]; exists {
		return domain.ErrDuplicate
	}
	f.records[k] = *rec
	f.j.add("insert:" + rec.WarehouseID)
	return nil
}

func (f *fakeStockRepo) Update(_ context.Context, rec *entity.StockRecord, expectedVersion int64) error {
	wh := rec.WarehouseID
	if f.conflicts[wh] > 0 {
		f.conflicts[wh]--
		f.j.add("conflict:" + wh)
		return domain.ErrConflict
	}
	if err := f.updateErr[wh]; err != nil && f.updates[wh] >= f.updatesOK[wh] {
		f.j.add("update-error:" + wh)
		return err
	}
	k := key(rec.ProductID, rec.WarehouseID, rec.Expiration)
	stored, ok := f.records[k]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrConflict
	}
	rec.Version = expectedVersion + 1
	f.records[k] = *rec
	f.updates[wh]++
	f.j.add("update:" + wh)
	return nil
}

func (f *fakeStockRepo) Delete(_ context.Context, id string) error {
	for k, rec := range f.records {
		if rec.ID == id {
			delete(f.records, k)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeStockRepo) ListByWarehouse(_ context.Context, warehouseID string, _, _ int) ([]*entity.StockRecord, error) {
	var out []*entity.StockRecord
	for _, rec := range f.records {
		if rec.WarehouseID == warehouseID {
			cp := rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeProductRepo struct {
	products map[string]entity.Product
}

func (f *fakeProductRepo) Create(*entity.Product) error { return nil }
func (f *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	if p, ok := f.products[id]; ok {
		cp := p
		return &cp, nil
	}
	return nil, nil
}
func (f *fakeProductRepo) GetByCompanyAndSKU(string, string) (*entity.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) Update(*entity.Product) error                        { return nil }
func (f *fakeProductRepo) ListByCompany(string, int, int) ([]*entity.Product, error) { return nil, nil }
func (f *fakeProductRepo) Delete(string) error                                 { return nil }

type fakeWarehouseRepo struct {
	warehouses map[string]entity.Warehouse
}

func (f *fakeWarehouseRepo) Create(*entity.Warehouse) error { return nil }
func (f *fakeWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	if w, ok := f.warehouses[id]; ok {
		cp := w
		return &cp, nil
	}
	return nil, nil
}
func (f *fakeWarehouseRepo) Update(*entity.Warehouse) error { return nil }
func (f *fakeWarehouseRepo) ListByCompany(string, int, int) ([]*entity.Warehouse, error) {
	return nil, nil
}
func (f *fakeWarehouseRepo) Delete(string) error { return nil }

type fakePublisher struct {
	j         *journal
	published []event.StockAlert
}

func (f *fakePublisher) Publish(_ context.Context, e event.StockAlert) error {
	f.published = append(f.published, e)
	f.j.add("publish:" + e.Name)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Arnés
// ──────────────────────────────────────────────────────────────────────────────

type harness struct {
	j         *journal
	stock     *fakeStockRepo
	publisher *fakePublisher
	uc        *inventory.CommandUseCase
}

// newHarness arma el caso de uso con dobles. El producto de prueba tiene stock mínimo 10.
func newHarness(t *testing.T) *harness {
	t.Helper()
	j := &journal{}
	stock := newFakeStockRepo(j)
	products := &fakeProductRepo{products: map[string]entity.Product{
		productID: {ID: productID, CompanyID: companyID, SKU: "SKU-001", Name: "Café 500g", MinimumStock: 10},
	}}
	warehouses := &fakeWarehouseRepo{warehouses: map[string]entity.Warehouse{
		warehouseW1: {ID: warehouseW1, CompanyID: companyID, Name: "Bodega Norte"},
		warehouseW2: {ID: warehouseW2, CompanyID: companyID, Name: "Bodega Sur"},
	}}
	publisher := &fakePublisher{j: j}
	uc := inventory.NewCommandUseCase(stock, products, warehouses, publisher, logger.Nop())
	return &harness{j: j, stock: stock, publisher: publisher, uc: uc}
}

// seed carga un registro sin vencimiento directamente en el store.
func (h *harness) seed(warehouseID string, qty entity.Quantity, state entity.StockState) entity.StockRecord {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rec := entity.StockRecord{
		ID:          "rec-" + warehouseID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Expiration:  entity.NoExpiration(),
		Quantity:    qty,
		State:       state,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	h.stock.records[key(productID, warehouseID, entity.NoExpiration())] = rec
	return rec
}

func (h *harness) stored(warehouseID string) (entity.StockRecord, bool) {
	rec, ok := h.stock.records[key(productID, warehouseID, entity.NoExpiration())]
	return rec, ok
}

// ──────────────────────────────────────────────────────────────────────────────
// AddStock
// ──────────────────────────────────────────────────────────────────────────────

// Entrada sobre una clave sin registro: lo crea con la cantidad agregada.
func TestAddStock_CreaRegistro(t *testing.T) {
	h := newHarness(t)

	rec, err := h.uc.AddStock(context.Background(), inventory.AddStockCommand{
		ProductID:   productID,
		WarehouseID: warehouseW1,
		Quantity:    20,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.Quantity(20), rec.Quantity)
	assert.Equal(t, entity.StateWithStock, rec.State)
	stored, ok := h.stored(warehouseW1)
	require.True(t, ok, "el registro debe quedar persistido")
	assert.Equal(t, entity.Quantity(20), stored.Quantity)
}

func TestAddStock_SobreRegistroExistente(t *testing.T) {
	h := newHarness(t)
	h.seed(warehouseW1, 5, entity.StateLowStock)

	rec, err := h.uc.AddStock(context.Background(), inventory.AddStockCommand{
		ProductID:   productID,
		WarehouseID: warehouseW1,
		Quantity:    3,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.Quantity(8), rec.Quantity)
	assert.Equal(t, int64(2), rec.Version, "el update incrementa la versión")
	assert.Empty(t, h.publisher.published, "una entrada nunca publica alertas")
}

// La partición con vencimiento es independiente de la partición sin fecha:
// ambas conviven para el mismo producto y bodega.
func TestAddStock_ParticionConVencimiento(t *testing.T) {
	h := newHarness(t)
	h.seed(warehouseW1, 5, entity.StateWithStock)
	exp, err := entity.ParseExpiration("2026-09-01")
	require.NoError(t, err)

	rec, err := h.uc.AddStock(context.Background(), inventory.AddStockCommand{
		ProductID:   productID,
		WarehouseID: warehouseW1,
		Quantity:    7,
		Expiration:  exp,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.Quantity(7), rec.Quantity)
	undated, ok := h.stored(warehouseW1)
	require.True(t, ok)
	assert.Equal(t, entity.Quantity(5), undated.Quantity, "la partición sin fecha no se toca")
}

func TestAddStock_ProductoInexistente(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.AddStock(context.Background(), inventory.AddStockCommand{
		ProductID:   "11111111-1111-1111-1111-111111111111",
		WarehouseID: warehouseW1,
		Quantity:    5,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddStock_BodegaInexistente(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.AddStock(context.Background(), inventory.AddStockCommand{
		ProductID:   productID,
		WarehouseID: "11111111-1111-1111-1111-111111111111",
		Quantity:    5,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddStock_CantidadInvalida(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.AddStock(context.Background(), inventory.AddStockCommand{
		ProductID:   productID,
		WarehouseID: warehouseW1,
		Quantity:    0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// DecreaseStock
// ──────────────────────────────────────────────────────────────────────────────

// La alerta se publica solo después de que el update quedó confirmado en el store.
func TestDecreaseStock_PublicaDespuesDePersistir(t *testing.T) {
	h := newHarness(t)
	h.seed(warehouseW1, 15, entity.StateWithStock)

	rec, err := h.uc.DecreaseStock(context.Background(), inventory.DecreaseStockCommand{
		ProductID:   productID,
		WarehouseID: warehouseW1,
		Quantity:    10,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.Quantity(5), rec.Quantity)
	assert.Equal(t, entity.StateLowStock, rec.State)
	require.Len(t, h.publisher.published, 1)
	assert.Equal(t, event.NameLowStockDetected, h.publisher.published[0].Name)
	assert.Equal(t, companyID, h.publisher.published[0].CompanyID)
	assert.Equal(t, []string{"update:" + warehouseW1, "publish:" + event.NameLowStockDetected}, h.j.entries)
}

func TestDecreaseStock_SinRegistro(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.DecreaseStock(context.Background(), inventory.DecreaseStockCommand{
		ProductID:   productID,
		WarehouseID: warehouseW1,
		Quantity:    1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDecreaseStock_Insuficiente(t *testing.T) {
	h := newHarness(t)
	h.seed(warehouseW1, 3, entity.StateLowStock)

	_, err := h.uc.DecreaseStock(context.Background(), inventory.DecreaseStockCommand{
		ProductID:   productID,
		WarehouseID: warehouseW1,
		Quantity:    4,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	stored, _ := h.stored(warehouseW1)
	assert.Equal(t, entity.Quantity(3), stored.Quantity, "un intento inválido no muta el registro")
}

// Un conflicto de versión provoca relectura y reintento transparente.
func TestDecreaseStock_ReintentaEnConflicto(t *testing.T) {
	h := newHarness(t)
	h.seed(warehouseW1, 15, entity.StateWithStock)
	h.stock.conflicts[warehouseW1] = 1

	rec, err := h.uc.DecreaseStock(context.Background(), inventory.DecreaseStockCommand{
		ProductID:   productID,
		WarehouseID: warehouseW1,
		Quantity:    10,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.Quantity(5), rec.Quantity)
	assert.Contains(t, h.j.entries, "conflict:"+warehouseW1)
}

func TestDecreaseStock_ConflictoPersistente(t *testing.T) {
	h := newHarness(t)
	h.seed(warehouseW1, 15, entity.StateWithStock)
	h.stock.conflicts[warehouseW1] = 5

	_, err := h.uc.DecreaseStock(context.Background(), inventory.DecreaseStockCommand{
		ProductID:   productID,
		WarehouseID: warehouseW1,
		Quantity:    10,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	stored, _ := h.stored(warehouseW1)
	assert.Equal(t, entity.Quantity(15), stored.Quantity)
	assert.Empty(t, h.publisher.published, "sin persistencia no hay publicación")
}

// ──────────────────────────────────────────────────────────────────────────────
// Transfer
// ──────────────────────────────────────────────────────────────────────────────

// Traslado de 5 desde W1 (20) hacia W2 (sin registro): W1 queda en 15, W2 nace
// con 5 y la suma total se conserva.
func TestTransfer_Conservacion(t *testing.T) {
	h := newHarness(t)
	h.seed(warehouseW1, 20, entity.StateWithStock)

	rec, err := h.uc.Transfer(context.Background(), inventory.TransferCommand{
		ProductID:              productID,
		OriginWarehouseID:      warehouseW1,
		DestinationWarehouseID: warehouseW2,
		Quantity:               5,
	})
	require.NoError(t, err)

	assert.Equal(t, warehouseW1, rec.WarehouseID, "devuelve el registro de origen post-débito")
	assert.Equal(t, entity.Quantity(15), rec.Quantity)

	origin, _ := h.stored(warehouseW1)
	dest, ok := h.stored(warehouseW2)
	require.True(t, ok, "el destino se crea si no existía")
	assert.Equal(t, entity.Quantity(15), origin.Quantity)
	assert.Equal(t, entity.Quantity(5), dest.Quantity)
	assert.Equal(t, entity.StateWithStock, dest.State)
	assert.Equal(t, entity.Quantity(20), origin.Quantity+dest.Quantity, "la transferencia conserva el total")
}

func TestTransfer_MismaBodega(t *testing.T) {
	h := newHarness(t)
	h.seed(warehouseW1, 20, entity.StateWithStock)

	_, err := h.uc.Transfer(context.Background(), inventory.TransferCommand{
		ProductID:              productID,
		OriginWarehouseID:      warehouseW1,
		DestinationWarehouseID: warehouseW1,
		Quantity:               5,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	stored, _ := h.stored(warehouseW1)
	assert.Equal(t, entity.Quantity(20), stored.Quantity, "no muta nada")
	assert.Empty(t, h.j.entries)
}

// Las alertas generadas por el débito en origen se publican entre el débito y el crédito.
func TestTransfer_PublicaAlertasDelOrigen(t *testing.T) {
	h := newHarness(t)
	h.seed(warehouseW1, 12, entity.StateWithStock)

	_, err := h.uc.Transfer(context.Background(), inventory.TransferCommand{
		ProductID:              productID,
		OriginWarehouseID:      warehouseW1,
		DestinationWarehouseID: warehouseW2,
		Quantity:               5,
	})
	require.NoError(t, err)

	require.Len(t, h.publisher.published, 1)
	assert.Equal(t, event.NameLowStockDetected, h.publisher.published[0].Name)
	assert.Equal(t, []string{
		"update:" + warehouseW1,
		"publish:" + event.NameLowStockDetected,
		"insert:" + warehouseW2,
	}, h.j.entries)
}

// Si el crédito en destino falla tras confirmar el débito, la compensación
// reintegra el stock en origen y el comando devuelve el error del crédito.
func TestTransfer_CompensaCreditoFallido(t *testing.T) {
	h := newHarness(t)
	h.seed(warehouseW1, 20, entity.StateWithStock)
	boom := errors.New("destino caído")
	h.stock.insertErr[warehouseW2] = boom

	_, err := h.uc.Transfer(context.Background(), inventory.TransferCommand{
		ProductID:              productID,
		OriginWarehouseID:      warehouseW1,
		DestinationWarehouseID: warehouseW2,
		Quantity:               5,
	})
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrPartialTransfer)

	origin, _ := h.stored(warehouseW1)
	assert.Equal(t, entity.Quantity(20), origin.Quantity, "la compensación reintegra el débito")
	_, ok := h.stored(warehouseW2)
	assert.False(t, ok)
}

// Peor caso: crédito y compensación fallan. El comando reporta ErrPartialTransfer
// y el débito queda confirmado para reconciliación manual.
func TestTransfer_ParcialSinCompensacion(t *testing.T) {
	h := newHarness(t)
	h.seed(warehouseW1, 20, entity.StateWithStock)
	h.stock.insertErr[warehouseW2] = errors.New("destino caído")
	h.stock.updateErr[warehouseW1] = errors.New("base de datos caída")
	h.stock.updatesOK[warehouseW1] = 1 // el débito pasa; la compensación no

	_, err := h.uc.Transfer(context.Background(), inventory.TransferCommand{
		ProductID:              productID,
		OriginWarehouseID:      warehouseW1,
		DestinationWarehouseID: warehouseW2,
		Quantity:               5,
	})
	assert.ErrorIs(t, err, domain.ErrPartialTransfer)

	origin, _ := h.stored(warehouseW1)
	assert.Equal(t, entity.Quantity(15), origin.Quantity, "el débito quedó confirmado sin crédito")
}

func TestTransfer_OrigenSinRegistro(t *testing.T) {
	h := newHarness(t)

	_, err := h.uc.Transfer(context.Background(), inventory.TransferCommand{
		ProductID:              productID,
		OriginWarehouseID:      warehouseW1,
		DestinationWarehouseID: warehouseW2,
		Quantity:               5,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// DeleteRecord / GetRecord
// ──────────────────────────────────────────────────────────────────────────────

// La eliminación administrativa procede aunque queden existencias.
func TestDeleteRecord_ConExistencias(t *testing.T) {
	h := newHarness(t)
	h.seed(warehouseW1, 7, entity.StateLowStock)

	err := h.uc.DeleteRecord(context.Background(), inventory.DeleteRecordCommand{
		ProductID:   productID,
		WarehouseID: warehouseW1,
	})
	require.NoError(t, err)

	_, ok := h.stored(warehouseW1)
	assert.False(t, ok)
}

func TestDeleteRecord_Inexistente(t *testing.T) {
	h := newHarness(t)

	err := h.uc.DeleteRecord(context.Background(), inventory.DeleteRecordCommand{
		ProductID:   productID,
		WarehouseID: warehouseW1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetRecord(t *testing.T) {
	h := newHarness(t)
	h.seed(warehouseW1, 9, entity.StateLowStock)

	rec, err := h.uc.GetRecord(context.Background(), productID, warehouseW1, entity.NoExpiration())
	require.NoError(t, err)
	assert.Equal(t, entity.Quantity(9), rec.Quantity)

	_, err = h.uc.GetRecord(context.Background(), productID, warehouseW2, entity.NoExpiration())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
