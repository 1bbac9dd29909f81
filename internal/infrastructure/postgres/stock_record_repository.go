package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL.
// La columna expiration_date es nullable; NULL es la partición sin vencimiento y
// las consultas por clave usan IS NOT DISTINCT FROM para tratarla como valor.
type StockRecordRepo struct {
	pool *pgxpool.Pool
}

// NewStockRecordRepository construye el adaptador del libro de stock.
func NewStockRecordRepository(pool *pgxpool.Pool) *StockRecordRepo {
	return &StockRecordRepo{pool: pool}
}

const stockRecordColumns = `id, product_id, warehouse_id, expiration_date, quantity, state, version, created_at, updated_at`

// FindByKey obtiene el registro por clave compuesta; (nil, nil) si no existe.
func (r *StockRecordRepo) FindByKey(ctx context.Context, productID, warehouseID string, exp entity.ExpirationKey) (*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records
		WHERE product_id = $1 AND warehouse_id = $2 AND expiration_date IS NOT DISTINCT FROM $3`
	rec, err := scanStockRecord(r.pool.QueryRow(ctx, query, productID, warehouseID, exp.Ptr()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	return rec, nil
}

// Insert persiste un registro nuevo; domain.ErrDuplicate si la clave compuesta ya existe.
func (r *StockRecordRepo) Insert(ctx context.Context, rec *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (id, product_id, warehouse_id, expiration_date, quantity, state, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.ProductID, rec.WarehouseID, rec.Expiration.Ptr(),
		int64(rec.Quantity), string(rec.State), rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock record: %w", err)
	}
	return nil
}

// Update escribe cantidad y estado solo si la versión coincide (concurrencia optimista).
// Incrementa version en la fila y en rec. domain.ErrConflict si otro comando escribió
// primero; domain.ErrNotFound si el registro ya no existe.
func (r *StockRecordRepo) Update(ctx context.Context, rec *entity.StockRecord, expectedVersion int64) error {
	query := `
		UPDATE stock_records
		SET quantity = $2, state = $3, version = version + 1, updated_at = $4
		WHERE id = $1 AND version = $5
		RETURNING version`
	err := r.pool.QueryRow(ctx, query,
		rec.ID, int64(rec.Quantity), string(rec.State), rec.UpdatedAt, expectedVersion,
	).Scan(&rec.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.classifyUpdateMiss(ctx, rec.ID)
		}
		return fmt.Errorf("update stock record: %w", err)
	}
	return nil
}

// classifyUpdateMiss distingue desajuste de versión de registro inexistente.
func (r *StockRecordRepo) classifyUpdateMiss(ctx context.Context, id string) error {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_records WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check stock record: %w", err)
	}
	if exists {
		return domain.ErrConflict
	}
	return domain.ErrNotFound
}

// Delete elimina un registro por ID.
func (r *StockRecordRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM stock_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stock record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByWarehouse lista los registros de una bodega con paginación.
func (r *StockRecordRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.StockRecord, error) {
	query := `
		SELECT ` + stockRecordColumns + `
		FROM stock_records
		WHERE warehouse_id = $1
		ORDER BY product_id, expiration_date NULLS FIRST
		LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	defer rows.Close()

	var records []*entity.StockRecord
	for rows.Next() {
		rec, err := scanStockRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanStockRecord(row pgx.Row) (*entity.StockRecord, error) {
	var (
		rec      entity.StockRecord
		expDate  *time.Time
		quantity int64
		state    string
	)
	err := row.Scan(
		&rec.ID, &rec.ProductID, &rec.WarehouseID, &expDate,
		&quantity, &state, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Expiration = entity.ExpirationFromPtr(expDate)
	rec.Quantity = entity.Quantity(quantity)
	rec.State = entity.StockState(state)
	return &rec, nil
}
