package repository

import (
	"context"
	"errors"
	"fmt"

	"novemberapples/commerce-service/internal/app/commerce/entity"
	"novemberapples/pkg/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type inventoryRepository struct {
	db *pgxpool.Pool
}

// NewInventoryRepository создает новый репозиторий остатков
func NewInventoryRepository(db *pgxpool.Pool) InventoryRepository {
	return &inventoryRepository{db: db}
}

// List получает страницу остатков, отсортированных по товару
func (r *inventoryRepository) List(ctx context.Context, offset, limit int) ([]entity.Inventory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT product_id, stock FROM inventory ORDER BY product_id OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, translateStorageErr("list inventory", err)
	}
	defer rows.Close()

	var records []entity.Inventory
	for rows.Next() {
		var inv entity.Inventory
		if err := rows.Scan(&inv.ProductID, &inv.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		records = append(records, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory: %w", err)
	}

	return records, nil
}

// GetByProduct получает остаток конкретного товара
func (r *inventoryRepository) GetByProduct(ctx context.Context, productID int64) (*entity.Inventory, error) {
	var inv entity.Inventory
	err := r.db.QueryRow(ctx,
		`SELECT product_id, stock FROM inventory WHERE product_id = $1`,
		productID,
	).Scan(&inv.ProductID, &inv.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInventoryNotFound
		}
		return nil, translateStorageErr("get inventory", err)
	}

	return &inv, nil
}

// SetAbsolute выставляет точное значение остатка (инвентаризация, коррекция).
// Upsert: запись создается, если её ещё не было. Отсутствие самого товара
// проявляется как FK violation и переводится в доменную ошибку.
func (r *inventoryRepository) SetAbsolute(ctx context.Context, productID int64, stock int) (*entity.Inventory, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "inventory")
	defer timer.ObserveDuration()

	var inv entity.Inventory
	err := r.db.QueryRow(ctx, `
		INSERT INTO inventory (product_id, stock)
		VALUES ($1, $2)
		ON CONFLICT (product_id) DO UPDATE
		SET stock = EXCLUDED.stock
		RETURNING product_id, stock`,
		productID, stock,
	).Scan(&inv.ProductID, &inv.Stock)
	if err != nil {
		switch pgErrCode(err) {
		case pgCodeForeignKeyViolation:
			return nil, ErrProductNotFound
		case pgCodeCheckViolation:
			return nil, ErrNegativeStock
		}
		return nil, translateStorageErr("set stock", err)
	}

	return &inv, nil
}

// AdjustRelative атомарно изменяет остаток на delta (поступление или списание).
// Уход в минус режет check-констрейнт БД, а не прикладная проверка -
// ошибка переводится, но не проглатывается.
func (r *inventoryRepository) AdjustRelative(ctx context.Context, productID int64, delta int) (*entity.Inventory, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "inventory")
	defer timer.ObserveDuration()

	var inv entity.Inventory
	err := r.db.QueryRow(ctx, `
		UPDATE inventory
		SET stock = stock + $1
		WHERE product_id = $2
		RETURNING product_id, stock`,
		delta, productID,
	).Scan(&inv.ProductID, &inv.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInventoryNotFound
		}
		if pgErrCode(err) == pgCodeCheckViolation {
			return nil, ErrNegativeStock
		}
		return nil, translateStorageErr("adjust stock", err)
	}

	return &inv, nil
}

// ListBelow получает товары с остатком ниже порога, используется монитором склада
func (r *inventoryRepository) ListBelow(ctx context.Context, threshold int) ([]entity.Inventory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT product_id, stock FROM inventory WHERE stock < $1 ORDER BY stock ASC`,
		threshold,
	)
	if err != nil {
		return nil, translateStorageErr("list low stock", err)
	}
	defer rows.Close()

	var records []entity.Inventory
	for rows.Next() {
		var inv entity.Inventory
		if err := rows.Scan(&inv.ProductID, &inv.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		records = append(records, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory: %w", err)
	}

	return records, nil
}
