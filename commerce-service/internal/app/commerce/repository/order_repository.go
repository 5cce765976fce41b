package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"novemberapples/commerce-service/internal/app/commerce/entity"
	"novemberapples/pkg/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Имя сервиса в лейблах метрик БД
const serviceName = "commerce"

// querier покрывает pgxpool.Pool и pgx.Tx, чтобы чтение снепшота
// работало как вне транзакции, так и внутри протокола добавления позиции
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type orderRepository struct {
	db *pgxpool.Pool // Пул соединений с PostgreSQL
}

// NewOrderRepository создает новый репозиторий заказов
func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &orderRepository{db: db}
}

// Create создает новый пустой заказ для клиента
func (r *orderRepository) Create(ctx context.Context, clientID int64) (*entity.OrderSnapshot, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO orders (client_id) VALUES ($1) RETURNING id`,
		clientID,
	).Scan(&id)
	if err != nil {
		if pgErrCode(err) == pgCodeForeignKeyViolation {
			return nil, ErrClientNotFound
		}
		return nil, translateStorageErr("create order", err)
	}

	return fetchSnapshot(ctx, r.db, id)
}

// GetSnapshot получает полное состояние заказа: шапку, позиции и итог
func (r *orderRepository) GetSnapshot(ctx context.Context, id int64) (*entity.OrderSnapshot, error) {
	return fetchSnapshot(ctx, r.db, id)
}

// List получает страницу заказов, новые первыми.
// Позиции всех заказов страницы загружаются одним запросом через ANY
// и группируются в памяти - без N+1 по числу заказов.
func (r *orderRepository) List(ctx context.Context, offset, limit int) ([]entity.OrderSnapshot, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "orders")
	defer timer.ObserveDuration()

	rows, err := r.db.Query(ctx, `
		SELECT id, client_id, status, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, translateStorageErr("list orders", err)
	}
	defer rows.Close()

	var snapshots []entity.OrderSnapshot
	var orderIDs []int64
	for rows.Next() {
		var s entity.OrderSnapshot
		if err := rows.Scan(&s.ID, &s.ClientID, &s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		s.Items = []entity.OrderItemView{}
		snapshots = append(snapshots, s)
		orderIDs = append(orderIDs, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(snapshots) == 0 {
		return []entity.OrderSnapshot{}, nil
	}

	itemRows, err := r.db.Query(ctx, `
		SELECT oi.order_id, oi.product_id, p.name, oi.qty, oi.price_at_moment, oi.amount
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY p.name ASC`,
		orderIDs,
	)
	if err != nil {
		return nil, translateStorageErr("list order items", err)
	}
	defer itemRows.Close()

	itemsByOrder := make(map[int64][]entity.OrderItemView)
	for itemRows.Next() {
		var orderID int64
		var item entity.OrderItemView
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.PriceAtMoment, &item.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		itemsByOrder[orderID] = append(itemsByOrder[orderID], item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	for i := range snapshots {
		if items, ok := itemsByOrder[snapshots[i].ID]; ok {
			snapshots[i].Items = items
		}
		snapshots[i].TotalAmount = snapshotTotal(snapshots[i].Items)
	}

	return snapshots, nil
}

// AddItem добавляет товар в заказ по протоколу Requested -> Validated -> Committed.
// Вся последовательность выполняется в одной транзакции с пессимистичными
// блокировками, блокировки снимаются при commit/rollback. Любая ошибка после
// захвата блокировок откатывает и upsert позиции, и списание остатка вместе.
func (r *orderRepository) AddItem(ctx context.Context, orderID, productID int64, quantity int) (*entity.OrderSnapshot, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpTx, "orders")
	defer timer.ObserveDuration()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpTx)
		return nil, translateStorageErr("begin add item", err)
	}
	// Rollback после успешного Commit - no-op
	defer tx.Rollback(ctx)

	// Порядок захвата блокировок фиксирован: сначала строка заказа,
	// затем строка товара+остатка. Обратный порядок в параллельном
	// запросе дал бы circular wait.
	var lockedOrderID int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM orders WHERE id = $1 FOR UPDATE`,
		orderID,
	).Scan(&lockedOrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, translateStorageErr("lock order", err)
	}

	// Цена для снепшота и остаток читаются под одной блокировкой:
	// цена не может измениться относительно решения по остатку
	var currentPrice float64
	var currentStock int
	err = tx.QueryRow(ctx, `
		SELECT p.price, i.stock
		FROM products p
		JOIN inventory i ON i.product_id = p.id
		WHERE p.id = $1
		FOR UPDATE`,
		productID,
	).Scan(&currentPrice, &currentStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, translateStorageErr("lock product", err)
	}

	if currentStock < quantity {
		// Rollback через defer: частичных эффектов нет
		return nil, &InsufficientStockError{Available: currentStock}
	}

	// Идемпотентное слияние: повторное добавление того же товара
	// накапливает количество в существующей строке, price_at_moment
	// при этом не перезаписывается (фиксируется при первой вставке)
	_, err = tx.Exec(ctx, `
		INSERT INTO order_items (order_id, product_id, qty, price_at_moment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id, product_id) DO UPDATE
		SET qty = order_items.qty + EXCLUDED.qty`,
		orderID, productID, quantity, currentPrice,
	)
	if err != nil {
		return nil, translateStorageErr("upsert order item", err)
	}

	// Достаточность уже проверена под блокировкой, списываем безусловно
	_, err = tx.Exec(ctx,
		`UPDATE inventory SET stock = stock - $1 WHERE product_id = $2`,
		quantity, productID,
	)
	if err != nil {
		return nil, translateStorageErr("decrement stock", err)
	}

	// Снепшот читается внутри той же транзакции: видит собственные
	// незакоммиченные изменения и консистентен с ними
	snapshot, err := fetchSnapshot(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpTx)
		return nil, translateStorageErr("commit add item", err)
	}

	return snapshot, nil
}

// Delete удаляет заказ, позиции удаляются каскадом на уровне БД.
// Товары и их остатки не затрагиваются.
func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return translateStorageErr("delete order", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// fetchSnapshot собирает снепшот заказа через переданный querier
// (пул или открытая транзакция)
func fetchSnapshot(ctx context.Context, q querier, id int64) (*entity.OrderSnapshot, error) {
	var s entity.OrderSnapshot
	err := q.QueryRow(ctx,
		`SELECT id, client_id, status, created_at FROM orders WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.ClientID, &s.Status, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, translateStorageErr("get order", err)
	}

	rows, err := q.Query(ctx, `
		SELECT oi.product_id, p.name, oi.qty, oi.price_at_moment, oi.amount
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY p.name ASC`,
		id,
	)
	if err != nil {
		return nil, translateStorageErr("get order items", err)
	}
	defer rows.Close()

	s.Items = []entity.OrderItemView{}
	for rows.Next() {
		var item entity.OrderItemView
		if err := rows.Scan(&item.ProductID, &item.ProductName,
			&item.Quantity, &item.PriceAtMoment, &item.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		s.Items = append(s.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	s.TotalAmount = snapshotTotal(s.Items)
	return &s, nil
}

// snapshotTotal считает итог заказа: сумма qty*price_at_moment по позициям,
// округлённая до двух знаков
func snapshotTotal(items []entity.OrderItemView) float64 {
	var total float64
	for _, item := range items {
		total += float64(item.Quantity) * item.PriceAtMoment
	}
	return round2(total)
}

// round2 округляет до 2 знаков по правилу half-up
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
