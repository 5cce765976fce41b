package repository

import (
	"context"
	"errors"
	"fmt"

	"novemberapples/commerce-service/internal/app/commerce/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productRepository struct {
	db *pgxpool.Pool
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *pgxpool.Pool) ProductRepository {
	return &productRepository{db: db}
}

// Create создает товар вместе со строкой остатков (1:1) в одной транзакции.
// Запись inventory никогда не создается отдельно от товара.
func (r *productRepository) Create(ctx context.Context, product *entity.Product, initialStock int) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return translateStorageErr("begin create product", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO products (name, price, category_id)
		VALUES ($1, $2, $3)
		RETURNING id`,
		product.Name, product.Price, product.CategoryID,
	).Scan(&product.ID)
	if err != nil {
		if pgErrCode(err) == pgCodeForeignKeyViolation {
			return ErrCategoryNotFound
		}
		return translateStorageErr("create product", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO inventory (product_id, stock) VALUES ($1, $2)`,
		product.ID, initialStock,
	)
	if err != nil {
		if pgErrCode(err) == pgCodeCheckViolation {
			return ErrNegativeStock
		}
		return translateStorageErr("create inventory", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return translateStorageErr("commit create product", err)
	}

	product.Stock = initialStock
	return nil
}

// GetByID получает товар с текущим остатком
func (r *productRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	var product entity.Product
	err := r.db.QueryRow(ctx, `
		SELECT p.id, p.name, p.price, p.category_id, COALESCE(i.stock, 0)
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		WHERE p.id = $1`,
		id,
	).Scan(&product.ID, &product.Name, &product.Price, &product.CategoryID, &product.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, translateStorageErr("get product", err)
	}

	return &product, nil
}

// GetAll получает страницу товаров с остатками
func (r *productRepository) GetAll(ctx context.Context, offset, limit int) ([]entity.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, p.price, p.category_id, COALESCE(i.stock, 0)
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		ORDER BY p.id
		OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, translateStorageErr("list products", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var product entity.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Price,
			&product.CategoryID, &product.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Update обновляет каталожные поля товара, остатки не трогает.
// Изменение цены не затрагивает price_at_moment уже созданных позиций заказов.
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	err := r.db.QueryRow(ctx, `
		WITH updated AS (
			UPDATE products
			SET name = $1, price = $2, category_id = $3
			WHERE id = $4
			RETURNING id, name, price, category_id
		)
		SELECT u.id, u.name, u.price, u.category_id, COALESCE(i.stock, 0)
		FROM updated u
		LEFT JOIN inventory i ON i.product_id = u.id`,
		product.Name, product.Price, product.CategoryID, product.ID,
	).Scan(&product.ID, &product.Name, &product.Price, &product.CategoryID, &product.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		if pgErrCode(err) == pgCodeForeignKeyViolation {
			return ErrCategoryNotFound
		}
		return translateStorageErr("update product", err)
	}

	return nil
}

// Delete удаляет товар, его строка остатков удаляется каскадом
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return translateStorageErr("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}
