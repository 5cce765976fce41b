package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"novemberapples/commerce-service/internal/app/commerce/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type categoryRepository struct {
	db *pgxpool.Pool
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create создает категорию и вычисляет её materialized path.
// Path зависит от выданного БД id, поэтому запись происходит в два шага
// внутри одной транзакции: INSERT ради id, затем UPDATE path.
// Промежуточное состояние с пустым path читателям не видно.
func (r *categoryRepository) Create(ctx context.Context, name string, parentID *int64) (*entity.Category, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, translateStorageErr("begin create category", err)
	}
	defer tx.Rollback(ctx)

	parentPath := ""
	if parentID != nil {
		var path string
		err := tx.QueryRow(ctx,
			`SELECT path::text FROM categories WHERE id = $1`,
			*parentID,
		).Scan(&path)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrCategoryNotFound
			}
			return nil, translateStorageErr("get parent category", err)
		}
		parentPath = path + "."
	}

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO categories (name, parent_id) VALUES ($1, $2) RETURNING id`,
		name, parentID,
	).Scan(&id)
	if err != nil {
		// Гонка: родителя удалили между SELECT и INSERT
		if pgErrCode(err) == pgCodeForeignKeyViolation {
			return nil, ErrCategoryNotFound
		}
		return nil, translateStorageErr("create category", err)
	}

	newPath := parentPath + strconv.FormatInt(id, 10)
	_, err = tx.Exec(ctx,
		`UPDATE categories SET path = $1::ltree WHERE id = $2`,
		newPath, id,
	)
	if err != nil {
		return nil, translateStorageErr("set category path", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, translateStorageErr("commit create category", err)
	}

	return &entity.Category{
		ID:       id,
		Name:     name,
		ParentID: parentID,
		Path:     newPath,
	}, nil
}

// GetByID получает категорию по ID
func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	var category entity.Category
	err := r.db.QueryRow(ctx,
		`SELECT id, name, path::text, parent_id FROM categories WHERE id = $1`,
		id,
	).Scan(&category.ID, &category.Name, &category.Path, &category.ParentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, translateStorageErr("get category", err)
	}

	return &category, nil
}

// GetAll получает все категории в порядке path -
// родитель всегда раньше потомков, что упрощает сборку дерева
func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, path::text, parent_id FROM categories ORDER BY path`,
	)
	if err != nil {
		return nil, translateStorageErr("list categories", err)
	}
	defer rows.Close()

	var categories []entity.Category
	for rows.Next() {
		var category entity.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Path, &category.ParentID); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetChildren получает прямых потомков категории через ltree:
// вхождение в поддерево плюс ограничение глубины одним уровнем
func (r *categoryRepository) GetChildren(ctx context.Context, id int64) ([]entity.Category, error) {
	var parentPath string
	err := r.db.QueryRow(ctx,
		`SELECT path::text FROM categories WHERE id = $1`,
		id,
	).Scan(&parentPath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, translateStorageErr("get category", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, name, path::text, parent_id
		FROM categories
		WHERE path <@ $1::ltree AND nlevel(path) = nlevel($1::ltree) + 1
		ORDER BY name`,
		parentPath,
	)
	if err != nil {
		return nil, translateStorageErr("list category children", err)
	}
	defer rows.Close()

	var categories []entity.Category
	for rows.Next() {
		var category entity.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Path, &category.ParentID); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// Delete удаляет категорию; все потомки удаляются каскадом
// по FK parent_id, прикладной обход дерева не нужен
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return translateStorageErr("delete category", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
