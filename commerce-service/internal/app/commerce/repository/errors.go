package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrClientNotFound    = errors.New("client not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInventoryNotFound = errors.New("inventory record not found")
	ErrOrderNotFound     = errors.New("order not found")

	// ErrNegativeStock - операция привела бы к отрицательному остатку
	// (нарушение check-констрейнта stock >= 0)
	ErrNegativeStock = errors.New("stock level cannot be negative")

	// ErrConflict - непредвиденное нарушение uniqueness/check констрейнта
	ErrConflict = errors.New("storage conflict")

	// ErrTransient - deadlock или таймаут ожидания блокировки,
	// запрос безопасно повторить целиком
	ErrTransient = errors.New("transient storage failure")
)

// InsufficientStockError возвращается протоколом добавления позиции,
// когда запрошенное количество превышает текущий остаток
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock, available: %d", e.Available)
}

// Коды ошибок PostgreSQL, которые репозитории переводят в доменные
const (
	pgCodeForeignKeyViolation = "23503"
	pgCodeUniqueViolation     = "23505"
	pgCodeCheckViolation      = "23514"
	pgCodeSerializationFail   = "40001"
	pgCodeDeadlockDetected    = "40P01"
	pgCodeLockNotAvailable    = "55P03"
)

// pgErrCode возвращает SQLSTATE код ошибки PostgreSQL, либо пустую строку
func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// translateStorageErr переводит ошибку хранилища в доменную таксономию.
// Констрейнты, которые вызывающий код ожидает сам (FK при upsert остатков,
// check при списании), обрабатываются до вызова этой функции; сюда попадает
// только непредвиденное. Сырые ошибки PostgreSQL наружу не выходят.
func translateStorageErr(op string, err error) error {
	switch pgErrCode(err) {
	case pgCodeSerializationFail, pgCodeDeadlockDetected, pgCodeLockNotAvailable:
		return fmt.Errorf("%s: %w", op, ErrTransient)
	case pgCodeUniqueViolation, pgCodeCheckViolation, pgCodeForeignKeyViolation:
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
