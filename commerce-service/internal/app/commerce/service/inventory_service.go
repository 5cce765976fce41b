package service

import (
	"context"
	"errors"
	"fmt"

	"novemberapples/commerce-service/internal/app/commerce/entity"
	"novemberapples/commerce-service/internal/app/commerce/repository"
)

var (
	ErrInventoryNotFound = errors.New("inventory record not found")

	// ErrNegativeStock - коррекция увела бы остаток в минус
	ErrNegativeStock = errors.New("stock level cannot be negative")
)

// InventoryService обрабатывает операции склада: абсолютная установка
// остатка и относительная коррекция. Списание под заказ сюда не входит -
// оно выполняется только внутри протокола изменения заказа.
type InventoryService struct {
	inventoryRepo repository.InventoryRepository
}

// NewInventoryService создает новый сервис склада
func NewInventoryService(inventoryRepo repository.InventoryRepository) *InventoryService {
	return &InventoryService{inventoryRepo: inventoryRepo}
}

// ListInventory получает страницу остатков
func (s *InventoryService) ListInventory(ctx context.Context, offset, limit int) ([]entity.Inventory, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultOrdersLimit
	}
	if limit > maxOrdersLimit {
		limit = maxOrdersLimit
	}

	records, err := s.inventoryRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	return records, nil
}

// GetInventory получает остаток конкретного товара
func (s *InventoryService) GetInventory(ctx context.Context, productID int64) (*entity.Inventory, error) {
	record, err := s.inventoryRepo.GetByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrInventoryNotFound) {
			return nil, ErrInventoryNotFound
		}
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}

	return record, nil
}

// SetStock выставляет точное значение остатка (инвентаризация)
func (s *InventoryService) SetStock(ctx context.Context, productID int64, stock int) (*entity.Inventory, error) {
	record, err := s.inventoryRepo.SetAbsolute(ctx, productID, stock)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrNegativeStock):
			return nil, ErrNegativeStock
		}
		return nil, fmt.Errorf("failed to set stock: %w", err)
	}

	return record, nil
}

// AdjustStock корректирует остаток на delta: поступление или списание
func (s *InventoryService) AdjustStock(ctx context.Context, productID int64, delta int) (*entity.Inventory, error) {
	record, err := s.inventoryRepo.AdjustRelative(ctx, productID, delta)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInventoryNotFound):
			return nil, ErrInventoryNotFound
		case errors.Is(err, repository.ErrNegativeStock):
			return nil, ErrNegativeStock
		}
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	return record, nil
}
