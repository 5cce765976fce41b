package service

import (
	"context"
	"testing"

	"novemberapples/commerce-service/internal/app/commerce/entity"
	"novemberapples/commerce-service/internal/app/commerce/repository"
	"novemberapples/commerce-service/internal/app/commerce/repository/mocks"

	"github.com/stretchr/testify/assert"
)

func newInventoryServiceForTest() (*InventoryService, *mocks.MockInventoryRepository) {
	inventoryRepo := new(mocks.MockInventoryRepository)
	return NewInventoryService(inventoryRepo), inventoryRepo
}

func TestSetStock_Success(t *testing.T) {
	// Arrange
	service, inventoryRepo := newInventoryServiceForTest()
	ctx := context.Background()

	inventoryRepo.On("SetAbsolute", ctx, int64(10), 25).
		Return(&entity.Inventory{ProductID: 10, Stock: 25}, nil)

	// Act
	record, err := service.SetStock(ctx, 10, 25)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 25, record.Stock)
	inventoryRepo.AssertExpectations(t)
}

func TestSetStock_ProductNotFound(t *testing.T) {
	// Arrange
	service, inventoryRepo := newInventoryServiceForTest()
	ctx := context.Background()

	inventoryRepo.On("SetAbsolute", ctx, int64(99), 5).Return(nil, repository.ErrProductNotFound)

	// Act
	record, err := service.SetStock(ctx, 99, 5)

	// Assert
	assert.Nil(t, record)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAdjustStock_Success(t *testing.T) {
	// Arrange
	service, inventoryRepo := newInventoryServiceForTest()
	ctx := context.Background()

	inventoryRepo.On("AdjustRelative", ctx, int64(10), -3).
		Return(&entity.Inventory{ProductID: 10, Stock: 7}, nil)

	// Act
	record, err := service.AdjustStock(ctx, 10, -3)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 7, record.Stock)
}

func TestAdjustStock_WouldGoNegative(t *testing.T) {
	// Arrange
	service, inventoryRepo := newInventoryServiceForTest()
	ctx := context.Background()

	inventoryRepo.On("AdjustRelative", ctx, int64(10), -50).Return(nil, repository.ErrNegativeStock)

	// Act
	record, err := service.AdjustStock(ctx, 10, -50)

	// Assert
	assert.Nil(t, record)
	assert.ErrorIs(t, err, ErrNegativeStock)
}

func TestAdjustStock_RecordNotFound(t *testing.T) {
	// Arrange
	service, inventoryRepo := newInventoryServiceForTest()
	ctx := context.Background()

	inventoryRepo.On("AdjustRelative", ctx, int64(99), 1).Return(nil, repository.ErrInventoryNotFound)

	// Act
	record, err := service.AdjustStock(ctx, 99, 1)

	// Assert
	assert.Nil(t, record)
	assert.ErrorIs(t, err, ErrInventoryNotFound)
}

func TestListInventory_NormalizesPagination(t *testing.T) {
	// Arrange
	service, inventoryRepo := newInventoryServiceForTest()
	ctx := context.Background()

	inventoryRepo.On("List", ctx, 0, defaultOrdersLimit).Return([]entity.Inventory{}, nil)

	// Act
	records, err := service.ListInventory(ctx, -1, -1)

	// Assert
	assert.NoError(t, err)
	assert.Empty(t, records)
	inventoryRepo.AssertExpectations(t)
}
