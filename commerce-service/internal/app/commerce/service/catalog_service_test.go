package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"novemberapples/commerce-service/internal/app/commerce/entity"
	"novemberapples/commerce-service/internal/app/commerce/repository"
	"novemberapples/commerce-service/internal/app/commerce/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCatalogServiceForTest() (*CatalogService, *mocks.MockCategoryRepository, *mocks.MockProductRepository, *mocks.MockCategoryCache, *mocks.MockMessagePublisher) {
	categoryRepo := new(mocks.MockCategoryRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockCategoryCache)
	publisher := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}
	return NewCatalogService(categoryRepo, productRepo, cache, publisher), categoryRepo, productRepo, cache, publisher
}

func int64Ptr(v int64) *int64 { return &v }

// ===================== Category Tests =====================

func TestCreateCategory_InvalidatesCache(t *testing.T) {
	// Arrange
	service, categoryRepo, _, cache, _ := newCatalogServiceForTest()
	ctx := context.Background()

	created := &entity.Category{ID: 1, Name: "Electronics", Path: "1"}
	categoryRepo.On("Create", ctx, "Electronics", (*int64)(nil)).Return(created, nil)
	cache.On("DeleteCategories", ctx).Return(nil)

	// Act
	result, err := service.CreateCategory(ctx, &entity.CreateCategoryRequest{Name: "Electronics"})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "1", result.Path)
	cache.AssertCalled(t, "DeleteCategories", ctx)
	categoryRepo.AssertExpectations(t)
}

func TestCreateCategory_ParentNotFound(t *testing.T) {
	// Arrange
	service, categoryRepo, _, cache, _ := newCatalogServiceForTest()
	ctx := context.Background()

	categoryRepo.On("Create", ctx, "Phones", int64Ptr(99)).Return(nil, repository.ErrCategoryNotFound)

	// Act
	result, err := service.CreateCategory(ctx, &entity.CreateCategoryRequest{Name: "Phones", ParentID: int64Ptr(99)})

	// Assert
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	cache.AssertNotCalled(t, "DeleteCategories", mock.Anything)
}

func TestGetCategoryTree_CacheHit(t *testing.T) {
	// Arrange
	service, categoryRepo, _, cache, _ := newCatalogServiceForTest()
	ctx := context.Background()

	flat := []entity.Category{
		{ID: 1, Name: "Electronics", Path: "1"},
		{ID: 2, Name: "Phones", ParentID: int64Ptr(1), Path: "1.2"},
	}
	cache.On("GetCategories", ctx).Return(flat, nil)

	// Act
	tree, err := service.GetCategoryTree(ctx)

	// Assert: БД не трогали
	assert.NoError(t, err)
	assert.Len(t, tree, 1)
	assert.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Phones", tree[0].Children[0].Name)
	categoryRepo.AssertNotCalled(t, "GetAll", mock.Anything)
}

func TestGetCategoryTree_CacheMissWarmsCache(t *testing.T) {
	// Arrange
	service, categoryRepo, _, cache, _ := newCatalogServiceForTest()
	ctx := context.Background()

	flat := []entity.Category{{ID: 1, Name: "Electronics", Path: "1"}}
	cache.On("GetCategories", ctx).Return(nil, nil)
	categoryRepo.On("GetAll", ctx).Return(flat, nil)
	cache.On("SetCategories", ctx, flat, categoriesCacheTTL).Return(nil)

	// Act
	tree, err := service.GetCategoryTree(ctx)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, tree, 1)
	cache.AssertExpectations(t)
	categoryRepo.AssertExpectations(t)
}

func TestGetCategoryTree_CacheErrorFallsBackToDB(t *testing.T) {
	// Arrange
	service, categoryRepo, _, cache, _ := newCatalogServiceForTest()
	ctx := context.Background()

	flat := []entity.Category{{ID: 1, Name: "Electronics", Path: "1"}}
	cache.On("GetCategories", ctx).Return(nil, errors.New("redis down"))
	categoryRepo.On("GetAll", ctx).Return(flat, nil)
	cache.On("SetCategories", ctx, flat, categoriesCacheTTL).Return(errors.New("redis down"))

	// Act
	tree, err := service.GetCategoryTree(ctx)

	// Assert: недоступность Redis не ломает запрос
	assert.NoError(t, err)
	assert.Len(t, tree, 1)
}

func TestDeleteCategory_NotFound(t *testing.T) {
	// Arrange
	service, categoryRepo, _, cache, _ := newCatalogServiceForTest()
	ctx := context.Background()

	categoryRepo.On("Delete", ctx, int64(99)).Return(repository.ErrCategoryNotFound)

	// Act
	err := service.DeleteCategory(ctx, 99)

	// Assert
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	cache.AssertNotCalled(t, "DeleteCategories", mock.Anything)
}

// ===================== buildCategoryTree Tests =====================

func TestBuildCategoryTree_NestedLevels(t *testing.T) {
	flat := []entity.Category{
		{ID: 1, Name: "Electronics", Path: "1"},
		{ID: 4, Name: "Phones", ParentID: int64Ptr(1), Path: "1.4"},
		{ID: 9, Name: "Smartphones", ParentID: int64Ptr(4), Path: "1.4.9"},
		{ID: 2, Name: "Books", Path: "2"},
	}

	tree := buildCategoryTree(flat)

	assert.Len(t, tree, 2)
	assert.Equal(t, "Electronics", tree[0].Name)
	assert.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Phones", tree[0].Children[0].Name)
	assert.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, "Smartphones", tree[0].Children[0].Children[0].Name)
	assert.Empty(t, tree[1].Children)
}

func TestBuildCategoryTree_Empty(t *testing.T) {
	tree := buildCategoryTree(nil)

	assert.NotNil(t, tree)
	assert.Empty(t, tree)
}

// ===================== Product Tests =====================

func TestCreateProduct_Success(t *testing.T) {
	// Arrange
	service, _, productRepo, _, _ := newCatalogServiceForTest()
	ctx := context.Background()

	productRepo.On("Create", ctx, mock.AnythingOfType("*entity.Product"), 15).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Product).ID = 10
			args.Get(1).(*entity.Product).Stock = 15
		}).
		Return(nil)

	// Act
	result, err := service.CreateProduct(ctx, &entity.CreateProductRequest{
		Name:         "Widget",
		Price:        19.99,
		InitialStock: 15,
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, int64(10), result.ID)
	assert.Equal(t, 15, result.Stock)
	productRepo.AssertExpectations(t)
}

func TestUpdateProduct_PublishesEvent(t *testing.T) {
	// Arrange
	service, _, productRepo, _, publisher := newCatalogServiceForTest()
	ctx := context.Background()

	productRepo.On("Update", ctx, mock.AnythingOfType("*entity.Product")).Return(nil)
	publisher.On("PublishMessage", ctx, "10", mock.Anything).Return(nil)

	// Act
	result, err := service.UpdateProduct(ctx, 10, &entity.UpdateProductRequest{
		Name:  "Widget v2",
		Price: 24.99,
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "Widget v2", result.Name)

	assert.Len(t, publisher.Messages, 1)
	var event entity.ProductEvent
	assert.NoError(t, json.Unmarshal(publisher.Messages[0], &event))
	assert.Equal(t, entity.EventProductUpdated, event.EventType)
	assert.Equal(t, 24.99, event.Price)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	// Arrange
	service, _, productRepo, _, publisher := newCatalogServiceForTest()
	ctx := context.Background()

	productRepo.On("Update", ctx, mock.AnythingOfType("*entity.Product")).Return(repository.ErrProductNotFound)

	// Act
	result, err := service.UpdateProduct(ctx, 99, &entity.UpdateProductRequest{Name: "X", Price: 1})

	// Assert
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, publisher.Messages)
}
