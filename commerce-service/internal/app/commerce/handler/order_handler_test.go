package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"novemberapples/commerce-service/internal/app/commerce/entity"
	"novemberapples/commerce-service/internal/app/commerce/repository"
	"novemberapples/commerce-service/internal/app/commerce/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, clientID int64) (*entity.OrderSnapshot, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OrderSnapshot), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID int64) (*entity.OrderSnapshot, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OrderSnapshot), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, offset, limit int) ([]entity.OrderSnapshot, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.OrderSnapshot), args.Error(1)
}

func (m *MockOrderService) AddItem(ctx context.Context, orderID, productID int64, quantity int) (*entity.OrderSnapshot, error) {
	args := m.Called(ctx, orderID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OrderSnapshot), args.Error(1)
}

func (m *MockOrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func setupOrderRouter(orderService service.OrderServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	orderHandler := NewOrderHandler(orderService)
	orders := router.Group("/orders")
	{
		orders.POST("/", orderHandler.CreateOrder)
		orders.GET("/", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.POST("/:id/items", orderHandler.AddItem)
		orders.DELETE("/:id", orderHandler.DeleteOrder)
	}

	return router
}

// ===================== CreateOrder Tests =====================

func TestCreateOrderHandler_Success(t *testing.T) {
	orderService := new(MockOrderService)
	router := setupOrderRouter(orderService)

	snapshot := &entity.OrderSnapshot{
		ID:        1,
		ClientID:  42,
		Status:    "NEW",
		CreatedAt: time.Now(),
		Items:     []entity.OrderItemView{},
	}
	orderService.On("CreateOrder", mock.Anything, int64(42)).Return(snapshot, nil)

	body, _ := json.Marshal(entity.CreateOrderRequest{ClientID: 42})
	req := httptest.NewRequest(http.MethodPost, "/orders/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp entity.OrderResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "NEW", resp.Status)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
}

func TestCreateOrderHandler_MissingClientID(t *testing.T) {
	orderService := new(MockOrderService)
	router := setupOrderRouter(orderService)

	req := httptest.NewRequest(http.MethodPost, "/orders/", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	orderService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreateOrderHandler_ClientNotFound(t *testing.T) {
	orderService := new(MockOrderService)
	router := setupOrderRouter(orderService)

	orderService.On("CreateOrder", mock.Anything, int64(99)).Return(nil, service.ErrClientNotFound)

	body, _ := json.Marshal(entity.CreateOrderRequest{ClientID: 99})
	req := httptest.NewRequest(http.MethodPost, "/orders/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===================== AddItem Tests =====================

func TestAddItemHandler_Success(t *testing.T) {
	orderService := new(MockOrderService)
	router := setupOrderRouter(orderService)

	snapshot := &entity.OrderSnapshot{
		ID:       1,
		ClientID: 42,
		Status:   "NEW",
		Items: []entity.OrderItemView{
			{ProductID: 10, ProductName: "Widget", Quantity: 3, PriceAtMoment: 19.99, Amount: 59.97},
		},
		TotalAmount: 59.97,
	}
	orderService.On("AddItem", mock.Anything, int64(1), int64(10), 3).Return(snapshot, nil)

	body, _ := json.Marshal(entity.AddItemRequest{ProductID: 10, Quantity: 3})
	req := httptest.NewRequest(http.MethodPost, "/orders/1/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.OrderResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 59.97, resp.TotalAmount)
	assert.Equal(t, 19.99, resp.Items[0].PriceAtMoment)
}

func TestAddItemHandler_InsufficientStockReportsAvailable(t *testing.T) {
	orderService := new(MockOrderService)
	router := setupOrderRouter(orderService)

	orderService.On("AddItem", mock.Anything, int64(1), int64(10), 7).
		Return(nil, &repository.InsufficientStockError{Available: 5})

	body, _ := json.Marshal(entity.AddItemRequest{ProductID: 10, Quantity: 7})
	req := httptest.NewRequest(http.MethodPost, "/orders/1/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Available: 5")
}

func TestAddItemHandler_InvalidQuantity(t *testing.T) {
	orderService := new(MockOrderService)
	router := setupOrderRouter(orderService)

	orderService.On("AddItem", mock.Anything, int64(1), int64(10), -2).
		Return(nil, service.ErrInvalidQuantity)

	body, _ := json.Marshal(entity.AddItemRequest{ProductID: 10, Quantity: -2})
	req := httptest.NewRequest(http.MethodPost, "/orders/1/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "positive")
}

func TestAddItemHandler_TransientFailureReturns503(t *testing.T) {
	orderService := new(MockOrderService)
	router := setupOrderRouter(orderService)

	orderService.On("AddItem", mock.Anything, int64(1), int64(10), 1).
		Return(nil, repository.ErrTransient)

	body, _ := json.Marshal(entity.AddItemRequest{ProductID: 10, Quantity: 1})
	req := httptest.NewRequest(http.MethodPost, "/orders/1/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAddItemHandler_OrderNotFound(t *testing.T) {
	orderService := new(MockOrderService)
	router := setupOrderRouter(orderService)

	orderService.On("AddItem", mock.Anything, int64(99), int64(10), 1).
		Return(nil, service.ErrOrderNotFound)

	body, _ := json.Marshal(entity.AddItemRequest{ProductID: 10, Quantity: 1})
	req := httptest.NewRequest(http.MethodPost, "/orders/99/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddItemHandler_InvalidOrderID(t *testing.T) {
	orderService := new(MockOrderService)
	router := setupOrderRouter(orderService)

	body, _ := json.Marshal(entity.AddItemRequest{ProductID: 10, Quantity: 1})
	req := httptest.NewRequest(http.MethodPost, "/orders/abc/items", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	orderService.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// ===================== GetOrder / ListOrders Tests =====================

func TestGetOrderHandler_NotFound(t *testing.T) {
	orderService := new(MockOrderService)
	router := setupOrderRouter(orderService)

	orderService.On("GetOrder", mock.Anything, int64(99)).Return(nil, service.ErrOrderNotFound)

	req := httptest.NewRequest(http.MethodGet, "/orders/99", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListOrdersHandler_PassesPagination(t *testing.T) {
	orderService := new(MockOrderService)
	router := setupOrderRouter(orderService)

	snapshots := []entity.OrderSnapshot{
		{ID: 2, ClientID: 1, Status: "NEW", TotalAmount: 10.0},
		{ID: 1, ClientID: 1, Status: "NEW", TotalAmount: 20.0},
	}
	orderService.On("ListOrders", mock.Anything, 5, 10).Return(snapshots, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders/?offset=5&limit=10", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []entity.OrderResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
	assert.Equal(t, int64(2), resp[0].ID)
	orderService.AssertExpectations(t)
}

// ===================== DeleteOrder Tests =====================

func TestDeleteOrderHandler_Success(t *testing.T) {
	orderService := new(MockOrderService)
	router := setupOrderRouter(orderService)

	orderService.On("DeleteOrder", mock.Anything, int64(1)).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/orders/1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	orderService.AssertExpectations(t)
}
