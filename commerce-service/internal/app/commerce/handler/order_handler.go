package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"novemberapples/commerce-service/internal/app/commerce/entity"
	"novemberapples/commerce-service/internal/app/commerce/repository"
	"novemberapples/commerce-service/internal/app/commerce/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// OrderHandler обрабатывает HTTP запросы для заказов
type OrderHandler struct {
	orderService service.OrderServiceInterface
	validator    *validator.Validate
}

// NewOrderHandler создает новый обработчик заказов
func NewOrderHandler(orderService service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validator:    validator.New(),
	}
}

// CreateOrder обрабатывает POST /orders/
// Создает новый пустой заказ для клиента
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req entity.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	snapshot, err := h.orderService.CreateOrder(c.Request.Context(), req.ClientID)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	c.JSON(http.StatusCreated, buildOrderResponse(snapshot))
}

// ListOrders обрабатывает GET /orders/
// Получает страницу заказов, новые первыми; позиции всех заказов
// страницы загружаются одним запросом (без N+1)
func (h *OrderHandler) ListOrders(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	snapshots, err := h.orderService.ListOrders(c.Request.Context(), offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	responses := make([]entity.OrderResponse, len(snapshots))
	for i := range snapshots {
		responses[i] = buildOrderResponse(&snapshots[i])
	}

	c.JSON(http.StatusOK, responses)
}

// GetOrder обрабатывает GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	snapshot, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order"})
		return
	}

	c.JSON(http.StatusOK, buildOrderResponse(snapshot))
}

// AddItem обрабатывает POST /orders/:id/items
// Добавляет товар в заказ по протоколу с блокировками и проверкой остатка
func (h *OrderHandler) AddItem(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req entity.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	snapshot, err := h.orderService.AddItem(c.Request.Context(), orderID, req.ProductID, req.Quantity)
	if err != nil {
		var insufficient *repository.InsufficientStockError
		switch {
		case errors.Is(err, service.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be a positive integer"})
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.As(err, &insufficient):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Insufficient stock. Available: %d", insufficient.Available),
			})
		case errors.Is(err, repository.ErrTransient):
			// Deadlock или таймаут блокировки: состояние не повреждено,
			// клиент может повторить запрос целиком
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Temporary storage failure, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to order"})
		}
		return
	}

	c.JSON(http.StatusOK, buildOrderResponse(snapshot))
}

// DeleteOrder обрабатывает DELETE /orders/:id
// Позиции заказа удаляются каскадом, товары и остатки не затрагиваются
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), orderID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Order deleted successfully"})
}

// buildOrderResponse формирует ответ со снепшотом заказа
func buildOrderResponse(snapshot *entity.OrderSnapshot) entity.OrderResponse {
	items := make([]entity.OrderItemResponse, len(snapshot.Items))
	for i, item := range snapshot.Items {
		items[i] = entity.OrderItemResponse{
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			Quantity:      item.Quantity,
			PriceAtMoment: item.PriceAtMoment,
			Amount:        item.Amount,
		}
	}

	return entity.OrderResponse{
		ID:          snapshot.ID,
		ClientID:    snapshot.ClientID,
		Status:      snapshot.Status,
		CreatedAt:   snapshot.CreatedAt,
		Items:       items,
		TotalAmount: snapshot.TotalAmount,
	}
}

// parseIDParam извлекает числовой ID из параметра маршрута
func parseIDParam(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// formatValidationError форматирует ошибки валидации
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
