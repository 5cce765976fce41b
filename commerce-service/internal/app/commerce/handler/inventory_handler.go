package handler

import (
	"errors"
	"net/http"
	"strconv"

	"novemberapples/commerce-service/internal/app/commerce/entity"
	"novemberapples/commerce-service/internal/app/commerce/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// InventoryHandler обрабатывает HTTP запросы для остатков товаров
type InventoryHandler struct {
	inventoryService service.InventoryServiceInterface
	validator        *validator.Validate
}

// NewInventoryHandler создает новый обработчик остатков
func NewInventoryHandler(inventoryService service.InventoryServiceInterface) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		validator:        validator.New(),
	}
}

// ListInventory обрабатывает GET /inventory/
func (h *InventoryHandler) ListInventory(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	inventory, err := h.inventoryService.ListInventory(c.Request.Context(), offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list inventory"})
		return
	}

	c.JSON(http.StatusOK, inventory)
}

// GetInventory обрабатывает GET /inventory/:product_id
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	record, err := h.inventoryService.GetInventory(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, service.ErrInventoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inventory record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get inventory"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// SetStock обрабатывает PUT /inventory/:product_id
// Устанавливает абсолютное значение остатка
func (h *InventoryHandler) SetStock(c *gin.Context) {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req entity.StockSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	record, err := h.inventoryService.SetStock(c.Request.Context(), productID, req.Stock)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, service.ErrNegativeStock):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Stock cannot be negative"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set stock"})
		}
		return
	}

	c.JSON(http.StatusOK, record)
}

// AdjustStock обрабатывает PATCH /inventory/:product_id
// Изменяет остаток на относительную величину, уход в минус отклоняется
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	productID, err := parseIDParam(c, "product_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req entity.StockAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	record, err := h.inventoryService.AdjustStock(c.Request.Context(), productID, req.ChangeBy)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInventoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Inventory record not found"})
		case errors.Is(err, service.ErrNegativeStock):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Resulting stock cannot be negative"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust stock"})
		}
		return
	}

	c.JSON(http.StatusOK, record)
}
