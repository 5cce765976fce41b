package entity

import "time"

type CreateClientRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

type CreateCategoryRequest struct {
	Name     string `json:"name" validate:"required"`
	ParentID *int64 `json:"parent_id"`
}

type CreateProductRequest struct {
	Name         string  `json:"name" validate:"required"`
	Price        float64 `json:"price" validate:"gte=0"`
	CategoryID   *int64  `json:"category_id"`
	InitialStock int     `json:"initial_stock" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name       string  `json:"name" validate:"required"`
	Price      float64 `json:"price" validate:"gte=0"`
	CategoryID *int64  `json:"category_id"`
}

type StockSetRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}

type StockAdjustRequest struct {
	// Положительное значение - поступление, отрицательное - списание
	ChangeBy int `json:"change_by" validate:"required"`
}

type CreateOrderRequest struct {
	ClientID int64 `json:"client_id" validate:"required,gt=0"`
}

type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	// Положительность количества проверяет service layer до обращения к БД
	Quantity int `json:"quantity" validate:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type OrderResponse struct {
	ID          int64               `json:"id"`
	ClientID    int64               `json:"client_id"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	Items       []OrderItemResponse `json:"items"`
	TotalAmount float64             `json:"total_amount"`
}

type OrderItemResponse struct {
	ProductID     int64   `json:"product_id"`
	ProductName   string  `json:"product_name"`
	Quantity      int     `json:"quantity"`
	PriceAtMoment float64 `json:"price_at_moment"`
	Amount        float64 `json:"amount"`
}
