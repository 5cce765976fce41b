package entity

import (
	"time"

	"github.com/google/uuid"
)

// Client представляет клиента магазина
// Заказы ссылаются на клиента, но его жизненный цикл от них не зависит
type Client struct {
	ID      int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name    string `json:"name" gorm:"type:text;not null"`
	Address string `json:"address" gorm:"type:text;not null;default:''"`
}

// TableName указывает имя таблицы для GORM
func (Client) TableName() string {
	return "clients"
}

// Category представляет узел дерева категорий
// Path - materialized path: цепочка id предков через точку, например "1.4.9"
// Path всегда согласован с цепочкой parent_id и вычисляется при создании
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
	Path     string `json:"path"`
}

// CategoryTreeNode - узел собранного в памяти дерева категорий
type CategoryTreeNode struct {
	ID       int64               `json:"id"`
	Name     string              `json:"name"`
	ParentID *int64              `json:"parent_id"`
	Path     string              `json:"path"`
	Children []*CategoryTreeNode `json:"children"`
}

// Product представляет товар каталога
// Price - текущая каталожная цена, меняется независимо от исторических заказов
// Stock читается из inventory через JOIN, товар без записи остатков отдаёт 0
type Product struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	CategoryID *int64  `json:"category_id"`
	Stock      int     `json:"stock"`
}

// Inventory представляет остаток товара на складе
// Инвариант stock >= 0 обеспечивается check-констрейнтом в БД
type Inventory struct {
	ProductID int64 `json:"product_id"`
	Stock     int   `json:"stock"`
}

// OrderSnapshot - полное консистентное состояние заказа:
// шапка, позиции (отсортированные по имени товара) и вычисленный итог
type OrderSnapshot struct {
	ID          int64           `json:"id"`
	ClientID    int64           `json:"client_id"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []OrderItemView `json:"items"`
	TotalAmount float64         `json:"total_amount"`
}

// OrderItemView - позиция заказа в снепшоте
// PriceAtMoment - цена товара на момент первого добавления позиции,
// последующие изменения каталожной цены её не затрагивают
type OrderItemView struct {
	ProductID     int64   `json:"product_id"`
	ProductName   string  `json:"product_name"`
	Quantity      int     `json:"quantity"`
	PriceAtMoment float64 `json:"price_at_moment"`
	Amount        float64 `json:"amount"`
}

// Типы событий для Kafka
const (
	EventOrderCreated   = "ORDER_CREATED"
	EventOrderItemAdded = "ORDER_ITEM_ADDED"
	EventOrderDeleted   = "ORDER_DELETED"
	EventProductUpdated = "PRODUCT_UPDATED"
)

// OrderEvent представляет событие изменения заказа для Kafka
type OrderEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	EventType   string    `json:"event_type"`
	OrderID     int64     `json:"order_id"`
	ClientID    int64     `json:"client_id"`
	Status      string    `json:"status"`
	ItemsCount  int       `json:"items_count"`
	TotalAmount float64   `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// ProductEvent представляет событие изменения товара для Kafka
type ProductEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType string    `json:"event_type"`
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}
