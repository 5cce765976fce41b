package service

import (
	"context"

	"novemberapples/commerce-service/internal/app/commerce/entity"
)

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, clientID int64) (*entity.OrderSnapshot, error)
	GetOrder(ctx context.Context, orderID int64) (*entity.OrderSnapshot, error)
	ListOrders(ctx context.Context, offset, limit int) ([]entity.OrderSnapshot, error)
	AddItem(ctx context.Context, orderID, productID int64, quantity int) (*entity.OrderSnapshot, error)
	DeleteOrder(ctx context.Context, orderID int64) error
}

type CatalogServiceInterface interface {
	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	GetCategory(ctx context.Context, id int64) (*entity.Category, error)
	GetCategoryTree(ctx context.Context) ([]*entity.CategoryTreeNode, error)
	GetCategoryChildren(ctx context.Context, id int64) ([]entity.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error)
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
	ListProducts(ctx context.Context, offset, limit int) ([]entity.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *entity.UpdateProductRequest) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type InventoryServiceInterface interface {
	ListInventory(ctx context.Context, offset, limit int) ([]entity.Inventory, error)
	GetInventory(ctx context.Context, productID int64) (*entity.Inventory, error)
	SetStock(ctx context.Context, productID int64, stock int) (*entity.Inventory, error)
	AdjustStock(ctx context.Context, productID int64, delta int) (*entity.Inventory, error)
}

type ClientServiceInterface interface {
	CreateClient(ctx context.Context, req *entity.CreateClientRequest) (*entity.Client, error)
	GetClient(ctx context.Context, id int64) (*entity.Client, error)
	ListClients(ctx context.Context) ([]entity.Client, error)
	DeleteClient(ctx context.Context, id int64) error
}
