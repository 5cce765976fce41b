package repository

import (
	"context"

	"novemberapples/commerce-service/internal/app/commerce/entity"
)

type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id int64) (*entity.Client, error)
	GetAll(ctx context.Context) ([]entity.Client, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	Create(ctx context.Context, name string, parentID *int64) (*entity.Category, error)
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	GetChildren(ctx context.Context, id int64) ([]entity.Category, error)
	Delete(ctx context.Context, id int64) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product, initialStock int) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetAll(ctx context.Context, offset, limit int) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id int64) error
}

type InventoryRepository interface {
	List(ctx context.Context, offset, limit int) ([]entity.Inventory, error)
	GetByProduct(ctx context.Context, productID int64) (*entity.Inventory, error)
	SetAbsolute(ctx context.Context, productID int64, stock int) (*entity.Inventory, error)
	AdjustRelative(ctx context.Context, productID int64, delta int) (*entity.Inventory, error)
	ListBelow(ctx context.Context, threshold int) ([]entity.Inventory, error)
}

type OrderRepository interface {
	Create(ctx context.Context, clientID int64) (*entity.OrderSnapshot, error)
	GetSnapshot(ctx context.Context, id int64) (*entity.OrderSnapshot, error)
	List(ctx context.Context, offset, limit int) ([]entity.OrderSnapshot, error)
	AddItem(ctx context.Context, orderID, productID int64, quantity int) (*entity.OrderSnapshot, error)
	Delete(ctx context.Context, id int64) error
}
