package repository

import (
	"context"
	"errors"

	"novemberapples/commerce-service/internal/app/commerce/entity"

	"gorm.io/gorm"
)

type clientRepository struct {
	db *gorm.DB // GORM DB для простого CRUD без блокировок
}

// NewClientRepository создает новый репозиторий клиентов
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

// Create создает нового клиента
func (r *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	result := r.db.WithContext(ctx).Create(client)
	return result.Error
}

// GetByID получает клиента по ID
func (r *clientRepository) GetByID(ctx context.Context, id int64) (*entity.Client, error) {
	var client entity.Client
	result := r.db.WithContext(ctx).First(&client, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, result.Error
	}

	return &client, nil
}

// GetAll получает всех клиентов
func (r *clientRepository) GetAll(ctx context.Context) ([]entity.Client, error) {
	var clients []entity.Client
	result := r.db.WithContext(ctx).Order("id").Find(&clients)

	if result.Error != nil {
		return nil, result.Error
	}

	return clients, nil
}

// Delete удаляет клиента
func (r *clientRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&entity.Client{}, "id = ?", id)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrClientNotFound
	}

	return nil
}
