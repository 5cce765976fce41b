package service

import (
	"context"
	"errors"
	"fmt"

	"novemberapples/commerce-service/internal/app/commerce/entity"
	"novemberapples/commerce-service/internal/app/commerce/repository"
)

// ClientService обрабатывает CRUD клиентов
type ClientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService создает новый сервис клиентов
func NewClientService(clientRepo repository.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// CreateClient создает нового клиента
func (s *ClientService) CreateClient(ctx context.Context, req *entity.CreateClientRequest) (*entity.Client, error) {
	client := &entity.Client{
		Name:    req.Name,
		Address: req.Address,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// GetClient получает клиента по ID
func (s *ClientService) GetClient(ctx context.Context, id int64) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return client, nil
}

// ListClients получает всех клиентов
func (s *ClientService) ListClients(ctx context.Context) ([]entity.Client, error) {
	clients, err := s.clientRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	return clients, nil
}

// DeleteClient удаляет клиента
func (s *ClientService) DeleteClient(ctx context.Context, id int64) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}

	return nil
}
