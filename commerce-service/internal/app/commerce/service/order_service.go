package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"novemberapples/commerce-service/internal/app/commerce/entity"
	"novemberapples/commerce-service/internal/app/commerce/repository"
	"novemberapples/commerce-service/internal/app/commerce/util"
	"novemberapples/pkg/logger"
	"novemberapples/pkg/metrics"

	"github.com/google/uuid"
)

const serviceName = "commerce"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrOrderNotFound   = errors.New("order not found")
	ErrClientNotFound  = errors.New("client not found")
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidQuantity - неположительное количество, отклоняется
	// до какого-либо обращения к хранилищу
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
)

const (
	defaultOrdersLimit = 20
	maxOrdersLimit     = 100
)

// OrderService обрабатывает бизнес-логику заказов.
// Протокол изменения заказа целиком живёт в репозитории (одна транзакция,
// блокировки строк); сервис валидирует вход, переводит ошибки и
// публикует события в Kafka после успешного коммита.
type OrderService struct {
	orderRepo repository.OrderRepository
	publisher util.MessagePublisher
}

// NewOrderService создает новый сервис заказов с внедрением зависимостей
func NewOrderService(orderRepo repository.OrderRepository, publisher util.MessagePublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
	}
}

// CreateOrder создает новый пустой заказ для клиента
func (s *OrderService) CreateOrder(ctx context.Context, clientID int64) (*entity.OrderSnapshot, error) {
	snapshot, err := s.orderRepo.Create(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	metrics.OrdersCreated.Inc()
	s.publishOrderEvent(ctx, entity.EventOrderCreated, snapshot)

	return snapshot, nil
}

// GetOrder получает снепшот заказа по ID
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*entity.OrderSnapshot, error) {
	snapshot, err := s.orderRepo.GetSnapshot(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return snapshot, nil
}

// ListOrders получает страницу заказов, новые первыми
func (s *OrderService) ListOrders(ctx context.Context, offset, limit int) ([]entity.OrderSnapshot, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultOrdersLimit
	}
	if limit > maxOrdersLimit {
		limit = maxOrdersLimit
	}

	snapshots, err := s.orderRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return snapshots, nil
}

// AddItem добавляет товар в заказ.
// Количество проверяется здесь, до обращения к хранилищу; всё остальное
// (блокировки, проверка остатка, слияние позиции, списание) выполняет
// репозиторий в одной транзакции.
func (s *OrderService) AddItem(ctx context.Context, orderID, productID int64, quantity int) (*entity.OrderSnapshot, error) {
	if quantity <= 0 {
		metrics.OrderItemsRejected.WithLabelValues("invalid_quantity").Inc()
		return nil, ErrInvalidQuantity
	}

	snapshot, err := s.orderRepo.AddItem(ctx, orderID, productID, quantity)
	if err != nil {
		var insufficient *repository.InsufficientStockError
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			metrics.OrderItemsRejected.WithLabelValues("not_found").Inc()
			return nil, ErrOrderNotFound
		case errors.Is(err, repository.ErrProductNotFound):
			metrics.OrderItemsRejected.WithLabelValues("not_found").Inc()
			return nil, ErrProductNotFound
		case errors.As(err, &insufficient):
			metrics.OrderItemsRejected.WithLabelValues("insufficient_stock").Inc()
			// Типизированная ошибка уходит выше: handler сообщает
			// доступное количество клиенту
			return nil, err
		case errors.Is(err, repository.ErrTransient):
			metrics.RecordRollback(serviceName, "transient")
			return nil, err
		}
		return nil, fmt.Errorf("failed to add item to order: %w", err)
	}

	metrics.OrderItemsAdded.Inc()
	s.publishOrderEvent(ctx, entity.EventOrderItemAdded, snapshot)

	return snapshot, nil
}

// DeleteOrder удаляет заказ вместе с позициями (каскад на уровне БД)
func (s *OrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	snapshot, err := s.orderRepo.GetSnapshot(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to get order: %w", err)
	}

	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.publishOrderEvent(ctx, entity.EventOrderDeleted, snapshot)

	return nil
}

// publishOrderEvent отправляет событие о заказе в Kafka.
// Заказ уже закоммичен, проблемы с Kafka не критичны - логируем и продолжаем.
func (s *OrderService) publishOrderEvent(ctx context.Context, eventType string, snapshot *entity.OrderSnapshot) {
	event := entity.OrderEvent{
		EventID:     uuid.New(),
		EventType:   eventType,
		OrderID:     snapshot.ID,
		ClientID:    snapshot.ClientID,
		Status:      snapshot.Status,
		ItemsCount:  len(snapshot.Items),
		TotalAmount: snapshot.TotalAmount,
		Timestamp:   time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to marshal order event")
		return
	}

	timer := metrics.NewKafkaProduceTimer(serviceName, "order_events")
	// Ключ = OrderID: события одного заказа сохраняют порядок в партиции
	if err := s.publisher.PublishMessage(ctx, strconv.FormatInt(snapshot.ID, 10), data); err != nil {
		timer.Error()
		logger.Warn().Err(err).
			Str("event_type", eventType).
			Int64("order_id", snapshot.ID).
			Msg("Failed to publish order event")
		return
	}
	timer.Success()
}
