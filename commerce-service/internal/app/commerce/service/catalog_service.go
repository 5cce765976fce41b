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

var (
	ErrCategoryNotFound = errors.New("category not found")
)

const categoriesCacheTTL = time.Hour

// CatalogService обрабатывает бизнес-логику каталога:
// дерево категорий (с кешем в Redis) и товары (с событиями в Kafka)
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cache        util.CategoryCache
	publisher    util.MessagePublisher
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache util.CategoryCache,
	publisher util.MessagePublisher,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
		publisher:    publisher,
	}
}

// === КАТЕГОРИИ ===

// CreateCategory создает категорию (path вычисляет репозиторий)
// и инвалидирует кеш списка категорий
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	category, err := s.categoryRepo.Create(ctx, req.Name, req.ParentID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			// Не найден указанный родитель
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCategoriesCache(ctx)

	return category, nil
}

// GetCategory получает категорию по ID, без кеша
func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// GetCategoryTree собирает полное дерево категорий в памяти.
// Плоский список берётся из кеша Redis, при промахе - из БД с прогревом кеша.
func (s *CatalogService) GetCategoryTree(ctx context.Context) ([]*entity.CategoryTreeNode, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err == nil && categories != nil {
		metrics.RecordCacheHit(serviceName, "categories")
		return buildCategoryTree(categories), nil
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read categories cache")
	}
	metrics.RecordCacheMiss(serviceName, "categories")

	categories, err = s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if err := s.cache.SetCategories(ctx, categories, categoriesCacheTTL); err != nil {
		// Данные уже получены из БД, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("Failed to cache categories")
	}

	return buildCategoryTree(categories), nil
}

// GetCategoryChildren получает прямых потомков категории
func (s *CatalogService) GetCategoryChildren(ctx context.Context, id int64) ([]entity.Category, error) {
	children, err := s.categoryRepo.GetChildren(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category children: %w", err)
	}

	return children, nil
}

// DeleteCategory удаляет категорию со всем поддеревом и инвалидирует кеш
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.invalidateCategoriesCache(ctx)

	return nil
}

// === ТОВАРЫ ===

// CreateProduct создает товар вместе со строкой остатков
func (s *CatalogService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	product := &entity.Product{
		Name:       req.Name,
		Price:      req.Price,
		CategoryID: req.CategoryID,
	}

	if err := s.productRepo.Create(ctx, product, req.InitialStock); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// GetProduct получает товар с текущим остатком
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// ListProducts получает страницу товаров
func (s *CatalogService) ListProducts(ctx context.Context, offset, limit int) ([]entity.Product, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultOrdersLimit
	}
	if limit > maxOrdersLimit {
		limit = maxOrdersLimit
	}

	products, err := s.productRepo.GetAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// UpdateProduct обновляет каталожные поля товара, не трогая остаток.
// Цена меняется независимо от исторических заказов: price_at_moment
// уже созданных позиций остаётся прежним.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, req *entity.UpdateProductRequest) (*entity.Product, error) {
	product := &entity.Product{
		ID:         id,
		Name:       req.Name,
		Price:      req.Price,
		CategoryID: req.CategoryID,
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.publishProductEvent(ctx, entity.EventProductUpdated, product)

	return product, nil
}

// DeleteProduct удаляет товар (остаток удаляется каскадом)
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// invalidateCategoriesCache сбрасывает кеш после изменения дерева.
// Изменение уже закоммичено, ошибка кеша не прерывает запрос.
func (s *CatalogService) invalidateCategoriesCache(ctx context.Context) {
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}
}

// publishProductEvent отправляет событие о товаре в Kafka, некритично к ошибкам
func (s *CatalogService) publishProductEvent(ctx context.Context, eventType string, product *entity.Product) {
	event := entity.ProductEvent{
		EventID:   uuid.New(),
		EventType: eventType,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to marshal product event")
		return
	}

	timer := metrics.NewKafkaProduceTimer(serviceName, "product_events")
	if err := s.publisher.PublishMessage(ctx, strconv.FormatInt(product.ID, 10), data); err != nil {
		timer.Error()
		logger.Warn().Err(err).
			Str("event_type", eventType).
			Int64("product_id", product.ID).
			Msg("Failed to publish product event")
		return
	}
	timer.Success()
}

// buildCategoryTree собирает дерево из плоского списка.
// Список отсортирован по path, поэтому родитель встречается раньше потомков.
func buildCategoryTree(categories []entity.Category) []*entity.CategoryTreeNode {
	nodes := make(map[int64]*entity.CategoryTreeNode, len(categories))
	tree := make([]*entity.CategoryTreeNode, 0)

	for _, c := range categories {
		nodes[c.ID] = &entity.CategoryTreeNode{
			ID:       c.ID,
			Name:     c.Name,
			ParentID: c.ParentID,
			Path:     c.Path,
			Children: []*entity.CategoryTreeNode{},
		}
	}

	for _, c := range categories {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		tree = append(tree, node)
	}

	return tree
}
