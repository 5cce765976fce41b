package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"novemberapples/pkg/logger"
	"novemberapples/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(
	clientHandler *ClientHandler,
	catalogHandler *CatalogHandler,
	inventoryHandler *InventoryHandler,
	orderHandler *OrderHandler,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("commerce-service"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "commerce-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Clients endpoints
	clients := router.Group("/clients")
	{
		clients.POST("/", clientHandler.CreateClient)      // Создать клиента
		clients.GET("/", clientHandler.ListClients)        // Список клиентов
		clients.GET("/:id", clientHandler.GetClient)       // Клиент по ID
		clients.DELETE("/:id", clientHandler.DeleteClient) // Удалить клиента
	}

	// Categories endpoints
	categories := router.Group("/categories")
	{
		categories.POST("/", catalogHandler.CreateCategory)                 // Создать категорию
		categories.GET("/", catalogHandler.GetCategoryTree)                 // Дерево категорий (кеш Redis)
		categories.GET("/:id", catalogHandler.GetCategory)                  // Категория по ID
		categories.GET("/:id/children", catalogHandler.GetCategoryChildren) // Прямые потомки категории
		categories.DELETE("/:id", catalogHandler.DeleteCategory)            // Удалить категорию
	}

	// Products endpoints
	products := router.Group("/products")
	{
		products.POST("/", catalogHandler.CreateProduct)      // Создать товар
		products.GET("/", catalogHandler.ListProducts)        // Список товаров с остатками
		products.GET("/:id", catalogHandler.GetProduct)       // Товар по ID
		products.PUT("/:id", catalogHandler.UpdateProduct)    // Обновить товар (отправляет событие в Kafka)
		products.DELETE("/:id", catalogHandler.DeleteProduct) // Удалить товар
	}

	// Inventory endpoints
	inventory := router.Group("/inventory")
	{
		inventory.GET("/", inventoryHandler.ListInventory)            // Остатки всех товаров
		inventory.GET("/:product_id", inventoryHandler.GetInventory)  // Остаток товара
		inventory.PUT("/:product_id", inventoryHandler.SetStock)      // Установить остаток
		inventory.PATCH("/:product_id", inventoryHandler.AdjustStock) // Изменить остаток
	}

	// Orders endpoints
	orders := router.Group("/orders")
	{
		orders.POST("/", orderHandler.CreateOrder)       // Создать заказ
		orders.GET("/", orderHandler.ListOrders)         // Страница заказов, новые первыми
		orders.GET("/:id", orderHandler.GetOrder)        // Заказ по ID со снепшотом позиций
		orders.POST("/:id/items", orderHandler.AddItem)  // Добавить товар в заказ
		orders.DELETE("/:id", orderHandler.DeleteOrder)  // Удалить заказ
	}

	return router
}
