package handler

import (
	"errors"
	"net/http"

	"novemberapples/commerce-service/internal/app/commerce/entity"
	"novemberapples/commerce-service/internal/app/commerce/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ClientHandler обрабатывает HTTP запросы для клиентов
type ClientHandler struct {
	clientService service.ClientServiceInterface
	validator     *validator.Validate
}

// NewClientHandler создает новый обработчик клиентов
func NewClientHandler(clientService service.ClientServiceInterface) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		validator:     validator.New(),
	}
}

// CreateClient обрабатывает POST /clients/
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req entity.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create client"})
		return
	}

	c.JSON(http.StatusCreated, client)
}

// ListClients обрабатывает GET /clients/
func (h *ClientHandler) ListClients(c *gin.Context) {
	clients, err := h.clientService.ListClients(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list clients"})
		return
	}

	c.JSON(http.StatusOK, clients)
}

// GetClient обрабатывает GET /clients/:id
func (h *ClientHandler) GetClient(c *gin.Context) {
	clientID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID"})
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), clientID)
	if err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get client"})
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient обрабатывает DELETE /clients/:id
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	clientID, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid client ID"})
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), clientID); err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete client"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Client deleted successfully"})
}
