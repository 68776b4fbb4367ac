package messages

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flock/internal/handler"
	"flock/internal/logger"
)

type Handler struct {
	handler.BaseHandler
	Service Service
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		BaseHandler: handler.BaseHandler{Logger: log},
		Service:     service,
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/messages", h.CreateMessage)
	}
}

// CreateMessage godoc
// @Summary      Post a message
// @Description  Stores a message of at most 280 characters and publishes it for timeline fan-out
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        message  body      CreateMessageRequest  true  "Message data"
// @Success      201      {object}  MessageResponse
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      404      {object}  errors.ErrorResponse
// @Failure      503      {object}  errors.ErrorResponse
// @Router       /messages [post]
func (h *Handler) CreateMessage(c *gin.Context) {
	var req CreateMessageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.Service.CreateMessage(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
