package timeline

import (
	"net/http"
	"strconv"

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
		v1.GET("/timeline/:userId", h.GetTimeline)
	}
}

// GetTimeline godoc
// @Summary      Get a user's timeline
// @Description  Returns the messages of the user and of everyone they follow, newest first
// @Tags         timeline
// @Produce      json
// @Param        userId      path      string  true   "User ID"
// @Param        pageNumber  query     int     false  "Page number (default 1)"
// @Param        pageSize    query     int     false  "Page size (default 10)"
// @Success      200         {object}  Page
// @Failure      400         {object}  errors.ErrorResponse
// @Failure      404         {object}  errors.ErrorResponse
// @Failure      503         {object}  errors.ErrorResponse
// @Router       /timeline/{userId} [get]
func (h *Handler) GetTimeline(c *gin.Context) {
	pageNumber := queryInt(c, "pageNumber")
	pageSize := queryInt(c, "pageSize")

	page, err := h.Service.GetTimeline(c.Request.Context(), c.Param("userId"), pageNumber, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// queryInt returns 0 for absent or malformed values, which the service
// normalizes to its defaults.
func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}
