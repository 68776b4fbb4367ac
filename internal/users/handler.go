package users

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
		users := v1.Group("/users")
		{
			users.GET("", h.ListUsers)
			users.POST("", h.CreateUser)
			users.GET("/:id", h.GetUser)
			users.GET("/:id/followers", h.GetFollowers)
			users.GET("/:id/following", h.GetFollowing)
		}

		v1.POST("/follow", h.Follow)
		v1.DELETE("/unfollow", h.Unfollow)
	}
}

// ListUsers godoc
// @Summary      List users
// @Description  Get all users ordered by username
// @Tags         users
// @Produce      json
// @Success      200  {array}   User
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Service.ListUsers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user  body      CreateUserRequest  true  "User data"
// @Success      201   {object}  User
// @Failure      400   {object}  errors.ErrorResponse
// @Failure      409   {object}  errors.ErrorResponse
// @Failure      500   {object}  errors.ErrorResponse
// @Router       /users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.Service.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUser godoc
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  User
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.Service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetFollowers godoc
// @Summary      List the followers of a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {array}   User
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /users/{id}/followers [get]
func (h *Handler) GetFollowers(c *gin.Context) {
	users, err := h.Service.GetFollowers(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetFollowing godoc
// @Summary      List the users a user follows
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {array}   User
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /users/{id}/following [get]
func (h *Handler) GetFollowing(c *gin.Context) {
	users, err := h.Service.GetFollowing(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Follow godoc
// @Summary      Follow a user
// @Tags         follows
// @Accept       json
// @Param        follow  body  FollowRequest  true  "Follower and followed user"
// @Success      200
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Router       /follow [post]
func (h *Handler) Follow(c *gin.Context) {
	var req FollowRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.Service.Follow(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Unfollow godoc
// @Summary      Unfollow a user
// @Tags         follows
// @Accept       json
// @Param        follow  body  FollowRequest  true  "Follower and followed user"
// @Success      200
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      404  {object}  errors.ErrorResponse
// @Failure      409  {object}  errors.ErrorResponse
// @Router       /unfollow [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	var req FollowRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.Service.Unfollow(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
