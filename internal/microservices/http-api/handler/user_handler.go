package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/service"
)

type UserHandler struct {
	userService service.UserService
	pageSize    int
}

func NewUserHandler(userService service.UserService, pageSize int) *UserHandler {
	return &UserHandler{userService: userService, pageSize: pageSize}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users", middleware.RequireAuthenticated())
	{
		users.GET("/", h.List)
		users.POST("/", h.Create)

		// the caller's own profile
		users.GET("/me/", h.GetMe)
		users.PATCH("/me/", h.UpdateMe)

		users.GET("/:username/", h.Get)
		users.PATCH("/:username/", h.Update)
		users.DELETE("/:username/", h.Delete)
	}
}

// GET /api/v1/users/?search=
func (h *UserHandler) List(c *gin.Context) {
	limit, offset := pageParams(c, h.pageSize)
	users, total, err := h.userService.List(c.Request.Context(), middleware.Actor(c), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, users, total, limit, offset)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.userService.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), middleware.Actor(c), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.userService.Update(c.Request.Context(), middleware.Actor(c), c.Param("username"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	username := c.Param("username")
	if username == models.ReservedUsername {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": `method "DELETE" not allowed`})
		return
	}
	if err := h.userService.Delete(c.Request.Context(), middleware.Actor(c), username); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/users/me/
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetMe(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PATCH /api/v1/users/me/; a submitted role is ignored
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateMeRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.userService.UpdateMe(c.Request.Context(), middleware.Actor(c), req.AsUserUpdate())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
