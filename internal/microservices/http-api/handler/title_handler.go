package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
)

type TitleHandler struct {
	titleService service.TitleService
	pageSize     int
}

func NewTitleHandler(titleService service.TitleService, pageSize int) *TitleHandler {
	return &TitleHandler{titleService: titleService, pageSize: pageSize}
}

func (h *TitleHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := middleware.RequireAuthenticated()
	titles := router.Group("/titles")
	{
		titles.GET("/", h.List)
		titles.POST("/", authed, h.Create)
		titles.GET("/:title_id/", h.Get)
		titles.PATCH("/:title_id/", authed, h.Update)
		titles.DELETE("/:title_id/", authed, h.Delete)
	}
}

// List filters by ?name=, ?category=, ?genre= (contains) and ?year= (exact).
// GET /api/v1/titles/
func (h *TitleHandler) List(c *gin.Context) {
	filter := repository.TitleFilter{
		Name:     c.Query("name"),
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, service.NewValidationError("year", "enter a whole number"))
			return
		}
		filter.Year = &year
	}

	limit, offset := pageParams(c, h.pageSize)
	titles, total, err := h.titleService.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, titles, total, limit, offset)
}

func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "title_id")
	if !ok {
		return
	}
	title, err := h.titleService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, title)
}

func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.CreateTitleRequest
	if !bind(c, &req) {
		return
	}
	title, err := h.titleService.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, title)
}

func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "title_id")
	if !ok {
		return
	}
	var req dto.UpdateTitleRequest
	if !bind(c, &req) {
		return
	}
	title, err := h.titleService.Update(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, title)
}

func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "title_id")
	if !ok {
		return
	}
	if err := h.titleService.Delete(c.Request.Context(), middleware.Actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
