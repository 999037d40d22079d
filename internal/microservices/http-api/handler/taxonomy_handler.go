package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"
)

// TaxonomyHandler serves /categories/ or /genres/, depending on path.
type TaxonomyHandler struct {
	service  service.TaxonomyService
	path     string
	pageSize int
}

func NewTaxonomyHandler(svc service.TaxonomyService, path string, pageSize int) *TaxonomyHandler {
	return &TaxonomyHandler{service: svc, path: path, pageSize: pageSize}
}

func (h *TaxonomyHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := middleware.RequireAuthenticated()
	group := router.Group(h.path)
	{
		group.GET("/", h.List)
		group.POST("/", authed, h.Create)
		group.DELETE("/:slug/", authed, h.Delete)
	}
}

// List supports ?search= on the name.
func (h *TaxonomyHandler) List(c *gin.Context) {
	limit, offset := pageParams(c, h.pageSize)
	list, total, err := h.service.List(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, list, total, limit, offset)
}

func (h *TaxonomyHandler) Create(c *gin.Context) {
	var req dto.CreateTaxonRequest
	if !bind(c, &req) {
		return
	}
	taxon, err := h.service.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taxon)
}

func (h *TaxonomyHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.Actor(c), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
