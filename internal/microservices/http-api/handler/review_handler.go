package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"
)

type ReviewHandler struct {
	reviewService service.ReviewService
	pageSize      int
}

func NewReviewHandler(reviewService service.ReviewService, pageSize int) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, pageSize: pageSize}
}

// RegisterRoutes registers review routes nested under a title
func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := middleware.RequireAuthenticated()
	reviews := router.Group("/titles/:title_id/reviews")
	{
		reviews.GET("/", h.List)
		reviews.POST("/", authed, h.Create)
		reviews.GET("/:review_id/", h.Get)
		reviews.PATCH("/:review_id/", authed, h.Update)
		reviews.DELETE("/:review_id/", authed, h.Delete)
	}
}

// GET /api/v1/titles/:title_id/reviews/
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := paramID(c, "title_id")
	if !ok {
		return
	}
	limit, offset := pageParams(c, h.pageSize)
	reviews, total, err := h.reviewService.List(c.Request.Context(), titleID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, reviews, total, limit, offset)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, ok := paramID(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := paramID(c, "review_id")
	if !ok {
		return
	}
	review, err := h.reviewService.Get(c.Request.Context(), titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// Create posts the caller's review; one per title.
// POST /api/v1/titles/:title_id/reviews/
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, ok := paramID(c, "title_id")
	if !ok {
		return
	}
	var req dto.CreateReviewDTO
	if !bind(c, &req) {
		return
	}
	review, err := h.reviewService.Create(c.Request.Context(), middleware.Actor(c), titleID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, ok := paramID(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := paramID(c, "review_id")
	if !ok {
		return
	}
	var req dto.UpdateReviewDTO
	if !bind(c, &req) {
		return
	}
	review, err := h.reviewService.Update(c.Request.Context(), middleware.Actor(c), titleID, reviewID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, ok := paramID(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := paramID(c, "review_id")
	if !ok {
		return
	}
	if err := h.reviewService.Delete(c.Request.Context(), middleware.Actor(c), titleID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
