package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"
)

type CommentHandler struct {
	commentService service.CommentService
	pageSize       int
}

func NewCommentHandler(commentService service.CommentService, pageSize int) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		pageSize:       pageSize,
	}
}

// RegisterRoutes registers comment routes nested under a review
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := middleware.RequireAuthenticated()
	comments := router.Group("/titles/:title_id/reviews/:review_id/comments")
	{
		comments.GET("/", h.List)
		comments.POST("/", authed, h.Create)
		comments.GET("/:comment_id/", h.Get)
		comments.PATCH("/:comment_id/", authed, h.Update)
		comments.DELETE("/:comment_id/", authed, h.Delete)
	}
}

// reviewPath parses the title and review ids shared by every comment route.
func reviewPath(c *gin.Context) (titleID, reviewID int64, ok bool) {
	if titleID, ok = paramID(c, "title_id"); !ok {
		return 0, 0, false
	}
	if reviewID, ok = paramID(c, "review_id"); !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

// GET /api/v1/titles/:title_id/reviews/:review_id/comments/
func (h *CommentHandler) List(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		return
	}
	limit, offset := pageParams(c, h.pageSize)
	comments, total, err := h.commentService.List(c.Request.Context(), titleID, reviewID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, comments, total, limit, offset)
}

func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "comment_id")
	if !ok {
		return
	}
	comment, err := h.commentService.Get(c.Request.Context(), titleID, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Create(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		return
	}
	var req dto.CreateCommentDTO
	if !bind(c, &req) {
		return
	}
	comment, err := h.commentService.Create(c.Request.Context(), middleware.Actor(c), titleID, reviewID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Update changes the text of the caller's comment (or any, for staff).
func (h *CommentHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "comment_id")
	if !ok {
		return
	}
	var req dto.UpdateCommentDTO
	if !bind(c, &req) {
		return
	}
	comment, err := h.commentService.Update(c.Request.Context(), middleware.Actor(c), titleID, reviewID, commentID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := reviewPath(c)
	if !ok {
		return
	}
	commentID, ok := paramID(c, "comment_id")
	if !ok {
		return
	}
	if err := h.commentService.Delete(c.Request.Context(), middleware.Actor(c), titleID, reviewID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
