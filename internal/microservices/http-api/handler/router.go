package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
)

// Dependencies is everything the HTTP layer needs.
type Dependencies struct {
	Auth       service.AuthService
	Users      service.UserService
	Categories service.TaxonomyService
	Genres     service.TaxonomyService
	Titles     service.TitleService
	Reviews    service.ReviewService
	Comments   service.CommentService

	// UserRepo loads the caller on every authenticated request.
	UserRepo repository.UserRepository
	// Redis is optional; without it /auth is rate limited per process.
	Redis     *redis.Client
	RateLimit middleware.RateLimitConfig
	PageSize  int
	Logger    *slog.Logger
}

// NewRouter builds the engine serving /api/v1.
func NewRouter(d Dependencies) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}
	if d.PageSize < 1 {
		d.PageSize = 10
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	auth := api.Group("/auth", middleware.RateLimit(d.RateLimit, d.Redis, d.Logger))
	NewAuthHandler(d.Auth, d.Logger).RegisterRoutes(auth)

	// everything else accepts an optional bearer token
	v1 := api.Group("", middleware.Authenticate(d.Auth, d.UserRepo))
	NewUserHandler(d.Users, d.PageSize).RegisterRoutes(v1)
	NewTaxonomyHandler(d.Categories, "/categories", d.PageSize).RegisterRoutes(v1)
	NewTaxonomyHandler(d.Genres, "/genres", d.PageSize).RegisterRoutes(v1)
	NewTitleHandler(d.Titles, d.PageSize).RegisterRoutes(v1)
	NewReviewHandler(d.Reviews, d.PageSize).RegisterRoutes(v1)
	NewCommentHandler(d.Comments, d.PageSize).RegisterRoutes(v1)

	return r, nil
}
