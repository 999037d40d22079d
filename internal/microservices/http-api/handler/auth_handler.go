package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/service"
)

type AuthHandler struct {
	authService service.AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/signup/", h.Signup)
	router.POST("/token/", h.Token)
	router.POST("/token/refresh/", h.RefreshToken)
	router.POST("/token/revoke/", h.RevokeToken)
}

// Signup mails a confirmation code, creating the account on first use.
// POST /api/v1/auth/signup/
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !bind(c, &req) {
		return
	}

	_, err := h.authService.Signup(c.Request.Context(), req.Email, req.Username)
	if errors.Is(err, service.ErrSignupMismatch) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    err.Error(),
			"email":    req.Email,
			"username": req.Username,
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SignupResponse{Email: req.Email, Username: req.Username})
}

// Token exchanges a confirmation code for an access and refresh token.
// POST /api/v1/auth/token/
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if !bind(c, &req) {
		return
	}

	accessToken, refreshToken, err := h.authService.ExchangeCode(c.Request.Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// RefreshToken issues a new access token; the refresh token is kept.
// POST /api/v1/auth/token/refresh/
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !bind(c, &req) {
		return
	}

	accessToken, err := h.authService.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RefreshResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.authService.AccessTokenTTL().Seconds()),
	})
}

// POST /api/v1/auth/token/revoke/
func (h *AuthHandler) RevokeToken(c *gin.Context) {
	var req dto.RevokeTokenRequest
	if !bind(c, &req) {
		return
	}

	if err := h.authService.RevokeToken(c.Request.Context(), req.RefreshToken); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "revoke refresh token", "error", err)
	}

	// always return success response to avoid token fishing
	c.JSON(http.StatusOK, dto.RevokeTokenResponse{
		Message: "refresh token revoked",
	})
}
