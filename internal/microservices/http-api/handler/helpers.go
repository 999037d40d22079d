package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/service"
)

// InvalidConfirmationMessage is the body error for a rejected confirmation code.
const InvalidConfirmationMessage = "Invalid token."

// respondError writes the status and body for a service error.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrInvalidConfirmation):
		c.JSON(http.StatusBadRequest, gin.H{"error": InvalidConfirmationMessage})
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrExpiredToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDeliveryFailed):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delivery failed"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bind decodes the JSON body into req and answers 400 when it cannot.
func bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return false
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": map[string][]string{typeErr.Field: {"value has the wrong type"}},
		})
	case errors.Is(err, io.EOF):
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is empty"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
	}
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "username":
		return "letters, digits and @/./+/-/_ only"
	case "slug":
		return "letters, digits, hyphens and underscores only"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
		}
		return "ensure this value is less than or equal to " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("ensure this field has at least %s characters", fe.Param())
		}
		return "ensure this value is greater than or equal to " + fe.Param()
	}
	return "invalid value"
}

// pageParams reads limit and offset. Missing or unusable values fall back to
// defaultLimit and 0.
func pageParams(c *gin.Context, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// requestURL rebuilds the absolute URL of the request for pagination links.
func requestURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
	}
}

func respondPage[T any](c *gin.Context, results []T, count int64, limit, offset int) {
	c.JSON(http.StatusOK, dto.NewPage(requestURL(c), results, count, limit, offset))
}

// paramID parses a numeric path parameter. A non-numeric id cannot name a
// row, so it is answered with 404.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}
