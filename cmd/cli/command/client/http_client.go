package client

// http_client.go talks to the yamdb HTTP API on behalf of the CLI.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"yamdb/internal/microservices/http-api/dto"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status int
	Body   map[string]any
}

func (e *APIError) Error() string {
	if msg, ok := e.Body["error"].(string); ok {
		if fields, ok := e.Body["fields"].(map[string]any); ok {
			return fmt.Sprintf("%d: %s %v", e.Status, msg, fields)
		}
		return fmt.Sprintf("%d: %s", e.Status, msg)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// TitleQuery holds the optional filters of GET /titles/.
type TitleQuery struct {
	Name, Category, Genre string
	Year                  int
	Limit, Offset         int
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Body)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Signup asks the API to mail a confirmation code.
func (c *HTTPClient) Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error) {
	var resp dto.SignupResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Token trades a confirmation code for a token pair.
func (c *HTTPClient) Token(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	var resp dto.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/token/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	var resp dto.RefreshResponse
	if err := c.do(ctx, http.MethodPost, "/auth/token/refresh/", dto.RefreshTokenRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Revoke(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/token/revoke/", dto.RevokeTokenRequest{RefreshToken: refreshToken}, nil)
}

func (c *HTTPClient) Me(ctx context.Context) (*dto.UserResponse, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/me/", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ListTitles(ctx context.Context, q TitleQuery) (*dto.Page[dto.TitleResponse], error) {
	params := url.Values{}
	for key, v := range map[string]string{"name": q.Name, "category": q.Category, "genre": q.Genre} {
		if v != "" {
			params.Set(key, v)
		}
	}
	if q.Year != 0 {
		params.Set("year", fmt.Sprint(q.Year))
	}
	if q.Limit > 0 {
		params.Set("limit", fmt.Sprint(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", fmt.Sprint(q.Offset))
	}

	path := "/titles/"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var page dto.Page[dto.TitleResponse]
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) ListReviews(ctx context.Context, titleID int64) (*dto.Page[dto.ReviewResponse], error) {
	var page dto.Page[dto.ReviewResponse]
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/titles/%d/reviews/", titleID), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) CreateReview(ctx context.Context, titleID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	var resp dto.ReviewResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/titles/%d/reviews/", titleID), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
