// Package gateway is the HTTP client side of the sync backend. Client
// implements actions.Gateway against the /api routes.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"

	"github.com/charmbracelet/log"
	"github.com/google/go-querystring/query"
)

// RemoteError is a non-2xx answer from the backend. It unwraps to the apperr
// sentinel matching its status, so errors.Is works across the wire.
type RemoteError struct {
	Status  int
	Message string
	Stack   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("gateway: %d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

func (e *RemoteError) Unwrap() error {
	return apperr.FromStatus(e.Status)
}

// Client 同步网关客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client, e.g. with an httptest one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient 创建网关客户端. baseURL includes the /api prefix.
func NewClient(baseURL string, opts ...Option) *Client {
	// 确保URL格式正确
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithPrefix("gateway")
	return c
}

// Token returns the access token of the last successful login.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// makeRequest 发送HTTP请求. params, when non-nil, is encoded with its url
// tags; out, when non-nil, receives the decoded response.
func (c *Client) makeRequest(ctx context.Context, method, endpoint string, params, body, out any) error {
	url := c.baseURL + endpoint
	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return fmt.Errorf("failed to encode query: %w", err)
		}
		if encoded := v.Encode(); encoded != "" {
			url += "?" + encoded
		}
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// 设置请求头
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	c.logger.Debug("request", "method", method, "endpoint", endpoint, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remote := &RemoteError{Status: resp.StatusCode}
		var e struct {
			Message string `json:"message"`
			Stack   string `json:"stack"`
		}
		if json.Unmarshal(respBody, &e) == nil && e.Message != "" {
			remote.Message, remote.Stack = e.Message, e.Stack
		} else {
			remote.Message = strings.TrimSpace(string(respBody))
		}
		return remote
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// mutate sends a write and checks the {success} acknowledgement.
func (c *Client) mutate(ctx context.Context, method, endpoint string, body any) error {
	var ack models.MutationResponse
	if err := c.makeRequest(ctx, method, endpoint, nil, body, &ack); err != nil {
		return err
	}
	if !ack.Success {
		return fmt.Errorf("gateway: %s %s was not acknowledged", method, endpoint)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, body any) error {
	return c.mutate(ctx, http.MethodPost, endpoint, body)
}

func (c *Client) put(ctx context.Context, endpoint string, body any) error {
	return c.mutate(ctx, http.MethodPut, endpoint, body)
}

func (c *Client) delete(ctx context.Context, endpoint, id string) error {
	return c.mutate(ctx, http.MethodDelete, endpoint, models.IDRequest{ID: id})
}
