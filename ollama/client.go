// Package ollama implements the chat transport against an Ollama-style HTTP
// endpoint. It exposes a single blocking Send operation and maps HTTP and
// connection-level failures to the coax error taxonomy.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/coaxllm/coax"
)

// Config holds the immutable client configuration. All fields are optional.
type Config struct {
	Host    string        // default 127.0.0.1
	Port    int           // default 11434
	Timeout time.Duration // per-request deadline, default 30s
}

const (
	defaultHost    = "127.0.0.1"
	defaultPort    = 11434
	defaultTimeout = 30 * time.Second
)

// Client is an HTTP chat transport. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	cfg     Config
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithLimiter throttles outgoing requests. Each Send waits for a token
// before dialing.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) { c.limiter = limiter }
}

// WithHTTPClient substitutes the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates an Ollama transport client.
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		cfg:     cfg,
		baseURL: fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// chatResponse is the endpoint's reply envelope. Only the message matters to
// the orchestrator.
type chatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Send posts one chat request and decodes the reply. Connection failures,
// timeouts, unknown models and other HTTP errors come back as the
// corresponding coax error types; Send never retries.
func (c *Client) Send(ctx context.Context, req *coax.Request) (*coax.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	endpoint := c.baseURL + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, c.mapTransportError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("chat request sent",
		zap.String("model", req.Model),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return nil, c.mapStatusError(resp, req.Model)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, &coax.APIError{StatusCode: resp.StatusCode, Body: fmt.Sprintf("undecodable response body: %v", err)}
	}

	return &coax.Response{
		Message: coax.Message{
			Role:    coax.Role(cr.Message.Role),
			Content: cr.Message.Content,
		},
	}, nil
}

// Ping checks that the endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/version", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return c.mapTransportError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &coax.APIError{StatusCode: resp.StatusCode, Body: readErrMsg(resp.Body)}
	}
	return nil
}

func (c *Client) mapTransportError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return &coax.TimeoutError{Timeout: c.cfg.Timeout, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &coax.TimeoutError{Timeout: c.cfg.Timeout, Err: err}
	}
	return &coax.ConnectionError{Addr: c.baseURL, Err: err}
}

func (c *Client) mapStatusError(resp *http.Response, model string) error {
	msg := readErrMsg(resp.Body)
	if resp.StatusCode == http.StatusNotFound && strings.Contains(strings.ToLower(msg), "model") {
		return &coax.ModelNotFoundError{Model: model, Message: msg}
	}
	return &coax.APIError{StatusCode: resp.StatusCode, Body: msg}
}

func readErrMsg(body io.Reader) string {
	data, _ := io.ReadAll(body)
	var er errorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Error != "" {
		return er.Error
	}
	return string(data)
}
