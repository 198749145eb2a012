// Package coax coerces free-form chat completions into validated,
// schema-conformant structured data. It wraps a chat endpoint, checks each
// response against a declarative schema, retries with corrective guidance and
// escalating temperature when the response is incomplete, and falls back to
// synthesized defaults (or an error, in strict mode) when the budget runs
// out.
package coax

import (
	"context"

	"go.uber.org/zap"

	"github.com/coaxllm/coax/internal/metrics"
	"github.com/coaxllm/coax/structured"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a chat transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the payload handed to the transport for a single attempt.
// Format carries the schema as the endpoint's output-format hint; Options
// holds sampling parameters merged with caller pass-through options.
type Request struct {
	Model    string             `json:"model"`
	Messages []Message          `json:"messages"`
	Stream   bool               `json:"stream"`
	Format   *structured.Schema `json:"format,omitempty"`
	Options  map[string]any     `json:"options,omitempty"`
}

// Response is the transport's decoded reply to one attempt.
type Response struct {
	Message Message `json:"message"`
}

// Transport sends one chat request and returns the raw response or a
// transport-level error (ConnectionError, TimeoutError, ModelNotFoundError,
// APIError). Implementations must be safe for concurrent use; all
// per-invocation state lives in the orchestrator.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Temperature escalation applied between attempts. Completeness failures get
// the larger bump since they indicate the model needs to explore, while parse
// failures get a gentler nudge.
const (
	CompletenessRetryStep = 0.1
	ParseRetryStep        = 0.05

	// DefaultTemperature seeds the first attempt when the caller does not
	// set one.
	DefaultTemperature = 0.7

	// DefaultMaxTemperature caps escalation. Unbounded escalation would
	// eventually push the sampler outside any model's valid range.
	DefaultMaxTemperature = 2.0
)

// RetryOptions controls one Chat invocation. The zero value means a single
// attempt, no completeness checking, temperature zero (greedy decoding).
type RetryOptions struct {
	// MaxRetries is the total retry budget shared by parse and completeness
	// failures. The orchestrator issues at most MaxRetries+1 transport calls.
	MaxRetries int

	// EnsureComplete enables the validate/retry/default pipeline. When
	// false, the schema is only a format hint for the endpoint and parsed
	// (or raw, if unparseable) content is returned as-is.
	EnsureComplete bool

	// Defaults seeds the default synthesizer when retries are exhausted.
	Defaults any

	// Strict raises IncompleteError or MalformedError instead of falling
	// back to synthesized defaults.
	Strict bool

	// TargetedRetries enumerates the missing fields in the corrective
	// message instead of a generic "try again". Defaults to true when
	// options are parsed from a map.
	TargetedRetries bool

	// Temperature is the initial sampling temperature, escalated on each
	// retry. It is sent as-is, so zero requests greedy decoding;
	// ParseOptions substitutes the 0.7 default only when the caller does
	// not supply the option at all.
	Temperature float64
}

// ParseOptions splits a caller-supplied options map into the RetryOptions
// consumed by the orchestrator and the remainder forwarded verbatim to the
// transport. The recognized keys are max_retries, ensure_complete, defaults,
// strict, targeted_retries and temperature.
func ParseOptions(opts map[string]any) (RetryOptions, map[string]any) {
	ro := RetryOptions{
		TargetedRetries: true,
		Temperature:     DefaultTemperature,
	}
	passthrough := make(map[string]any, len(opts))
	for k, v := range opts {
		switch k {
		case "max_retries":
			ro.MaxRetries = toInt(v)
		case "ensure_complete":
			ro.EnsureComplete, _ = v.(bool)
		case "defaults":
			ro.Defaults = v
		case "strict":
			ro.Strict, _ = v.(bool)
		case "targeted_retries":
			if b, ok := v.(bool); ok {
				ro.TargetedRetries = b
			}
		case "temperature":
			if f, ok := toFloat(v); ok {
				ro.Temperature = f
			}
		default:
			passthrough[k] = v
		}
	}
	return ro, passthrough
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// Client drives structured chat completions against a Transport. The client
// itself holds only immutable configuration and may be shared freely between
// goroutines; every Chat call keeps its own temperature, budget and
// transcript.
type Client struct {
	transport      Transport
	model          string
	logger         *zap.Logger
	collector      *metrics.Collector
	maxTemperature float64
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics attaches a metrics collector recording attempts, outcomes and
// latencies.
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Client) { c.collector = collector }
}

// WithMaxTemperature overrides the escalation cap.
func WithMaxTemperature(max float64) Option {
	return func(c *Client) { c.maxTemperature = max }
}

// NewClient creates a structured chat client. model is the default model
// name used for every request.
func NewClient(transport Transport, model string, opts ...Option) *Client {
	c := &Client{
		transport:      transport,
		model:          model,
		logger:         zap.NewNop(),
		maxTemperature: DefaultMaxTemperature,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
