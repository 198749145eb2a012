package coax

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coaxllm/coax/structured"
)

const genericRetryPrompt = "Your previous response was incomplete. Please respond again with a complete JSON object in the requested format."

// Terminal outcome labels, used for logs and metrics.
const (
	outcomeValid     = "valid"
	outcomeRaw       = "raw"
	outcomeDefaulted = "defaulted"
	outcomeError     = "error"
)

// attemptResult is the tagged per-attempt outcome driving the retry loop.
type attemptResult struct {
	kind attemptKind

	value   any    // Done: the value to return
	raw     string // the response text, verbatim
	err     error  // Fatal: transport error; RetryParse: the parse error
	missing []string
	partial any
}

type attemptKind int

const (
	attemptDone attemptKind = iota
	attemptRetryParse
	attemptRetryIncomplete
	attemptFatal
)

// Chat sends messages to the chat endpoint and returns content conforming to
// schema. options mixes orchestrator settings (max_retries, ensure_complete,
// defaults, strict, targeted_retries, temperature) with arbitrary sampling
// options forwarded to the endpoint; see ParseOptions.
func (c *Client) Chat(ctx context.Context, messages []Message, schema *structured.Schema, options map[string]any) (any, error) {
	ro, passthrough := ParseOptions(options)
	return c.Do(ctx, messages, schema, ro, passthrough)
}

// Do runs one structured chat invocation with explicit options. All mutable
// state (temperature, budget, transcript) is local to the call, so a single
// Client may serve any number of concurrent invocations.
func (c *Client) Do(ctx context.Context, messages []Message, schema *structured.Schema, opts RetryOptions, passthrough map[string]any) (any, error) {
	requestID := uuid.NewString()
	log := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("model", c.model),
	)

	temperature := opts.Temperature
	budget := opts.MaxRetries
	transcript := append([]Message(nil), messages...)
	start := time.Now()
	attempts := 0

	for {
		attempts++
		res := c.attempt(ctx, transcript, schema, opts, passthrough, temperature)
		c.recordAttempt(res)

		switch res.kind {
		case attemptDone:
			log.Debug("chat complete",
				zap.Int("attempts", attempts),
				zap.Float64("temperature", temperature),
			)
			c.recordChat(outcomeForDone(opts), attempts, time.Since(start))
			return res.value, nil

		case attemptFatal:
			log.Warn("transport failed", zap.Error(res.err))
			c.recordChat(outcomeError, attempts, time.Since(start))
			return nil, res.err

		case attemptRetryParse:
			if budget > 0 && opts.EnsureComplete {
				budget--
				temperature = c.escalate(temperature, ParseRetryStep)
				log.Debug("response was not JSON, retrying",
					zap.Int("remaining", budget),
					zap.Float64("temperature", temperature),
					zap.Error(res.err),
				)
				continue
			}
			if opts.Strict {
				c.recordChat(outcomeError, attempts, time.Since(start))
				return nil, &MalformedError{Raw: res.raw, Err: res.err}
			}
			if !opts.EnsureComplete {
				// The schema was only a hint; hand the text back untouched.
				c.recordChat(outcomeRaw, attempts, time.Since(start))
				return res.raw, nil
			}
			// Nothing parseable survived the budget; synthesize the whole
			// value from the schema and defaults.
			c.recordChat(outcomeDefaulted, attempts, time.Since(start))
			return structured.ApplyDefaults(nil, schema, opts.Defaults), nil

		case attemptRetryIncomplete:
			if budget > 0 {
				budget--
				temperature = c.escalate(temperature, CompletenessRetryStep)
				transcript = append(transcript, Message{Role: RoleAssistant, Content: res.raw})
				if opts.TargetedRetries && len(res.missing) > 0 {
					transcript = append(transcript, Message{Role: RoleUser, Content: structured.RetryPrompt(res.missing)})
				} else {
					transcript = append(transcript, Message{Role: RoleUser, Content: genericRetryPrompt})
				}
				log.Debug("response incomplete, retrying",
					zap.Strings("missing", res.missing),
					zap.Int("remaining", budget),
					zap.Float64("temperature", temperature),
				)
				continue
			}
			if opts.Strict {
				c.recordChat(outcomeError, attempts, time.Since(start))
				return nil, &IncompleteError{Missing: res.missing, Partial: res.partial}
			}
			log.Debug("retries exhausted, applying defaults", zap.Strings("missing", res.missing))
			c.recordChat(outcomeDefaulted, attempts, time.Since(start))
			return structured.ApplyDefaults(res.partial, schema, opts.Defaults), nil
		}
	}
}

// attempt runs one Requesting -> Parsing -> Validating pass. It never
// consumes budget itself; the caller decides whether a retryable result
// actually retries.
func (c *Client) attempt(ctx context.Context, transcript []Message, schema *structured.Schema, opts RetryOptions, passthrough map[string]any, temperature float64) attemptResult {
	req := &Request{
		Model:    c.model,
		Messages: transcript,
		Stream:   false,
		Format:   schema,
		Options:  mergeOptions(passthrough, temperature),
	}

	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return attemptResult{kind: attemptFatal, err: err}
	}

	raw := resp.Message.Content
	var parsed any
	if perr := json.Unmarshal([]byte(structured.ExtractJSON(raw)), &parsed); perr != nil {
		if !opts.EnsureComplete && !opts.Strict {
			return attemptResult{kind: attemptDone, value: raw, raw: raw}
		}
		return attemptResult{kind: attemptRetryParse, raw: raw, err: perr}
	}

	if !opts.EnsureComplete {
		return attemptResult{kind: attemptDone, value: parsed, raw: raw}
	}

	report := structured.Check(parsed, schema)
	if report.Valid {
		return attemptResult{kind: attemptDone, value: parsed, raw: raw}
	}
	return attemptResult{kind: attemptRetryIncomplete, raw: raw, missing: report.Missing, partial: parsed}
}

// escalate bumps the temperature by step, clamped to the configured cap.
// Rounding keeps the value presentable after repeated float addition.
func (c *Client) escalate(temperature, step float64) float64 {
	t := math.Round((temperature+step)*100) / 100
	if t > c.maxTemperature {
		return c.maxTemperature
	}
	return t
}

func mergeOptions(passthrough map[string]any, temperature float64) map[string]any {
	merged := make(map[string]any, len(passthrough)+1)
	for k, v := range passthrough {
		merged[k] = v
	}
	merged["temperature"] = temperature
	return merged
}

func outcomeForDone(opts RetryOptions) string {
	if opts.EnsureComplete {
		return outcomeValid
	}
	return outcomeRaw
}

func (c *Client) recordAttempt(res attemptResult) {
	if c.collector == nil {
		return
	}
	switch res.kind {
	case attemptDone:
		c.collector.RecordAttempt("ok")
	case attemptRetryParse:
		c.collector.RecordAttempt("parse_failure")
	case attemptRetryIncomplete:
		c.collector.RecordAttempt("incomplete")
	case attemptFatal:
		c.collector.RecordAttempt("transport_error")
	}
}

func (c *Client) recordChat(outcome string, attempts int, elapsed time.Duration) {
	if c.collector == nil {
		return
	}
	c.collector.RecordChat(outcome, attempts, elapsed)
}
