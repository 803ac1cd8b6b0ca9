package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const providerLynx = "lynx"

// LynxConfig configures the HTTP client for the Lynx AI backend.
type LynxConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// LynxClient calls the Lynx analysis and chat endpoints.
type LynxClient struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
	logger  zerolog.Logger
}

// NewLynxClient builds a client; BaseURL is required.
func NewLynxClient(cfg LynxConfig) (*LynxClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("lynx api url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &LynxClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		tracer:  otel.Tracer("github.com/noah-isme/lynx-api/pkg/ai/lynx"),
		logger:  cfg.Logger.With().Str("component", "lynx_client").Logger(),
	}, nil
}

// Analyze posts to /analysis/ and validates the body.
func (c *LynxClient) Analyze(parent context.Context, input AnalysisInput) (Analysis, error) {
	ctx, span := c.tracer.Start(parent, "lynx.analyze", trace.WithAttributes(
		attribute.String("student_id", input.StudentID),
	))
	defer span.End()

	raw, err := c.post(ctx, "analysis", "/analysis/", input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Analysis{}, err
	}

	var out Analysis
	if err := json.Unmarshal(raw, &out); err != nil {
		aiFailures.WithLabelValues(providerLynx, "analysis").Inc()
		span.SetStatus(codes.Error, err.Error())
		return Analysis{}, fmt.Errorf("%w: %v", ErrFormatMismatch, err)
	}
	if err := out.Validate(); err != nil {
		aiFailures.WithLabelValues(providerLynx, "analysis").Inc()
		span.SetStatus(codes.Error, err.Error())
		return Analysis{}, err
	}

	return out, nil
}

// Send posts to /chat/message. The backend may answer with an empty body; that is
// still an accepted message.
func (c *LynxClient) Send(parent context.Context, request ChatRequest) (ChatReply, error) {
	ctx, span := c.tracer.Start(parent, "lynx.chat", trace.WithAttributes(
		attribute.String("session_id", request.SessionID),
	))
	defer span.End()

	if request.History == nil {
		request.History = []string{}
	}

	raw, err := c.post(ctx, "chat", "/chat/message", request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ChatReply{}, err
	}

	var out ChatReply
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			c.logger.Debug().Err(err).Msg("chat reply body ignored")
		}
	}

	return out, nil
}

func (c *LynxClient) post(ctx context.Context, operation, path string, payload interface{}) ([]byte, error) {
	start := time.Now()
	defer func() {
		aiDuration.WithLabelValues(providerLynx, operation).Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		aiFailures.WithLabelValues(providerLynx, operation).Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		aiFailures.WithLabelValues(providerLynx, operation).Inc()
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 300 {
		aiFailures.WithLabelValues(providerLynx, operation).Inc()
		c.logger.Warn().Str("operation", operation).Int("status", resp.StatusCode).Msg("lynx backend returned an error")
		return nil, fmt.Errorf("%w: %s: %s", ErrUnavailable, resp.Status, strings.TrimSpace(string(raw)))
	}

	return raw, nil
}
