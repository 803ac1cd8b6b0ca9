package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const providerOpenAI = "openai"

// OpenAIConfig defines configuration options for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIProvider implements Analyzer and ChatRelay against the chat completion API.
type OpenAIProvider struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIProvider builds a provider using the given configuration.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 768
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/lynx-api/pkg/ai/openai"),
		logger: cfg.Logger.With().Str("component", "openai_provider").Logger(),
	}, nil
}

// Analyze asks the model for a JSON analysis and validates it.
func (p *OpenAIProvider) Analyze(parent context.Context, input AnalysisInput) (Analysis, error) {
	ctx, span := p.tracer.Start(parent, "openai.analyze", trace.WithAttributes(
		attribute.String("model", p.cfg.Model),
	))
	defer span.End()

	content, err := p.complete(ctx, "analysis", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: analysisSystemPrompt()},
		{Role: openai.ChatMessageRoleUser, Content: buildAnalysisPrompt(input)},
	}, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Analysis{}, err
	}

	result, err := parseAnalysisResponse(content)
	if err != nil {
		aiFailures.WithLabelValues(providerOpenAI, "analysis").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Analysis{}, err
	}

	return result, nil
}

// Send answers a tutoring message. Images are passed inline as data URLs; other
// attachments are only mentioned to the model.
func (p *OpenAIProvider) Send(parent context.Context, request ChatRequest) (ChatReply, error) {
	ctx, span := p.tracer.Start(parent, "openai.chat", trace.WithAttributes(
		attribute.String("model", p.cfg.Model),
		attribute.String("session_id", request.SessionID),
	))
	defer span.End()

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: tutorSystemPrompt()},
	}
	for _, previous := range request.History {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: previous})
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	switch {
	case request.FileBase64 != "" && strings.HasPrefix(request.MimeType, "image/"):
		user.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: request.Message},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL(request.MimeType, request.FileBase64),
				Detail: openai.ImageURLDetailAuto,
			}},
		}
	case request.FileBase64 != "":
		user.Content = request.Message + "\n\n(Lampiran " + request.MimeType + " terlampir)"
	default:
		user.Content = request.Message
	}
	messages = append(messages, user)

	content, err := p.complete(ctx, "chat", messages, false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ChatReply{}, err
	}

	return ChatReply{Reply: content}, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, operation string, messages []openai.ChatCompletionMessage, jsonMode bool) (string, error) {
	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       p.cfg.Model,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
		Messages:    messages,
	}
	if jsonMode {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := p.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(providerOpenAI, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(providerOpenAI, operation).Inc()
		return "", fmt.Errorf("%w: openai %s: %v", ErrUnavailable, operation, err)
	}

	if len(resp.Choices) == 0 {
		aiFailures.WithLabelValues(providerOpenAI, operation).Inc()
		return "", fmt.Errorf("%w: no choices returned from openai", ErrUnavailable)
	}

	p.logger.Debug().
		Str("operation", operation).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("openai completion finished")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func analysisSystemPrompt() string {
	return "Kamu adalah Lynx, asisten belajar untuk siswa SMA di Indonesia. Balas hanya dengan objek JSON berisi " +
		"weaknesses (array string) dan recommendations (array objek dengan subject, advice, resource_link)."
}

func tutorSystemPrompt() string {
	return "Kamu adalah Lynx, tutor yang sabar. Jelaskan langkah demi langkah dalam Bahasa Indonesia."
}

func buildAnalysisPrompt(input AnalysisInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Siswa\n")
	builder.WriteString(input.StudentName)
	builder.WriteString(" (")
	builder.WriteString(input.StudentID)
	builder.WriteString(")\n\n## Jenjang\n")
	builder.WriteString(input.GradeLevel)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseAnalysisResponse(content string) (Analysis, error) {
	var data Analysis
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrFormatMismatch, err)
	}

	if err := data.Validate(); err != nil {
		return Analysis{}, err
	}

	return data, nil
}

func dataURL(mimeType, payload string) string {
	if strings.HasPrefix(payload, "data:") {
		return payload
	}
	return "data:" + mimeType + ";base64," + payload
}
