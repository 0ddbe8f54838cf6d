package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DeepSeekName         = "deepseek"
	DeepSeekBaseURL      = "https://api.deepseek.com"
	deepSeekDefaultModel = "deepseek-chat"
)

// DeepSeekConfig holds configuration for the DeepSeek chat client.
// Any OpenAI-compatible endpoint works by overriding BaseURL and Model.
type DeepSeekConfig struct {
	APIKey     string        // Required
	BaseURL    string        // Optional (defaults to the DeepSeek API, tests override)
	Model      string        // "deepseek-chat" (default)
	RateLimit  int           // Requests per minute (default: 60)
	Timeout    time.Duration // Per-request HTTP timeout (default: 60s)
	HTTPClient *http.Client  // Optional (tests)
	Logger     *slog.Logger  // Optional (defaults to slog.Default)
}

// DeepSeekClient implements ChatClient using the official OpenAI SDK
// pointed at an OpenAI-compatible endpoint.
type DeepSeekClient struct {
	model       string
	timeout     time.Duration
	rateLimiter *RateLimiter
	logger      *slog.Logger
	client      openai.Client
}

// NewDeepSeekClient creates a new DeepSeek chat client.
// A missing API key is a construction-time error: the component cannot
// function at all without credentials, so this is not absorbed like
// runtime generation failures are.
func NewDeepSeekClient(cfg DeepSeekConfig) (*DeepSeekClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("deepseek: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DeepSeekBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = deepSeekDefaultModel
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 60
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &DeepSeekClient{
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		rateLimiter: NewRateLimiter(cfg.RateLimit),
		logger:      logger.With("provider", DeepSeekName),
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL),
			option.WithHTTPClient(httpClient),
			// Retries are handled by the caller so attempts stay observable.
			option.WithMaxRetries(0),
		),
	}, nil
}

// Name returns the client identifier.
func (c *DeepSeekClient) Name() string {
	return DeepSeekName
}

// Chat sends a chat completion request.
func (c *DeepSeekClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}
	if c.logger.Enabled(ctx, slog.LevelDebug) {
		st := c.rateLimiter.Status()
		c.logger.Debug("rate limiter status",
			"request_id", requestID,
			"tokens_available", st.TokensAvailable,
			"total_consumed", st.TotalConsumed,
			"total_waited", st.TotalWaited)
	}

	model := req.Model
	if model == "" {
		model = c.model
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	if req.Temperature != 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &ChatResult{
		Content:          completion.Choices[0].Message.Content,
		PromptTokens:     int(completion.Usage.PromptTokens),
		CompletionTokens: int(completion.Usage.CompletionTokens),
		TotalTokens:      int(completion.Usage.TotalTokens),
		ExecutionTime:    time.Since(start),
		Provider:         DeepSeekName,
		ModelUsed:        completion.Model,
		RequestID:        requestID,
	}, nil
}
