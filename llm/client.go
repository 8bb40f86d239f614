// =============================================================================
// Package llm — Minimal Chat Client
// =============================================================================
// A provider-agnostic chat completion client covering Ollama, OpenAI-compatible
// APIs, and Anthropic. Agents reach it through Ctx.LLM(); nothing in the
// workflow engine depends on which provider is behind it.
//
// Configuration comes from the AGENTLINE_* environment variables (see FromEnv)
// or an explicit Config. Responses classify failures with the types package so
// agents can route Retry/Fail decisions on the error kind.
// =============================================================================
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BaSui01/agentline/llm/cache"
	"github.com/BaSui01/agentline/types"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Provider selects the wire format and endpoint layout for chat requests.
type Provider string

const (
	// ProviderOllama is the default. Local inference, no API key needed.
	ProviderOllama Provider = "ollama"
	// ProviderOpenAI covers OpenAI-compatible APIs (OpenRouter, etc.).
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic Messages API.
	ProviderAnthropic Provider = "anthropic"
)

// ParseProvider parses a provider name case-insensitively. Unrecognized
// values default to Ollama.
func ParseProvider(s string) Provider {
	switch strings.ToLower(s) {
	case "openai":
		return ProviderOpenAI
	case "anthropic":
		return ProviderAnthropic
	default:
		return ProviderOllama
	}
}

// Endpoint returns the full chat endpoint URL for this provider.
func (p Provider) Endpoint(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	switch p {
	case ProviderOpenAI:
		return base + "/v1/chat/completions"
	case ProviderAnthropic:
		return base + "/v1/messages"
	default:
		return base + "/api/chat"
	}
}

type ollamaResponse struct {
	Message struct {
		Content *string `json:"content"`
	} `json:"message"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type anthropicResponse struct {
	Content []struct {
		Text *string `json:"text"`
	} `json:"content"`
}

// ParseResponse extracts the assistant message text from a provider-specific
// JSON response body.
func (p Provider) ParseResponse(data []byte) (string, error) {
	var content *string
	switch p {
	case ProviderOpenAI:
		var r openaiResponse
		if err := json.Unmarshal(data, &r); err != nil {
			return "", parseFailed(err)
		}
		if len(r.Choices) > 0 {
			content = r.Choices[0].Message.Content
		}
	case ProviderAnthropic:
		var r anthropicResponse
		if err := json.Unmarshal(data, &r); err != nil {
			return "", parseFailed(err)
		}
		if len(r.Content) > 0 {
			content = r.Content[0].Text
		}
	default:
		var r ollamaResponse
		if err := json.Unmarshal(data, &r); err != nil {
			return "", parseFailed(err)
		}
		content = r.Message.Content
	}
	if content == nil {
		return "", types.Other("llm response missing message content").
			WithCode(types.ErrLLMEmptyResponse)
	}
	return *content, nil
}

func parseFailed(err error) error {
	return types.Transientf("llm response parse failed: %v", err).
		WithCode(types.ErrLLMParseFailed).
		WithCause(err)
}

// Config holds client settings. The zero value is not usable; start from
// DefaultConfig or FromEnv.
type Config struct {
	Provider Provider      `yaml:"provider" env:"PROVIDER"`
	BaseURL  string        `yaml:"base_url" env:"BASE_URL"`
	Model    string        `yaml:"model" env:"MODEL"`
	APIKey   string        `yaml:"api_key" env:"API_KEY"`
	NumCtx   int           `yaml:"num_ctx" env:"NUM_CTX"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Debug    bool          `yaml:"debug" env:"DEBUG"`
}

// DefaultConfig returns the local-Ollama defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "llama3.1:8b",
		NumCtx:   4096,
		Timeout:  60 * time.Second,
	}
}

// FromEnv builds a Config from the AGENTLINE_* environment variables:
// AGENTLINE_PROVIDER (ollama|openai|anthropic), AGENTLINE_LLM_URL,
// AGENTLINE_MODEL, AGENTLINE_NUM_CTX, AGENTLINE_API_KEY, AGENTLINE_DEBUG.
// Unset variables keep the defaults.
func FromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("AGENTLINE_PROVIDER"); v != "" {
		cfg.Provider = ParseProvider(v)
	}
	if v := os.Getenv("AGENTLINE_LLM_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("AGENTLINE_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("AGENTLINE_NUM_CTX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.NumCtx = n
		}
	}
	cfg.APIKey = os.Getenv("AGENTLINE_API_KEY")
	_, cfg.Debug = os.LookupEnv("AGENTLINE_DEBUG")
	return cfg
}

// Client is a chat completion client for one provider. Safe for concurrent
// use; agents running in parallel branches share one instance through Ctx.
type Client struct {
	cfg       Config
	http      *http.Client
	logger    *zap.Logger
	limiter   *rate.Limiter
	cache     cache.Cache
	cacheTTL  time.Duration
	tokenizer Tokenizer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the zap logger. Defaults to zap.NewNop.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit throttles Send calls to rps requests per second with the
// given burst. Zero rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithCache caches successful responses under a request-derived key for ttl.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithTokenizer replaces the tokenizer used for context-window checks.
func WithTokenizer(t Tokenizer) Option {
	return func(c *Client) { c.tokenizer = t }
}

// New creates a Client from the given config.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	c := &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    zap.NewNop(),
		tokenizer: NewTokenizer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromEnv creates a Client configured from the environment.
func NewFromEnv(opts ...Option) *Client {
	return New(FromEnv(), opts...)
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config { return c.cfg }

// Chat starts building a chat request against this client.
func (c *Client) Chat() *Request {
	return &Request{client: c}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	NumCtx int `json:"num_ctx"`
}

type openaiRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	Stream    bool      `json:"stream"`
	MaxTokens int       `json:"max_tokens"`
}

type anthropicRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	System    string    `json:"system,omitempty"`
	Stream    bool      `json:"stream"`
	MaxTokens int       `json:"max_tokens"`
}

func (c *Client) buildBody(system string, users []string) ([]byte, error) {
	msgs := make([]message, 0, len(users)+1)
	// Anthropic takes the system prompt as a top-level field, the other
	// providers as the first message.
	if system != "" && c.cfg.Provider != ProviderAnthropic {
		msgs = append(msgs, message{Role: "system", Content: system})
	}
	for _, u := range users {
		msgs = append(msgs, message{Role: "user", Content: u})
	}

	var body any
	switch c.cfg.Provider {
	case ProviderOpenAI:
		body = openaiRequest{Model: c.cfg.Model, Messages: msgs, MaxTokens: c.cfg.NumCtx}
	case ProviderAnthropic:
		body = anthropicRequest{Model: c.cfg.Model, Messages: msgs, System: system, MaxTokens: c.cfg.NumCtx}
	default:
		body = ollamaRequest{Model: c.cfg.Model, Messages: msgs, Options: ollamaOptions{NumCtx: c.cfg.NumCtx}}
	}
	return json.Marshal(body)
}

func (c *Client) buildHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	switch c.cfg.Provider {
	case ProviderAnthropic:
		if c.cfg.APIKey != "" {
			req.Header.Set("x-api-key", c.cfg.APIKey)
		}
		req.Header.Set("anthropic-version", "2023-06-01")
	default:
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}
	}
}

func (c *Client) send(ctx context.Context, system string, users []string) (string, error) {
	payload, err := c.buildBody(system, users)
	if err != nil {
		return "", types.Invalidf("llm request encode failed: %v", err).WithCause(err)
	}

	key := cache.Key(string(c.cfg.Provider), c.cfg.Model, payload)
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, key); err == nil {
			c.logger.Debug("llm cache hit", zap.String("key", key))
			return cached, nil
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", types.Transientf("llm request failed: %v", err).
				WithCode(types.ErrLLMRequestFailed).
				WithCause(err)
		}
	}

	if est := c.estimateTokens(system, users); est > c.cfg.NumCtx && c.cfg.NumCtx > 0 {
		c.logger.Warn("llm prompt may exceed context window",
			zap.Int("estimated_tokens", est),
			zap.Int("num_ctx", c.cfg.NumCtx),
		)
	}

	url := c.cfg.Provider.Endpoint(c.cfg.BaseURL)
	if c.cfg.Debug {
		c.logger.Debug("llm request",
			zap.String("url", url),
			zap.ByteString("body", payload),
		)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", types.Invalidf("llm request build failed: %v", err).WithCause(err)
	}
	c.buildHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", types.Transientf("llm request failed: %v", err).
			WithCode(types.ErrLLMRequestFailed).
			WithCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.Transientf("llm response read failed: %v", err).
			WithCode(types.ErrLLMRequestFailed).
			WithCause(err)
	}

	if resp.StatusCode >= 400 {
		return "", mapHTTPError(resp.StatusCode, data)
	}

	if c.cfg.Debug {
		c.logger.Debug("llm response", zap.ByteString("body", data))
	}

	text, err := c.cfg.Provider.ParseResponse(data)
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, text, c.cacheTTL); err != nil {
			c.logger.Warn("llm cache store failed", zap.Error(err))
		}
	}
	return text, nil
}

func (c *Client) estimateTokens(system string, users []string) int {
	if c.tokenizer == nil {
		return 0
	}
	total := c.tokenizer.CountTokens(system)
	for _, u := range users {
		total += c.tokenizer.CountTokens(u)
	}
	return total
}

// mapHTTPError classifies an HTTP error status into the step-error taxonomy.
// Rate limits and server-side failures are transient; auth and malformed
// request statuses are invalid.
func mapHTTPError(status int, body []byte) error {
	msg := fmt.Sprintf("llm request failed: status %d: %s", status, errSnippet(body))
	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return types.Transient(msg).WithCode(types.ErrLLMRequestFailed)
	case status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden:
		return types.Invalid(msg).WithCode(types.ErrLLMRequestFailed)
	default:
		return types.Other(msg).WithCode(types.ErrLLMRequestFailed)
	}
}

func errSnippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
