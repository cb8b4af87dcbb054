package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/practicecoach-backend/internal/generator/config"
	"github.com/yungbote/practicecoach-backend/internal/platform/httpx"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

const maxErrorBody = 1 << 20

type Message struct {
	Role    string
	Content string
}

type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	chatPath   string
	timeout    time.Duration
	maxTokens  int
	maxRetries int
	backoff    time.Duration
	httpClient *http.Client
}

func New(log *logger.Logger, cfg config.LLMConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("llm: base url required")
	}
	chatPath := strings.TrimSpace(cfg.ChatCompletionsPath)
	if chatPath == "" {
		chatPath = "/v1/chat/completions"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		log:        log.With("client", "LLMClient"),
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		chatPath:   chatPath,
		timeout:    timeout,
		maxTokens:  cfg.MaxTokens,
		maxRetries: max(0, cfg.MaxRetries),
		backoff:    500 * time.Millisecond,
		httpClient: &http.Client{Transport: tr},
	}, nil
}

// NewWithHTTPClient swaps the transport, for tests.
func NewWithHTTPClient(log *logger.Logger, cfg config.LLMConfig, httpClient *http.Client) (*Client, error) {
	c, err := New(log, cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content,omitempty"`
		} `json:"message,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
}

// GenerateText returns the first non-empty completion. Retryable upstream
// failures (429, 5xx, timeouts) are retried with jittered backoff.
func (c *Client) GenerateText(ctx context.Context, model string, messages []Message, opts GenerateOptions) (string, error) {
	chatMsgs := toChatMessages(messages)
	if len(chatMsgs) == 0 {
		return "", errors.New("no messages")
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	reqBody := chatCompletionRequest{
		Model:       model,
		Messages:    chatMsgs,
		Temperature: opts.Temperature,
		MaxTokens:   maxTokens,
	}

	ctx, span := otel.Tracer("practicecoach/generator").Start(ctx, "llm.GenerateText")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", model))

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := httpx.JitterSleep(c.backoff * time.Duration(1<<(attempt-1)))
			if err := httpx.Sleep(ctx, wait); err != nil {
				lastErr = err
				break
			}
			c.log.Warn("Retrying chat completion", "attempt", attempt, "error", lastErr)
		}

		var resp chatCompletionResponse
		err := c.doJSON(ctx, c.chatPath, reqBody, &resp)
		if err == nil {
			text := extractChatText(resp)
			if strings.TrimSpace(text) != "" {
				return text, nil
			}
			err = errors.New("empty upstream completion")
		}
		lastErr = err
		if !httpx.IsRetryableError(err) {
			break
		}
	}
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return "", lastErr
}

func toChatMessages(messages []Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		role := strings.TrimSpace(m.Role)
		content := strings.TrimSpace(m.Content)
		if role == "" || content == "" {
			continue
		}
		out = append(out, chatMessage{Role: role, Content: content})
	}
	return out
}

func extractChatText(resp chatCompletionResponse) string {
	for _, ch := range resp.Choices {
		if strings.TrimSpace(ch.Message.Content) != "" {
			return ch.Message.Content
		}
		if strings.TrimSpace(ch.Text) != "" {
			return ch.Text
		}
	}
	return ""
}

func (c *Client) doJSON(ctx context.Context, path string, body any, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode chat completion: %w", err)
	}
	return nil
}
