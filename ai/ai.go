package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"attritioninsight/config"
	"attritioninsight/models"
)

var (
	ErrTransport         = errors.New("language model unreachable")
	ErrStatus            = errors.New("language model returned an error status")
	ErrMalformedResponse = errors.New("malformed language model response")
	ErrEmptyResponse     = errors.New("empty language model response")
)

// StatusError carries a non-2xx reply from the model endpoint.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API returned status %d", e.Code)
	}
	return fmt.Sprintf("API error (status %d): %s", e.Code, e.Message)
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Completer produces one assistant reply for an ordered message list.
type Completer interface {
	Complete(ctx context.Context, messages []models.Message) (string, error)
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	cfg        config.LLMConfig
	endpoint   string
	httpClient *http.Client
	log        *zap.Logger

	lastRequestTime time.Time
	requestMutex    sync.Mutex

	calls    *atomic.Int64
	failures *atomic.Int64
}

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
}

func New(cfg config.LLMConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.Named("llm"),
		calls:      atomic.NewInt64(0),
		failures:   atomic.NewInt64(0),
	}
}

// Stats returns the number of completed calls and of failed ones.
func (c *Client) Stats() (calls, failures int64) {
	return c.calls.Load(), c.failures.Load()
}

// rateLimit keeps a minimum gap between outbound requests.
func (c *Client) rateLimit(ctx context.Context) error {
	c.requestMutex.Lock()
	defer c.requestMutex.Unlock()

	if wait := c.cfg.MinInterval - time.Since(c.lastRequestTime); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.lastRequestTime = time.Now()
	return nil
}

// Complete sends messages and returns the first choice's content. 429 and
// 5xx replies are retried with exponential backoff; every attempt shares the
// configured timeout.
func (c *Client) Complete(ctx context.Context, messages []models.Message) (string, error) {
	c.calls.Inc()

	body, err := sonic.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		c.failures.Inc()
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var content string
	err = retry.Do(
		func() error {
			if err := c.rateLimit(ctx); err != nil {
				return fmt.Errorf("%w: %v", ErrTransport, err)
			}
			var err error
			content, err = c.post(ctx, body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.MaxRetries+1),
		retry.Delay(c.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warn("retrying model call", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		c.failures.Inc()
		if !classified(err) {
			err = fmt.Errorf("%w: %v", ErrTransport, err)
		}
		return "", err
	}
	return content, nil
}

func (c *Client) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Code: resp.StatusCode, Message: errorMessage(data)}
	}

	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("%w: body is not JSON", ErrMalformedResponse)
	}
	result := gjson.GetBytes(data, "choices.0.message.content")
	if !result.Exists() || result.Type != gjson.String {
		return "", fmt.Errorf("%w: missing choices[0].message.content", ErrMalformedResponse)
	}
	if strings.TrimSpace(result.String()) == "" {
		return "", ErrEmptyResponse
	}
	return result.String(), nil
}

// errorMessage pulls a readable message out of an error body.
func errorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "message", "error"} {
			if r := gjson.GetBytes(body, path); r.Exists() && r.Type == gjson.String {
				return r.String()
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return errors.Is(err, ErrTransport)
}

func classified(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrStatus) ||
		errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrEmptyResponse)
}
