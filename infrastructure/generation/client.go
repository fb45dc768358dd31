package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "cvwizard-backend/pkg/errors"

	"go.uber.org/zap"
)

// DefaultTimeout bounds each generation attempt.
const DefaultTimeout = 12 * time.Second

// Error is the typed failure returned by the generation client. Status
// is the upstream HTTP status, zero for pre-flight and transport
// failures; Timeout marks wall-clock expiry.
type Error struct {
	Status  int
	Message string
	Timeout bool
}

func (e *Error) Error() string {
	if e.Timeout {
		return fmt.Sprintf("generation timed out: %s", e.Message)
	}
	if e.Status != 0 {
		return fmt.Sprintf("generation failed (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("generation failed: %s", e.Message)
}

// IsTimeout reports whether err is a generation timeout
func IsTimeout(err error) bool {
	var genErr *Error
	return errors.As(err, &genErr) && genErr.Timeout
}

// Config holds the generation client configuration
type Config struct {
	// Endpoint is the service root, without a trailing slash
	Endpoint string
	// APIKey is the bearer token for every call
	APIKey string
	// Model is the default model name
	Model string
	// Timeout overrides DefaultTimeout
	Timeout time.Duration
	// HTTPClient overrides the default HTTP client
	HTTPClient *http.Client
}

// Request is a single-turn generation request
type Request struct {
	Prompt          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	TopP            *float64
	CorrelationID   string
	Timeout         time.Duration
}

// Result is a successful generation: non-empty text, plus a token count
// when the service reported usage metadata.
type Result struct {
	Text   string
	Tokens *int
}

// Client submits single-turn requests to the external generative-text
// endpoint. It retries a 5xx response exactly once and treats a
// successful response with no extractable text as a failure.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a generation client. A missing API key or endpoint
// is a fatal configuration error.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, apperrors.NewConfigurationError("generation endpoint")
	}
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigurationError("generation API key")
	}
	if cfg.Model == "" {
		return nil, apperrors.NewConfigurationError("generation model")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64  `json:"temperature"`
	MaxOutputTokens int      `json:"maxOutputTokens"`
	TopP            *float64 `json:"topP,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata"`
}

type usageMetadata struct {
	TotalTokenCount      *int `json:"totalTokenCount"`
	TotalTokens          *int `json:"totalTokens"`
	PromptTokenCount     *int `json:"promptTokenCount"`
	CandidatesTokenCount *int `json:"candidatesTokenCount"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate submits the request and returns the first candidate's
// concatenated text. At most two attempts are made: the initial call
// plus one retry when the first attempt returns 5xx.
func (c *Client) Generate(ctx context.Context, req Request) (Result, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return Result{}, &Error{Status: http.StatusBadRequest, Message: "prompt must not be empty"}
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	maxTokens := req.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: prompt}},
		}},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
			TopP:            req.TopP,
		},
	})
	if err != nil {
		return Result{}, &Error{Message: "failed to encode request: " + err.Error()}
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.endpoint, model)

	var lastErr *Error
	for attempt := 0; attempt < 2; attempt++ {
		result, genErr := c.attempt(ctx, url, body, req.CorrelationID, timeout)
		if genErr == nil {
			return result, nil
		}
		lastErr = genErr

		// Only a 5xx on the first attempt earns a retry
		if attempt == 0 && genErr.Status >= 500 && genErr.Status < 600 {
			c.logger.Warn("Generation attempt failed, retrying once",
				zap.Int("status", genErr.Status),
				zap.String("correlationID", req.CorrelationID),
			)
			continue
		}
		break
	}

	return Result{}, lastErr
}

func (c *Client) attempt(ctx context.Context, url string, body []byte, correlationID string, timeout time.Duration) (Result, *Error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, &Error{Message: "failed to build request: " + err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if correlationID != "" {
		req.Header.Set("X-Correlation-ID", correlationID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() == context.DeadlineExceeded {
			return Result{}, &Error{Message: fmt.Sprintf("no response within %s", timeout), Timeout: true}
		}
		return Result{}, &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &Error{Status: resp.StatusCode, Message: "failed to read response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := string(respBody)
		var envelope errorResponse
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error.Message != "" {
			message = envelope.Error.Message
		}
		return Result{}, &Error{Status: resp.StatusCode, Message: message}
	}

	var parsed generateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Result{}, &Error{Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}

	text := extractText(parsed)
	if text == "" {
		// A successful call with no usable text is a failure, not an
		// empty-string success.
		return Result{}, &Error{Status: resp.StatusCode, Message: "no text in generation response"}
	}

	return Result{Text: text, Tokens: extractTokens(parsed.UsageMetadata)}, nil
}

// extractText concatenates the first candidate's non-empty parts with
// newline separators.
func extractText(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}

	var parts []string
	for _, p := range resp.Candidates[0].Content.Parts {
		trimmed := strings.TrimSpace(p.Text)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "\n")
}

// extractTokens prefers the explicit total, then the alternate total
// field, then the prompt+candidate sum. A reported count of zero is
// meaningful; only absent usage metadata yields nil.
func extractTokens(usage *usageMetadata) *int {
	if usage == nil {
		return nil
	}
	if usage.TotalTokenCount != nil {
		return usage.TotalTokenCount
	}
	if usage.TotalTokens != nil {
		return usage.TotalTokens
	}
	if usage.PromptTokenCount != nil || usage.CandidatesTokenCount != nil {
		sum := 0
		if usage.PromptTokenCount != nil {
			sum += *usage.PromptTokenCount
		}
		if usage.CandidatesTokenCount != nil {
			sum += *usage.CandidatesTokenCount
		}
		return &sum
	}
	return nil
}
