package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cvwizard-backend/infrastructure/persistence/abstractions"
	apperrors "cvwizard-backend/pkg/errors"

	"go.uber.org/zap"
)

// defaultPageSize is the per-page fetch size used when the caller does
// not specify one.
const defaultPageSize = 100

// Config holds the store client configuration
type Config struct {
	// BaseURL is the service root, e.g. https://api.example.com
	BaseURL string
	// BaseID identifies the record base under the service root
	BaseID string
	// APIKey is the bearer token for every call
	APIKey string
	// Env is the current deployment environment (prod|preview|dev)
	Env string
	// PRRef is the branch/PR provenance identifier
	PRRef string
	// HTTPClient overrides the default HTTP client
	HTTPClient *http.Client
	// Retry overrides the default retry policy
	Retry RetryConfig
}

// Client talks to the hosted tabular record service over HTTPS. It
// injects the environment guard fields on every write, scopes every
// list to the current environment, paginates transparently, and retries
// 429/5xx and transport failures with exponential backoff.
type Client struct {
	baseURL    string
	apiKey     string
	env        string
	prRef      string
	httpClient *http.Client
	retry      RetryConfig
	logger     *zap.Logger

	// sleep and onRetry are replaceable for tests and metrics
	sleep   func(ctx context.Context, d time.Duration) error
	onRetry func()
}

// NewClient creates a record store client. Missing credentials are a
// fatal configuration error before any network call.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, apperrors.NewConfigurationError("store base URL")
	}
	if cfg.BaseID == "" {
		return nil, apperrors.NewConfigurationError("store base id")
	}
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigurationError("store API key")
	}
	if cfg.Env == "" {
		return nil, apperrors.NewConfigurationError("deployment environment")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryConfig()
	}

	return &Client{
		baseURL:    fmt.Sprintf("%s/v0/%s", cfg.BaseURL, cfg.BaseID),
		apiKey:     cfg.APIKey,
		env:        cfg.Env,
		prRef:      cfg.PRRef,
		httpClient: httpClient,
		retry:      retry,
		logger:     logger,
		sleep:      sleepWithContext,
	}, nil
}

// OnRetry registers a callback invoked once per retried attempt
func (c *Client) OnRetry(fn func()) {
	c.onRetry = fn
}

type listResponse struct {
	Records []abstractions.Record `json:"records"`
	Offset  string                `json:"offset,omitempty"`
}

type recordsEnvelope struct {
	Records  []abstractions.Record `json:"records"`
	Typecast bool                  `json:"typecast,omitempty"`
}

type deleteResponse struct {
	Records []abstractions.DeleteResult `json:"records"`
}

// List returns records matching opts in service page order. The
// caller's filter formula is always combined with the environment guard
// so records from other environments are never returned.
func (c *Client) List(ctx context.Context, table string, opts abstractions.ListOptions) ([]abstractions.Record, error) {
	formula := And(opts.FilterFormula, Equals(abstractions.FieldSourceEnv, c.env))

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var all []abstractions.Record
	offset := ""

	for {
		query := url.Values{}
		query.Set("filterByFormula", formula)
		query.Set("pageSize", strconv.Itoa(pageSize))
		for _, f := range opts.Fields {
			query.Add("fields[]", f)
		}
		if opts.MaxRecords > 0 {
			query.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
		}
		for i, s := range opts.Sort {
			query.Set(fmt.Sprintf("sort[%d][field]", i), s.Field)
			query.Set(fmt.Sprintf("sort[%d][direction]", i), s.Direction)
		}
		if opts.View != "" {
			query.Set("view", opts.View)
		}
		if offset != "" {
			query.Set("offset", offset)
		}

		body, err := c.do(ctx, http.MethodGet, c.tableURL(table)+"?"+query.Encode(), nil)
		if err != nil {
			return nil, err
		}

		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, apperrors.NewExternalError("record store", err)
		}

		all = append(all, page.Records...)

		if opts.MaxRecords > 0 && len(all) >= opts.MaxRecords {
			return all[:opts.MaxRecords], nil
		}
		if page.Offset == "" {
			return all, nil
		}
		offset = page.Offset
	}
}

// Create inserts records, overwriting any caller-supplied guard fields
// with the current environment's values.
func (c *Client) Create(ctx context.Context, table string, records []abstractions.Record) ([]abstractions.Record, error) {
	payload := recordsEnvelope{Records: make([]abstractions.Record, len(records))}
	for i, rec := range records {
		payload.Records[i] = abstractions.Record{Fields: c.guardFields(rec.Fields)}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode create request").WithCause(err)
	}

	respBody, err := c.do(ctx, http.MethodPost, c.tableURL(table), body)
	if err != nil {
		return nil, err
	}

	var result recordsEnvelope
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, apperrors.NewExternalError("record store", err)
	}
	return result.Records, nil
}

// Update modifies records by id. With replace false (PATCH) the field
// maps merge into the stored records; with replace true (PUT) they
// replace them. Guard fields are overwritten in both modes.
func (c *Client) Update(ctx context.Context, table string, records []abstractions.Record, replace bool) ([]abstractions.Record, error) {
	payload := recordsEnvelope{Records: make([]abstractions.Record, len(records))}
	for i, rec := range records {
		payload.Records[i] = abstractions.Record{ID: rec.ID, Fields: c.guardFields(rec.Fields)}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode update request").WithCause(err)
	}

	method := http.MethodPatch
	if replace {
		method = http.MethodPut
	}

	respBody, err := c.do(ctx, method, c.tableURL(table), body)
	if err != nil {
		return nil, err
	}

	var result recordsEnvelope
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, apperrors.NewExternalError("record store", err)
	}
	return result.Records, nil
}

// Delete removes records by id
func (c *Client) Delete(ctx context.Context, table string, ids []string) ([]abstractions.DeleteResult, error) {
	query := url.Values{}
	for _, id := range ids {
		query.Add("records[]", id)
	}

	respBody, err := c.do(ctx, http.MethodDelete, c.tableURL(table)+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result deleteResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, apperrors.NewExternalError("record store", err)
	}
	return result.Records, nil
}

// guardFields copies the field map with the guard fields forced to the
// current environment's values. Callers cannot forge provenance.
func (c *Client) guardFields(fields map[string]interface{}) map[string]interface{} {
	guarded := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		guarded[k] = v
	}
	guarded[abstractions.FieldSourceEnv] = c.env
	guarded[abstractions.FieldPRRef] = c.prRef
	return guarded
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(table))
}

// do executes one HTTP call with the retry policy: 429, 5xx and
// transport errors are retried with exponential backoff up to
// MaxAttempts; any other non-2xx fails immediately with the status and
// body embedded.
func (c *Client) do(ctx context.Context, method, rawURL string, body []byte) ([]byte, error) {
	var lastStatus int
	var lastBody string
	var lastErr error

	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			if c.onRetry != nil {
				c.onRetry()
			}
			if err := c.sleep(ctx, c.retry.delayForAttempt(attempt-1)); err != nil {
				return nil, err
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to build store request").WithCause(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Transport failures are retried with the same backoff
			// as 5xx responses.
			lastErr = err
			lastStatus = 0
			c.logger.Warn("Record store request failed",
				zap.String("method", method),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			lastStatus = resp.StatusCode
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return respBody, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastStatus = resp.StatusCode
			lastBody = string(respBody)
			lastErr = nil
			c.logger.Warn("Record store returned retryable status",
				zap.String("method", method),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			continue
		}

		// Permanent upstream error: no retry
		return nil, apperrors.NewExternalError("record store",
			fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))).
			WithDetails(map[string]interface{}{
				"status": resp.StatusCode,
				"body":   string(respBody),
			})
	}

	if lastErr != nil {
		return nil, apperrors.NewNetworkError(
			fmt.Sprintf("record store unreachable after %d attempts", c.retry.MaxAttempts), lastErr)
	}
	return nil, apperrors.NewExternalError("record store",
		fmt.Errorf("giving up after %d attempts: status %d: %s", c.retry.MaxAttempts, lastStatus, lastBody)).
		WithDetails(map[string]interface{}{
			"status": lastStatus,
			"body":   lastBody,
		})
}
