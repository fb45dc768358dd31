package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cvwizard-backend/application/services"
	"cvwizard-backend/pkg/common"
	apperrors "cvwizard-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeGenerationService scripts the application layer behind the handler
type fakeGenerationService struct {
	out       *services.GenerateOutput
	err       error
	lastInput services.GenerateInput
}

func (f *fakeGenerationService) SelfPromotion(ctx context.Context, in services.GenerateInput) (*services.GenerateOutput, error) {
	f.lastInput = in
	return f.out, f.err
}

func (f *fakeGenerationService) Summary(ctx context.Context, in services.GenerateInput) (*services.GenerateOutput, error) {
	f.lastInput = in
	return f.out, f.err
}

func newGenerateHandler(service GenerationService) *GenerateHandler {
	logger := zap.NewNop()
	return NewGenerateHandler(service, apperrors.NewErrorHandler(logger, false), logger)
}

func generateRequest(body []byte) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(http.MethodPost, "/api/v1/generate/self-promotion", bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(http.MethodPost, "/api/v1/generate/self-promotion", nil)
	}
	ctx := common.WithAnonKey(r.Context(), "anon-1")
	ctx = common.WithClientIP(ctx, "203.0.113.7")
	ctx = common.WithCorrelationID(ctx, "3fa85f64-5717-4562-b3fc-2c963f66afa6")
	return r.WithContext(ctx)
}

func TestGenerateHandler_SelfPromotion(t *testing.T) {
	t.Run("success with body", func(t *testing.T) {
		service := &fakeGenerationService{
			out: &services.GenerateOutput{Text: "I am great.", Generated: true},
		}
		handler := newGenerateHandler(service)

		body, _ := json.Marshal(map[string]interface{}{
			"target_role": "backend engineer",
			"tone":        "confident",
		})
		w := httptest.NewRecorder()
		handler.GenerateSelfPromotion(w, generateRequest(body))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anon-1", service.lastInput.AnonKey)
		assert.Equal(t, "203.0.113.7", service.lastInput.ClientIP)
		assert.Equal(t, "3fa85f64-5717-4562-b3fc-2c963f66afa6", service.lastInput.CorrelationID)
		assert.Equal(t, "backend engineer", service.lastInput.TargetRole)
		assert.Equal(t, "confident", service.lastInput.Tone)
	})

	t.Run("chunked body without content length is decoded", func(t *testing.T) {
		service := &fakeGenerationService{
			out: &services.GenerateOutput{Text: "text", Generated: true},
		}
		handler := newGenerateHandler(service)

		body, _ := json.Marshal(map[string]interface{}{
			"target_role": "data engineer",
			"tone":        "friendly",
		})
		r := generateRequest(body)
		r.ContentLength = -1
		r.TransferEncoding = []string{"chunked"}

		w := httptest.NewRecorder()
		handler.GenerateSelfPromotion(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "data engineer", service.lastInput.TargetRole)
		assert.Equal(t, "friendly", service.lastInput.Tone)
	})

	t.Run("empty body is allowed", func(t *testing.T) {
		service := &fakeGenerationService{
			out: &services.GenerateOutput{Text: "text", Generated: true},
		}
		handler := newGenerateHandler(service)

		w := httptest.NewRecorder()
		handler.GenerateSelfPromotion(w, generateRequest(nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, service.lastInput.TargetRole)
	})

	t.Run("fallback text is still a 200", func(t *testing.T) {
		service := &fakeGenerationService{
			out: &services.GenerateOutput{Text: "canned text", Generated: false},
		}
		handler := newGenerateHandler(service)

		w := httptest.NewRecorder()
		handler.GenerateSelfPromotion(w, generateRequest(nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				Text      string `json:"text"`
				Generated bool   `json:"generated"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.False(t, resp.Data.Generated)
		assert.Equal(t, "canned text", resp.Data.Text)
	})

	t.Run("unknown tone is a validation error", func(t *testing.T) {
		handler := newGenerateHandler(&fakeGenerationService{})

		body := []byte(`{"tone":"sarcastic"}`)
		w := httptest.NewRecorder()
		handler.GenerateSelfPromotion(w, generateRequest(body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing identity is unauthorized", func(t *testing.T) {
		handler := newGenerateHandler(&fakeGenerationService{})

		r := httptest.NewRequest(http.MethodPost, "/api/v1/generate/self-promotion", nil)
		w := httptest.NewRecorder()
		handler.GenerateSelfPromotion(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rate limit error maps to 429 with retry hint", func(t *testing.T) {
		service := &fakeGenerationService{
			err: apperrors.NewRateLimitError(10, "1h0m0s").WithDetails(map[string]interface{}{
				"retry_after_seconds": 1800,
			}),
		}
		handler := newGenerateHandler(service)

		w := httptest.NewRecorder()
		handler.GenerateSelfPromotion(w, generateRequest(nil))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1800", w.Header().Get("Retry-After"))
	})
}

func TestGenerateHandler_Summary(t *testing.T) {
	service := &fakeGenerationService{
		out: &services.GenerateOutput{Text: "Seasoned engineer.", Generated: true},
	}
	handler := newGenerateHandler(service)

	w := httptest.NewRecorder()
	r := generateRequest(nil)
	handler.GenerateSummary(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}
