package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"cvwizard-backend/application/services"
	"cvwizard-backend/pkg/common"
	apperrors "cvwizard-backend/pkg/errors"
	"cvwizard-backend/pkg/utils"

	"go.uber.org/zap"
)

// GenerationService is the application dependency of the generate handler
type GenerationService interface {
	SelfPromotion(ctx context.Context, in services.GenerateInput) (*services.GenerateOutput, error)
	Summary(ctx context.Context, in services.GenerateInput) (*services.GenerateOutput, error)
}

// GenerateHandler handles text-generation HTTP requests
type GenerateHandler struct {
	service      GenerationService
	errorHandler *apperrors.ErrorHandler
	logger       *zap.Logger
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(service GenerationService, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		service:      service,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// GenerateRequest represents the request body for both generate routes
type GenerateRequest struct {
	TargetRole string `json:"target_role,omitempty" validate:"omitempty,max=120"`
	Tone       string `json:"tone,omitempty" validate:"omitempty,oneof=professional friendly confident modest"`
}

// GenerateSelfPromotion handles POST /generate/self-promotion
func (h *GenerateHandler) GenerateSelfPromotion(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, h.service.SelfPromotion)
}

// GenerateSummary handles POST /generate/summary
func (h *GenerateHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, h.service.Summary)
}

func (h *GenerateHandler) generate(
	w http.ResponseWriter,
	r *http.Request,
	call func(ctx context.Context, in services.GenerateInput) (*services.GenerateOutput, error),
) {
	anonKey, ok := common.GetAnonKey(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.NewUnauthorizedError("missing anonymous identity"))
		return
	}

	// Both fields are optional, so an empty body is a valid request.
	// Decode regardless of Content-Length; chunked requests report -1.
	var req GenerateRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			h.errorHandler.Handle(w, r, apperrors.NewValidationError("invalid request body: "+err.Error()))
			return
		}
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	clientIP, _ := common.GetClientIP(r.Context())
	correlationID, _ := common.GetCorrelationID(r.Context())

	out, err := call(r.Context(), services.GenerateInput{
		AnonKey:       anonKey,
		ClientIP:      clientIP,
		CorrelationID: correlationID,
		TargetRole:    req.TargetRole,
		Tone:          req.Tone,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	// Fallback text still returns 200; Generated tells the client
	// whether the text came from the model or the canned template.
	common.RespondJSON(w, http.StatusOK, out)
}
