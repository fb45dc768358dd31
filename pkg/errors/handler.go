package errors

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// ErrorResponse represents the API error response format
type ErrorResponse struct {
	Error         bool                   `json:"error"`
	Type          string                 `json:"type"`
	Message       string                 `json:"message"`
	Code          string                 `json:"code,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
}

// ErrorHandler handles errors and sends appropriate HTTP responses
type ErrorHandler struct {
	logger        *zap.Logger
	debug         bool
	defaultStatus int
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{
		logger:        logger,
		debug:         debug,
		defaultStatus: http.StatusInternalServerError,
	}
}

// Handle processes an error and sends an HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	correlationID := w.Header().Get("X-Correlation-ID")
	if correlationID == "" {
		correlationID = r.Header.Get("X-Correlation-ID")
	}

	var status int
	var response ErrorResponse

	if appErr := GetAppError(err); appErr != nil {
		status = appErr.HTTPStatus
		if status == 0 {
			status = h.defaultStatus
		}

		response = ErrorResponse{
			Error:         true,
			Type:          string(appErr.Type),
			Message:       appErr.Message,
			Code:          appErr.Code,
			Details:       appErr.Details,
			CorrelationID: correlationID,
		}

		h.logError(r, appErr, status, correlationID)

		if h.debug && appErr.StackTrace != "" {
			if response.Details == nil {
				response.Details = make(map[string]interface{})
			}
			response.Details["stack_trace"] = appErr.StackTrace
		}

		// Rate limit errors carry a retry hint for well-behaved clients
		if appErr.Type == ErrorTypeRateLimit {
			if retryAfter, ok := appErr.Details["retry_after_seconds"].(int); ok {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			}
		}
	} else {
		status = h.defaultStatus
		response = ErrorResponse{
			Error:         true,
			Type:          string(ErrorTypeInternal),
			Message:       "An internal error occurred",
			CorrelationID: correlationID,
		}

		h.logger.Error("Unhandled error",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.String("correlationID", correlationID),
			zap.Error(err),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// logError logs an application error with severity based on status
func (h *ErrorHandler) logError(r *http.Request, appErr *AppError, status int, correlationID string) {
	fields := []zap.Field{
		zap.String("type", string(appErr.Type)),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Int("status", status),
		zap.String("correlationID", correlationID),
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}

	switch {
	case status >= 500:
		h.logger.Error(appErr.Message, fields...)
	case status == http.StatusTooManyRequests:
		h.logger.Warn(appErr.Message, fields...)
	default:
		h.logger.Info(appErr.Message, fields...)
	}
}
