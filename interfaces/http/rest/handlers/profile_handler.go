package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"cvwizard-backend/domain/resume"
	"cvwizard-backend/pkg/common"
	apperrors "cvwizard-backend/pkg/errors"
	"cvwizard-backend/pkg/utils"

	"go.uber.org/zap"
)

// ProfileService is the application dependency of the profile handler
type ProfileService interface {
	Get(ctx context.Context, anonKey string) (*resume.Profile, error)
	Save(ctx context.Context, anonKey string, p resume.Profile) (*resume.Profile, error)
	ListEducation(ctx context.Context, anonKey string) ([]resume.Education, error)
	ReplaceEducation(ctx context.Context, anonKey string, entries []resume.Education) ([]resume.Education, error)
	ListExperience(ctx context.Context, anonKey string) ([]resume.Experience, error)
	ReplaceExperience(ctx context.Context, anonKey string, entries []resume.Experience) ([]resume.Experience, error)
}

// ProfileHandler handles wizard state HTTP requests
type ProfileHandler struct {
	service      ProfileService
	errorHandler *apperrors.ErrorHandler
	logger       *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service ProfileService, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		service:      service,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// SaveProfileRequest represents the request body for saving the profile
type SaveProfileRequest struct {
	FullName   string   `json:"full_name" validate:"required,min=1,max=120"`
	Email      string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string   `json:"phone,omitempty" validate:"omitempty,max=40"`
	JobTitle   string   `json:"job_title,omitempty" validate:"omitempty,max=120"`
	Skills     []string `json:"skills,omitempty" validate:"omitempty,max=30,dive,min=1,max=60"`
	WizardStep string   `json:"wizard_step,omitempty" validate:"omitempty,oneof=basics education experience self_promotion summary done"`
}

// EducationEntry represents one education row in a replace request
type EducationEntry struct {
	School    string `json:"school" validate:"required,max=200"`
	Degree    string `json:"degree,omitempty" validate:"omitempty,max=120"`
	Field     string `json:"field,omitempty" validate:"omitempty,max=120"`
	StartDate string `json:"start_date,omitempty" validate:"omitempty,max=20"`
	EndDate   string `json:"end_date,omitempty" validate:"omitempty,max=20"`
	Note      string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// ReplaceEducationRequest replaces the whole education list
type ReplaceEducationRequest struct {
	Entries []EducationEntry `json:"entries" validate:"max=20,dive"`
}

// ExperienceEntry represents one experience row in a replace request
type ExperienceEntry struct {
	Company     string `json:"company" validate:"required,max=200"`
	Title       string `json:"title,omitempty" validate:"omitempty,max=120"`
	StartDate   string `json:"start_date,omitempty" validate:"omitempty,max=20"`
	EndDate     string `json:"end_date,omitempty" validate:"omitempty,max=20"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// ReplaceExperienceRequest replaces the whole experience list
type ReplaceExperienceRequest struct {
	Entries []ExperienceEntry `json:"entries" validate:"max=20,dive"`
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	anonKey, ok := common.GetAnonKey(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.NewUnauthorizedError("missing anonymous identity"))
		return
	}

	profile, err := h.service.Get(r.Context(), anonKey)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, profile)
}

// SaveProfile handles POST /profile
func (h *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	anonKey, ok := common.GetAnonKey(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.NewUnauthorizedError("missing anonymous identity"))
		return
	}

	var req SaveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	profile, err := h.service.Save(r.Context(), anonKey, resume.Profile{
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		JobTitle:   req.JobTitle,
		Skills:     req.Skills,
		WizardStep: req.WizardStep,
	})
	if err != nil {
		h.logger.Error("Failed to save profile", zap.Error(err))
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, profile)
}

// GetEducation handles GET /profile/education
func (h *ProfileHandler) GetEducation(w http.ResponseWriter, r *http.Request) {
	anonKey, ok := common.GetAnonKey(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.NewUnauthorizedError("missing anonymous identity"))
		return
	}

	entries, err := h.service.ListEducation(r.Context(), anonKey)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, entries)
}

// ReplaceEducation handles PUT /profile/education
func (h *ProfileHandler) ReplaceEducation(w http.ResponseWriter, r *http.Request) {
	anonKey, ok := common.GetAnonKey(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.NewUnauthorizedError("missing anonymous identity"))
		return
	}

	var req ReplaceEducationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	entries := make([]resume.Education, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, resume.Education{
			School:    e.School,
			Degree:    e.Degree,
			Field:     e.Field,
			StartDate: e.StartDate,
			EndDate:   e.EndDate,
			Note:      e.Note,
		})
	}

	saved, err := h.service.ReplaceEducation(r.Context(), anonKey, entries)
	if err != nil {
		h.logger.Error("Failed to replace education list", zap.Error(err))
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, saved)
}

// GetExperience handles GET /profile/experience
func (h *ProfileHandler) GetExperience(w http.ResponseWriter, r *http.Request) {
	anonKey, ok := common.GetAnonKey(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.NewUnauthorizedError("missing anonymous identity"))
		return
	}

	entries, err := h.service.ListExperience(r.Context(), anonKey)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, entries)
}

// ReplaceExperience handles PUT /profile/experience
func (h *ProfileHandler) ReplaceExperience(w http.ResponseWriter, r *http.Request) {
	anonKey, ok := common.GetAnonKey(r.Context())
	if !ok {
		h.errorHandler.Handle(w, r, apperrors.NewUnauthorizedError("missing anonymous identity"))
		return
	}

	var req ReplaceExperienceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	entries := make([]resume.Experience, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, resume.Experience{
			Company:     e.Company,
			Title:       e.Title,
			StartDate:   e.StartDate,
			EndDate:     e.EndDate,
			Description: e.Description,
		})
	}

	saved, err := h.service.ReplaceExperience(r.Context(), anonKey, entries)
	if err != nil {
		h.logger.Error("Failed to replace experience list", zap.Error(err))
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, saved)
}
