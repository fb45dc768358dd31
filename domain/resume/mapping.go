package resume

import (
	"fmt"

	"cvwizard-backend/infrastructure/persistence/abstractions"
)

// Record store column names. FieldAnonKey is the ownership boundary:
// every read and write is scoped to it.
const (
	FieldAnonKey       = "anon_key"
	FieldFullName      = "full_name"
	FieldEmail         = "email"
	FieldPhone         = "phone"
	FieldJobTitle      = "job_title"
	FieldSkills        = "skills"
	FieldSelfPromotion = "self_promotion"
	FieldCareerSummary = "career_summary"
	FieldWizardStep    = "wizard_step"

	FieldSchool      = "school"
	FieldDegree      = "degree"
	FieldStudyField  = "field_of_study"
	FieldStartDate   = "start_date"
	FieldEndDate     = "end_date"
	FieldNote        = "note"
	FieldCompany     = "company"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPosition    = "position"
)

// ProfileFields maps a profile onto store columns, tagged with its owner
func ProfileFields(p Profile, anonKey string) map[string]interface{} {
	fields := map[string]interface{}{
		FieldAnonKey:  anonKey,
		FieldFullName: p.FullName,
	}
	setIfNotEmpty(fields, FieldEmail, p.Email)
	setIfNotEmpty(fields, FieldPhone, p.Phone)
	setIfNotEmpty(fields, FieldJobTitle, p.JobTitle)
	setIfNotEmpty(fields, FieldSelfPromotion, p.SelfPromotion)
	setIfNotEmpty(fields, FieldCareerSummary, p.CareerSummary)
	setIfNotEmpty(fields, FieldWizardStep, p.WizardStep)
	if len(p.Skills) > 0 {
		fields[FieldSkills] = p.Skills
	}
	return fields
}

// ProfileFromRecord rebuilds a profile from a store record
func ProfileFromRecord(rec abstractions.Record) Profile {
	return Profile{
		ID:            rec.ID,
		FullName:      fieldString(rec.Fields, FieldFullName),
		Email:         fieldString(rec.Fields, FieldEmail),
		Phone:         fieldString(rec.Fields, FieldPhone),
		JobTitle:      fieldString(rec.Fields, FieldJobTitle),
		Skills:        fieldStrings(rec.Fields, FieldSkills),
		SelfPromotion: fieldString(rec.Fields, FieldSelfPromotion),
		CareerSummary: fieldString(rec.Fields, FieldCareerSummary),
		WizardStep:    fieldString(rec.Fields, FieldWizardStep),
		CreatedTime:   rec.CreatedTime,
	}
}

// EducationFields maps an education entry onto store columns
func EducationFields(e Education, anonKey string) map[string]interface{} {
	fields := map[string]interface{}{
		FieldAnonKey:  anonKey,
		FieldSchool:   e.School,
		FieldPosition: e.Position,
	}
	setIfNotEmpty(fields, FieldDegree, e.Degree)
	setIfNotEmpty(fields, FieldStudyField, e.Field)
	setIfNotEmpty(fields, FieldStartDate, e.StartDate)
	setIfNotEmpty(fields, FieldEndDate, e.EndDate)
	setIfNotEmpty(fields, FieldNote, e.Note)
	return fields
}

// EducationFromRecord rebuilds an education entry from a store record
func EducationFromRecord(rec abstractions.Record) Education {
	return Education{
		ID:        rec.ID,
		School:    fieldString(rec.Fields, FieldSchool),
		Degree:    fieldString(rec.Fields, FieldDegree),
		Field:     fieldString(rec.Fields, FieldStudyField),
		StartDate: fieldString(rec.Fields, FieldStartDate),
		EndDate:   fieldString(rec.Fields, FieldEndDate),
		Note:      fieldString(rec.Fields, FieldNote),
		Position:  fieldInt(rec.Fields, FieldPosition),
	}
}

// ExperienceFields maps an experience entry onto store columns
func ExperienceFields(e Experience, anonKey string) map[string]interface{} {
	fields := map[string]interface{}{
		FieldAnonKey:  anonKey,
		FieldCompany:  e.Company,
		FieldPosition: e.Position,
	}
	setIfNotEmpty(fields, FieldTitle, e.Title)
	setIfNotEmpty(fields, FieldStartDate, e.StartDate)
	setIfNotEmpty(fields, FieldEndDate, e.EndDate)
	setIfNotEmpty(fields, FieldDescription, e.Description)
	return fields
}

// ExperienceFromRecord rebuilds an experience entry from a store record
func ExperienceFromRecord(rec abstractions.Record) Experience {
	return Experience{
		ID:          rec.ID,
		Company:     fieldString(rec.Fields, FieldCompany),
		Title:       fieldString(rec.Fields, FieldTitle),
		StartDate:   fieldString(rec.Fields, FieldStartDate),
		EndDate:     fieldString(rec.Fields, FieldEndDate),
		Description: fieldString(rec.Fields, FieldDescription),
		Position:    fieldInt(rec.Fields, FieldPosition),
	}
}

func setIfNotEmpty(fields map[string]interface{}, key, value string) {
	if value != "" {
		fields[key] = value
	}
}

func fieldString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldInt(fields map[string]interface{}, key string) int {
	switch v := fields[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// fieldStrings handles both decoded JSON arrays and native string slices
func fieldStrings(fields map[string]interface{}, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return nil
	}
}
