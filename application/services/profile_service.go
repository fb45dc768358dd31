package services

import (
	"context"
	"sort"

	"cvwizard-backend/domain/resume"
	"cvwizard-backend/infrastructure/persistence/abstractions"
	"cvwizard-backend/infrastructure/persistence/recordstore"
	apperrors "cvwizard-backend/pkg/errors"

	"go.uber.org/zap"
)

// writeBatchSize is the per-call batch limit the record service accepts.
const writeBatchSize = 10

// Tables names the store tables backing the wizard
type Tables struct {
	Profiles   string
	Education  string
	Experience string
}

// ProfileService owns the wizard's persistent state: the profile record
// and its education/experience sub-lists, all scoped to an anonymous key.
type ProfileService struct {
	store  abstractions.RecordStore
	tables Tables
	logger *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(store abstractions.RecordStore, tables Tables, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		tables: tables,
		logger: logger,
	}
}

func ownerFormula(anonKey string) string {
	return recordstore.Equals(resume.FieldAnonKey, anonKey)
}

// Get loads the profile owned by the anonymous key
func (s *ProfileService) Get(ctx context.Context, anonKey string) (*resume.Profile, error) {
	records, err := s.store.List(ctx, s.tables.Profiles, abstractions.ListOptions{
		FilterFormula: ownerFormula(anonKey),
		MaxRecords:    1,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFoundError("profile")
	}

	profile := resume.ProfileFromRecord(records[0])
	return &profile, nil
}

// Save upserts the profile for the anonymous key: the first save
// creates the record, later saves merge into it.
func (s *ProfileService) Save(ctx context.Context, anonKey string, p resume.Profile) (*resume.Profile, error) {
	fields := resume.ProfileFields(p, anonKey)

	existing, err := s.store.List(ctx, s.tables.Profiles, abstractions.ListOptions{
		FilterFormula: ownerFormula(anonKey),
		MaxRecords:    1,
	})
	if err != nil {
		return nil, err
	}

	var saved []abstractions.Record
	if len(existing) == 0 {
		saved, err = s.store.Create(ctx, s.tables.Profiles, []abstractions.Record{{Fields: fields}})
	} else {
		saved, err = s.store.Update(ctx, s.tables.Profiles, []abstractions.Record{{
			ID:     existing[0].ID,
			Fields: fields,
		}}, false)
	}
	if err != nil {
		return nil, err
	}
	if len(saved) == 0 {
		return nil, apperrors.NewExternalError("record store", nil).WithCode("EMPTY_WRITE_RESULT")
	}

	profile := resume.ProfileFromRecord(saved[0])
	return &profile, nil
}

// SetGeneratedText merges a generated free-text section into the
// profile record. Fails with NotFound when no profile exists yet.
func (s *ProfileService) SetGeneratedText(ctx context.Context, anonKey, field, text string) error {
	existing, err := s.store.List(ctx, s.tables.Profiles, abstractions.ListOptions{
		FilterFormula: ownerFormula(anonKey),
		MaxRecords:    1,
	})
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return apperrors.NewNotFoundError("profile")
	}

	_, err = s.store.Update(ctx, s.tables.Profiles, []abstractions.Record{{
		ID: existing[0].ID,
		Fields: map[string]interface{}{
			resume.FieldAnonKey: anonKey,
			field:               text,
		},
	}}, false)
	return err
}

// ListEducation returns the education entries in position order
func (s *ProfileService) ListEducation(ctx context.Context, anonKey string) ([]resume.Education, error) {
	records, err := s.store.List(ctx, s.tables.Education, abstractions.ListOptions{
		FilterFormula: ownerFormula(anonKey),
		Sort:          []abstractions.SortField{{Field: resume.FieldPosition, Direction: "asc"}},
	})
	if err != nil {
		return nil, err
	}

	entries := make([]resume.Education, 0, len(records))
	for _, rec := range records {
		entries = append(entries, resume.EducationFromRecord(rec))
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })
	return entries, nil
}

// ReplaceEducation replaces the whole education list: existing rows for
// the owner are deleted, then the new set is bulk-inserted. The two
// steps are not transactional; a failure between them leaves the list
// empty.
func (s *ProfileService) ReplaceEducation(ctx context.Context, anonKey string, entries []resume.Education) ([]resume.Education, error) {
	records := make([]abstractions.Record, 0, len(entries))
	for i, e := range entries {
		e.Position = i
		records = append(records, abstractions.Record{Fields: resume.EducationFields(e, anonKey)})
	}

	created, err := s.replaceList(ctx, s.tables.Education, anonKey, records)
	if err != nil {
		return nil, err
	}

	result := make([]resume.Education, 0, len(created))
	for _, rec := range created {
		result = append(result, resume.EducationFromRecord(rec))
	}
	return result, nil
}

// ListExperience returns the experience entries in position order
func (s *ProfileService) ListExperience(ctx context.Context, anonKey string) ([]resume.Experience, error) {
	records, err := s.store.List(ctx, s.tables.Experience, abstractions.ListOptions{
		FilterFormula: ownerFormula(anonKey),
		Sort:          []abstractions.SortField{{Field: resume.FieldPosition, Direction: "asc"}},
	})
	if err != nil {
		return nil, err
	}

	entries := make([]resume.Experience, 0, len(records))
	for _, rec := range records {
		entries = append(entries, resume.ExperienceFromRecord(rec))
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })
	return entries, nil
}

// ReplaceExperience replaces the whole experience list, same semantics
// as ReplaceEducation.
func (s *ProfileService) ReplaceExperience(ctx context.Context, anonKey string, entries []resume.Experience) ([]resume.Experience, error) {
	records := make([]abstractions.Record, 0, len(entries))
	for i, e := range entries {
		e.Position = i
		records = append(records, abstractions.Record{Fields: resume.ExperienceFields(e, anonKey)})
	}

	created, err := s.replaceList(ctx, s.tables.Experience, anonKey, records)
	if err != nil {
		return nil, err
	}

	result := make([]resume.Experience, 0, len(created))
	for _, rec := range created {
		result = append(result, resume.ExperienceFromRecord(rec))
	}
	return result, nil
}

// replaceList deletes the owner's existing rows and bulk-inserts the
// replacement set, both in batches the record service accepts.
func (s *ProfileService) replaceList(ctx context.Context, table, anonKey string, records []abstractions.Record) ([]abstractions.Record, error) {
	existing, err := s.store.List(ctx, table, abstractions.ListOptions{
		FilterFormula: ownerFormula(anonKey),
		Fields:        []string{resume.FieldAnonKey},
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(existing))
	for _, rec := range existing {
		ids = append(ids, rec.ID)
	}
	for start := 0; start < len(ids); start += writeBatchSize {
		end := start + writeBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		if _, err := s.store.Delete(ctx, table, ids[start:end]); err != nil {
			return nil, err
		}
	}

	var created []abstractions.Record
	for start := 0; start < len(records); start += writeBatchSize {
		end := start + writeBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch, err := s.store.Create(ctx, table, records[start:end])
		if err != nil {
			return nil, err
		}
		created = append(created, batch...)
	}
	return created, nil
}
