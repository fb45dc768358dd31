package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cvwizard-backend/infrastructure/persistence/abstractions"
	apperrors "cvwizard-backend/pkg/errors"

	"github.com/google/uuid"
)

// RecordStore is the in-process fallback store used when no hosted
// store is configured. It honors the same contract as the HTTP client:
// guard fields are injected on every write and list calls are scoped to
// the current environment. All table access happens under one RWMutex
// because the server handles requests on real OS threads.
type RecordStore struct {
	mu     sync.RWMutex
	tables map[string][]abstractions.Record
	env    string
	prRef  string
	now    func() time.Time
}

// NewRecordStore creates an empty in-memory store for the given environment
func NewRecordStore(env, prRef string) *RecordStore {
	return &RecordStore{
		tables: make(map[string][]abstractions.Record),
		env:    env,
		prRef:  prRef,
		now:    time.Now,
	}
}

// List returns records matching opts in insertion order unless sorted
func (s *RecordStore) List(ctx context.Context, table string, opts abstractions.ListOptions) ([]abstractions.Record, error) {
	formula := opts.FilterFormula

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []abstractions.Record
	for _, rec := range s.tables[table] {
		if rec.Fields[abstractions.FieldSourceEnv] != s.env {
			continue
		}
		ok, err := matchFormula(rec.Fields, formula)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, cloneRecord(rec))
		}
	}

	sortRecords(result, opts.Sort)

	if opts.MaxRecords > 0 && len(result) > opts.MaxRecords {
		result = result[:opts.MaxRecords]
	}

	if len(opts.Fields) > 0 {
		for i := range result {
			result[i].Fields = projectFields(result[i].Fields, opts.Fields)
		}
	}

	return result, nil
}

// Create inserts records with guard fields forced to the store's environment
func (s *RecordStore) Create(ctx context.Context, table string, records []abstractions.Record) ([]abstractions.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]abstractions.Record, 0, len(records))
	for _, rec := range records {
		stored := abstractions.Record{
			ID:          "rec" + strings.ReplaceAll(uuid.New().String(), "-", "")[:17],
			CreatedTime: s.now().UTC().Format(time.RFC3339),
			Fields:      s.guardFields(rec.Fields),
		}
		s.tables[table] = append(s.tables[table], stored)
		created = append(created, cloneRecord(stored))
	}
	return created, nil
}

// Update modifies records by id, merging or replacing the field maps
func (s *RecordStore) Update(ctx context.Context, table string, records []abstractions.Record, replace bool) ([]abstractions.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]abstractions.Record, 0, len(records))
	for _, rec := range records {
		idx := s.indexOf(table, rec.ID)
		if idx < 0 {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("record %q", rec.ID))
		}

		stored := s.tables[table][idx]
		if replace {
			stored.Fields = s.guardFields(rec.Fields)
		} else {
			merged := cloneFields(stored.Fields)
			for k, v := range rec.Fields {
				merged[k] = v
			}
			stored.Fields = s.guardFields(merged)
		}
		s.tables[table][idx] = stored
		updated = append(updated, cloneRecord(stored))
	}
	return updated, nil
}

// Delete removes records by id. Unknown ids report deleted=false.
func (s *RecordStore) Delete(ctx context.Context, table string, ids []string) ([]abstractions.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]abstractions.DeleteResult, 0, len(ids))
	for _, id := range ids {
		idx := s.indexOf(table, id)
		if idx < 0 {
			results = append(results, abstractions.DeleteResult{ID: id, Deleted: false})
			continue
		}
		s.tables[table] = append(s.tables[table][:idx], s.tables[table][idx+1:]...)
		results = append(results, abstractions.DeleteResult{ID: id, Deleted: true})
	}
	return results, nil
}

func (s *RecordStore) indexOf(table, id string) int {
	for i, rec := range s.tables[table] {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

func (s *RecordStore) guardFields(fields map[string]interface{}) map[string]interface{} {
	guarded := cloneFields(fields)
	guarded[abstractions.FieldSourceEnv] = s.env
	guarded[abstractions.FieldPRRef] = s.prRef
	return guarded
}

func cloneRecord(rec abstractions.Record) abstractions.Record {
	return abstractions.Record{
		ID:          rec.ID,
		CreatedTime: rec.CreatedTime,
		Fields:      cloneFields(rec.Fields),
	}
}

func cloneFields(fields map[string]interface{}) map[string]interface{} {
	cloned := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		cloned[k] = v
	}
	return cloned
}

func projectFields(fields map[string]interface{}, names []string) map[string]interface{} {
	projected := make(map[string]interface{}, len(names))
	for _, name := range names {
		if v, ok := fields[name]; ok {
			projected[name] = v
		}
	}
	return projected
}

func sortRecords(records []abstractions.Record, sortFields []abstractions.SortField) {
	if len(sortFields) == 0 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, sf := range sortFields {
			cmp := compareFieldValues(records[i].Fields[sf.Field], records[j].Fields[sf.Field])
			if cmp == 0 {
				continue
			}
			if strings.EqualFold(sf.Direction, "desc") {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// compareFieldValues orders numbers numerically and everything else
// lexically, matching how the hosted service sorts.
func compareFieldValues(a, b interface{}) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fieldString(a), fieldString(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

func fieldString(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
