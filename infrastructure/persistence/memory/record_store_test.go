package memory

import (
	"context"
	"testing"

	"cvwizard-backend/infrastructure/persistence/abstractions"
	apperrors "cvwizard-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStore_CreateInjectsGuardFields(t *testing.T) {
	store := NewRecordStore("dev", "pr-42")

	created, err := store.Create(context.Background(), "profiles", []abstractions.Record{{
		Fields: map[string]interface{}{
			"full_name":  "Ada",
			"source_env": "prod", // forged, must be overwritten
		},
	}})
	require.NoError(t, err)
	require.Len(t, created, 1)

	assert.NotEmpty(t, created[0].ID)
	assert.NotEmpty(t, created[0].CreatedTime)
	assert.Equal(t, "dev", created[0].Fields["source_env"])
	assert.Equal(t, "pr-42", created[0].Fields["pr_ref"])
	assert.Equal(t, "Ada", created[0].Fields["full_name"])
}

func TestRecordStore_ListScopedToEnvironment(t *testing.T) {
	ctx := context.Background()

	devStore := NewRecordStore("dev", "local")
	prodStore := &RecordStore{tables: devStore.tables, env: "prod", prRef: "main", now: devStore.now}

	_, err := devStore.Create(ctx, "profiles", []abstractions.Record{{
		Fields: map[string]interface{}{"anon_key": "abc"},
	}})
	require.NoError(t, err)
	_, err = prodStore.Create(ctx, "profiles", []abstractions.Record{{
		Fields: map[string]interface{}{"anon_key": "abc"},
	}})
	require.NoError(t, err)

	devRecords, err := devStore.List(ctx, "profiles", abstractions.ListOptions{})
	require.NoError(t, err)
	require.Len(t, devRecords, 1)
	assert.Equal(t, "dev", devRecords[0].Fields["source_env"])

	prodRecords, err := prodStore.List(ctx, "profiles", abstractions.ListOptions{})
	require.NoError(t, err)
	require.Len(t, prodRecords, 1)
	assert.Equal(t, "prod", prodRecords[0].Fields["source_env"])
}

func TestRecordStore_ListFilterSortProject(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore("dev", "local")

	_, err := store.Create(ctx, "education", []abstractions.Record{
		{Fields: map[string]interface{}{"anon_key": "abc", "school": "B", "position": 1}},
		{Fields: map[string]interface{}{"anon_key": "abc", "school": "C", "position": 10}},
		{Fields: map[string]interface{}{"anon_key": "abc", "school": "A", "position": 2}},
		{Fields: map[string]interface{}{"anon_key": "xyz", "school": "other", "position": 0}},
	})
	require.NoError(t, err)

	records, err := store.List(ctx, "education", abstractions.ListOptions{
		FilterFormula: "{anon_key}='abc'",
		Sort:          []abstractions.SortField{{Field: "position", Direction: "asc"}},
		Fields:        []string{"school"},
	})
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Numeric sort: 1, 2, 10 — not lexicographic
	assert.Equal(t, "B", records[0].Fields["school"])
	assert.Equal(t, "A", records[1].Fields["school"])
	assert.Equal(t, "C", records[2].Fields["school"])

	// Projection keeps only the requested fields
	_, hasPosition := records[0].Fields["position"]
	assert.False(t, hasPosition)
}

func TestRecordStore_ListMaxRecords(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore("dev", "local")

	_, err := store.Create(ctx, "profiles", []abstractions.Record{
		{Fields: map[string]interface{}{"n": 1}},
		{Fields: map[string]interface{}{"n": 2}},
		{Fields: map[string]interface{}{"n": 3}},
	})
	require.NoError(t, err)

	records, err := store.List(ctx, "profiles", abstractions.ListOptions{MaxRecords: 2})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRecordStore_UpdateMergeAndReplace(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore("dev", "local")

	created, err := store.Create(ctx, "profiles", []abstractions.Record{{
		Fields: map[string]interface{}{"full_name": "Ada", "phone": "123"},
	}})
	require.NoError(t, err)
	id := created[0].ID

	t.Run("merge keeps untouched fields", func(t *testing.T) {
		updated, err := store.Update(ctx, "profiles", []abstractions.Record{{
			ID:     id,
			Fields: map[string]interface{}{"phone": "456"},
		}}, false)
		require.NoError(t, err)
		assert.Equal(t, "Ada", updated[0].Fields["full_name"])
		assert.Equal(t, "456", updated[0].Fields["phone"])
	})

	t.Run("replace drops untouched fields", func(t *testing.T) {
		updated, err := store.Update(ctx, "profiles", []abstractions.Record{{
			ID:     id,
			Fields: map[string]interface{}{"phone": "789"},
		}}, true)
		require.NoError(t, err)
		_, hasName := updated[0].Fields["full_name"]
		assert.False(t, hasName)
		assert.Equal(t, "789", updated[0].Fields["phone"])
		assert.Equal(t, "dev", updated[0].Fields["source_env"])
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := store.Update(ctx, "profiles", []abstractions.Record{{
			ID:     "rec_missing",
			Fields: map[string]interface{}{},
		}}, false)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestRecordStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore("dev", "local")

	created, err := store.Create(ctx, "education", []abstractions.Record{
		{Fields: map[string]interface{}{"school": "A"}},
	})
	require.NoError(t, err)

	results, err := store.Delete(ctx, "education", []string{created[0].ID, "rec_missing"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Deleted)
	assert.False(t, results[1].Deleted)

	remaining, err := store.List(ctx, "education", abstractions.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestRecordStore_ListDoesNotAliasStorage(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore("dev", "local")

	_, err := store.Create(ctx, "profiles", []abstractions.Record{{
		Fields: map[string]interface{}{"full_name": "Ada"},
	}})
	require.NoError(t, err)

	records, err := store.List(ctx, "profiles", abstractions.ListOptions{})
	require.NoError(t, err)
	records[0].Fields["full_name"] = "mutated"

	fresh, err := store.List(ctx, "profiles", abstractions.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Ada", fresh[0].Fields["full_name"])
}

func TestMatchFormula(t *testing.T) {
	fields := map[string]interface{}{
		"anon_key":  "abc",
		"full_name": "O'Brien",
		"position":  3,
	}

	cases := []struct {
		name    string
		formula string
		want    bool
	}{
		{"empty matches all", "", true},
		{"string equality", "{anon_key}='abc'", true},
		{"string mismatch", "{anon_key}='xyz'", false},
		{"escaped quote", `{full_name}='O\'Brien'`, true},
		{"numeric field stringified", "{position}='3'", true},
		{"missing field equals empty", "{missing}=''", true},
		{"missing field nonempty", "{missing}='x'", false},
		{"and all true", "AND({anon_key}='abc',{position}='3')", true},
		{"and one false", "AND({anon_key}='abc',{position}='4')", false},
		{"nested and", "AND(AND({anon_key}='abc'),{position}='3')", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := matchFormula(fields, tc.formula)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("unsupported formula errors", func(t *testing.T) {
		_, err := matchFormula(fields, "OR({a}='1',{b}='2')")
		require.Error(t, err)
	})
}
