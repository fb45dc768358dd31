package services

import (
	"context"
	"fmt"
	"testing"

	"cvwizard-backend/domain/resume"
	"cvwizard-backend/infrastructure/persistence/memory"
	apperrors "cvwizard-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProfileService() *ProfileService {
	store := memory.NewRecordStore("dev", "local")
	return NewProfileService(store, Tables{
		Profiles:   "profiles",
		Education:  "education",
		Experience: "experience",
	}, zap.NewNop())
}

func TestProfileService_GetAndSave(t *testing.T) {
	ctx := context.Background()
	svc := newTestProfileService()

	t.Run("get before save is not found", func(t *testing.T) {
		_, err := svc.Get(ctx, "anon-1")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("first save creates", func(t *testing.T) {
		saved, err := svc.Save(ctx, "anon-1", resume.Profile{
			FullName:   "Ada Lovelace",
			Email:      "ada@example.com",
			Skills:     []string{"math", "programming"},
			WizardStep: resume.StepBasics,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, "Ada Lovelace", saved.FullName)
	})

	t.Run("second save merges into the same record", func(t *testing.T) {
		first, err := svc.Get(ctx, "anon-1")
		require.NoError(t, err)

		saved, err := svc.Save(ctx, "anon-1", resume.Profile{
			FullName:   "Ada Lovelace",
			JobTitle:   "Engineer",
			WizardStep: resume.StepEducation,
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, saved.ID)
		assert.Equal(t, "Engineer", saved.JobTitle)
		// Merged update keeps fields the new payload omitted
		assert.Equal(t, "ada@example.com", saved.Email)
	})

	t.Run("profiles are isolated per anon key", func(t *testing.T) {
		_, err := svc.Get(ctx, "anon-2")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestProfileService_SetGeneratedText(t *testing.T) {
	ctx := context.Background()
	svc := newTestProfileService()

	t.Run("fails without a profile", func(t *testing.T) {
		err := svc.SetGeneratedText(ctx, "anon-1", resume.FieldSelfPromotion, "text")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("merges the section into the profile", func(t *testing.T) {
		_, err := svc.Save(ctx, "anon-1", resume.Profile{FullName: "Ada"})
		require.NoError(t, err)

		require.NoError(t, svc.SetGeneratedText(ctx, "anon-1", resume.FieldSelfPromotion, "I am great."))

		profile, err := svc.Get(ctx, "anon-1")
		require.NoError(t, err)
		assert.Equal(t, "I am great.", profile.SelfPromotion)
		assert.Equal(t, "Ada", profile.FullName)
	})
}

func TestProfileService_ReplaceEducation(t *testing.T) {
	ctx := context.Background()
	svc := newTestProfileService()

	first := []resume.Education{
		{School: "Old School A"},
		{School: "Old School B"},
	}
	saved, err := svc.ReplaceEducation(ctx, "anon-1", first)
	require.NoError(t, err)
	require.Len(t, saved, 2)

	// Replacing must remove every previous row, not append.
	second := []resume.Education{
		{School: "New School", Degree: "BSc", Field: "CS"},
	}
	saved, err = svc.ReplaceEducation(ctx, "anon-1", second)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "New School", saved[0].School)

	listed, err := svc.ListEducation(ctx, "anon-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "New School", listed[0].School)
}

func TestProfileService_ReplaceEducation_PositionsAndBatching(t *testing.T) {
	ctx := context.Background()
	svc := newTestProfileService()

	// More than one write batch worth of rows
	entries := make([]resume.Education, 0, 15)
	for i := 0; i < 15; i++ {
		entries = append(entries, resume.Education{School: fmt.Sprintf("School %02d", i)})
	}

	saved, err := svc.ReplaceEducation(ctx, "anon-1", entries)
	require.NoError(t, err)
	require.Len(t, saved, 15)

	listed, err := svc.ListEducation(ctx, "anon-1")
	require.NoError(t, err)
	require.Len(t, listed, 15)
	for i, e := range listed {
		assert.Equal(t, i, e.Position)
		assert.Equal(t, fmt.Sprintf("School %02d", i), e.School)
	}
}

func TestProfileService_ReplaceExperience(t *testing.T) {
	ctx := context.Background()
	svc := newTestProfileService()

	saved, err := svc.ReplaceExperience(ctx, "anon-1", []resume.Experience{
		{Company: "Acme", Title: "Engineer", StartDate: "2020-01", EndDate: "2023-06"},
		{Company: "Globex", Title: "Senior Engineer", StartDate: "2023-07"},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)

	listed, err := svc.ListExperience(ctx, "anon-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Acme", listed[0].Company)
	assert.Equal(t, "Globex", listed[1].Company)
	assert.Equal(t, 0, listed[0].Position)
	assert.Equal(t, 1, listed[1].Position)
}

func TestProfileService_ListsIsolatedPerOwner(t *testing.T) {
	ctx := context.Background()
	svc := newTestProfileService()

	_, err := svc.ReplaceExperience(ctx, "anon-1", []resume.Experience{{Company: "Acme"}})
	require.NoError(t, err)
	_, err = svc.ReplaceExperience(ctx, "anon-2", []resume.Experience{{Company: "Globex"}})
	require.NoError(t, err)

	listed, err := svc.ListExperience(ctx, "anon-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Acme", listed[0].Company)

	// Replacing one owner's list leaves the other untouched
	_, err = svc.ReplaceExperience(ctx, "anon-1", nil)
	require.NoError(t, err)

	listed, err = svc.ListExperience(ctx, "anon-2")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Globex", listed[0].Company)
}
