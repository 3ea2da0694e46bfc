package draftRepo_test

import (
	"context"
	"testing"
	"time"

	draftRepo "regwizard/database/repository/draft"
	"regwizard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDraft(savedAt time.Time) models.SavedDraft {
	d := models.NewDraft()
	d.FirstName = "Jane"
	d.Email = "jane@example.com"
	d.Step = 2
	return models.SavedDraft{Draft: d, LastSaved: savedAt.UTC().Truncate(time.Millisecond)}
}

// exerciseDraftRepo checks the behaviour every backend shares.
func exerciseDraftRepo(t *testing.T, repo draftRepo.DraftRepository) {
	t.Helper()
	ctx := context.Background()

	missing, err := repo.Load(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	want := sampleDraft(time.Now())
	require.NoError(t, repo.Save(ctx, "s1", want))

	got, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Draft, got.Draft)
	assert.True(t, want.LastSaved.Equal(got.LastSaved))

	want.Draft.City = "Mumbai"
	require.NoError(t, repo.Save(ctx, "s1", want))
	got, err = repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", got.City)

	require.NoError(t, repo.Delete(ctx, "s1"))
	got, err = repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Delete(ctx, "never-saved"))
}
