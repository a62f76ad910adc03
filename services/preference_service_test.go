package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/sport-events/models"
	"github.com/Dosada05/sport-events/validation"
)

func TestPreferenceService_CreateDefaults(t *testing.T) {
	repo := &fakePrefRepo{}
	svc := NewPreferenceService(nil, repo, discardLogger())

	pref, err := svc.Create(context.Background(), 7, PreferenceInput{SportID: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, pref.UserID)
	assert.Equal(t, models.SkillBeginner, pref.SkillLevel)
	assert.Equal(t, 5, pref.InterestLevel)
}

func TestPreferenceService_CreateErrors(t *testing.T) {
	repo := &fakePrefRepo{validSport: func(id int) bool { return id < 100 }}
	svc := NewPreferenceService(nil, repo, discardLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, PreferenceInput{SportID: 3, SkillLevel: "advanced", InterestLevel: 9})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 1, PreferenceInput{SportID: 3})
	assert.ErrorIs(t, err, ErrPreferenceConflict)

	_, err = svc.Create(ctx, 1, PreferenceInput{SportID: 404})
	assert.ErrorIs(t, err, ErrSportNotFound)

	_, err = svc.Create(ctx, 1, PreferenceInput{SportID: 4, SkillLevel: "expert", InterestLevel: 11})
	var fe validation.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe, "skill_level")
	assert.Contains(t, fe, "interest_level")
}

func TestPreferenceService_UpdateAndDeleteScopedToUser(t *testing.T) {
	repo := &fakePrefRepo{prefs: []models.SportPreference{
		{ID: 1, UserID: 1, SportID: 3, SkillLevel: models.SkillBeginner, InterestLevel: 5},
	}, nextID: 1}
	svc := NewPreferenceService(nil, repo, discardLogger())
	ctx := context.Background()

	_, err := svc.Update(ctx, 2, 1, UpdatePreferenceInput{InterestLevel: intPtr(8)})
	assert.ErrorIs(t, err, ErrPreferenceNotFound)

	level := models.SkillAdvanced
	pref, err := svc.Update(ctx, 1, 1, UpdatePreferenceInput{SkillLevel: &level, InterestLevel: intPtr(8)})
	require.NoError(t, err)
	assert.Equal(t, models.SkillAdvanced, pref.SkillLevel)
	assert.Equal(t, 8, repo.prefs[0].InterestLevel)

	assert.ErrorIs(t, svc.Delete(ctx, 2, 1), ErrPreferenceNotFound)
	require.NoError(t, svc.Delete(ctx, 1, 1))
	assert.Empty(t, repo.prefs)
}

func TestPreferenceService_ReplaceAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &fakePrefRepo{prefs: []models.SportPreference{
		{ID: 1, UserID: 1, SportID: 3},
		{ID: 2, UserID: 2, SportID: 3},
	}, nextID: 2}
	svc := NewPreferenceService(db, repo, discardLogger())

	mock.ExpectBegin()
	mock.ExpectCommit()

	prefs, err := svc.ReplaceAll(context.Background(), 1, []PreferenceInput{
		{SportID: 5, SkillLevel: "intermediate", InterestLevel: 7},
		{SportID: 6},
	})
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, 5, prefs[0].SportID)
	assert.Equal(t, 6, prefs[1].SportID)

	mine, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	others, err := svc.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestPreferenceService_ReplaceAllRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &fakePrefRepo{validSport: func(id int) bool { return id != 404 }}
	svc := NewPreferenceService(db, repo, discardLogger())

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.ReplaceAll(context.Background(), 1, []PreferenceInput{{SportID: 5}, {SportID: 404}})
	assert.ErrorIs(t, err, ErrSportNotFound)
}

func TestPreferenceService_ReplaceAllRejectsDuplicates(t *testing.T) {
	svc := NewPreferenceService(nil, &fakePrefRepo{}, discardLogger())

	_, err := svc.ReplaceAll(context.Background(), 1, []PreferenceInput{{SportID: 5}, {SportID: 5}})
	assert.ErrorIs(t, err, ErrPreferenceConflict)
}
