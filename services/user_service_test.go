package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/sport-events/models"
	"github.com/Dosada05/sport-events/validation"
)

func TestUserService_UpdateProfile(t *testing.T) {
	repo := newFakeUserRepo(&models.User{
		ID: 1, Username: "anna", IsActive: true, PasswordHash: "hash",
		DefaultLatitude: floatPtr(47.5), DefaultLongitude: floatPtr(19.04), DefaultSearchRadius: 10,
	})
	svc := NewUserService(repo)

	user, err := svc.UpdateProfile(context.Background(), 1, UpdateProfileInput{
		FirstName:           strPtr(" Anna "),
		DefaultSearchRadius: intPtr(25),
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna", user.FirstName)
	assert.Equal(t, 25, user.DefaultSearchRadius)
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, 25, repo.users[1].DefaultSearchRadius)

	user, err = svc.UpdateProfile(context.Background(), 1, UpdateProfileInput{ClearLocation: true})
	require.NoError(t, err)
	assert.Nil(t, user.DefaultLatitude)
	assert.Nil(t, user.DefaultLongitude)
}

func TestUserService_UpdateProfileValidation(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(&models.User{ID: 1, IsActive: true}))

	_, err := svc.UpdateProfile(context.Background(), 1, UpdateProfileInput{
		DefaultLatitude:     floatPtr(91),
		DefaultSearchRadius: intPtr(101),
	})
	fe, ok := err.(validation.FieldErrors)
	require.True(t, ok, "expected FieldErrors, got %v", err)
	assert.Contains(t, fe, "default_latitude")
	assert.Contains(t, fe, "default_search_radius")
}

func TestUserService_GetPublicProfile(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(
		&models.User{ID: 1, Username: "anna", FirstName: "Anna", LastName: "Kovács", IsActive: true},
		&models.User{ID: 2, Username: "gone"},
	))

	pub, err := svc.GetPublicProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Kovács Anna", pub.FullName)

	_, err = svc.GetPublicProfile(context.Background(), 2)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.GetPublicProfile(context.Background(), 3)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
