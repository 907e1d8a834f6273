package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeRevoker struct {
	mu      sync.Mutex
	revoked []uuid.UUID
	err     error
}

func (f *fakeRevoker) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, userID)
	return f.err
}

func (f *fakeRevoker) Revoked() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.revoked...)
}

func patient(users *testutil.UserStore) *entity.User {
	return users.Add(&entity.User{
		Email:        "lucia@example.com",
		PasswordHash: testutil.HashPassword("secret1"),
		FirstName:    "Lucía",
		LastName:     "Martín",
		Role:         entity.RolePatient,
	})
}

func TestUpdateProfile(t *testing.T) {
	users := testutil.NewUserStore()
	u := patient(users)
	users.Add(&entity.User{Email: "taken@example.com", Role: entity.RolePatient})
	audit := &testutil.AuditRecorder{}
	uc := NewProfileUsecase(testutil.Logger(), users, audit, &fakeRevoker{})
	ctx := context.Background()

	resp, err := uc.UpdateProfile(ctx, u.ID, &dto.UpdateProfileRequest{
		Email:       "lucia.m@example.com",
		FirstName:   " Lucía ",
		LastName:    "Martín Ruiz",
		BirthDate:   "1991-02-03",
		Specialty:   "not for patients",
		Profession:  "Ingeniera",
	})
	require.NoError(t, err)
	assert.Equal(t, "lucia.m@example.com", resp.Email)
	assert.Equal(t, "Lucía", resp.FirstName)
	assert.Equal(t, "1991-02-03", resp.BirthDate)
	assert.Empty(t, resp.Specialty)
	assert.Equal(t, "Martín Ruiz", users.Get(u.ID).LastName)
	assert.Equal(t, []string{entity.AuditActionProfileUpdate}, audit.Actions())

	_, err = uc.UpdateProfile(ctx, u.ID, &dto.UpdateProfileRequest{Email: "taken@example.com", FirstName: "L", LastName: "M"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = uc.UpdateProfile(ctx, uuid.New(), &dto.UpdateProfileRequest{Email: "x@example.com", FirstName: "L", LastName: "M"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfilePsychologistKeepsCredentials(t *testing.T) {
	users := testutil.NewUserStore()
	psi := users.Add(&entity.User{
		Email: "psi@example.com", Role: entity.RolePsychologist,
		Specialty: "Clínica", LicenseNumber: "COL-1",
	})
	uc := NewProfileUsecase(testutil.Logger(), users, &testutil.AuditRecorder{}, &fakeRevoker{})

	_, err := uc.UpdateProfile(context.Background(), psi.ID, &dto.UpdateProfileRequest{
		Email: "psi@example.com", FirstName: "Carlos", LastName: "García", Specialty: "Clínica",
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "especialidad", verr.Field)
	assert.Equal(t, "COL-1", users.Get(psi.ID).LicenseNumber)
}

func TestPreferencesMerge(t *testing.T) {
	users := testutil.NewUserStore()
	u := patient(users)
	uc := NewProfileUsecase(testutil.Logger(), users, &testutil.AuditRecorder{}, &fakeRevoker{})
	ctx := context.Background()

	prefs, err := uc.GetPreferences(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, prefs)

	_, err = uc.UpdatePreferences(ctx, u.ID, entity.JSON{"tema": "oscuro", "notificaciones": true})
	require.NoError(t, err)

	prefs, err = uc.UpdatePreferences(ctx, u.ID, entity.JSON{"tema": nil, "idioma": "es"})
	require.NoError(t, err)
	assert.Equal(t, entity.JSON{"notificaciones": true, "idioma": "es"}, prefs)

	stored, err := uc.GetPreferences(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, prefs, stored)
}

func TestChangePassword(t *testing.T) {
	users := testutil.NewUserStore()
	u := patient(users)
	audit := &testutil.AuditRecorder{}
	uc := NewProfileUsecase(testutil.Logger(), users, audit, &fakeRevoker{})
	ctx := context.Background()

	err := uc.ChangePassword(ctx, u.ID, &dto.ChangePasswordRequest{CurrentPassword: "wrong!", NewPassword: "newpass", ConfirmPassword: "newpass"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = uc.ChangePassword(ctx, u.ID, &dto.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "newpass", ConfirmPassword: "newpass"})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.Get(u.ID).PasswordHash), []byte("newpass")))
	assert.Equal(t, []string{entity.AuditActionPasswordChange}, audit.Actions())
}

func TestDeleteAccountRevokesSessions(t *testing.T) {
	users := testutil.NewUserStore()
	u := patient(users)
	revoker := &fakeRevoker{err: errors.New("redis down")}
	uc := NewProfileUsecase(testutil.Logger(), users, &testutil.AuditRecorder{}, revoker)

	require.NoError(t, uc.DeleteAccount(context.Background(), u.ID))
	assert.Nil(t, users.Get(u.ID))
	assert.Equal(t, []uuid.UUID{u.ID}, revoker.Revoked())

	assert.ErrorIs(t, uc.DeleteAccount(context.Background(), u.ID), ErrUserNotFound)
}
