package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/testutil"
	"mentalwell/pkg/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	uc      *adminUsecase
	users   *testutil.UserStore
	records *testutil.RecordStore
	audit   *testutil.AuditRecorder
	revoker *fakeRevoker
	admin   *entity.User
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := &adminFixture{
		users:   testutil.NewUserStore(),
		records: &testutil.RecordStore{},
		audit:   &testutil.AuditRecorder{},
		revoker: &fakeRevoker{},
	}
	f.admin = f.users.Add(&entity.User{
		Email: "admin@example.com", PasswordHash: testutil.HashPassword("secret1"),
		Role: entity.RoleAdmin, RegisteredAt: fixedNow.AddDate(0, -2, 0),
	})
	f.uc = NewAdminUsecase(testutil.Logger(), f.users, f.records, &testutil.ConfigStore{}, f.audit, f.revoker, validator.NewValidator()).(*adminUsecase)
	f.uc.now = func() time.Time { return fixedNow }
	return f
}

func TestAdminCreateUser(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	resp, err := f.uc.CreateUser(ctx, f.admin.ID, &dto.AdminCreateUserRequest{
		Email: "nuevo@example.com", Password: "secret1", FirstName: "Nuevo", LastName: "Admin",
		Role: string(entity.RoleAdmin),
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.RoleAdmin), resp.Role)
	assert.Equal(t, []string{entity.AuditActionUserCreate}, f.audit.Actions())

	_, err = f.uc.CreateUser(ctx, f.admin.ID, &dto.AdminCreateUserRequest{
		Email: "nuevo@example.com", Password: "secret1", FirstName: "Otro", LastName: "Más", Role: string(entity.RolePatient),
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, err = f.uc.CreateUser(ctx, f.admin.ID, &dto.AdminCreateUserRequest{
		Email: "psi@example.com", Password: "secret1", FirstName: "P", LastName: "S", Role: string(entity.RolePsychologist),
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "especialidad", verr.Field)

	_, err = f.uc.CreateUser(ctx, f.admin.ID, &dto.AdminCreateUserRequest{Email: "x@example.com", Role: "root"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAdminCannotDeactivateOrDeleteSelf(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	_, err := f.uc.SetStatus(ctx, f.admin.ID, f.admin.ID, false)
	assert.ErrorIs(t, err, ErrCannotModifySelf)
	assert.ErrorIs(t, f.uc.DeleteUser(ctx, f.admin.ID, f.admin.ID), ErrCannotModifySelf)
	assert.True(t, f.users.Get(f.admin.ID).Active())
	assert.Empty(t, f.revoker.Revoked())
}

func TestAdminSetStatusRevokesOnDeactivation(t *testing.T) {
	f := newAdminFixture(t)
	target := f.users.Add(&entity.User{Email: "p@example.com", Role: entity.RolePatient})
	ctx := context.Background()

	resp, err := f.uc.SetStatus(ctx, f.admin.ID, target.ID, false)
	require.NoError(t, err)
	assert.False(t, resp.Active)
	assert.False(t, f.users.Get(target.ID).Active())
	assert.Equal(t, []uuid.UUID{target.ID}, f.revoker.Revoked())

	resp, err = f.uc.SetStatus(ctx, f.admin.ID, target.ID, true)
	require.NoError(t, err)
	assert.True(t, resp.Active)
	assert.Len(t, f.revoker.Revoked(), 1)

	_, err = f.uc.SetStatus(ctx, f.admin.ID, uuid.New(), false)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminDeleteUser(t *testing.T) {
	f := newAdminFixture(t)
	target := f.users.Add(&entity.User{Email: "p@example.com", Role: entity.RolePatient})

	require.NoError(t, f.uc.DeleteUser(context.Background(), f.admin.ID, target.ID))
	assert.Nil(t, f.users.Get(target.ID))
	assert.Equal(t, []uuid.UUID{target.ID}, f.revoker.Revoked())
	assert.Equal(t, []string{entity.AuditActionUserDelete}, f.audit.Actions())
}

func TestAdminListUsersByRole(t *testing.T) {
	f := newAdminFixture(t)
	f.users.Add(&entity.User{Email: "p1@example.com", Role: entity.RolePatient})
	f.users.Add(&entity.User{Email: "p2@example.com", Role: entity.RolePatient, IsActive: entity.Bool(false)})
	ctx := context.Background()

	all, err := f.uc.ListUsers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	patients, err := f.uc.ListUsers(ctx, string(entity.RolePatient))
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "p1@example.com", patients[0].Email)

	_, err = f.uc.ListUsers(ctx, "root")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAdminStats(t *testing.T) {
	f := newAdminFixture(t)
	f.users.Add(&entity.User{Email: "today@example.com", Role: entity.RolePatient, RegisteredAt: fixedNow})
	f.users.Add(&entity.User{Email: "week@example.com", Role: entity.RolePatient, RegisteredAt: fixedNow.AddDate(0, 0, -3)})
	f.users.Add(&entity.User{Email: "month@example.com", Role: entity.RolePsychologist, RegisteredAt: fixedNow.AddDate(0, 0, -20)})
	f.users.Add(&entity.User{Email: "old@example.com", Role: entity.RolePatient, RegisteredAt: fixedNow.AddDate(0, -3, 0), IsActive: entity.Bool(false)})
	r := record(uuid.New(), 0, 5, 5)
	require.NoError(t, f.records.Create(context.Background(), &r))

	stats, err := f.uc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &dto.AdminStatsResponse{
		TotalUsers:       5,
		Patients:         2,
		Psychologists:    1,
		Administrators:   1,
		ActiveUsers:      4,
		InactiveUsers:    1,
		RegisteredToday:  1,
		RegisteredWeek:   2,
		RegisteredMonth:  3,
		EmotionalRecords: 1,
	}, stats)
}

func TestAdminStatsFailsOnStoreError(t *testing.T) {
	f := newAdminFixture(t)
	storeErr := errors.New("connection reset")
	f.users.Err = storeErr

	_, err := f.uc.Stats(context.Background())
	assert.ErrorIs(t, err, storeErr)
}

func TestAdminExport(t *testing.T) {
	f := newAdminFixture(t)
	f.users.Add(&entity.User{
		Email: "psi@example.com", PasswordHash: testutil.HashPassword("secret1"),
		FirstName: "Carlos", LastName: "García", Role: entity.RolePsychologist,
		Specialty: "Clínica", LicenseNumber: "COL-1",
	})
	ctx := context.Background()

	t.Run("csv", func(t *testing.T) {
		out, err := f.uc.Export(ctx, ExportFormatCSV)
		require.NoError(t, err)

		rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, csvHeader, rows[0])
		assert.NotContains(t, string(out), "$2a$")

		var found bool
		for _, row := range rows[1:] {
			if row[1] == "psi@example.com" {
				found = true
				assert.Equal(t, []string{"Carlos", "García", "psicologo"}, row[2:5])
				assert.Equal(t, "true", row[6])
				assert.Equal(t, "COL-1", row[8])
			}
		}
		assert.True(t, found)
	})

	t.Run("json", func(t *testing.T) {
		out, err := f.uc.Export(ctx, ExportFormatJSON)
		require.NoError(t, err)
		assert.NotContains(t, string(out), "$2a$")
		assert.NotContains(t, string(out), "password")

		var export dto.ExportResponse
		require.NoError(t, json.Unmarshal(out, &export))
		assert.Len(t, export.Users, 2)
		assert.Equal(t, int64(2), export.Statistics.TotalUsers)
		assert.True(t, export.ExportDate.Equal(fixedNow))
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := f.uc.Export(ctx, "xml")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestAdminConfig(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	cfg, err := f.uc.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultSystemConfig(), *cfg)

	update := entity.DefaultSystemConfig()
	update.MaxLoginAttempts = 3
	update.BackupFrequency = "semanal"
	_, err = f.uc.UpdateConfig(ctx, f.admin.ID, &update)
	require.NoError(t, err)

	cfg, err = f.uc.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxLoginAttempts)
	assert.Equal(t, []string{entity.AuditActionConfigUpdate}, f.audit.Actions())

	bad := entity.DefaultSystemConfig()
	bad.BackupFrequency = "anual"
	_, err = f.uc.UpdateConfig(ctx, f.admin.ID, &bad)
	assert.Error(t, err)
}
