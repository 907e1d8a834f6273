package usecase

import (
	"context"
	"errors"
	"testing"

	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/testutil"
	"mentalwell/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validRegisterRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:           "lucia@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		FirstName:       "Lucía",
		LastName:        "Martín",
		Role:            string(entity.RolePatient),
		AcceptTerms:     true,
	}
}

func newRegistration(users *testutil.UserStore, audit *testutil.AuditRecorder) RegistrationUsecase {
	return NewRegistrationUsecase(testutil.Logger(), users, audit, validator.NewValidator())
}

func TestRegisterReportsFirstFailingRule(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *dto.RegisterRequest)
		field      string
		storeCalls int
	}{
		{
			name:   "missing field wins over everything else",
			mutate: func(r *dto.RegisterRequest) { r.FirstName = ""; r.Email = "bad"; r.Password = "1"; r.ConfirmPassword = "2" },
			field:  "nombre",
		},
		{
			name:   "blank surname",
			mutate: func(r *dto.RegisterRequest) { r.LastName = "   " },
			field:  "apellido",
		},
		{
			name:   "administrator is not self-registrable",
			mutate: func(r *dto.RegisterRequest) { r.Role = string(entity.RoleAdmin); r.Password = "1" },
			field:  "rol",
		},
		{
			name:   "unknown role",
			mutate: func(r *dto.RegisterRequest) { r.Role = "visitante" },
			field:  "rol",
		},
		{
			name:   "short password before mismatch and email",
			mutate: func(r *dto.RegisterRequest) { r.Password = "12345"; r.ConfirmPassword = "54321"; r.Email = "a@b" },
			field:  "password",
		},
		{
			name:   "whitespace password is judged by length",
			mutate: func(r *dto.RegisterRequest) { r.Password = "   "; r.ConfirmPassword = "   " },
			field:  "password",
		},
		{
			name:   "empty password is missing",
			mutate: func(r *dto.RegisterRequest) { r.Password = ""; r.FirstName = "" },
			field:  "password",
		},
		{
			name:   "mismatch before email",
			mutate: func(r *dto.RegisterRequest) { r.ConfirmPassword = "secret2"; r.Email = "a@b" },
			field:  "confirm_password",
		},
		{
			name:   "email without top level domain",
			mutate: func(r *dto.RegisterRequest) { r.Email = "a@b" },
			field:  "email",
		},
		{
			name: "psychologist without license",
			mutate: func(r *dto.RegisterRequest) {
				r.Role = string(entity.RolePsychologist)
				r.Specialty = "Clínica"
				r.AcceptTerms = false
			},
			field:      "especialidad",
			storeCalls: 1,
		},
		{
			name:       "terms not accepted",
			mutate:     func(r *dto.RegisterRequest) { r.AcceptTerms = false },
			field:      "accept_terms",
			storeCalls: 1,
		},
		{
			name:       "malformed birth date",
			mutate:     func(r *dto.RegisterRequest) { r.BirthDate = "18/10/1990" },
			field:      "fecha_nacimiento",
			storeCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := testutil.NewUserStore()
			audit := &testutil.AuditRecorder{}
			req := validRegisterRequest()
			tt.mutate(req)

			_, err := newRegistration(users, audit).Register(context.Background(), req)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.NotEmpty(t, verr.Message)
			assert.Equal(t, tt.storeCalls, users.Calls())
			assert.Empty(t, audit.Actions())
		})
	}
}

func TestRegisterAcceptsWhitespacePassword(t *testing.T) {
	users := testutil.NewUserStore()
	req := validRegisterRequest()
	req.Password, req.ConfirmPassword = "      ", "      "

	resp, err := newRegistration(users, &testutil.AuditRecorder{}).Register(context.Background(), req)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.Get(resp.ID).PasswordHash), []byte("      ")))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	users := testutil.NewUserStore(&entity.User{Email: "lucia@example.com", Role: entity.RolePatient})
	audit := &testutil.AuditRecorder{}

	_, err := newRegistration(users, audit).Register(context.Background(), validRegisterRequest())

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	assert.Equal(t, 1, users.Calls())
}

func TestRegisterPatient(t *testing.T) {
	users := testutil.NewUserStore()
	audit := &testutil.AuditRecorder{}
	req := validRegisterRequest()
	req.Email = "  lucia@example.com "
	req.BirthDate = "1990-04-12"
	req.Specialty = "ignored for patients"

	resp, err := newRegistration(users, audit).Register(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "lucia@example.com", resp.Email)
	assert.Equal(t, string(entity.RolePatient), resp.Role)
	assert.True(t, resp.Active)
	assert.Equal(t, "1990-04-12", resp.BirthDate)
	assert.Empty(t, resp.Specialty)

	stored := users.Get(resp.ID)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
	assert.Equal(t, []string{entity.AuditActionUserRegister}, audit.Actions())
}

func TestRegisterPsychologistKeepsCredentials(t *testing.T) {
	users := testutil.NewUserStore()
	req := validRegisterRequest()
	req.Role = string(entity.RolePsychologist)
	req.Specialty = "Psicología Clínica"
	req.LicenseNumber = "COL-999"

	resp, err := newRegistration(users, &testutil.AuditRecorder{}).Register(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Psicología Clínica", resp.Specialty)
	assert.Equal(t, "COL-999", resp.LicenseNumber)
	assert.True(t, users.Get(resp.ID).IsPsychologist())
}

func TestRegisterStoreFailure(t *testing.T) {
	users := testutil.NewUserStore()
	users.Err = errors.New("connection refused")

	_, err := newRegistration(users, &testutil.AuditRecorder{}).Register(context.Background(), validRegisterRequest())

	assert.EqualError(t, err, "connection refused")
}
