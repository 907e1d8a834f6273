package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"mentalwell/internal/converter"
	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/domain/repository"
	"mentalwell/internal/service"
	"mentalwell/pkg/validator"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrRoleNotAllowed rejects self-registration as administrator.
var ErrRoleNotAllowed = newValidationError("rol", "Este rol no está disponible para el registro")

// emailPattern accepts local@domain.tld.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type RegistrationUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
}

type registrationUsecase struct {
	log       *logrus.Logger
	userRepo  repository.UserRepository
	audit     service.AuditService
	validator *validator.CustomValidator
}

func NewRegistrationUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	audit service.AuditService,
	validator *validator.CustomValidator,
) RegistrationUsecase {
	return &registrationUsecase{
		log:       log,
		userRepo:  userRepo,
		audit:     audit,
		validator: validator,
	}
}

// Register validates req and creates the account. Rules run in a fixed order
// and the first failing one is returned as a *ValidationError.
func (u *registrationUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	req.Email = strings.TrimSpace(req.Email)

	if err := u.validate(ctx, req); err != nil {
		return nil, err
	}

	birthDate, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		return nil, newValidationError("fecha_nacimiento", "La fecha debe tener el formato YYYY-MM-DD")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	role := entity.Role(req.Role)
	user := &entity.User{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		BirthDate:    birthDate,
		Profession:   strings.TrimSpace(req.Profession),
		Role:         role,
		IsActive:     entity.Bool(true),
	}
	if role == entity.RolePsychologist {
		user.Specialty = strings.TrimSpace(req.Specialty)
		user.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	u.audit.LogCreate(ctx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), converter.UserToResponse(user))

	return converter.UserToResponse(user), nil
}

func (u *registrationUsecase) validate(ctx context.Context, req *dto.RegisterRequest) error {
	// Secrets are checked raw: whitespace is a legitimate password character
	// and the length rule decides on it.
	required := []struct {
		field, value string
		secret       bool
	}{
		{"email", req.Email, false},
		{"password", req.Password, true},
		{"confirm_password", req.ConfirmPassword, true},
		{"nombre", req.FirstName, false},
		{"apellido", req.LastName, false},
		{"rol", req.Role, false},
	}
	for _, r := range required {
		value := r.value
		if !r.secret {
			value = strings.TrimSpace(value)
		}
		if value == "" {
			return newValidationError(r.field, "Por favor completa todos los campos obligatorios")
		}
	}

	switch entity.Role(req.Role) {
	case entity.RolePatient, entity.RolePsychologist:
	case entity.RoleAdmin:
		return ErrRoleNotAllowed
	default:
		return newValidationError("rol", "Rol inválido")
	}

	if err := u.validator.Var(req.Password, "min=6"); err != nil {
		return newValidationError("password", "La contraseña debe tener al menos 6 caracteres")
	}

	if req.Password != req.ConfirmPassword {
		return newValidationError("confirm_password", "Las contraseñas no coinciden")
	}

	if !emailPattern.MatchString(req.Email) {
		return newValidationError("email", "Por favor ingresa un email válido")
	}

	existing, err := u.userRepo.FindByEmail(ctx, req.Email, false)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return err
	}
	if existing != nil {
		return ErrEmailAlreadyExists
	}

	if entity.Role(req.Role) == entity.RolePsychologist &&
		(strings.TrimSpace(req.Specialty) == "" || strings.TrimSpace(req.LicenseNumber) == "") {
		return newValidationError("especialidad", "Los psicólogos deben proporcionar especialidad y número de licencia")
	}

	if !req.AcceptTerms {
		return newValidationError("accept_terms", "Debes aceptar los términos y condiciones")
	}

	return nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}
