package usecase

import (
	"context"
	"errors"
	"strings"

	"mentalwell/internal/converter"
	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/domain/repository"
	"mentalwell/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var ErrWrongPassword = errors.New("current password is incorrect")

type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
	GetPreferences(ctx context.Context, userID uuid.UUID) (entity.JSON, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs entity.JSON) (entity.JSON, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error
}

type profileUsecase struct {
	log      *logrus.Logger
	userRepo repository.UserRepository
	audit    service.AuditService
	sessions SessionRevoker
}

func NewProfileUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	audit service.AuditService,
	sessions SessionRevoker,
) ProfileUsecase {
	return &profileUsecase{
		log:      log,
		userRepo: userRepo,
		audit:    audit,
		sessions: sessions,
	}
}

func (u *profileUsecase) GetProfile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return converter.UserToResponse(user), nil
}

func (u *profileUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := u.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated, err := applyUserFields(ctx, u.log, u.userRepo, user, req)
	if err != nil {
		return nil, err
	}

	u.audit.LogUpdate(ctx, &userID, entity.AuditActionProfileUpdate, "user", userID.String(),
		converter.UserToResponse(user), converter.UserToResponse(updated))

	return converter.UserToResponse(updated), nil
}

// DeleteAccount hard-deletes the caller and revokes all of their sessions.
func (u *profileUsecase) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	user, err := u.findUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := u.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		u.log.Warnf("Failed to delete user: %+v", err)
		return err
	}

	if err := u.sessions.RevokeUser(ctx, userID); err != nil {
		u.log.Warnf("Failed to revoke sessions after account deletion: %+v", err)
	}

	u.audit.LogDelete(ctx, nil, entity.AuditActionProfileDelete, "user", userID.String(), converter.UserToResponse(user))
	return nil
}

func (u *profileUsecase) GetPreferences(ctx context.Context, userID uuid.UUID) (entity.JSON, error) {
	user, err := u.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Preferences == nil {
		return entity.JSON{}, nil
	}
	return user.Preferences, nil
}

// UpdatePreferences merges prefs into the stored map. A nil value removes the key.
func (u *profileUsecase) UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs entity.JSON) (entity.JSON, error) {
	user, err := u.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := entity.JSON{}
	for k, v := range user.Preferences {
		merged[k] = v
	}
	for k, v := range prefs {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	if err := u.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"configuracion": merged}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		u.log.Warnf("Failed to update preferences: %+v", err)
		return nil, err
	}

	return merged, nil
}

func (u *profileUsecase) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	user, err := u.findUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}

	if err := u.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"password_hash": string(hashedPassword)}); err != nil {
		u.log.Warnf("Failed to update password: %+v", err)
		return err
	}

	u.audit.LogEvent(ctx, &userID, entity.AuditActionPasswordChange, nil)
	return nil
}

func (u *profileUsecase) findUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// applyUserFields writes the editable profile fields of user and returns the
// updated copy. Specialty and license are kept only for psychologists, and a
// psychologist must keep both.
func applyUserFields(
	ctx context.Context,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	user *entity.User,
	req *dto.UpdateProfileRequest,
) (*entity.User, error) {
	email := strings.TrimSpace(req.Email)
	if email != user.Email {
		existing, err := userRepo.FindByEmail(ctx, email, false)
		if err != nil {
			log.Warnf("Failed to find user by email: %+v", err)
			return nil, err
		}
		if existing != nil && existing.ID != user.ID {
			return nil, ErrEmailAlreadyExists
		}
	}

	birthDate, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	updated := *user
	updated.Email = email
	updated.FirstName = strings.TrimSpace(req.FirstName)
	updated.LastName = strings.TrimSpace(req.LastName)
	updated.Phone = strings.TrimSpace(req.Phone)
	updated.BirthDate = birthDate
	updated.Profession = strings.TrimSpace(req.Profession)
	updated.Specialty = ""
	updated.LicenseNumber = ""

	if user.IsPsychologist() {
		updated.Specialty = strings.TrimSpace(req.Specialty)
		updated.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
		if updated.Specialty == "" || updated.LicenseNumber == "" {
			return nil, newValidationError("especialidad", "Los psicólogos deben proporcionar especialidad y número de licencia")
		}
	}

	fields := map[string]interface{}{
		"email":            updated.Email,
		"nombre":           updated.FirstName,
		"apellido":         updated.LastName,
		"telefono":         updated.Phone,
		"fecha_nacimiento": updated.BirthDate,
		"profesion":        updated.Profession,
		"especialidad":     updated.Specialty,
		"numero_licencia":  updated.LicenseNumber,
	}

	if err := userRepo.UpdateFields(ctx, user.ID, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		log.Warnf("Failed to update user: %+v", err)
		return nil, err
	}

	return &updated, nil
}
