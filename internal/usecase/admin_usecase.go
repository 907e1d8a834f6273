package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"mentalwell/internal/converter"
	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/domain/repository"
	"mentalwell/internal/service"
	"mentalwell/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrInvalidRole       = errors.New("invalid role")
)

const (
	ExportFormatJSON = "json"
	ExportFormatCSV  = "csv"
)

var csvHeader = []string{"ID", "Email", "Nombre", "Apellido", "Rol", "Fecha Registro", "Activo", "Especialidad", "Numero Licencia"}

type AdminUsecase interface {
	CreateUser(ctx context.Context, actorID uuid.UUID, req *dto.AdminCreateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, role string) ([]dto.UserResponse, error)
	UpdateUser(ctx context.Context, actorID, id uuid.UUID, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error)
	SetStatus(ctx context.Context, actorID, id uuid.UUID, active bool) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actorID, id uuid.UUID) error
	Stats(ctx context.Context) (*dto.AdminStatsResponse, error)
	Export(ctx context.Context, format string) ([]byte, error)
	AuditLogs(ctx context.Context, limit int) ([]dto.AuditLogResponse, error)
	GetConfig(ctx context.Context) (*entity.SystemConfig, error)
	UpdateConfig(ctx context.Context, actorID uuid.UUID, cfg *entity.SystemConfig) (*entity.SystemConfig, error)
}

type adminUsecase struct {
	log        *logrus.Logger
	userRepo   repository.UserRepository
	recordRepo repository.EmotionalRecordRepository
	configRepo repository.SystemConfigRepository
	audit      service.AuditService
	sessions   SessionRevoker
	validator  *validator.CustomValidator
	now        func() time.Time
}

func NewAdminUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	recordRepo repository.EmotionalRecordRepository,
	configRepo repository.SystemConfigRepository,
	audit service.AuditService,
	sessions SessionRevoker,
	validator *validator.CustomValidator,
) AdminUsecase {
	return &adminUsecase{
		log:        log,
		userRepo:   userRepo,
		recordRepo: recordRepo,
		configRepo: configRepo,
		audit:      audit,
		sessions:   sessions,
		validator:  validator,
		now:        time.Now,
	}
}

// CreateUser lets an administrator create an account of any role.
func (u *adminUsecase) CreateUser(ctx context.Context, actorID uuid.UUID, req *dto.AdminCreateUserRequest) (*dto.UserResponse, error) {
	role := entity.Role(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if role == entity.RolePsychologist &&
		(strings.TrimSpace(req.Specialty) == "" || strings.TrimSpace(req.LicenseNumber) == "") {
		return nil, newValidationError("especialidad", "Los psicólogos deben proporcionar especialidad y número de licencia")
	}

	email := strings.TrimSpace(req.Email)
	existing, err := u.userRepo.FindByEmail(ctx, email, false)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	birthDate, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Email:        email,
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

	response := converter.UserToResponse(user)
	u.audit.LogCreate(ctx, &actorID, entity.AuditActionUserCreate, "user", user.ID.String(), response)
	return response, nil
}

// ListUsers returns every user, or the active users of role when given.
func (u *adminUsecase) ListUsers(ctx context.Context, role string) ([]dto.UserResponse, error) {
	var (
		users []entity.User
		err   error
	)
	if role == "" {
		users, err = u.userRepo.ListAll(ctx)
	} else {
		if !entity.Role(role).Valid() {
			return nil, ErrInvalidRole
		}
		users, err = u.userRepo.ListByRole(ctx, entity.Role(role))
	}
	if err != nil {
		u.log.Warnf("Failed to list users: %+v", err)
		return nil, err
	}
	return converter.UsersToResponses(users), nil
}

func (u *adminUsecase) UpdateUser(ctx context.Context, actorID, id uuid.UUID, req *dto.AdminUpdateUserRequest) (*dto.UserResponse, error) {
	user, err := u.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := applyUserFields(ctx, u.log, u.userRepo, user, req)
	if err != nil {
		return nil, err
	}

	u.audit.LogUpdate(ctx, &actorID, entity.AuditActionUserUpdate, "user", id.String(),
		converter.UserToResponse(user), converter.UserToResponse(updated))
	return converter.UserToResponse(updated), nil
}

// SetStatus toggles the activo flag. Deactivation revokes live sessions
// immediately.
func (u *adminUsecase) SetStatus(ctx context.Context, actorID, id uuid.UUID, active bool) (*dto.UserResponse, error) {
	if actorID == id && !active {
		return nil, ErrCannotModifySelf
	}

	user, err := u.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.UpdateStatus(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		u.log.Warnf("Failed to update user status: %+v", err)
		return nil, err
	}

	if !active {
		if err := u.sessions.RevokeUser(ctx, id); err != nil {
			u.log.Warnf("Failed to revoke sessions of deactivated user: %+v", err)
		}
	}

	u.audit.LogUpdate(ctx, &actorID, entity.AuditActionUserStatus, "user", id.String(),
		map[string]bool{"activo": user.Active()}, map[string]bool{"activo": active})

	user.IsActive = entity.Bool(active)
	return converter.UserToResponse(user), nil
}

func (u *adminUsecase) DeleteUser(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return ErrCannotModifySelf
	}

	user, err := u.findUser(ctx, id)
	if err != nil {
		return err
	}

	if err := u.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		u.log.Warnf("Failed to delete user: %+v", err)
		return err
	}

	if err := u.sessions.RevokeUser(ctx, id); err != nil {
		u.log.Warnf("Failed to revoke sessions of deleted user: %+v", err)
	}

	u.audit.LogDelete(ctx, &actorID, entity.AuditActionUserDelete, "user", id.String(), converter.UserToResponse(user))
	return nil
}

// Stats runs the independent counts concurrently and fails on the first error.
func (u *adminUsecase) Stats(ctx context.Context) (*dto.AdminStatsResponse, error) {
	now := u.now().UTC()
	today := entity.Day(now)

	stats := &dto.AdminStatsResponse{}
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()

	count := func(dst *int64, fn func(ctx context.Context) (int64, error)) {
		p.Go(func(ctx context.Context) error {
			n, err := fn(ctx)
			*dst = n
			return err
		})
	}

	byRole := func(role entity.Role) func(ctx context.Context) (int64, error) {
		return func(ctx context.Context) (int64, error) { return u.userRepo.CountActiveByRole(ctx, role) }
	}
	byStatus := func(active bool) func(ctx context.Context) (int64, error) {
		return func(ctx context.Context) (int64, error) { return u.userRepo.CountByStatus(ctx, active) }
	}
	since := func(t time.Time) func(ctx context.Context) (int64, error) {
		return func(ctx context.Context) (int64, error) { return u.userRepo.CountRegisteredSince(ctx, t) }
	}

	count(&stats.Patients, byRole(entity.RolePatient))
	count(&stats.Psychologists, byRole(entity.RolePsychologist))
	count(&stats.Administrators, byRole(entity.RoleAdmin))
	count(&stats.ActiveUsers, byStatus(true))
	count(&stats.InactiveUsers, byStatus(false))
	count(&stats.RegisteredToday, since(today))
	count(&stats.RegisteredWeek, since(today.AddDate(0, 0, -7)))
	count(&stats.RegisteredMonth, since(today.AddDate(0, -1, 0)))
	count(&stats.EmotionalRecords, u.recordRepo.Count)

	if err := p.Wait(); err != nil {
		u.log.Warnf("Failed to compute admin stats: %+v", err)
		return nil, err
	}

	stats.TotalUsers = stats.ActiveUsers + stats.InactiveUsers
	return stats, nil
}

// Export renders every user without password hashes, as JSON (with the
// statistics) or as CSV.
func (u *adminUsecase) Export(ctx context.Context, format string) ([]byte, error) {
	if format != ExportFormatJSON && format != ExportFormatCSV {
		return nil, ErrUnsupportedFormat
	}

	users, err := u.userRepo.ListAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to list users for export: %+v", err)
		return nil, err
	}
	responses := converter.UsersToResponses(users)

	if format == ExportFormatCSV {
		return usersToCSV(responses)
	}

	stats, err := u.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return json.MarshalIndent(dto.ExportResponse{
		ExportDate: u.now().UTC(),
		Statistics: stats,
		Users:      responses,
	}, "", "  ")
}

func (u *adminUsecase) AuditLogs(ctx context.Context, limit int) ([]dto.AuditLogResponse, error) {
	logs, err := u.audit.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return converter.AuditLogsToResponses(logs), nil
}

// GetConfig falls back to the defaults until an administrator saves settings.
func (u *adminUsecase) GetConfig(ctx context.Context) (*entity.SystemConfig, error) {
	cfg, err := u.configRepo.Get(ctx)
	if err != nil {
		u.log.Warnf("Failed to load system config: %+v", err)
		return nil, err
	}
	if cfg == nil {
		defaults := entity.DefaultSystemConfig()
		return &defaults, nil
	}
	return cfg, nil
}

func (u *adminUsecase) UpdateConfig(ctx context.Context, actorID uuid.UUID, cfg *entity.SystemConfig) (*entity.SystemConfig, error) {
	if err := u.validator.Validate(cfg); err != nil {
		return nil, err
	}

	previous, err := u.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	if err := u.configRepo.Save(ctx, cfg); err != nil {
		u.log.Warnf("Failed to save system config: %+v", err)
		return nil, err
	}

	u.audit.LogUpdate(ctx, &actorID, entity.AuditActionConfigUpdate, "system_config", "global", previous, cfg)
	return cfg, nil
}

func (u *adminUsecase) findUser(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := u.userRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func usersToCSV(users []dto.UserResponse) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, user := range users {
		row := []string{
			user.ID.String(),
			user.Email,
			user.FirstName,
			user.LastName,
			user.Role,
			user.RegisteredAt.UTC().Format(time.RFC3339),
			strconv.FormatBool(user.Active),
			user.Specialty,
			user.LicenseNumber,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
