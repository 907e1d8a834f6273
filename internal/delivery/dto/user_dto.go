package dto

import "time"

type UpdateProfileRequest struct {
	Email         string `json:"email" validate:"required,email,max=255"`
	FirstName     string `json:"nombre" validate:"required,max=255"`
	LastName      string `json:"apellido" validate:"required,max=255"`
	Phone         string `json:"telefono" validate:"omitempty,max=30"`
	BirthDate     string `json:"fecha_nacimiento" validate:"omitempty,datetime=2006-01-02"`
	Profession    string `json:"profesion" validate:"omitempty,max=255"`
	Specialty     string `json:"especialidad" validate:"omitempty,max=255"`
	LicenseNumber string `json:"numero_licencia" validate:"omitempty,max=100"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type AdminCreateUserRequest struct {
	Email         string `json:"email" validate:"required,email,max=255"`
	Password      string `json:"password" validate:"required,min=6"`
	FirstName     string `json:"nombre" validate:"required,max=255"`
	LastName      string `json:"apellido" validate:"required,max=255"`
	Phone         string `json:"telefono" validate:"omitempty,max=30"`
	BirthDate     string `json:"fecha_nacimiento" validate:"omitempty,datetime=2006-01-02"`
	Profession    string `json:"profesion" validate:"omitempty,max=255"`
	Role          string `json:"rol" validate:"required,oneof=paciente psicologo administrador"`
	Specialty     string `json:"especialidad" validate:"omitempty,max=255"`
	LicenseNumber string `json:"numero_licencia" validate:"omitempty,max=100"`
}

// AdminUpdateUserRequest has no role: a role is fixed at creation.
type AdminUpdateUserRequest = UpdateProfileRequest

type UpdateStatusRequest struct {
	Active *bool `json:"activo" validate:"required"`
}

type AdminStatsResponse struct {
	TotalUsers       int64 `json:"total_usuarios"`
	Patients         int64 `json:"pacientes"`
	Psychologists    int64 `json:"psicologos"`
	Administrators   int64 `json:"administradores"`
	ActiveUsers      int64 `json:"usuarios_activos"`
	InactiveUsers    int64 `json:"usuarios_inactivos"`
	RegisteredToday  int64 `json:"registros_hoy"`
	RegisteredWeek   int64 `json:"registros_semana"`
	RegisteredMonth  int64 `json:"registros_mes"`
	EmotionalRecords int64 `json:"registros_emocionales"`
}

type ExportResponse struct {
	ExportDate time.Time           `json:"export_date"`
	Statistics *AdminStatsResponse `json:"statistics"`
	Users      []UserResponse      `json:"users"`
}

type AdminDashboardResponse struct {
	Admin      *UserResponse       `json:"admin"`
	Statistics *AdminStatsResponse `json:"statistics"`
	RecentLogs []AuditLogResponse  `json:"recent_logs"`
}
