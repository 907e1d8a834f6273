package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest carries no validate tags: registration applies its rules
// in a fixed order and reports only the first failure.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"nombre"`
	LastName        string `json:"apellido"`
	Phone           string `json:"telefono"`
	BirthDate       string `json:"fecha_nacimiento"` // YYYY-MM-DD
	Profession      string `json:"profesion"`
	Role            string `json:"rol"`
	Specialty       string `json:"especialidad"`
	LicenseNumber   string `json:"numero_licencia"`
	AcceptTerms     bool   `json:"accept_terms"`
}

// Response DTOs

type UserResponse struct {
	ID            uuid.UUID              `json:"id"`
	Email         string                 `json:"email"`
	FirstName     string                 `json:"nombre"`
	LastName      string                 `json:"apellido"`
	Phone         string                 `json:"telefono,omitempty"`
	BirthDate     string                 `json:"fecha_nacimiento,omitempty"`
	Profession    string                 `json:"profesion,omitempty"`
	Role          string                 `json:"rol"`
	Specialty     string                 `json:"especialidad,omitempty"`
	LicenseNumber string                 `json:"numero_licencia,omitempty"`
	Active        bool                   `json:"activo"`
	Preferences   map[string]interface{} `json:"configuracion,omitempty"`
	RegisteredAt  time.Time              `json:"fecha_registro"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

type AuthResponse struct {
	User     *UserResponse `json:"user"`
	Redirect string        `json:"redirect"`
}

type SessionResponse struct {
	State    string        `json:"state"`
	User     *UserResponse `json:"user,omitempty"`
	Redirect string        `json:"redirect,omitempty"`
}
