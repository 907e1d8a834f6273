package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the credential record shared by every role.
type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email         string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash  string     `gorm:"column:password_hash;type:text;not null" json:"-"`
	FirstName     string     `gorm:"column:nombre;type:varchar(255);not null" json:"nombre"`
	LastName      string     `gorm:"column:apellido;type:varchar(255);not null" json:"apellido"`
	Phone         string     `gorm:"column:telefono;type:varchar(30)" json:"telefono,omitempty"`
	BirthDate     *time.Time `gorm:"column:fecha_nacimiento;type:date" json:"fecha_nacimiento,omitempty"`
	Profession    string     `gorm:"column:profesion;type:varchar(255)" json:"profesion,omitempty"`
	Role          Role       `gorm:"column:rol;type:varchar(20);not null;index" json:"rol"`
	Specialty     string     `gorm:"column:especialidad;type:varchar(255)" json:"especialidad,omitempty"`
	LicenseNumber string     `gorm:"column:numero_licencia;type:varchar(100)" json:"numero_licencia,omitempty"`
	IsActive      *bool      `gorm:"column:activo;not null;default:true;index" json:"activo"`
	Preferences   JSON       `gorm:"column:configuracion;type:jsonb" json:"configuracion,omitempty"`
	RegisteredAt  time.Time  `gorm:"column:fecha_registro;autoCreateTime;<-:create" json:"fecha_registro"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Active reports the activo flag; a missing flag counts as inactive.
func (u *User) Active() bool {
	return u != nil && u.IsActive != nil && *u.IsActive
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsPsychologist() bool {
	return u.Role == RolePsychologist
}

// Bool returns a pointer to b, for the nullable activo column.
func Bool(b bool) *bool {
	return &b
}
