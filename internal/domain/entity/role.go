package entity

// Role is fixed at account creation and selects the dashboard and guard rules
// that apply to a user.
type Role string

const (
	RolePatient      Role = "paciente"
	RolePsychologist Role = "psicologo"
	RoleAdmin        Role = "administrador"
)

// Dashboard paths per role
const (
	PatientDashboardPath      = "/dashboard"
	PsychologistDashboardPath = "/dashboard-psicologo"
	AdminDashboardPath        = "/dashboard-admin"
	LoginPath                 = "/auth/login"
	RegisterPath              = "/auth/register"
)

var AllRoles = []Role{RolePatient, RolePsychologist, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RolePsychologist, RoleAdmin:
		return true
	}
	return false
}

// DashboardPath returns the landing page for the role.
func (r Role) DashboardPath() string {
	switch r {
	case RolePsychologist:
		return PsychologistDashboardPath
	case RoleAdmin:
		return AdminDashboardPath
	default:
		return PatientDashboardPath
	}
}
