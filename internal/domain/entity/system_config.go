package entity

// SystemConfig holds administrator-tunable settings.
type SystemConfig struct {
	RequireTwoFactor      bool   `json:"require_two_factor"`
	AutoLockAccounts      bool   `json:"auto_lock_accounts"`
	AuditAccess           bool   `json:"audit_access"`
	SecurityNotifications bool   `json:"security_notifications"`
	SessionTimeoutMinutes int    `json:"session_timeout" validate:"gte=5,lte=1440"`
	MaxLoginAttempts      int    `json:"max_login_attempts" validate:"gte=1,lte=20"`
	PasswordMinLength     int    `json:"password_min_length" validate:"gte=6,lte=64"`
	BackupFrequency       string `json:"backup_frequency" validate:"oneof=diario semanal mensual"`
}

func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		RequireTwoFactor:      false,
		AutoLockAccounts:      true,
		AuditAccess:           true,
		SecurityNotifications: true,
		SessionTimeoutMinutes: 30,
		MaxLoginAttempts:      5,
		PasswordMinLength:     8,
		BackupFrequency:       "diario",
	}
}
