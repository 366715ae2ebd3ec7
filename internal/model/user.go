package model

// User roles.
const (
	RoleAdmin    = "admin"
	RoleGestor   = "gestor"
	RoleTecnico  = "tecnico"
	RoleVendedor = "vendedor"
)

// User maps users. The planning core treats this as a read-only
// directory: who is responsible for a week, who can be invited.
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'tecnico'"    json:"role"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName sets the table name.
func (User) TableName() string { return "users" }
