package user

type Role string

const (
	RoleAdmin    Role = "ADMINISTRADOR" // full access
	RoleHR       Role = "RRHH"          // human resources, runs payroll
	RoleEmployee Role = "EMPLEADO"      // read-only self service
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID   int64
	Username string
	Role     Role
}
