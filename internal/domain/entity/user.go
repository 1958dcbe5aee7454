package entity

// Roles válidos para User (enum user_role en BD).
const (
	RoleSuperAdmin = "superadministrador"
	RoleAdmin      = "administrador"
	RoleSupervisor = "supervisor"
	RoleOperario   = "operario"
)

// User representa un usuario del sistema. CediID es nil para superadministradores
// o usuarios todavía sin asignar.
type User struct {
	ID       string
	FullName string
	Role     string
	CediID   *int64
}
