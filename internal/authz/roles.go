package authz

const (
	RoleDriver     = 10
	RoleDispatcher = 20
	RoleAdmin      = 50
)

func IsElevated(roleID int) bool {
	return roleID == RoleDispatcher || roleID == RoleAdmin
}
