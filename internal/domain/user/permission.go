package user

type Permission string

const (
	// Payroll
	PermissionPayrollCreate Permission = "payroll.create"
	PermissionPayrollView   Permission = "payroll.view"

	// Reports
	PermissionReportsView Permission = "reports.view"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionPayrollCreate,
		PermissionPayrollView,
		PermissionReportsView,
	},
	RoleHR: {
		PermissionPayrollCreate,
		PermissionPayrollView,
		PermissionReportsView,
	},
	RoleEmployee: {
		// Employees have no payroll back-office access
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
