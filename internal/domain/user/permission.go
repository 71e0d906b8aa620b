package user

type Permission string

const (
	// Leave Management
	PermissionLeaveViewTeam    Permission = "leave.view_team"
	PermissionLeaveViewAll     Permission = "leave.view_all"
	PermissionLeaveApprove     Permission = "leave.approve"
	PermissionLeaveManageTypes Permission = "leave.manage_types"

	// Attendance
	PermissionAttendanceViewTeam Permission = "attendance.view_team"

	// Payroll
	PermissionPayrollViewTeam   Permission = "payroll.view_team"
	PermissionPayrollManageTeam Permission = "payroll.manage_team"
	PermissionPayrollManage     Permission = "payroll.manage"

	// Catalogues
	PermissionCatalogueManage Permission = "catalogue.manage"

	// Reports
	PermissionReportsViewAll Permission = "reports.view_all"
)

// RolePermissions maps roles to their permissions. Employees act only on
// their own records, which the services check per employee.
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionLeaveViewTeam,
		PermissionLeaveViewAll,
		PermissionLeaveApprove,
		PermissionLeaveManageTypes,
		PermissionAttendanceViewTeam,
		PermissionPayrollViewTeam,
		PermissionPayrollManageTeam,
		PermissionPayrollManage,
		PermissionCatalogueManage,
		PermissionReportsViewAll,
	},
	RoleManager: {
		PermissionLeaveViewTeam,
		PermissionLeaveApprove,
		PermissionAttendanceViewTeam,
		PermissionPayrollViewTeam,
		PermissionPayrollManageTeam,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
