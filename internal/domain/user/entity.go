package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // HR admin - full access
	RoleManager  Role = "manager"  // Reviews leave for direct reports
	RoleEmployee Role = "employee" // Regular employee
)

// ValidRoles lists the roles accepted on user creation.
var ValidRoles = []string{string(RoleAdmin), string(RoleManager), string(RoleEmployee)}

type User struct {
	ID           string
	EmployeeID   *string
	Email        string
	PasswordHash *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin checks if user is an HR admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsManager checks if user is manager or admin
func (u *User) IsManager() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}

// CanReview checks if user can accept or reject leave
func (u *User) CanReview() bool {
	return u.IsManager()
}
