package models

import "time"

type Role string

const (
	RoleMainAdmin Role = "main_admin"
	RoleAdmin     Role = "admin"
)

type Permission string

const (
	PermCreateJobs    Permission = "canCreateJobs"
	PermDeleteJobs    Permission = "canDeleteJobs"
	PermViewAnalytics Permission = "canViewAnalytics"
	PermManageAdmins  Permission = "canManageAdmins"
)

var AllPermissions = []Permission{PermCreateJobs, PermDeleteJobs, PermViewAnalytics, PermManageAdmins}

// Permissions holds one flag per grantable capability. A main admin is
// granted everything regardless of these values.
type Permissions struct {
	CanCreateJobs    bool `json:"canCreateJobs"`
	CanDeleteJobs    bool `json:"canDeleteJobs"`
	CanViewAnalytics bool `json:"canViewAnalytics"`
	CanManageAdmins  bool `json:"canManageAdmins"`
}

// DefaultPermissions is what a newly created admin gets unless overridden.
func DefaultPermissions() Permissions {
	return Permissions{
		CanCreateJobs:    true,
		CanDeleteJobs:    true,
		CanViewAnalytics: true,
		CanManageAdmins:  false,
	}
}

// Has reports the flag for p. Unknown permissions are never granted.
func (p Permissions) Has(perm Permission) bool {
	switch perm {
	case PermCreateJobs:
		return p.CanCreateJobs
	case PermDeleteJobs:
		return p.CanDeleteJobs
	case PermViewAnalytics:
		return p.CanViewAnalytics
	case PermManageAdmins:
		return p.CanManageAdmins
	}
	return false
}

// Set changes the flag for perm and reports whether perm is known.
func (p *Permissions) Set(perm Permission, value bool) bool {
	switch perm {
	case PermCreateJobs:
		p.CanCreateJobs = value
	case PermDeleteJobs:
		p.CanDeleteJobs = value
	case PermViewAnalytics:
		p.CanViewAnalytics = value
	case PermManageAdmins:
		p.CanManageAdmins = value
	default:
		return false
	}
	return true
}

type Admin struct {
	ID          string      `json:"_id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Role        Role        `json:"role"`
	Permissions Permissions `json:"permissions"`
	IsActive    bool        `json:"isActive"`
	LastLogin   *time.Time  `json:"lastLogin,omitempty"`
}

func (a *Admin) IsMainAdmin() bool {
	return a != nil && a.Role == RoleMainAdmin
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Admin Admin  `json:"admin"`
}

// ProfileUpdate is a partial update of the signed-in admin. Nil fields are
// left untouched by the server.
type ProfileUpdate struct {
	Username        *string `json:"username,omitempty"`
	Email           *string `json:"email,omitempty"`
	CurrentPassword *string `json:"currentPassword,omitempty"`
	NewPassword     *string `json:"newPassword,omitempty"`
}

type NewAdmin struct {
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	Permissions Permissions `json:"permissions"`
}
