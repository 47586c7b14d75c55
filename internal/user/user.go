package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/user"
)

type User struct {
	ID           string  `json:"id"`
	TenantID     string  `json:"tenant_id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	PasswordHash string  `json:"-"`
	LegacyRole   string  `json:"role"`
	RoleID       *string `json:"role_id,omitempty"`
	// RoleName is read through the role reference; empty when unassigned.
	RoleName  string    `json:"role_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) HasStructuredRole() bool {
	return u.RoleID != nil && *u.RoleID != ""
}

// DisplayRole prefers the structured role name over the legacy label.
func (u *User) DisplayRole() string {
	if u.RoleName != "" {
		return u.RoleName
	}
	return u.LegacyRole
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		TenantID:     u.TenantID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.LegacyRole,
		RoleID:       u.RoleID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		TenantID:     u.TenantID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		LegacyRole:   u.Role,
		RoleID:       u.RoleID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
