package role

import "github.com/frahmantamala/travel-agency/internal/user"

type CreateRoleDTO struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// UpdateRoleDTO fields left out of the request body are not changed.
type UpdateRoleDTO struct {
	Name        *string  `json:"name,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

type ReassignRoleDTO struct {
	RoleID string `json:"role_id"`
}

type RolesResponse struct {
	Roles []*Role `json:"roles"`
}

type ReassignRoleResponse struct {
	User user.UserResponse `json:"user"`
}
