package user

type UserResponse struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	RoleID   *string `json:"role_id,omitempty"`
	IsActive bool    `json:"is_active"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.DisplayRole(),
		RoleID:   u.RoleID,
		IsActive: u.IsActive,
	}
}
