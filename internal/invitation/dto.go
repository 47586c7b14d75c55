package invitation

import (
	"strings"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/core/common/validation"
	"github.com/frahmantamala/travel-agency/internal/user"
)

const MinPasswordLength = 8

type IssueInvitationDTO struct {
	Email  string `json:"email"`
	RoleID string `json:"role_id"`
}

func (d IssueInvitationDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required(internal.ErrCodeInvalidEmail).MaxLength(254)
	v.Field("role_id", d.RoleID).Required(internal.ErrCodeInvalidRole)
	return v.Validate()
}

type AcceptDTO struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (d AcceptDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.normalizedName()).Required(internal.ErrCodeValidationFailed).MaxLength(120)
	v.Field("password", d.Password).MinLength(MinPasswordLength)
	return v.Validate()
}

func (d AcceptDTO) normalizedName() string {
	return strings.TrimSpace(d.Name)
}

type InvitationResponse struct {
	Invitation *Invitation `json:"invitation"`
}

type InvitationsResponse struct {
	Invitations []*Invitation `json:"invitations"`
}

type AcceptResponse struct {
	User user.UserResponse `json:"user"`
}
