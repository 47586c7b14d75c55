package invitation

import (
	"time"

	invitationDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/invitation"
)

const (
	StatusPending  = invitationDatamodel.StatusPending
	StatusAccepted = invitationDatamodel.StatusAccepted
	StatusExpired  = invitationDatamodel.StatusExpired
	StatusRevoked  = invitationDatamodel.StatusRevoked
)

type Invitation struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenant_id"`
	Email      string     `json:"email"`
	RoleID     string     `json:"role_id"`
	RoleName   string     `json:"role_name,omitempty"`
	Token      string     `json:"-"`
	Status     string     `json:"status"`
	InvitedBy  string     `json:"invited_by,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsExpired reports whether the invitation lapsed by time. The stored status
// is left as is; expiry is never written back.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// EffectiveStatus is the status callers see: a PENDING invitation past its
// expiry reads as EXPIRED.
func (i *Invitation) EffectiveStatus(now time.Time) string {
	if i.Status == StatusPending && i.IsExpired(now) {
		return StatusExpired
	}
	return i.Status
}

// Redemption is what a successfully redeemed token grants.
type Redemption struct {
	InvitationID string
	TenantID     string
	RoleID       string
	Email        string
}

func ToDataModel(i *Invitation) *invitationDatamodel.Invitation {
	return &invitationDatamodel.Invitation{
		ID:         i.ID,
		TenantID:   i.TenantID,
		Email:      i.Email,
		RoleID:     i.RoleID,
		Token:      i.Token,
		Status:     i.Status,
		InvitedBy:  i.InvitedBy,
		ExpiresAt:  i.ExpiresAt,
		AcceptedAt: i.AcceptedAt,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}

func FromDataModel(i *invitationDatamodel.Invitation) *Invitation {
	return &Invitation{
		ID:         i.ID,
		TenantID:   i.TenantID,
		Email:      i.Email,
		RoleID:     i.RoleID,
		Token:      i.Token,
		Status:     i.Status,
		InvitedBy:  i.InvitedBy,
		ExpiresAt:  i.ExpiresAt,
		AcceptedAt: i.AcceptedAt,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}
