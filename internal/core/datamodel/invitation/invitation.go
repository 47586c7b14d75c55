package invitation

import "time"

const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusExpired  = "EXPIRED"
	StatusRevoked  = "REVOKED"
)

type Invitation struct {
	ID         string     `gorm:"primaryKey"`
	TenantID   string     `gorm:"column:tenant_id;not null;index:idx_invitations_tenant_status"`
	Email      string     `gorm:"column:email;not null"`
	RoleID     string     `gorm:"column:role_id;not null;index"`
	Token      string     `gorm:"column:token;not null;uniqueIndex"`
	Status     string     `gorm:"column:status;not null;index:idx_invitations_tenant_status"`
	InvitedBy  string     `gorm:"column:invited_by"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null"`
	AcceptedAt *time.Time `gorm:"column:accepted_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (Invitation) TableName() string {
	return "invitations"
}
