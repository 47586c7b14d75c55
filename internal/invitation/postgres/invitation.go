package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/travel-agency/internal"
	invitationDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/invitation"
	tenantDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/tenant"
	userDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/user"
	"github.com/frahmantamala/travel-agency/internal/invitation"
	"gorm.io/gorm"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) invitation.RepositoryAPI {
	return &InvitationRepository{db: db}
}

type invitationRow struct {
	invitationDatamodel.Invitation
	RoleName *string `gorm:"column:role_name"`
}

func (r *InvitationRepository) withRoleName(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("invitations").
		Select("invitations.*, roles.name AS role_name").
		Joins("LEFT JOIN roles ON roles.id = invitations.role_id AND roles.tenant_id = invitations.tenant_id")
}

func toDomain(row *invitationRow) *invitation.Invitation {
	inv := invitation.FromDataModel(&row.Invitation)
	if row.RoleName != nil {
		inv.RoleName = *row.RoleName
	}
	return inv
}

func (r *InvitationRepository) first(q *gorm.DB) (*invitation.Invitation, error) {
	var rows []invitationRow
	if err := q.Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toDomain(&rows[0]), nil
}

func (r *InvitationRepository) Create(ctx context.Context, inv *invitationDatamodel.Invitation) error {
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (r *InvitationRepository) GetByID(ctx context.Context, tenantID, invitationID string) (*invitation.Invitation, error) {
	inv, err := r.first(r.withRoleName(ctx).
		Where("invitations.tenant_id = ? AND invitations.id = ?", tenantID, invitationID))
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*invitation.Invitation, error) {
	inv, err := r.first(r.withRoleName(ctx).Where("invitations.token = ?", token))
	if err != nil {
		return nil, fmt.Errorf("get invitation by token: %w", err)
	}
	return inv, nil
}

func (r *InvitationRepository) ListByTenant(ctx context.Context, tenantID string) ([]*invitation.Invitation, error) {
	var rows []invitationRow
	err := r.withRoleName(ctx).
		Where("invitations.tenant_id = ?", tenantID).
		Order("invitations.created_at DESC, invitations.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	invitations := make([]*invitation.Invitation, len(rows))
	for i := range rows {
		invitations[i] = toDomain(&rows[i])
	}
	return invitations, nil
}

func (r *InvitationRepository) TenantName(ctx context.Context, tenantID string) (string, error) {
	var t tenantDatamodel.Tenant
	err := r.db.WithContext(ctx).Select("id", "name").Where("id = ?", tenantID).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get tenant: %w", err)
	}
	return t.Name, nil
}

// pending narrows a write to a row that is still PENDING.
func (r *InvitationRepository) pending(db *gorm.DB, invitationID string) *gorm.DB {
	return db.Model(&invitationDatamodel.Invitation{}).
		Where("id = ? AND status = ?", invitationID, invitationDatamodel.StatusPending)
}

func (r *InvitationRepository) ExtendExpiry(ctx context.Context, tenantID, invitationID string, expiresAt time.Time) (bool, error) {
	res := r.pending(r.db.WithContext(ctx), invitationID).
		Where("tenant_id = ?", tenantID).
		Update("expires_at", expiresAt)
	if res.Error != nil {
		return false, fmt.Errorf("extend invitation: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *InvitationRepository) Revoke(ctx context.Context, tenantID, invitationID string, at time.Time) (bool, error) {
	res := r.pending(r.db.WithContext(ctx), invitationID).
		Where("tenant_id = ?", tenantID).
		Updates(map[string]interface{}{
			"status":     invitationDatamodel.StatusRevoked,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("revoke invitation: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *InvitationRepository) MarkAccepted(ctx context.Context, invitationID string, at time.Time) (bool, error) {
	res := r.pending(r.db.WithContext(ctx), invitationID).
		Updates(map[string]interface{}{
			"status":      invitationDatamodel.StatusAccepted,
			"accepted_at": at,
			"updated_at":  at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("accept invitation: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *InvitationRepository) Accept(ctx context.Context, invitationID string, at time.Time, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&userDatamodel.User{}).Where("email = ?", u.Email).Count(&taken).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken > 0 {
			return internal.ErrEmailAlreadyRegistered
		}

		res := r.pending(tx, invitationID).
			Updates(map[string]interface{}{
				"status":      invitationDatamodel.StatusAccepted,
				"accepted_at": at,
				"updated_at":  at,
			})
		if res.Error != nil {
			return fmt.Errorf("accept invitation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return internal.ErrInvitationAlreadyUsed
		}

		if err := tx.Create(u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return internal.ErrEmailAlreadyRegistered.WithCause(err)
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
}
