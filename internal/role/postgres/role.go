package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/travel-agency/internal"
	invitationDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/invitation"
	roleDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/user"
	"github.com/frahmantamala/travel-agency/internal/role"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) ListByTenant(ctx context.Context, tenantID string) ([]*roleDatamodel.Role, error) {
	var roles []*roleDatamodel.Role
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC, id ASC").
		Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

type roleCount struct {
	RoleID string
	Total  int64
}

func (r *RoleRepository) UsageByTenant(ctx context.Context, tenantID string) (map[string]role.Usage, error) {
	var users, invitations []roleCount

	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Select("role_id, COUNT(*) AS total").
		Where("tenant_id = ? AND role_id IS NOT NULL", tenantID).
		Group("role_id").
		Scan(&users).Error
	if err != nil {
		return nil, fmt.Errorf("count users per role: %w", err)
	}

	err = r.db.WithContext(ctx).
		Model(&invitationDatamodel.Invitation{}).
		Select("role_id, COUNT(*) AS total").
		Where("tenant_id = ? AND status = ?", tenantID, invitationDatamodel.StatusPending).
		Group("role_id").
		Scan(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("count invitations per role: %w", err)
	}

	usage := make(map[string]role.Usage)
	for _, c := range users {
		u := usage[c.RoleID]
		u.Users = c.Total
		usage[c.RoleID] = u
	}
	for _, c := range invitations {
		u := usage[c.RoleID]
		u.PendingInvitations = c.Total
		usage[c.RoleID] = u
	}
	return usage, nil
}

func (r *RoleRepository) Usage(ctx context.Context, tenantID, roleID string) (role.Usage, error) {
	var u role.Usage

	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("tenant_id = ? AND role_id = ?", tenantID, roleID).
		Count(&u.Users).Error
	if err != nil {
		return role.Usage{}, fmt.Errorf("count users for role: %w", err)
	}

	invitations := r.db.WithContext(ctx).
		Model(&invitationDatamodel.Invitation{}).
		Where("tenant_id = ? AND role_id = ?", tenantID, roleID)
	if err := invitations.Session(&gorm.Session{}).Count(&u.Invitations).Error; err != nil {
		return role.Usage{}, fmt.Errorf("count invitations for role: %w", err)
	}
	err = invitations.Session(&gorm.Session{}).
		Where("status = ?", invitationDatamodel.StatusPending).
		Count(&u.PendingInvitations).Error
	if err != nil {
		return role.Usage{}, fmt.Errorf("count pending invitations for role: %w", err)
	}
	return u, nil
}

func (r *RoleRepository) GetByID(ctx context.Context, tenantID, roleID string) (*roleDatamodel.Role, error) {
	var rl roleDatamodel.Role
	err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", roleID, tenantID).First(&rl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &rl, nil
}

func (r *RoleRepository) ExistsByName(ctx context.Context, tenantID, name, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&roleDatamodel.Role{}).
		Where("tenant_id = ? AND name = ?", tenantID, name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check role name: %w", err)
	}
	return count > 0, nil
}

func (r *RoleRepository) Create(ctx context.Context, rl *roleDatamodel.Role) error {
	if err := r.db.WithContext(ctx).Create(rl).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *RoleRepository) Update(ctx context.Context, rl *roleDatamodel.Role) error {
	err := r.db.WithContext(ctx).
		Model(&roleDatamodel.Role{}).
		Where("id = ? AND tenant_id = ?", rl.ID, rl.TenantID).
		Updates(map[string]interface{}{
			"name":        rl.Name,
			"permissions": rl.Permissions,
		}).Error
	if err != nil {
		return translate(err)
	}
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, tenantID, roleID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", roleID, tenantID).
		Delete(&roleDatamodel.Role{})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return false, internal.ErrRoleInUse.WithCause(res.Error)
		}
		return false, fmt.Errorf("delete role: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// translate needs gorm.Config{TranslateError: true} on the connection.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrDuplicateRoleName.WithCause(err)
	}
	return fmt.Errorf("write role: %w", err)
}
