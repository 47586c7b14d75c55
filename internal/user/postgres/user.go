package postgres

import (
	"context"
	"fmt"

	userDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/user"
	"github.com/frahmantamala/travel-agency/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	userDatamodel.User
	RoleName *string `gorm:"column:role_name"`
}

func (r *UserRepository) withRoleName(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("users").
		Select("users.*, roles.name AS role_name").
		Joins("LEFT JOIN roles ON roles.id = users.role_id AND roles.tenant_id = users.tenant_id")
}

func toDomain(row *userRow) *user.User {
	u := user.FromDataModel(&row.User)
	if row.RoleName != nil {
		u.RoleName = *row.RoleName
	}
	return u
}

func (r *UserRepository) GetByID(ctx context.Context, tenantID, userID string) (*user.User, error) {
	var rows []userRow
	err := r.withRoleName(ctx).
		Where("users.tenant_id = ? AND users.id = ?", tenantID, userID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toDomain(&rows[0]), nil
}

func (r *UserRepository) ListByTenant(ctx context.Context, tenantID string) ([]*user.User, error) {
	var rows []userRow
	err := r.withRoleName(ctx).
		Where("users.tenant_id = ?", tenantID).
		Order("users.created_at ASC, users.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]*user.User, len(rows))
	for i := range rows {
		users[i] = toDomain(&rows[i])
	}
	return users, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, tenantID, userID, roleID, label string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ? AND tenant_id = ?", userID, tenantID).
		Updates(map[string]interface{}{
			"role_id": roleID,
			"role":    label,
		})
	if res.Error != nil {
		return false, fmt.Errorf("update user role: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
