package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/travel-agency/internal/auth"
	roleDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// LoadPrincipal reads the user and, when assigned, the user's role within the
// same tenant. A role reference that no longer resolves yields an empty
// explicit permission set rather than falling back to the legacy label.
func (r *Repository) LoadPrincipal(ctx context.Context, userID string) (*auth.Principal, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	p := &auth.Principal{
		UserID:     u.ID,
		TenantID:   u.TenantID,
		Name:       u.Name,
		Email:      u.Email,
		LegacyRole: u.Role,
		RoleID:     u.RoleID,
		IsActive:   u.IsActive,
	}
	if u.RoleID == nil {
		return p, nil
	}

	var role roleDatamodel.Role
	err = r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", *u.RoleID, u.TenantID).
		First(&role).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		p.Permissions = []string{}
	case err != nil:
		return nil, fmt.Errorf("load role: %w", err)
	default:
		p.Permissions = append([]string{}, role.Permissions...)
	}
	return p, nil
}

func (r *Repository) GetCredentials(ctx context.Context, email string) (*auth.Credentials, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Select("id", "email", "password_hash", "is_active").
		Where("email = ?", email).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return &auth.Credentials{
		UserID:       u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
	}, nil
}
