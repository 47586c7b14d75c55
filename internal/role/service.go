package role

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"time"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/audit"
	roleDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/role"
	"github.com/frahmantamala/travel-agency/internal/ids"
	"github.com/frahmantamala/travel-agency/internal/user"
)

// RepositoryAPI scopes every call to a tenant. Lookups return nil, nil when
// the role is absent from the tenant. Create and Update return
// internal.ErrDuplicateRoleName on a (tenant, name) collision. Delete returns
// internal.ErrRoleInUse when a foreign key still points at the role.
type RepositoryAPI interface {
	ListByTenant(ctx context.Context, tenantID string) ([]*roleDatamodel.Role, error)
	UsageByTenant(ctx context.Context, tenantID string) (map[string]Usage, error)
	Usage(ctx context.Context, tenantID, roleID string) (Usage, error)
	GetByID(ctx context.Context, tenantID, roleID string) (*roleDatamodel.Role, error)
	ExistsByName(ctx context.Context, tenantID, name, excludeID string) (bool, error)
	Create(ctx context.Context, role *roleDatamodel.Role) error
	Update(ctx context.Context, role *roleDatamodel.Role) error
	Delete(ctx context.Context, tenantID, roleID string) (bool, error)
}

type UserRepositoryAPI interface {
	GetByID(ctx context.Context, tenantID, userID string) (*user.User, error)
	UpdateRole(ctx context.Context, tenantID, userID, roleID, label string) (bool, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

type Service struct {
	repo     RepositoryAPI
	users    UserRepositoryAPI
	recorder AuditRecorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryAPI, users UserRepositoryAPI, recorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// ListRoles returns the tenant's roles in creation order with reference counts.
func (s *Service) ListRoles(ctx context.Context, tenantID string) ([]*Role, error) {
	rows, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		s.logger.Error("failed to list roles", "tenant_id", tenantID, "error", err)
		return nil, internal.NewInternalError("failed to list roles", err)
	}

	usage, err := s.repo.UsageByTenant(ctx, tenantID)
	if err != nil {
		s.logger.Error("failed to count role usage", "tenant_id", tenantID, "error", err)
		return nil, internal.NewInternalError("failed to list roles", err)
	}

	roles := make([]*Role, len(rows))
	for i, row := range rows {
		r := FromDataModel(row)
		u := usage[r.ID]
		r.UserCount = u.Users
		r.PendingInvitationCount = u.PendingInvitations
		roles[i] = r
	}
	return roles, nil
}

func (s *Service) GetRole(ctx context.Context, tenantID, roleID string) (*Role, error) {
	row, err := s.repo.GetByID(ctx, tenantID, roleID)
	if err != nil {
		s.logger.Error("failed to get role", "tenant_id", tenantID, "role_id", roleID, "error", err)
		return nil, internal.NewInternalError("failed to get role", err)
	}
	if row == nil {
		return nil, internal.ErrRoleNotFound
	}

	r := FromDataModel(row)
	u, err := s.repo.Usage(ctx, tenantID, roleID)
	if err != nil {
		s.logger.Error("failed to count role usage", "tenant_id", tenantID, "role_id", roleID, "error", err)
		return nil, internal.NewInternalError("failed to get role", err)
	}
	r.UserCount = u.Users
	r.PendingInvitationCount = u.PendingInvitations
	return r, nil
}

// ValidateRole reports internal.ErrInvalidRole when roleID does not name a
// role of the tenant.
func (s *Service) ValidateRole(ctx context.Context, tenantID, roleID string) (*Role, error) {
	if roleID == "" {
		return nil, internal.ErrInvalidRole
	}
	row, err := s.repo.GetByID(ctx, tenantID, roleID)
	if err != nil {
		s.logger.Error("failed to validate role", "tenant_id", tenantID, "role_id", roleID, "error", err)
		return nil, internal.NewInternalError("failed to validate role", err)
	}
	if row == nil {
		return nil, internal.ErrInvalidRole
	}
	return FromDataModel(row), nil
}

func (s *Service) CreateRole(ctx context.Context, tenantID, name string, permissions []string) (*Role, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	perms, err := NormalizePermissions(permissions)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsByName(ctx, tenantID, name, "")
	if err != nil {
		s.logger.Error("failed to check role name", "tenant_id", tenantID, "error", err)
		return nil, internal.NewInternalError("failed to create role", err)
	}
	if taken {
		return nil, internal.ErrDuplicateRoleName
	}

	r := &Role{
		ID:          ids.NewSortable(),
		TenantID:    tenantID,
		Name:        name,
		Permissions: perms,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, ToDataModel(r)); err != nil {
		if errors.Is(err, internal.ErrDuplicateRoleName) {
			return nil, internal.ErrDuplicateRoleName
		}
		s.logger.Error("failed to create role", "tenant_id", tenantID, "error", err)
		return nil, internal.NewInternalError("failed to create role", err)
	}

	s.logger.Info("role created", "tenant_id", tenantID, "role_id", r.ID, "name", r.Name)
	s.recorder.Record(ctx, audit.Entry{
		TenantID: tenantID,
		Action:   audit.ActionCreate,
		Entity:   audit.EntityRole,
		EntityID: r.ID,
		Changes: map[string]audit.Change{
			"name":        {Old: nil, New: r.Name},
			"permissions": {Old: nil, New: r.Permissions},
		},
	})
	return r, nil
}

// UpdateRole renames and/or replaces the permission set. Nil arguments leave
// the field untouched.
func (s *Service) UpdateRole(ctx context.Context, tenantID, roleID string, name *string, permissions []string) (*Role, error) {
	row, err := s.repo.GetByID(ctx, tenantID, roleID)
	if err != nil {
		s.logger.Error("failed to get role", "tenant_id", tenantID, "role_id", roleID, "error", err)
		return nil, internal.NewInternalError("failed to update role", err)
	}
	if row == nil {
		return nil, internal.ErrRoleNotFound
	}

	before := FromDataModel(row)
	after := *before
	changes := map[string]audit.Change{}

	if name != nil {
		newName, err := NormalizeName(*name)
		if err != nil {
			return nil, err
		}
		if newName != before.Name {
			taken, err := s.repo.ExistsByName(ctx, tenantID, newName, roleID)
			if err != nil {
				s.logger.Error("failed to check role name", "tenant_id", tenantID, "error", err)
				return nil, internal.NewInternalError("failed to update role", err)
			}
			if taken {
				return nil, internal.ErrDuplicateRoleName
			}
			after.Name = newName
			changes["name"] = audit.Change{Old: before.Name, New: newName}
		}
	}

	if permissions != nil {
		perms, err := NormalizePermissions(permissions)
		if err != nil {
			return nil, err
		}
		if !reflect.DeepEqual(perms, before.Permissions) {
			after.Permissions = perms
			changes["permissions"] = audit.Change{Old: before.Permissions, New: perms}
		}
	}

	if len(changes) == 0 {
		return s.GetRole(ctx, tenantID, roleID)
	}

	if err := s.repo.Update(ctx, ToDataModel(&after)); err != nil {
		if errors.Is(err, internal.ErrDuplicateRoleName) {
			return nil, internal.ErrDuplicateRoleName
		}
		s.logger.Error("failed to update role", "tenant_id", tenantID, "role_id", roleID, "error", err)
		return nil, internal.NewInternalError("failed to update role", err)
	}

	s.logger.Info("role updated", "tenant_id", tenantID, "role_id", roleID)
	s.recorder.Record(ctx, audit.Entry{
		TenantID: tenantID,
		Action:   audit.ActionUpdate,
		Entity:   audit.EntityRole,
		EntityID: roleID,
		Changes:  changes,
	})
	return s.GetRole(ctx, tenantID, roleID)
}

// DeleteRole refuses while any user or invitation, whatever its status,
// references the role.
func (s *Service) DeleteRole(ctx context.Context, tenantID, roleID string) error {
	row, err := s.repo.GetByID(ctx, tenantID, roleID)
	if err != nil {
		s.logger.Error("failed to get role", "tenant_id", tenantID, "role_id", roleID, "error", err)
		return internal.NewInternalError("failed to delete role", err)
	}
	if row == nil {
		return internal.ErrRoleNotFound
	}

	u, err := s.repo.Usage(ctx, tenantID, roleID)
	if err != nil {
		s.logger.Error("failed to count role usage", "tenant_id", tenantID, "role_id", roleID, "error", err)
		return internal.NewInternalError("failed to delete role", err)
	}
	if u.InUse() {
		return internal.ErrRoleInUse.WithDetails(map[string]int64{
			"users":       u.Users,
			"invitations": u.Invitations,
		})
	}

	deleted, err := s.repo.Delete(ctx, tenantID, roleID)
	if errors.Is(err, internal.ErrRoleInUse) {
		return err
	}
	if err != nil {
		s.logger.Error("failed to delete role", "tenant_id", tenantID, "role_id", roleID, "error", err)
		return internal.NewInternalError("failed to delete role", err)
	}
	if !deleted {
		return internal.ErrRoleNotFound
	}

	s.logger.Info("role deleted", "tenant_id", tenantID, "role_id", roleID)
	s.recorder.Record(ctx, audit.Entry{
		TenantID: tenantID,
		Action:   audit.ActionDelete,
		Entity:   audit.EntityRole,
		EntityID: roleID,
		Changes: map[string]audit.Change{
			"name":        {Old: row.Name, New: nil},
			"permissions": {Old: []string(row.Permissions), New: nil},
		},
	})
	return nil
}

// ReassignUserRole points the user at roleID and rewrites the legacy label to
// the role name in a single update, then records old and new role names.
func (s *Service) ReassignUserRole(ctx context.Context, tenantID, userID, roleID string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		s.logger.Error("failed to get user", "tenant_id", tenantID, "user_id", userID, "error", err)
		return nil, internal.NewInternalError("failed to reassign role", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}

	target, err := s.ValidateRole(ctx, tenantID, roleID)
	if err != nil {
		return nil, err
	}

	oldName := u.DisplayRole()

	changed, err := s.users.UpdateRole(ctx, tenantID, userID, target.ID, target.Name)
	if err != nil {
		s.logger.Error("failed to reassign role", "tenant_id", tenantID, "user_id", userID, "role_id", roleID, "error", err)
		return nil, internal.NewInternalError("failed to reassign role", err)
	}
	if !changed {
		return nil, internal.ErrUserNotFound
	}

	s.logger.Info("user role reassigned", "tenant_id", tenantID, "user_id", userID, "role_id", target.ID)
	s.recorder.Record(ctx, audit.Entry{
		TenantID: tenantID,
		Action:   audit.ActionUpdate,
		Entity:   audit.EntityUser,
		EntityID: userID,
		Changes: map[string]audit.Change{
			"role": {Old: oldName, New: target.Name},
		},
	})

	u.RoleID = &target.ID
	u.RoleName = target.Name
	u.LegacyRole = target.Name
	return u, nil
}
