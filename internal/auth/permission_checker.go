package auth

import "context"

// Capabilities declared by this service. The set is open: roles may carry
// any non-empty capability name.
const (
	CapabilityUsers = "usuarios"
	CapabilityAudit = "auditoria"
)

// PermissionContext is the request-scoped view of the caller. It is never
// cached across requests.
type PermissionContext struct {
	TenantID    string
	UserID      string
	UserName    string
	Permissions []string
	LegacyRole  string
}

// HasExplicitPermissions reports whether the caller holds a structured role.
// An empty but non-nil set still counts as explicit.
func (pc *PermissionContext) HasExplicitPermissions() bool {
	return pc.Permissions != nil
}

func (pc *PermissionContext) Has(capability string) bool {
	for _, p := range pc.Permissions {
		if p == capability {
			return true
		}
	}
	return false
}

type permissionKey struct{}

func ContextWithPermissions(ctx context.Context, pc *PermissionContext) context.Context {
	return context.WithValue(ctx, permissionKey{}, pc)
}

func PermissionsFromContext(ctx context.Context) (*PermissionContext, bool) {
	pc, ok := ctx.Value(permissionKey{}).(*PermissionContext)
	return pc, ok && pc != nil
}
