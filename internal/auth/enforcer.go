package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/core/metrics"
)

type ContextResolver interface {
	Resolve(ctx context.Context) (*PermissionContext, error)
}

// Enforcer is the single gate every privileged path goes through.
type Enforcer struct {
	resolver        ContextResolver
	legacyAdminRole string
	logger          *slog.Logger
}

func NewEnforcer(resolver ContextResolver, legacyAdminRole string, logger *slog.Logger) *Enforcer {
	return &Enforcer{
		resolver:        resolver,
		legacyAdminRole: legacyAdminRole,
		logger:          logger,
	}
}

func (e *Enforcer) RequireTenantID(ctx context.Context) (string, error) {
	pc, err := e.Check(ctx, "")
	if err != nil {
		return "", err
	}
	return pc.TenantID, nil
}

func (e *Enforcer) RequirePermission(ctx context.Context, capability string) (string, error) {
	pc, err := e.Check(ctx, capability)
	if err != nil {
		return "", err
	}
	return pc.TenantID, nil
}

// Check resolves the caller and, when capability is non-empty, requires it.
// Accounts without a structured role whose legacy label equals the configured
// admin label pass every capability check.
func (e *Enforcer) Check(ctx context.Context, capability string) (*PermissionContext, error) {
	pc, err := e.resolver.Resolve(ctx)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeUnauthenticated {
			metrics.AuthorizationDenials.WithLabelValues("unauthenticated").Inc()
		}
		return nil, err
	}
	if capability == "" {
		return pc, nil
	}

	if e.isLegacyAdmin(pc) {
		e.logger.Debug("legacy admin bypass", "user_id", pc.UserID, "tenant_id", pc.TenantID, "capability", capability)
		return pc, nil
	}

	if !pc.Has(capability) {
		metrics.AuthorizationDenials.WithLabelValues("forbidden").Inc()
		e.logger.Warn("access denied: missing capability",
			"user_id", pc.UserID,
			"tenant_id", pc.TenantID,
			"capability", capability)
		return nil, internal.ErrForbidden
	}

	return pc, nil
}

func (e *Enforcer) isLegacyAdmin(pc *PermissionContext) bool {
	return !pc.HasExplicitPermissions() && e.legacyAdminRole != "" && pc.LegacyRole == e.legacyAdminRole
}
