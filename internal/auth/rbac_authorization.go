package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/transport"
	"github.com/frahmantamala/travel-agency/pkg/logger"
)

type Authorizer interface {
	Check(ctx context.Context, capability string) (*PermissionContext, error)
}

// RBACAuthorization adapts the Enforcer to chi middleware. On success the
// tenant id, permission context and actor are placed in the request context.
type RBACAuthorization struct {
	*transport.BaseHandler
	authorizer Authorizer
}

func NewRBACAuthorization(authorizer Authorizer, base *transport.BaseHandler) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: base,
		authorizer:  authorizer,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, capability string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pc, err := ra.authorizer.Check(r.Context(), capability)
		if err != nil {
			ra.HandleServiceError(w, r, err)
			return
		}

		ctx := internal.ContextWithTenantID(r.Context(), pc.TenantID)
		ctx = ContextWithPermissions(ctx, pc)
		ctx = internal.ContextWithActor(ctx, internal.Actor{UserID: pc.UserID, UserName: pc.UserName})
		ctx = logger.With(ctx, "tenant_id", pc.TenantID)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// Middleware requires capability.
func (ra *RBACAuthorization) Middleware(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, capability)
	}
}

// RequireTenant only requires a resolved tenant.
func (ra *RBACAuthorization) RequireTenant() func(http.Handler) http.Handler {
	return ra.Middleware("")
}
