package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/travel-agency/internal"
)

type SessionProvider interface {
	CurrentSession(ctx context.Context) (*Session, bool)
}

type Resolver struct {
	sessions SessionProvider
	repo     RepositoryAPI
	logger   *slog.Logger
}

func NewResolver(sessions SessionProvider, repo RepositoryAPI, logger *slog.Logger) *Resolver {
	return &Resolver{
		sessions: sessions,
		repo:     repo,
		logger:   logger,
	}
}

// Resolve reads the caller's tenant and current role assignment from storage.
func (r *Resolver) Resolve(ctx context.Context) (*PermissionContext, error) {
	session, ok := r.sessions.CurrentSession(ctx)
	if !ok {
		return nil, internal.ErrUnauthenticated
	}

	principal, err := r.repo.LoadPrincipal(ctx, session.UserID)
	if err != nil {
		r.logger.Error("failed to load principal", "user_id", session.UserID, "error", err)
		return nil, internal.NewInternalError("failed to resolve permissions", err)
	}
	if principal == nil || !principal.IsActive {
		r.logger.Warn("session references missing or inactive user", "user_id", session.UserID)
		return nil, internal.ErrUnauthenticated
	}

	return &PermissionContext{
		TenantID:    principal.TenantID,
		UserID:      principal.UserID,
		UserName:    principal.Name,
		Permissions: principal.Permissions,
		LegacyRole:  principal.LegacyRole,
	}, nil
}
