package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/travel-agency/internal"
)

// RepositoryAPI reads are always tenant-filtered.
type RepositoryAPI interface {
	// GetByID returns nil, nil when the user is absent from the tenant.
	GetByID(ctx context.Context, tenantID, userID string) (*User, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*User, error)
	// UpdateRole sets role_id and the legacy label in one statement and
	// reports whether a row of the tenant was changed.
	UpdateRole(ctx context.Context, tenantID, userID, roleID, label string) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, tenantID, userID string) (*User, error) {
	u, err := s.repo.GetByID(ctx, tenantID, userID)
	if err != nil {
		s.logger.Error("failed to get user", "tenant_id", tenantID, "user_id", userID, "error", err)
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, tenantID string) ([]*User, error) {
	users, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		s.logger.Error("failed to list users", "tenant_id", tenantID, "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return users, nil
}
