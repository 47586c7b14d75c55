package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/travel-agency/internal"
	auditDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/audit"
	"github.com/frahmantamala/travel-agency/internal/core/metrics"
	"github.com/frahmantamala/travel-agency/internal/ids"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// RepositoryAPI has no update or delete path: audit entries are append-only.
type RepositoryAPI interface {
	Create(ctx context.Context, log *auditDatamodel.AuditLog) error
	ListByTenant(ctx context.Context, tenantID string, filter ListFilter) ([]*auditDatamodel.AuditLog, error)
}

type ListFilter struct {
	Entity string
	Limit  int
	Offset int
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Record persists entry and never reports failure to the caller. The write
// outlives cancellation of ctx since the audited change is already committed.
func (s *Service) Record(ctx context.Context, entry Entry) {
	ctx = context.WithoutCancel(ctx)
	if entry.UserID == "" && entry.UserName == "" {
		actor := internal.ActorFromContext(ctx)
		entry.UserID = actor.UserID
		entry.UserName = actor.UserName
	}
	if entry.ID == "" {
		entry.ID = ids.NewSortable()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}

	if err := s.repo.Create(ctx, ToDataModel(&entry)); err != nil {
		metrics.AuditRecordFailures.Inc()
		s.logger.Error("failed to record audit entry",
			"tenant_id", entry.TenantID,
			"action", entry.Action,
			"entity", entry.Entity,
			"entity_id", entry.EntityID,
			"error", err)
		return
	}

	s.logger.Debug("audit entry recorded",
		"tenant_id", entry.TenantID,
		"action", entry.Action,
		"entity", entry.Entity,
		"entity_id", entry.EntityID)
}

func (s *Service) List(ctx context.Context, tenantID string, filter ListFilter) ([]*Entry, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	logs, err := s.repo.ListByTenant(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("failed to list audit entries", "tenant_id", tenantID, "error", err)
		return nil, internal.NewInternalError("failed to list audit entries", err)
	}

	entries := make([]*Entry, len(logs))
	for i, l := range logs {
		entries[i] = FromDataModel(l)
	}
	return entries, nil
}
