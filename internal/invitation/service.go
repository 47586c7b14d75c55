package invitation

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/audit"
	"github.com/frahmantamala/travel-agency/internal/auth"
	invitationDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/invitation"
	userDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/user"
	"github.com/frahmantamala/travel-agency/internal/core/metrics"
	"github.com/frahmantamala/travel-agency/internal/ids"
	"github.com/frahmantamala/travel-agency/internal/notification"
	"github.com/frahmantamala/travel-agency/internal/role"
	"github.com/frahmantamala/travel-agency/internal/user"
)

// RepositoryAPI scopes administrative calls to a tenant. Lookups return
// nil, nil when nothing matches. Every status transition is conditional on
// the row still being PENDING and reports whether it applied.
type RepositoryAPI interface {
	Create(ctx context.Context, inv *invitationDatamodel.Invitation) error
	GetByID(ctx context.Context, tenantID, invitationID string) (*Invitation, error)
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Invitation, error)
	TenantName(ctx context.Context, tenantID string) (string, error)
	ExtendExpiry(ctx context.Context, tenantID, invitationID string, expiresAt time.Time) (bool, error)
	Revoke(ctx context.Context, tenantID, invitationID string, at time.Time) (bool, error)
	MarkAccepted(ctx context.Context, invitationID string, at time.Time) (bool, error)
	// Accept flips the invitation to ACCEPTED and inserts u in one
	// transaction. It returns internal.ErrInvitationAlreadyUsed or
	// internal.ErrEmailAlreadyRegistered and leaves nothing behind on failure.
	Accept(ctx context.Context, invitationID string, at time.Time, u *userDatamodel.User) error
}

type RoleValidator interface {
	ValidateRole(ctx context.Context, tenantID, roleID string) (*role.Role, error)
}

type Notifier interface {
	Notify(ctx context.Context, templateID, recipient string, params map[string]interface{})
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

type Config struct {
	TTL        time.Duration
	AcceptURL  string
	BCryptCost int
	Now        func() time.Time
}

type Service struct {
	repo     RepositoryAPI
	roles    RoleValidator
	notifier Notifier
	recorder AuditRecorder
	logger   *slog.Logger

	ttl        time.Duration
	acceptURL  string
	bcryptCost int
	now        func() time.Time
}

func NewService(repo RepositoryAPI, roles RoleValidator, notifier Notifier, recorder AuditRecorder, config Config, logger *slog.Logger) *Service {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = internal.DefaultInvitationTTL
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:       repo,
		roles:      roles,
		notifier:   notifier,
		recorder:   recorder,
		logger:     logger,
		ttl:        ttl,
		acceptURL:  config.AcceptURL,
		bcryptCost: config.BCryptCost,
		now:        now,
	}
}

func (s *Service) IssueInvitation(ctx context.Context, tenantID, email, roleID string) (*Invitation, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	r, err := s.roles.ValidateRole(ctx, tenantID, roleID)
	if err != nil {
		return nil, err
	}

	token, err := NewToken()
	if err != nil {
		s.logger.Error("failed to generate invitation token", "error", err)
		return nil, internal.NewInternalError("failed to issue invitation", err)
	}

	now := s.now().UTC()
	inv := &Invitation{
		ID:        ids.NewSortable(),
		TenantID:  tenantID,
		Email:     email,
		RoleID:    r.ID,
		RoleName:  r.Name,
		Token:     token,
		Status:    StatusPending,
		InvitedBy: internal.ActorFromContext(ctx).UserID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, ToDataModel(inv)); err != nil {
		s.logger.Error("failed to create invitation", "tenant_id", tenantID, "error", err)
		return nil, internal.NewInternalError("failed to issue invitation", err)
	}

	s.logger.Info("invitation issued", "tenant_id", tenantID, "invitation_id", inv.ID, "role_id", r.ID)
	s.recorder.Record(ctx, audit.Entry{
		TenantID: tenantID,
		Action:   audit.ActionCreate,
		Entity:   audit.EntityInvitation,
		EntityID: inv.ID,
		Changes: map[string]audit.Change{
			"email":      {Old: nil, New: inv.Email},
			"role":       {Old: nil, New: r.Name},
			"expires_at": {Old: nil, New: inv.ExpiresAt},
		},
	})
	s.notify(ctx, notification.TemplateInvitationIssued, inv)
	return inv, nil
}

// ListInvitations returns newest first with the effective status applied.
func (s *Service) ListInvitations(ctx context.Context, tenantID string) ([]*Invitation, error) {
	invitations, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		s.logger.Error("failed to list invitations", "tenant_id", tenantID, "error", err)
		return nil, internal.NewInternalError("failed to list invitations", err)
	}

	now := s.now()
	for _, inv := range invitations {
		inv.Status = inv.EffectiveStatus(now)
	}
	return invitations, nil
}

// ResendInvitation pushes expiry to now + TTL and sends the link again. An
// invitation that lapsed by time but is still stored PENDING is revived.
func (s *Service) ResendInvitation(ctx context.Context, tenantID, invitationID string) (*Invitation, error) {
	inv, err := s.repo.GetByID(ctx, tenantID, invitationID)
	if err != nil {
		s.logger.Error("failed to get invitation", "tenant_id", tenantID, "invitation_id", invitationID, "error", err)
		return nil, internal.NewInternalError("failed to resend invitation", err)
	}
	if inv == nil || inv.Status != StatusPending {
		return nil, internal.ErrInvitationNotFoundOrNotPending
	}

	previous := inv.ExpiresAt
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)

	ok, err := s.repo.ExtendExpiry(ctx, tenantID, invitationID, expiresAt)
	if err != nil {
		s.logger.Error("failed to extend invitation", "tenant_id", tenantID, "invitation_id", invitationID, "error", err)
		return nil, internal.NewInternalError("failed to resend invitation", err)
	}
	if !ok {
		return nil, internal.ErrInvitationNotFoundOrNotPending
	}
	inv.ExpiresAt = expiresAt
	inv.UpdatedAt = now

	s.logger.Info("invitation resent", "tenant_id", tenantID, "invitation_id", invitationID)
	s.recorder.Record(ctx, audit.Entry{
		TenantID: tenantID,
		Action:   audit.ActionUpdate,
		Entity:   audit.EntityInvitation,
		EntityID: invitationID,
		Changes: map[string]audit.Change{
			"expires_at": {Old: previous, New: expiresAt},
		},
	})
	s.notify(ctx, notification.TemplateInvitationResent, inv)
	return inv, nil
}

func (s *Service) RevokeInvitation(ctx context.Context, tenantID, invitationID string) error {
	ok, err := s.repo.Revoke(ctx, tenantID, invitationID, s.now().UTC())
	if err != nil {
		s.logger.Error("failed to revoke invitation", "tenant_id", tenantID, "invitation_id", invitationID, "error", err)
		return internal.NewInternalError("failed to revoke invitation", err)
	}
	if !ok {
		return internal.ErrInvitationNotFoundOrNotPending
	}

	s.logger.Info("invitation revoked", "tenant_id", tenantID, "invitation_id", invitationID)
	s.recorder.Record(ctx, audit.Entry{
		TenantID: tenantID,
		Action:   audit.ActionUpdate,
		Entity:   audit.EntityInvitation,
		EntityID: invitationID,
		Changes: map[string]audit.Change{
			"status": {Old: StatusPending, New: StatusRevoked},
		},
	})
	return nil
}

// RedeemInvitation consumes token exactly once. Of several concurrent calls
// for the same token only one gets past the conditional update.
func (s *Service) RedeemInvitation(ctx context.Context, token string) (*Redemption, error) {
	inv, err := s.redeemable(ctx, token)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.MarkAccepted(ctx, inv.ID, s.now().UTC())
	if err != nil {
		metrics.InvitationRedemptions.WithLabelValues("error").Inc()
		s.logger.Error("failed to redeem invitation", "invitation_id", inv.ID, "error", err)
		return nil, internal.NewInternalError("failed to redeem invitation", err)
	}
	if !ok {
		metrics.InvitationRedemptions.WithLabelValues("already_used").Inc()
		return nil, internal.ErrInvitationAlreadyUsed
	}

	metrics.InvitationRedemptions.WithLabelValues("accepted").Inc()
	s.logger.Info("invitation redeemed", "tenant_id", inv.TenantID, "invitation_id", inv.ID)
	return &Redemption{
		InvitationID: inv.ID,
		TenantID:     inv.TenantID,
		RoleID:       inv.RoleID,
		Email:        inv.Email,
	}, nil
}

// AcceptInvitation redeems token and creates the invited account in the
// invitation's tenant and role.
func (s *Service) AcceptInvitation(ctx context.Context, dto AcceptDTO) (*user.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.redeemable(ctx, dto.Token)
	if err != nil {
		return nil, err
	}

	r, err := s.roles.ValidateRole(ctx, inv.TenantID, inv.RoleID)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to accept invitation", err)
	}

	now := s.now().UTC()
	roleID := r.ID
	u := &user.User{
		ID:           ids.New(),
		TenantID:     inv.TenantID,
		Email:        inv.Email,
		Name:         dto.normalizedName(),
		PasswordHash: hash,
		LegacyRole:   r.Name,
		RoleID:       &roleID,
		RoleName:     r.Name,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Accept(ctx, inv.ID, now, user.ToDataModel(u)); err != nil {
		switch {
		case errors.Is(err, internal.ErrInvitationAlreadyUsed):
			metrics.InvitationRedemptions.WithLabelValues("already_used").Inc()
			return nil, internal.ErrInvitationAlreadyUsed
		case errors.Is(err, internal.ErrEmailAlreadyRegistered):
			metrics.InvitationRedemptions.WithLabelValues("email_taken").Inc()
			return nil, internal.ErrEmailAlreadyRegistered
		}
		metrics.InvitationRedemptions.WithLabelValues("error").Inc()
		s.logger.Error("failed to accept invitation", "invitation_id", inv.ID, "error", err)
		return nil, internal.NewInternalError("failed to accept invitation", err)
	}

	metrics.InvitationRedemptions.WithLabelValues("accepted").Inc()
	s.logger.Info("invitation accepted", "tenant_id", inv.TenantID, "invitation_id", inv.ID, "user_id", u.ID)

	ctx = internal.ContextWithActor(ctx, internal.Actor{UserID: u.ID, UserName: u.Name})
	s.recorder.Record(ctx, audit.Entry{
		TenantID: inv.TenantID,
		Action:   audit.ActionCreate,
		Entity:   audit.EntityUser,
		EntityID: u.ID,
		Changes: map[string]audit.Change{
			"email": {Old: nil, New: u.Email},
			"role":  {Old: nil, New: r.Name},
		},
	})
	return u, nil
}

// redeemable checks are ordered: unknown token, then expiry, then status.
func (s *Service) redeemable(ctx context.Context, token string) (*Invitation, error) {
	if token == "" {
		metrics.InvitationRedemptions.WithLabelValues("invalid_token").Inc()
		return nil, internal.ErrInvalidInvitationToken
	}

	inv, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		metrics.InvitationRedemptions.WithLabelValues("error").Inc()
		s.logger.Error("failed to look up invitation token", "error", err)
		return nil, internal.NewInternalError("failed to redeem invitation", err)
	}
	if inv == nil {
		metrics.InvitationRedemptions.WithLabelValues("invalid_token").Inc()
		return nil, internal.ErrInvalidInvitationToken
	}
	if inv.IsExpired(s.now()) {
		metrics.InvitationRedemptions.WithLabelValues("expired").Inc()
		return nil, internal.ErrInvitationExpired
	}
	if inv.Status != StatusPending {
		metrics.InvitationRedemptions.WithLabelValues("already_used").Inc()
		return nil, internal.ErrInvitationAlreadyUsed
	}
	return inv, nil
}

// notify never fails the caller; delivery happens off the request path.
func (s *Service) notify(ctx context.Context, templateID string, inv *Invitation) {
	tenantName, err := s.repo.TenantName(ctx, inv.TenantID)
	if err != nil {
		s.logger.Warn("failed to load tenant name for notification", "tenant_id", inv.TenantID, "error", err)
	}

	s.notifier.Notify(ctx, templateID, inv.Email, map[string]interface{}{
		"accept_url":  s.acceptLink(inv.Token),
		"expires_at":  inv.ExpiresAt.UTC().Format(time.RFC3339),
		"role_name":   inv.RoleName,
		"tenant_name": tenantName,
	})
}

func (s *Service) acceptLink(token string) string {
	u, err := url.Parse(s.acceptURL)
	if err != nil {
		return s.acceptURL + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
