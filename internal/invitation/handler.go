package invitation

import (
	"context"
	"net/http"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/transport"
	"github.com/frahmantamala/travel-agency/internal/user"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	IssueInvitation(ctx context.Context, tenantID, email, roleID string) (*Invitation, error)
	ListInvitations(ctx context.Context, tenantID string) ([]*Invitation, error)
	ResendInvitation(ctx context.Context, tenantID, invitationID string) (*Invitation, error)
	RevokeInvitation(ctx context.Context, tenantID, invitationID string) error
	AcceptInvitation(ctx context.Context, dto AcceptDTO) (*user.User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) tenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID := internal.TenantIDFromContext(r.Context())
	if tenantID == "" {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return "", false
	}
	return tenantID, true
}

func (h *Handler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	invitations, err := h.Service.ListInvitations(r.Context(), tenantID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, InvitationsResponse{Invitations: invitations})
}

func (h *Handler) IssueInvitation(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var dto IssueInvitationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	inv, err := h.Service.IssueInvitation(r.Context(), tenantID, dto.Email, dto.RoleID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, InvitationResponse{Invitation: inv})
}

// ResendInvitation handles POST /invitations/{id}/resend
func (h *Handler) ResendInvitation(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	inv, err := h.Service.ResendInvitation(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, InvitationResponse{Invitation: inv})
}

// RevokeInvitation handles POST /invitations/{id}/revoke
func (h *Handler) RevokeInvitation(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	if err := h.Service.RevokeInvitation(r.Context(), tenantID, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AcceptInvitation is public: the token is the credential.
func (h *Handler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var dto AcceptDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.AcceptInvitation(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, AcceptResponse{User: u.ToResponse()})
}
