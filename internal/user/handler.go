package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/transport"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, tenantID, userID string) (*User, error)
	List(ctx context.Context, tenantID string) ([]*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	tenantID := internal.TenantIDFromContext(r.Context())
	actor := internal.ActorFromContext(r.Context())
	if tenantID == "" || actor.UserID == "" {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	u, err := h.Service.GetByID(r.Context(), tenantID, actor.UserID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u.ToResponse())
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	tenantID := internal.TenantIDFromContext(r.Context())
	if tenantID == "" {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	users, err := h.Service.List(r.Context(), tenantID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp := UsersResponse{Users: make([]UserResponse, len(users))}
	for i, u := range users {
		resp.Users[i] = u.ToResponse()
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
