package role

import (
	"context"
	"net/http"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/transport"
	"github.com/frahmantamala/travel-agency/internal/user"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListRoles(ctx context.Context, tenantID string) ([]*Role, error)
	GetRole(ctx context.Context, tenantID, roleID string) (*Role, error)
	CreateRole(ctx context.Context, tenantID, name string, permissions []string) (*Role, error)
	UpdateRole(ctx context.Context, tenantID, roleID string, name *string, permissions []string) (*Role, error)
	DeleteRole(ctx context.Context, tenantID, roleID string) error
	ReassignUserRole(ctx context.Context, tenantID, userID, roleID string) (*user.User, error)
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

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	roles, err := h.Service.ListRoles(r.Context(), tenantID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RolesResponse{Roles: roles})
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	role, err := h.Service.GetRole(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var dto CreateRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	role, err := h.Service.CreateRole(r.Context(), tenantID, dto.Name, dto.Permissions)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, role)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var dto UpdateRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	role, err := h.Service.UpdateRole(r.Context(), tenantID, chi.URLParam(r, "id"), dto.Name, dto.Permissions)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteRole(r.Context(), tenantID, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReassignUserRole handles PATCH /users/{id}/role
func (h *Handler) ReassignUserRole(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var dto ReassignRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	u, err := h.Service.ReassignUserRole(r.Context(), tenantID, chi.URLParam(r, "id"), dto.RoleID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ReassignRoleResponse{User: u.ToResponse()})
}
