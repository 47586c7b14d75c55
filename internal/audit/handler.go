package audit

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, tenantID string, filter ListFilter) ([]*Entry, error)
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

// ListEntries serves GET /audit-logs. The tenant comes from the permission gate.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	tenantID := internal.TenantIDFromContext(r.Context())
	if tenantID == "" {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	q := r.URL.Query()
	filter := ListFilter{Entity: q.Get("entity")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.HandleServiceError(w, r, internal.NewValidationFieldError("limit", "limit must be a positive integer", internal.ErrCodeValidationFailed))
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.HandleServiceError(w, r, internal.NewValidationFieldError("offset", "offset must be a positive integer", internal.ErrCodeValidationFailed))
			return
		}
		filter.Offset = n
	}

	entries, err := h.Service.List(r.Context(), tenantID, filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	h.WriteJSON(w, http.StatusOK, EntriesResponse{
		Entries: entries,
		Limit:   limit,
		Offset:  filter.Offset,
	})
}
