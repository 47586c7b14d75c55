package audit_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/audit"
	"github.com/frahmantamala/travel-agency/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Audit Handler", func() {
	var (
		repo    *mockRepository
		handler *audit.Handler
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
		repo = newMockRepository()
		service := audit.NewService(repo, logger)
		handler = audit.NewHandler(transport.NewBaseHandler(logger), service)

		ctx := internal.ContextWithActor(context.Background(), internal.Actor{UserID: "user-1"})
		service.Record(ctx, audit.Entry{TenantID: "tenant-1", Action: audit.ActionCreate, Entity: audit.EntityRole, EntityID: "r1"})
		service.Record(ctx, audit.Entry{TenantID: "tenant-1", Action: audit.ActionUpdate, Entity: audit.EntityUser, EntityID: "u1"})
	})

	It("should list the entries of the tenant placed by the permission gate", func() {
		req := httptest.NewRequest(http.MethodGet, "/audit-logs?entity=role", nil)
		req = req.WithContext(internal.ContextWithTenantID(req.Context(), "tenant-1"))
		w := httptest.NewRecorder()

		handler.ListEntries(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp audit.EntriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Entries).To(HaveLen(1))
		Expect(resp.Entries[0].EntityID).To(Equal("r1"))
		Expect(resp.Limit).To(Equal(audit.DefaultListLimit))
	})

	It("should reject a malformed limit", func() {
		req := httptest.NewRequest(http.MethodGet, "/audit-logs?limit=abc", nil)
		req = req.WithContext(internal.ContextWithTenantID(req.Context(), "tenant-1"))
		w := httptest.NewRecorder()

		handler.ListEntries(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 401 without a resolved tenant", func() {
		req := httptest.NewRequest(http.MethodGet, "/audit-logs", nil)
		w := httptest.NewRecorder()

		handler.ListEntries(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
