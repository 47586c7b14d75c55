package invitation_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/invitation"
	"github.com/frahmantamala/travel-agency/internal/transport"
	"github.com/frahmantamala/travel-agency/internal/user"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubService struct {
	err        error
	lastTenant string
	lastID     string
	lastEmail  string
	lastAccept invitation.AcceptDTO
}

func (s *stubService) IssueInvitation(ctx context.Context, tenantID, email, roleID string) (*invitation.Invitation, error) {
	s.lastTenant, s.lastEmail = tenantID, email
	if s.err != nil {
		return nil, s.err
	}
	return &invitation.Invitation{ID: "inv-1", TenantID: tenantID, Email: email, RoleID: roleID, Token: "secret", Status: invitation.StatusPending}, nil
}

func (s *stubService) ListInvitations(ctx context.Context, tenantID string) ([]*invitation.Invitation, error) {
	s.lastTenant = tenantID
	return []*invitation.Invitation{{ID: "inv-1", Status: invitation.StatusExpired, Token: "secret"}}, s.err
}

func (s *stubService) ResendInvitation(ctx context.Context, tenantID, invitationID string) (*invitation.Invitation, error) {
	s.lastTenant, s.lastID = tenantID, invitationID
	if s.err != nil {
		return nil, s.err
	}
	return &invitation.Invitation{ID: invitationID, Status: invitation.StatusPending}, nil
}

func (s *stubService) RevokeInvitation(ctx context.Context, tenantID, invitationID string) error {
	s.lastTenant, s.lastID = tenantID, invitationID
	return s.err
}

func (s *stubService) AcceptInvitation(ctx context.Context, dto invitation.AcceptDTO) (*user.User, error) {
	s.lastAccept = dto
	if s.err != nil {
		return nil, s.err
	}
	return &user.User{ID: "u-1", TenantID: "t1", Email: "nuevo@agency.test", Name: dto.Name, LegacyRole: "Ventas", IsActive: true}, nil
}

var _ = Describe("Invitation Handler", func() {
	var (
		stub   *stubService
		router chi.Router
	)

	serve := func(method, path, body string, tenantID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if tenantID != "" {
			req = req.WithContext(internal.ContextWithTenantID(req.Context(), tenantID))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	errorCode := func(w *httptest.ResponseRecorder) interface{} {
		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body["error"]["code"]
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
		stub = &stubService{}
		h := invitation.NewHandler(transport.NewBaseHandler(logger), stub)

		router = chi.NewRouter()
		router.Get("/invitations", h.ListInvitations)
		router.Post("/invitations", h.IssueInvitation)
		router.Post("/invitations/{id}/resend", h.ResendInvitation)
		router.Post("/invitations/{id}/revoke", h.RevokeInvitation)
		router.Post("/invitations/accept", h.AcceptInvitation)
	})

	It("should issue for the resolved tenant without echoing the token", func() {
		w := serve(http.MethodPost, "/invitations", `{"email":"nuevo@agency.test","role_id":"r1"}`, "t1")

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(stub.lastTenant).To(Equal("t1"))
		Expect(w.Body.String()).NotTo(ContainSubstring("secret"))
	})

	It("should require email and role", func() {
		w := serve(http.MethodPost, "/invitations", `{"email":""}`, "t1")

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal("VALIDATION_FAILED"))
	})

	It("should list with effective status", func() {
		w := serve(http.MethodGet, "/invitations", "", "t1")

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"status":"EXPIRED"`))
	})

	It("should map a resend of a used invitation to 404", func() {
		stub.err = internal.ErrInvitationNotFoundOrNotPending
		w := serve(http.MethodPost, "/invitations/inv-9/resend", "", "t1")

		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(stub.lastID).To(Equal("inv-9"))
		Expect(errorCode(w)).To(Equal("INVITATION_NOT_FOUND_OR_NOT_PENDING"))
	})

	It("should answer 204 on revoke", func() {
		w := serve(http.MethodPost, "/invitations/inv-1/revoke", "", "t1")
		Expect(w.Code).To(Equal(http.StatusNoContent))
	})

	It("should reject admin routes without a tenant", func() {
		w := serve(http.MethodGet, "/invitations", "", "")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	DescribeTable("accept errors stay distinguishable",
		func(err error, status int, code string) {
			stub.err = err
			w := serve(http.MethodPost, "/invitations/accept", `{"token":"x","name":"Luis","password":"s3cret-pass"}`, "")

			Expect(w.Code).To(Equal(status))
			Expect(errorCode(w)).To(Equal(code))
		},
		Entry("invalid link", internal.ErrInvalidInvitationToken, http.StatusNotFound, "INVALID_INVITATION_TOKEN"),
		Entry("expired", internal.ErrInvitationExpired, http.StatusGone, "INVITATION_EXPIRED"),
		Entry("already used", internal.ErrInvitationAlreadyUsed, http.StatusConflict, "INVITATION_ALREADY_USED"),
		Entry("email taken", internal.ErrEmailAlreadyRegistered, http.StatusConflict, "EMAIL_ALREADY_REGISTERED"),
	)

	It("should create the account on accept", func() {
		w := serve(http.MethodPost, "/invitations/accept", `{"token":"x","name":"Luis","password":"s3cret-pass"}`, "")

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(stub.lastAccept.Token).To(Equal("x"))
		Expect(w.Body.String()).To(ContainSubstring(`"role":"Ventas"`))
	})
})
