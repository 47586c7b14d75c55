package rest_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/audit"
	"github.com/frahmantamala/travel-agency/internal/auth"
	"github.com/frahmantamala/travel-agency/internal/invitation"
	"github.com/frahmantamala/travel-agency/internal/role"
	"github.com/frahmantamala/travel-agency/internal/transport"
	"github.com/frahmantamala/travel-agency/internal/transport/middleware"
	"github.com/frahmantamala/travel-agency/internal/transport/rest"
	"github.com/frahmantamala/travel-agency/internal/user"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type tokenService struct{}

func (tokenService) Authenticate(ctx context.Context, dto auth.LoginDTO) (auth.LoginResponse, error) {
	return auth.LoginResponse{AccessToken: "good", TokenType: "Bearer"}, nil
}

func (tokenService) ValidateAccessToken(token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, internal.ErrInvalidToken
	}
	return &auth.Claims{UserID: "u1", Email: "ana@agency.test"}, nil
}

// auditorOnly resolves every session to a tenant user holding only the
// audit capability.
type auditorOnly struct{}

func (auditorOnly) Resolve(ctx context.Context) (*auth.PermissionContext, error) {
	if _, ok := auth.SessionFromContext(ctx); !ok {
		return nil, internal.ErrUnauthenticated
	}
	return &auth.PermissionContext{TenantID: "t1", UserID: "u1", UserName: "Ana", Permissions: []string{auth.CapabilityAudit}}, nil
}

type userService struct{}

func (userService) GetByID(ctx context.Context, tenantID, userID string) (*user.User, error) {
	return &user.User{ID: userID, TenantID: tenantID, Name: "Ana", LegacyRole: "Auditor", IsActive: true}, nil
}

func (userService) List(ctx context.Context, tenantID string) ([]*user.User, error) {
	return nil, nil
}

type auditService struct{ tenant string }

func (s *auditService) List(ctx context.Context, tenantID string, filter audit.ListFilter) ([]*audit.Entry, error) {
	s.tenant = tenantID
	return []*audit.Entry{}, nil
}

var _ = Describe("Router", func() {
	var (
		router   *chi.Mux
		auditSvc *auditService
	)

	serve := func(method, path, token, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		req.RemoteAddr = "192.0.2.10:4000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
		base := transport.NewBaseHandler(logger)
		db, _, err := sqlmock.New()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		auditSvc = &auditService{}
		enforcer := auth.NewEnforcer(auditorOnly{}, internal.DefaultLegacyAdminRole, logger)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Dependencies{
			Health:         rest.NewHealthHandler(db),
			Auth:           auth.NewHandler(base, tokenService{}),
			RBAC:           auth.NewRBACAuthorization(enforcer, base),
			Users:          user.NewHandler(base, userService{}),
			Roles:          role.NewHandler(base, nil),
			Invitations:    invitation.NewHandler(base, nil),
			Audit:          audit.NewHandler(base, auditSvc),
			RateLimiter:    middleware.NewRateLimiter(1, 1, false),
			Metrics:        http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
			MetricsPath:    "/metrics",
			AllowedOrigins: "*",
			Logger:         logger,
		})
	})

	It("should keep ping public", func() {
		Expect(serve(http.MethodGet, "/api/v1/ping", "", "").Code).To(Equal(http.StatusOK))
	})

	It("should expose metrics", func() {
		Expect(serve(http.MethodGet, "/metrics", "", "").Code).To(Equal(http.StatusOK))
	})

	It("should require a session for tenant routes", func() {
		Expect(serve(http.MethodGet, "/api/v1/roles", "", "").Code).To(Equal(http.StatusUnauthorized))
		Expect(serve(http.MethodGet, "/api/v1/users/me", "bad", "").Code).To(Equal(http.StatusUnauthorized))
	})

	It("should let any tenant member read their own profile", func() {
		w := serve(http.MethodGet, "/api/v1/users/me", "good", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"role":"Auditor"`))
	})

	It("should deny user management without the users capability", func() {
		Expect(serve(http.MethodGet, "/api/v1/roles", "good", "").Code).To(Equal(http.StatusForbidden))
		Expect(serve(http.MethodPost, "/api/v1/invitations", "good", `{}`).Code).To(Equal(http.StatusForbidden))
		Expect(serve(http.MethodPatch, "/api/v1/users/u2/role", "good", `{}`).Code).To(Equal(http.StatusForbidden))
	})

	It("should scope the audit log to the caller's tenant", func() {
		Expect(serve(http.MethodGet, "/api/v1/audit-logs", "good", "").Code).To(Equal(http.StatusOK))
		Expect(auditSvc.tenant).To(Equal("t1"))
	})

	It("should rate limit login per client", func() {
		Expect(serve(http.MethodPost, "/api/v1/auth/login", "", `{"email":"a@b.test","password":"x"}`).Code).To(Equal(http.StatusOK))
		Expect(serve(http.MethodPost, "/api/v1/auth/login", "", `{"email":"a@b.test","password":"x"}`).Code).To(Equal(http.StatusTooManyRequests))
	})

	It("should echo the request id", func() {
		w := serve(http.MethodGet, "/api/v1/ping", "", "")
		Expect(w.Header().Get(middleware.RequestIDHeader)).NotTo(BeEmpty())
	})
})
