package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/transport"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("HTTP gate", func() {
	var (
		router   chi.Router
		tokenGen *JWTTokenGenerator
		seen     struct {
			tenantID string
			actor    internal.Actor
		}
	)

	bearer := func(userID string) string {
		token, _, err := tokenGen.GenerateAccessToken(userID, userID+"@agency.test")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return "Bearer " + token
	}

	ginkgo.BeforeEach(func() {
		repo := newMockRepository()
		logger := quietLogger()
		base := transport.NewBaseHandler(logger)
		tokenGen = NewJWTTokenGenerator("test-secret-that-is-long-enough-1234", time.Minute)
		handler := NewHandler(base, NewService(repo, tokenGen, logger))
		enforcer := NewEnforcer(NewResolver(ContextSessionProvider{}, repo, logger), "ADMIN", logger)
		rbac := NewRBACAuthorization(enforcer, base)

		capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen.tenantID = internal.TenantIDFromContext(r.Context())
			seen.actor = internal.ActorFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})

		router = chi.NewRouter()
		router.Post("/auth/login", handler.Login)
		router.Group(func(r chi.Router) {
			r.Use(handler.SessionMiddleware)
			r.With(rbac.RequireTenant()).Get("/me", capture)
			r.With(rbac.Middleware(CapabilityUsers)).Get("/roles", capture)
		})
	})

	ginkgo.It("should log in and return a bearer token", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"user@agency.test","password":"correct_password"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		var resp LoginResponse
		gomega.Expect(json.NewDecoder(w.Body).Decode(&resp)).To(gomega.Succeed())
		gomega.Expect(resp.AccessToken).ToNot(gomega.BeEmpty())
	})

	ginkgo.It("should answer 401 with INVALID_CREDENTIALS on a bad password", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"user@agency.test","password":"bad"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(w.Body.String()).To(gomega.ContainSubstring("INVALID_CREDENTIALS"))
	})

	ginkgo.It("should answer 401 without a bearer token", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should place tenant and actor in the context for tenant-only routes", func() {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", bearer("legacy-agent"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusNoContent))
		gomega.Expect(seen.tenantID).To(gomega.Equal("tenant-1"))
		gomega.Expect(seen.actor).To(gomega.Equal(internal.Actor{UserID: "legacy-agent", UserName: "Luis"}))
	})

	ginkgo.It("should answer 403 when the capability is missing", func() {
		req := httptest.NewRequest(http.MethodGet, "/roles", nil)
		req.Header.Set("Authorization", bearer("seller-admin"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))
	})

	ginkgo.It("should let the legacy admin reach capability routes", func() {
		req := httptest.NewRequest(http.MethodGet, "/roles", nil)
		req.Header.Set("Authorization", bearer("legacy-admin"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusNoContent))
	})
})
