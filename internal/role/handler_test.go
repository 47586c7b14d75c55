package role_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/role"
	"github.com/frahmantamala/travel-agency/internal/transport"
	"github.com/frahmantamala/travel-agency/internal/user"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubService struct {
	roles       []*role.Role
	err         error
	lastTenant  string
	lastName    *string
	lastPerms   []string
	lastRoleID  string
	lastUserID  string
	reassignErr error
}

func (s *stubService) ListRoles(ctx context.Context, tenantID string) ([]*role.Role, error) {
	s.lastTenant = tenantID
	return s.roles, s.err
}

func (s *stubService) GetRole(ctx context.Context, tenantID, roleID string) (*role.Role, error) {
	s.lastTenant, s.lastRoleID = tenantID, roleID
	if s.err != nil {
		return nil, s.err
	}
	return &role.Role{ID: roleID, TenantID: tenantID, Name: "Ventas", Permissions: []string{"ventas"}}, nil
}

func (s *stubService) CreateRole(ctx context.Context, tenantID, name string, permissions []string) (*role.Role, error) {
	s.lastTenant, s.lastName, s.lastPerms = tenantID, &name, permissions
	if s.err != nil {
		return nil, s.err
	}
	return &role.Role{ID: "r1", TenantID: tenantID, Name: name, Permissions: permissions}, nil
}

func (s *stubService) UpdateRole(ctx context.Context, tenantID, roleID string, name *string, permissions []string) (*role.Role, error) {
	s.lastTenant, s.lastRoleID, s.lastName, s.lastPerms = tenantID, roleID, name, permissions
	if s.err != nil {
		return nil, s.err
	}
	return &role.Role{ID: roleID, TenantID: tenantID}, nil
}

func (s *stubService) DeleteRole(ctx context.Context, tenantID, roleID string) error {
	s.lastTenant, s.lastRoleID = tenantID, roleID
	return s.err
}

func (s *stubService) ReassignUserRole(ctx context.Context, tenantID, userID, roleID string) (*user.User, error) {
	s.lastTenant, s.lastUserID, s.lastRoleID = tenantID, userID, roleID
	if s.reassignErr != nil {
		return nil, s.reassignErr
	}
	return &user.User{ID: userID, TenantID: tenantID, RoleID: &roleID, RoleName: "Administrador", LegacyRole: "Administrador"}, nil
}

var _ = Describe("Role Handler", func() {
	var (
		stub   *stubService
		router chi.Router
	)

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(internal.ContextWithTenantID(req.Context(), "t1"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
		stub = &stubService{}
		h := role.NewHandler(transport.NewBaseHandler(logger), stub)

		router = chi.NewRouter()
		router.Get("/roles", h.ListRoles)
		router.Post("/roles", h.CreateRole)
		router.Get("/roles/{id}", h.GetRole)
		router.Patch("/roles/{id}", h.UpdateRole)
		router.Delete("/roles/{id}", h.DeleteRole)
		router.Patch("/users/{id}/role", h.ReassignUserRole)
	})

	It("should create a role for the resolved tenant", func() {
		w := serve(http.MethodPost, "/roles", `{"name":"Ventas","permissions":["ventas"]}`)

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(stub.lastTenant).To(Equal("t1"))
		Expect(stub.lastPerms).To(Equal([]string{"ventas"}))
	})

	It("should map duplicate names to 409 DUPLICATE_NAME", func() {
		stub.err = internal.ErrDuplicateRoleName
		w := serve(http.MethodPost, "/roles", `{"name":"Ventas","permissions":["ventas"]}`)

		Expect(w.Code).To(Equal(http.StatusConflict))
		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body["error"]["code"]).To(Equal("DUPLICATE_NAME"))
	})

	It("should reject unknown fields in the body", func() {
		w := serve(http.MethodPost, "/roles", `{"name":"Ventas","perms":["ventas"]}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should leave omitted fields untouched on update", func() {
		w := serve(http.MethodPatch, "/roles/r9", `{"name":"Comercial"}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(stub.lastRoleID).To(Equal("r9"))
		Expect(*stub.lastName).To(Equal("Comercial"))
		Expect(stub.lastPerms).To(BeNil())
	})

	It("should answer 204 on delete and 409 when the role is in use", func() {
		Expect(serve(http.MethodDelete, "/roles/r1", "").Code).To(Equal(http.StatusNoContent))

		stub.err = internal.ErrRoleInUse
		Expect(serve(http.MethodDelete, "/roles/r1", "").Code).To(Equal(http.StatusConflict))
	})

	It("should reassign a user's role", func() {
		w := serve(http.MethodPatch, "/users/u1/role", `{"role_id":"r2"}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(stub.lastUserID).To(Equal("u1"))
		Expect(stub.lastRoleID).To(Equal("r2"))
		var resp role.ReassignRoleResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.User.Role).To(Equal("Administrador"))
	})

	It("should map reassignment failures", func() {
		stub.reassignErr = internal.ErrInvalidRole
		Expect(serve(http.MethodPatch, "/users/u1/role", `{"role_id":"r2"}`).Code).To(Equal(http.StatusUnprocessableEntity))

		stub.reassignErr = internal.ErrUserNotFound
		Expect(serve(http.MethodPatch, "/users/u1/role", `{"role_id":"r2"}`).Code).To(Equal(http.StatusNotFound))
	})
})
