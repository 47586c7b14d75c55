package user_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/transport"
	"github.com/frahmantamala/travel-agency/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

type mockRepository struct {
	users map[string]*user.User
	err   error
}

func (m *mockRepository) GetByID(ctx context.Context, tenantID, userID string) (*user.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[userID]
	if !ok || u.TenantID != tenantID {
		return nil, nil
	}
	return u, nil
}

func (m *mockRepository) ListByTenant(ctx context.Context, tenantID string) ([]*user.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*user.User
	for _, u := range m.users {
		if u.TenantID == tenantID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockRepository) UpdateRole(ctx context.Context, tenantID, userID, roleID, label string) (bool, error) {
	return false, errors.New("not used")
}

var _ = Describe("User Handler", func() {
	var (
		repo    *mockRepository
		handler *user.Handler
	)

	withTenant := func(req *http.Request, tenantID, userID string) *http.Request {
		ctx := internal.ContextWithTenantID(req.Context(), tenantID)
		ctx = internal.ContextWithActor(ctx, internal.Actor{UserID: userID})
		return req.WithContext(ctx)
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
		roleID := "r1"
		repo = &mockRepository{users: map[string]*user.User{
			"u1": {ID: "u1", TenantID: "t1", Email: "u1@agency.test", Name: "Uno", LegacyRole: "Ventas", RoleID: &roleID, RoleName: "Ventas", IsActive: true},
			"u2": {ID: "u2", TenantID: "t2", Email: "u2@agency.test", Name: "Dos", LegacyRole: "ADMIN", IsActive: true},
		}}
		handler = user.NewHandler(transport.NewBaseHandler(logger), user.NewService(repo, logger))
	})

	It("should return the current user of the resolved tenant", func() {
		req := withTenant(httptest.NewRequest(http.MethodGet, "/users/me", nil), "t1", "u1")
		w := httptest.NewRecorder()

		handler.GetCurrentUser(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp user.UserResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Role).To(Equal("Ventas"))
	})

	It("should answer 404 for a user outside the tenant", func() {
		req := withTenant(httptest.NewRequest(http.MethodGet, "/users/me", nil), "t1", "u2")
		w := httptest.NewRecorder()

		handler.GetCurrentUser(w, req)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should list only users of the tenant", func() {
		req := withTenant(httptest.NewRequest(http.MethodGet, "/users", nil), "t2", "u2")
		w := httptest.NewRecorder()

		handler.ListUsers(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp user.UsersResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Users).To(HaveLen(1))
		Expect(resp.Users[0].Role).To(Equal("ADMIN"))
	})

	It("should hide storage failures behind a 500", func() {
		repo.err = errors.New("pq: connection refused")
		req := withTenant(httptest.NewRequest(http.MethodGet, "/users", nil), "t1", "u1")
		w := httptest.NewRecorder()

		handler.ListUsers(w, req)

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).NotTo(ContainSubstring("connection refused"))
	})
})
