package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/travel-agency/internal/audit"
	"github.com/frahmantamala/travel-agency/internal/auth"
	"github.com/frahmantamala/travel-agency/internal/invitation"
	"github.com/frahmantamala/travel-agency/internal/role"
	"github.com/frahmantamala/travel-agency/internal/transport/middleware"
	"github.com/frahmantamala/travel-agency/internal/transport/swagger"
	"github.com/frahmantamala/travel-agency/internal/user"
	"github.com/go-chi/chi"
)

type Dependencies struct {
	Health      *HealthHandler
	Auth        *auth.Handler
	RBAC        *auth.RBACAuthorization
	Users       *user.Handler
	Roles       *role.Handler
	Invitations *invitation.Handler
	Audit       *audit.Handler

	// RateLimiter guards the unauthenticated endpoints. Nil disables it.
	RateLimiter *middleware.RateLimiter
	// Metrics is served at MetricsPath when set.
	Metrics     http.Handler
	MetricsPath string
	// OpenAPI serves the API document and backs the Swagger UI when set.
	OpenAPI        *swagger.Spec
	AllowedOrigins string
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies) {
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(middleware.Metrics)

	if deps.Metrics != nil {
		router.Handle(deps.MetricsPath, deps.Metrics)
	}
	if deps.OpenAPI != nil {
		router.Get("/openapi.yml", deps.OpenAPI.ServeHTTP)
		router.Handle("/swagger/*", swagger.Handler())
	}

	limited := func(h http.HandlerFunc) http.Handler {
		if deps.RateLimiter == nil {
			return h
		}
		return deps.RateLimiter.Middleware(h)
	}

	rbac := deps.RBAC

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", deps.Health.Health)
		r.Get("/ping", deps.Health.Ping)

		r.Method(http.MethodPost, "/auth/login", limited(deps.Auth.Login))
		r.Method(http.MethodPost, "/invitations/accept", limited(deps.Invitations.AcceptInvitation))

		r.Group(func(pr chi.Router) {
			pr.Use(deps.Auth.SessionMiddleware)
			pr.Use(middleware.UserContext)

			pr.With(rbac.RequireTenant()).Get("/users/me", deps.Users.GetCurrentUser)

			pr.Group(func(ur chi.Router) {
				ur.Use(rbac.Middleware(auth.CapabilityUsers))

				ur.Get("/users", deps.Users.ListUsers)
				ur.Patch("/users/{id}/role", deps.Roles.ReassignUserRole)

				ur.Route("/roles", func(rr chi.Router) {
					rr.Get("/", deps.Roles.ListRoles)
					rr.Post("/", deps.Roles.CreateRole)
					rr.Get("/{id}", deps.Roles.GetRole)
					rr.Patch("/{id}", deps.Roles.UpdateRole)
					rr.Delete("/{id}", deps.Roles.DeleteRole)
				})

				ur.Get("/invitations", deps.Invitations.ListInvitations)
				ur.Post("/invitations", deps.Invitations.IssueInvitation)
				ur.Post("/invitations/{id}/resend", deps.Invitations.ResendInvitation)
				ur.Post("/invitations/{id}/revoke", deps.Invitations.RevokeInvitation)
			})

			pr.With(rbac.Middleware(auth.CapabilityAudit)).Get("/audit-logs", deps.Audit.ListEntries)
		})
	})
}
