package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the authenticated caller as established by a bearer token.
// It carries identity only; tenant and permissions are resolved per request.
type Session struct {
	UserID string
	Email  string
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type TokenGenerator interface {
	GenerateAccessToken(userID string, email string) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	Secret         []byte
	AccessTokenTTL time.Duration
	now            func() time.Time
}

// Principal is the stored state the resolver needs about a user.
// Permissions is nil when the user has no structured role.
type Principal struct {
	UserID      string
	TenantID    string
	Name        string
	Email       string
	LegacyRole  string
	RoleID      *string
	IsActive    bool
	Permissions []string
}

type Credentials struct {
	UserID       string
	Email        string
	PasswordHash string
	IsActive     bool
}

type RepositoryAPI interface {
	// LoadPrincipal returns nil, nil when the user does not exist.
	LoadPrincipal(ctx context.Context, userID string) (*Principal, error)
	// GetCredentials returns nil, nil when no user has this email.
	GetCredentials(ctx context.Context, email string) (*Credentials, error)
}

type sessionKey struct{}

func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil && s.UserID != ""
}

// ContextSessionProvider reads the session placed by SessionMiddleware.
type ContextSessionProvider struct{}

func (ContextSessionProvider) CurrentSession(ctx context.Context) (*Session, bool) {
	return SessionFromContext(ctx)
}
