package role

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/frahmantamala/travel-agency/internal"
	roleDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/role"
)

const MaxCapabilityLength = 64

type Role struct {
	ID                     string    `json:"id"`
	TenantID               string    `json:"tenant_id"`
	Name                   string    `json:"name"`
	Permissions            []string  `json:"permissions"`
	CreatedAt              time.Time `json:"created_at"`
	UserCount              int64     `json:"user_count"`
	PendingInvitationCount int64     `json:"pending_invitation_count"`
}

// Usage counts what still points at a role. Invitations covers every
// status since invitation rows are kept as history.
type Usage struct {
	Users              int64
	PendingInvitations int64
	Invitations        int64
}

func (u Usage) InUse() bool {
	return u.Users > 0 || u.Invitations > 0
}

// NormalizeName trims surrounding whitespace. Comparison stays case-sensitive.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", internal.ErrInvalidRoleName
	}
	return name, nil
}

// NormalizePermissions trims, de-duplicates and sorts capabilities. The
// result must be non-empty; each capability has no inner whitespace.
func NormalizePermissions(perms []string) ([]string, error) {
	seen := make(map[string]struct{}, len(perms))
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(p) > MaxCapabilityLength || strings.IndexFunc(p, unicode.IsSpace) >= 0 {
			return nil, internal.ErrInvalidPermissions.WithDetails(internal.ValidationErrors{
				Errors: []internal.ValidationError{{
					Field:   "permissions",
					Message: "invalid capability: " + p,
					Code:    string(internal.ErrCodeInvalidPermissions),
				}},
			})
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, internal.ErrInvalidPermissions
	}
	sort.Strings(out)
	return out, nil
}

func ToDataModel(r *Role) *roleDatamodel.Role {
	return &roleDatamodel.Role{
		ID:          r.ID,
		TenantID:    r.TenantID,
		Name:        r.Name,
		Permissions: roleDatamodel.Permissions(r.Permissions),
		CreatedAt:   r.CreatedAt,
	}
}

func FromDataModel(r *roleDatamodel.Role) *Role {
	perms := []string(r.Permissions)
	if perms == nil {
		perms = []string{}
	}
	return &Role{
		ID:          r.ID,
		TenantID:    r.TenantID,
		Name:        r.Name,
		Permissions: perms,
		CreatedAt:   r.CreatedAt,
	}
}
