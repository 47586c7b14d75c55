package audit

import (
	"time"

	auditDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/audit"
)

const (
	ActionCreate = auditDatamodel.ActionCreate
	ActionUpdate = auditDatamodel.ActionUpdate
	ActionDelete = auditDatamodel.ActionDelete
)

const (
	EntityRole       = "role"
	EntityUser       = "user"
	EntityInvitation = "invitation"
)

type Change struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// Entry is one privileged mutation. TenantID is required; UserID and
// UserName default to the actor carried by the request context.
type Entry struct {
	ID        string            `json:"id"`
	TenantID  string            `json:"tenant_id"`
	UserID    string            `json:"user_id"`
	UserName  string            `json:"user_name"`
	Action    string            `json:"action"`
	Entity    string            `json:"entity"`
	EntityID  string            `json:"entity_id"`
	Changes   map[string]Change `json:"changes"`
	CreatedAt time.Time         `json:"created_at"`
}

func ToDataModel(e *Entry) *auditDatamodel.AuditLog {
	changes := make(auditDatamodel.Changes, len(e.Changes))
	for field, c := range e.Changes {
		changes[field] = auditDatamodel.FieldChange{Old: c.Old, New: c.New}
	}
	return &auditDatamodel.AuditLog{
		ID:        e.ID,
		TenantID:  e.TenantID,
		UserID:    e.UserID,
		UserName:  e.UserName,
		Action:    e.Action,
		Entity:    e.Entity,
		EntityID:  e.EntityID,
		Changes:   changes,
		CreatedAt: e.CreatedAt,
	}
}

func FromDataModel(l *auditDatamodel.AuditLog) *Entry {
	changes := make(map[string]Change, len(l.Changes))
	for field, c := range l.Changes {
		changes[field] = Change{Old: c.Old, New: c.New}
	}
	return &Entry{
		ID:        l.ID,
		TenantID:  l.TenantID,
		UserID:    l.UserID,
		UserName:  l.UserName,
		Action:    l.Action,
		Entity:    l.Entity,
		EntityID:  l.EntityID,
		Changes:   changes,
		CreatedAt: l.CreatedAt,
	}
}
