package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

type AuditLog struct {
	ID        string    `gorm:"primaryKey" db:"id"`
	TenantID  string    `gorm:"column:tenant_id;not null;index:idx_audit_logs_tenant_created" db:"tenant_id"`
	UserID    string    `gorm:"column:user_id" db:"user_id"`
	UserName  string    `gorm:"column:user_name" db:"user_name"`
	Action    string    `gorm:"column:action;not null" db:"action"`
	Entity    string    `gorm:"column:entity;not null" db:"entity"`
	EntityID  string    `gorm:"column:entity_id" db:"entity_id"`
	Changes   Changes   `gorm:"column:changes" db:"changes"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_audit_logs_tenant_created" db:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// Changes maps a field name to its before/after values, stored as JSON text.
type Changes map[string]FieldChange

func (Changes) GormDataType() string {
	return "text"
}

func (c Changes) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]FieldChange(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *Changes) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("changes: unsupported column type %T", src)
	}
	return json.Unmarshal(data, (*map[string]FieldChange)(c))
}
