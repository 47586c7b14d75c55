package role

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Role struct {
	ID          string      `gorm:"primaryKey"`
	TenantID    string      `gorm:"column:tenant_id;not null;uniqueIndex:idx_roles_tenant_name"`
	Name        string      `gorm:"column:name;not null;uniqueIndex:idx_roles_tenant_name"`
	Permissions Permissions `gorm:"column:permissions;not null"`
	CreatedAt   time.Time   `gorm:"column:created_at"`
}

func (Role) TableName() string {
	return "roles"
}

// Permissions is stored as a JSON array in a text column.
type Permissions []string

func (Permissions) GormDataType() string {
	return "text"
}

func (p Permissions) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *Permissions) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("permissions: unsupported column type %T", src)
	}
	return json.Unmarshal(data, (*[]string)(p))
}
