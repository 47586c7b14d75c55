package user

import "time"

type User struct {
	ID           string `gorm:"primaryKey"`
	TenantID     string `gorm:"column:tenant_id;not null;index"`
	Email        string `gorm:"column:email;uniqueIndex;not null"`
	Name         string `gorm:"column:name;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	// Role is the legacy free-text label, kept in sync with RoleID on every write.
	Role      string    `gorm:"column:role"`
	RoleID    *string   `gorm:"column:role_id;index"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
