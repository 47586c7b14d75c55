package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/travel-agency/internal/auth"
	auditDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/audit"
	invitationDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/invitation"
	roleDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/role"
	tenantDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/tenant"
	userDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/user"
	"github.com/frahmantamala/travel-agency/internal/ids"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const (
	demoTenantID        = "demo-agency"
	demoTenantName      = "Agencia Demo"
	demoPassword        = "password"
	demoAdminEmail      = "admin@agencia-demo.test"
	demoAgentEmail      = "ventas@agencia-demo.test"
	demoAdminRole       = "Administrador"
	demoAgentRole       = "Ventas"
	demoLegacyAdmin     = "ADMIN"
	demoCapabilitySales = "ventas"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed a demo tenant with a legacy ADMIN account, an Administrador role and a sales agent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		db, err := initDB(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			return fmt.Errorf("open orm: %w", err)
		}

		if err := seedDemoData(cmd.Context(), gormDB, clearData, cfg.Security.BCryptCost); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		fmt.Printf("Seeded tenant %q. Log in as %s or %s with password %q\n", demoTenantName, demoAdminEmail, demoAgentEmail, demoPassword)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing demo tenant data before seeding")
}

// seedDemoData is idempotent: rows that already exist are left alone.
func seedDemoData(ctx context.Context, db *gorm.DB, clear bool, bcryptCost int) error {
	hash, err := auth.HashPassword(demoPassword, bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clear {
			for _, model := range []interface{}{
				&auditDatamodel.AuditLog{},
				&invitationDatamodel.Invitation{},
				&userDatamodel.User{},
				&roleDatamodel.Role{},
			} {
				if err := tx.Where("tenant_id = ?", demoTenantID).Delete(model).Error; err != nil {
					return fmt.Errorf("clear demo data: %w", err)
				}
			}
			if err := tx.Where("id = ?", demoTenantID).Delete(&tenantDatamodel.Tenant{}).Error; err != nil {
				return fmt.Errorf("clear demo tenant: %w", err)
			}
		}

		now := time.Now().UTC()
		tenant := tenantDatamodel.Tenant{ID: demoTenantID, Name: demoTenantName, CreatedAt: now}
		if err := tx.Where(tenantDatamodel.Tenant{ID: demoTenantID}).FirstOrCreate(&tenant).Error; err != nil {
			return fmt.Errorf("seed tenant: %w", err)
		}

		if _, err := seedRole(tx, demoAdminRole, []string{auth.CapabilityAudit, auth.CapabilityUsers}, now); err != nil {
			return err
		}
		sales, err := seedRole(tx, demoAgentRole, []string{demoCapabilitySales}, now)
		if err != nil {
			return err
		}

		// The administrator keeps the free-text label only, exercising the
		// legacy bypass until someone assigns the Administrador role.
		if err := seedUser(tx, demoAdminEmail, "Administrador Demo", hash, demoLegacyAdmin, nil, now); err != nil {
			return err
		}
		if err := seedUser(tx, demoAgentEmail, "Agente de Ventas", hash, sales.Name, &sales.ID, now); err != nil {
			return err
		}
		return nil
	})
}

func seedRole(tx *gorm.DB, name string, permissions []string, now time.Time) (*roleDatamodel.Role, error) {
	var existing roleDatamodel.Role
	err := tx.Where("tenant_id = ? AND name = ?", demoTenantID, name).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up role %s: %w", name, err)
	}

	r := &roleDatamodel.Role{
		ID:          ids.NewSortable(),
		TenantID:    demoTenantID,
		Name:        name,
		Permissions: permissions,
		CreatedAt:   now,
	}
	if err := tx.Create(r).Error; err != nil {
		return nil, fmt.Errorf("seed role %s: %w", name, err)
	}
	return r, nil
}

func seedUser(tx *gorm.DB, email, name, hash, label string, roleID *string, now time.Time) error {
	var count int64
	if err := tx.Model(&userDatamodel.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("look up user %s: %w", email, err)
	}
	if count > 0 {
		return nil
	}

	u := &userDatamodel.User{
		ID:           ids.New(),
		TenantID:     demoTenantID,
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         label,
		RoleID:       roleID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.Create(u).Error; err != nil {
		return fmt.Errorf("seed user %s: %w", email, err)
	}
	return nil
}
