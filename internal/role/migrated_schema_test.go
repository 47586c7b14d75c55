package role_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing/fstest"
	"time"

	"github.com/frahmantamala/travel-agency/internal"
	"github.com/frahmantamala/travel-agency/internal/audit"
	auditPostgres "github.com/frahmantamala/travel-agency/internal/audit/postgres"
	invitationDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/invitation"
	tenantDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/tenant"
	"github.com/frahmantamala/travel-agency/internal/invitation"
	invitationPostgres "github.com/frahmantamala/travel-agency/internal/invitation/postgres"
	"github.com/frahmantamala/travel-agency/internal/role"
	rolePostgres "github.com/frahmantamala/travel-agency/internal/role/postgres"
	userPostgres "github.com/frahmantamala/travel-agency/internal/user/postgres"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const migrationsDir = "../../db/migrations"

// sqliteMigrations loads the goose migrations with the two Postgres-only
// spellings they use rewritten for sqlite.
func sqliteMigrations() fstest.MapFS {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	Expect(err).NotTo(HaveOccurred())
	Expect(files).NotTo(BeEmpty())

	fsys := fstest.MapFS{}
	for _, f := range files {
		raw, err := os.ReadFile(f)
		Expect(err).NotTo(HaveOccurred())
		sql := strings.NewReplacer("TIMESTAMPTZ", "TIMESTAMP", "NOW()", "CURRENT_TIMESTAMP").Replace(string(raw))
		fsys[filepath.Base(f)] = &fstest.MapFile{Data: []byte(sql)}
	}
	return fsys
}

// openMigratedDB builds the schema from the migrations with foreign keys
// enforced, unlike the AutoMigrate tables used elsewhere in this suite.
func openMigratedDB(ctx context.Context) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	Expect(err).NotTo(HaveOccurred())
	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)

	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, sqliteMigrations())
	Expect(err).NotTo(HaveOccurred())
	_, err = provider.Up(ctx)
	Expect(err).NotTo(HaveOccurred())
	return db
}

type discardNotifier struct{}

func (discardNotifier) Notify(ctx context.Context, templateID, recipient string, params map[string]interface{}) {
}

var _ = Describe("Role deletion on the migrated schema", func() {
	var (
		db          *gorm.DB
		roles       *role.Service
		invitations *invitation.Service
		ctx         context.Context
	)

	BeforeEach(func() {
		ctx = internal.ContextWithActor(context.Background(), internal.Actor{UserID: "admin-1", UserName: "Ana"})
		db = openMigratedDB(ctx)
		Expect(db.Create(&tenantDatamodel.Tenant{ID: "t1", Name: "Viajes Sol"}).Error).To(Succeed())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		auditSvc := audit.NewService(auditPostgres.NewAuditRepository(sqlx.NewDb(sqlDB, "sqlite3")), slogger)

		roles = role.NewService(rolePostgres.NewRoleRepository(db), userPostgres.NewUserRepository(db), auditSvc, slogger)
		invitations = invitation.NewService(
			invitationPostgres.NewInvitationRepository(db),
			roles,
			discardNotifier{},
			auditSvc,
			invitation.Config{TTL: time.Hour, AcceptURL: "https://app.agency.test/accept", BCryptCost: 4},
			slogger,
		)
	})

	It("should report a role with a revoked invitation as in use", func() {
		r, err := roles.CreateRole(ctx, "t1", "Temporal", []string{"ventas"})
		Expect(err).NotTo(HaveOccurred())
		inv, err := invitations.IssueInvitation(ctx, "t1", "nuevo@agency.test", r.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(invitations.RevokeInvitation(ctx, "t1", inv.ID)).To(Succeed())

		err = roles.DeleteRole(ctx, "t1", r.ID)
		Expect(errors.Is(err, internal.ErrRoleInUse)).To(BeTrue())

		var appErr *internal.AppError
		Expect(errors.As(err, &appErr)).To(BeTrue())
		Expect(appErr.Details).To(HaveKeyWithValue("invitations", int64(1)))

		_, err = roles.GetRole(ctx, "t1", r.ID)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should delete a role nothing references", func() {
		r, err := roles.CreateRole(ctx, "t1", "Temporal", []string{"ventas"})
		Expect(err).NotTo(HaveOccurred())

		Expect(roles.DeleteRole(ctx, "t1", r.ID)).To(Succeed())
	})

	It("should map a foreign key rejection on delete to role in use", func() {
		r, err := roles.CreateRole(ctx, "t1", "Temporal", []string{"ventas"})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.Create(&invitationDatamodel.Invitation{
			ID:        "i1",
			TenantID:  "t1",
			Email:     "x@agency.test",
			RoleID:    r.ID,
			Token:     "tok",
			Status:    invitationDatamodel.StatusAccepted,
			ExpiresAt: time.Now().Add(time.Hour),
		}).Error).To(Succeed())

		deleted, err := rolePostgres.NewRoleRepository(db).Delete(ctx, "t1", r.ID)
		Expect(deleted).To(BeFalse())
		Expect(errors.Is(err, internal.ErrRoleInUse)).To(BeTrue())
	})
})
