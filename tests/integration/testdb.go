// Package integration runs the ledger against a real PostgreSQL database
// started with testcontainers and migrated with the embedded SQL files.
package integration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pharmaops/backend/internal/infrastructure/config"
	zaplog "github.com/pharmaops/backend/internal/infrastructure/logger"
	"github.com/pharmaops/backend/internal/infrastructure/migration"
	"github.com/pharmaops/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormlogger "gorm.io/gorm/logger"
)

// postgresServer is the container shared by every test in the package
var postgresServer struct {
	sync.Mutex
	container *tcpostgres.PostgresContainer
	cfg       config.DatabaseConfig
}

// TestDB is a migrated, emptied database
type TestDB struct {
	*persistence.Database
}

// NewSharedTestDB opens a connection to the shared container through the
// same persistence layer the server uses. The container is started and
// migrated by the first caller. Every ledger table is emptied before the
// connection is handed out.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	postgresServer.Lock()
	defer postgresServer.Unlock()

	if postgresServer.container == nil {
		startPostgres(t)
	}

	level := gormlogger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&postgresServer.cfg,
		zaplog.NewGormLogger(zaptest.NewLogger(t), level, 0))
	require.NoError(t, err, "connect to test database")
	t.Cleanup(func() { _ = db.Close() })

	tdb := &TestDB{Database: db}
	tdb.truncate(t)
	return tdb
}

func startPostgres(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pharmaops_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Driver:          "postgres",
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "postgres",
		DBName:          "pharmaops_test",
		SSLMode:         "disable",
		MaxOpenConns:    16,
		MaxIdleConns:    4,
		ConnMaxLifetime: 5,
	}

	db, err := persistence.NewDatabase(&cfg)
	require.NoError(t, err, "connect for migrations")
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, zaptest.NewLogger(t))
	require.NoError(t, err, "create migrator")
	require.NoError(t, m.Up(), "apply migrations")
	_ = db.Close()

	postgresServer.container = container
	postgresServer.cfg = cfg
}

// truncate empties every table the migrations created
func (tdb *TestDB) truncate(t *testing.T) {
	t.Helper()

	var tables []string
	require.NoError(t, tdb.DB.Raw(
		`SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`,
	).Scan(&tables).Error)
	if len(tables) == 0 {
		return
	}
	require.NoError(t, tdb.DB.Exec(fmt.Sprintf(`TRUNCATE TABLE "%s" CASCADE`, strings.Join(tables, `", "`))).Error)
}

// CleanupSharedContainer terminates the shared container. TestMain calls it
// after the package's tests finish.
func CleanupSharedContainer() {
	postgresServer.Lock()
	defer postgresServer.Unlock()

	if postgresServer.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = postgresServer.container.Terminate(ctx)
	postgresServer.container = nil
}
