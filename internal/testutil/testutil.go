package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/vault"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/lib/pq"

	"github.com/mentorhub/interviews/internal/database"
	"github.com/mentorhub/interviews/migrations"
)

// TestContainers holds references to test containers
type TestContainers struct {
	PostgresContainer *postgres.PostgresContainer
	VaultContainer    *vault.VaultContainer
	DB                *sql.DB
	DBConnString      string
	VaultToken        string
	VaultAddr         string
}

// SkipIfShort skips container-backed tests under -short
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
}

// SetupPostgres starts a PostgreSQL container and applies the embedded migrations
func SetupPostgres(t *testing.T) *TestContainers {
	t.Helper()
	SkipIfShort(t)
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:18",
		postgres.WithDatabase("interviews_test"),
		postgres.WithUsername("interviews_test"),
		postgres.WithPassword("interviews_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	tc := &TestContainers{PostgresContainer: postgresContainer}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tc.Cleanup(t)
		t.Fatalf("Failed to get connection string: %v", err)
	}
	tc.DBConnString = connStr

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		tc.Cleanup(t)
		t.Fatalf("Failed to connect to database: %v", err)
	}
	tc.DB = db

	if err := db.PingContext(ctx); err != nil {
		tc.Cleanup(t)
		t.Fatalf("Failed to ping database: %v", err)
	}

	if err := database.NewMigrationExecutor(db).RunMigrations(ctx, migrations.FS); err != nil {
		tc.Cleanup(t)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return tc
}

// SetupVault starts a dev-mode Vault container
func SetupVault(t *testing.T) *TestContainers {
	t.Helper()
	SkipIfShort(t)
	ctx := context.Background()

	vaultContainer, err := vault.Run(ctx,
		"hashicorp/vault:1.15",
		vault.WithToken("test-token"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("Vault server started!").
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start Vault container: %v", err)
	}

	vaultAddr, err := vaultContainer.HttpHostAddress(ctx)
	if err != nil {
		_ = vaultContainer.Terminate(ctx)
		t.Fatalf("Failed to get Vault address: %v", err)
	}

	return &TestContainers{
		VaultContainer: vaultContainer,
		VaultToken:     "test-token",
		VaultAddr:      fmt.Sprintf("http://%s", vaultAddr),
	}
}

// Cleanup terminates all test containers
func (tc *TestContainers) Cleanup(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if tc.DB != nil {
		tc.DB.Close()
	}

	if tc.PostgresContainer != nil {
		if err := tc.PostgresContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate PostgreSQL container: %v", err)
		}
	}

	if tc.VaultContainer != nil {
		if err := tc.VaultContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate Vault container: %v", err)
		}
	}
}
