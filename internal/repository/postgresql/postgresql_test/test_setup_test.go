package postgresql_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup holds a migrated test database
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL, applies migrations and empties payroll tables.
// The test is skipped when the variable is not set.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	migrator, err := database.NewMigrator(dsn, logger)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err)

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	t.Cleanup(setup.Close)

	return setup
}

// TruncateAllTables removes payroll and employee data, keeping the seeded catalogs
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"horas_extra_nomina",
		"detalle_nomina",
		"nomina",
		"reporte_nomina_mensual",
		"empleados",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// CreateEmployee inserts an employee with a unique identification number
func (s *TestDatabaseSetup) CreateEmployee(t *testing.T, firstNames, lastNames string, salary decimal.Decimal) int64 {
	t.Helper()

	var id int64
	err := s.DB.QueryRow(context.Background(), `
		INSERT INTO empleados (nombres, apellidos, tipo_identificacion, numero_identificacion, sueldo, fecha_ingreso)
		VALUES ($1, $2, 'CC', $3, $4, CURRENT_DATE)
		RETURNING id_empleado
	`, firstNames, lastNames, uuid.NewString()[:30], salary).Scan(&id)
	require.NoError(t, err)
	return id
}

// Count runs a single-value COUNT query
func (s *TestDatabaseSetup) Count(t *testing.T, query string, args ...interface{}) int {
	t.Helper()

	var n int
	require.NoError(t, s.DB.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

// Close closes the pool
func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}
