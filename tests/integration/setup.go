//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"atelier-backend/internal/domain/rental"
	"atelier-backend/internal/infra/db"
	"atelier-backend/internal/infra/uow"
	"atelier-backend/internal/pkg/config"
	"atelier-backend/internal/usecase/commands"
	"atelier-backend/internal/usecase/shared"
	usecasesync "atelier-backend/internal/usecase/sync"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	postgresOnce      sync.Once
	postgresContainer testcontainers.Container
)

const (
	testUser     = "test"
	testPassword = "testpass"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startPostgresOnce boots one shared PostgreSQL container for the whole test
// process. Each test carves out its own database inside it.
func startPostgresOnce(t *testing.T) (string, nat.Port) {
	postgresOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       "postgres",
			},
			Tmpfs: map[string]string{
				"/var/lib/postgresql/data": "rw,size=256m",
			},
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "synchronous_commit=off",
				"-c", "max_connections=100",
			},
			WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
					testUser, testPassword, host, port.Port())
			}).WithStartupTimeout(60 * time.Second),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()

		var err error
		postgresContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		require.NoError(t, err, "failed to start postgres container")

		t.Cleanup(func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			_ = postgresContainer.Terminate(stopCtx)
		})
	})

	ctx := context.Background()
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	return host, port
}

// newTestDB creates a throwaway database inside the shared container and
// applies the embedded migrations to it.
func newTestDB(t *testing.T) config.DBConfig {
	host, port := startPostgresOnce(t)
	dbName := "testdb_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	adminDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		testUser, testPassword, host, port.Port())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	adminPool, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err)
	defer adminPool.Close()

	_, err = adminPool.Exec(ctx, "CREATE DATABASE "+dbName)
	require.NoError(t, err, "failed to create test database")

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cleanupCancel()
		cleanupPool, err := pgxpool.New(cleanupCtx, adminDSN)
		if err != nil {
			return
		}
		defer cleanupPool.Close()
		_, _ = cleanupPool.Exec(cleanupCtx, "DROP DATABASE IF EXISTS "+dbName)
	})

	cfg := config.NewTestConfig().DB
	cfg.Host = host
	cfg.Port = port.Port()
	cfg.User = testUser
	cfg.Password = testPassword
	cfg.DBName = dbName

	require.NoError(t, db.Migrate(cfg, discardLogger()), "failed to migrate test database")
	return cfg
}

// stubCalendar stands in for Google Calendar: every create hands out a fresh
// id and remote calls always succeed.
type stubCalendar struct{}

func (stubCalendar) CreateEvent(context.Context, string, usecasesync.EventDetails) (string, error) {
	return "ev-" + uuid.NewString(), nil
}

func (stubCalendar) UpdateEvent(context.Context, string, string, usecasesync.EventDetails) error {
	return nil
}

func (stubCalendar) DeleteEvent(context.Context, string, string) error {
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, []string, string, string) error { return nil }

// stack is the command layer wired against the real database with stubbed
// external collaborators.
type stack struct {
	uow      shared.UnitOfWork
	machines commands.MachineCommands
	rentals  commands.RentalCommands
}

func newStack(t *testing.T) *stack {
	dbCfg := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	pool, cleanup, err := db.Connect(ctx, dbCfg)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(cleanup)

	log := discardLogger()
	u := uow.NewPostgresUoW(pool, log)
	exec := usecasesync.NewExecutor(stubCalendar{}, time.Second, log)
	rec := usecasesync.NewReconciler(exec, log)
	calCfg := config.NewTestConfig().Calendar
	pricing := rental.NewPriceCalculator(time.UTC)

	return &stack{
		uow:      u,
		machines: commands.NewMachineCommands(u, rec, noopNotifier{}, calCfg, log),
		rentals:  commands.NewRentalCommands(u, rec, noopNotifier{}, pricing, calCfg, log),
	}
}
