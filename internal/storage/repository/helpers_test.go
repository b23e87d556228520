package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/subscription-tracker/internal/migrations"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const postgresPort = nat.Port("5432/tcp")

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(postgresPort)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(postgresPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, postgresPort)
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		_ = storage.Close()
		_ = container.Terminate(ctx)
	}
	return storage, cleanup
}

// truncate очищает все таблицы между подтестами.
func truncate(t *testing.T, s *Storage) {
	t.Helper()
	_, err := s.DB.Exec(`TRUNCATE subscriptions, payment_methods, users`)
	require.NoError(t, err)
}

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func createTestUser(t *testing.T, s *Storage, email string) models.User {
	t.Helper()
	u, err := models.NewUser(uuid.NewString(), models.OAuthProfile{
		Provider:          "google",
		ProviderAccountID: "acc-" + email,
		Email:             email,
		Name:              "Test User",
	}, testNow)
	require.NoError(t, err)
	res, err := s.UpsertOAuthUser(context.Background(), u)
	require.NoError(t, err)
	return *res
}

func createTestPaymentMethod(t *testing.T, s *Storage, userID, name string) models.PaymentMethod {
	t.Helper()
	pm, err := models.NewPaymentMethod(uuid.NewString(), userID, name, testNow)
	require.NoError(t, err)
	require.NoError(t, s.CreatePaymentMethod(context.Background(), pm))
	return pm
}

func createTestSubscription(t *testing.T, s *Storage, userID, name string, pmID *string) models.Subscription {
	t.Helper()
	sub, err := models.NewSubscription(uuid.NewString(), userID, models.SubscriptionParams{
		ServiceName:     name,
		Amount:          990,
		BillingCycle:    "monthly",
		BaseDate:        time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		PaymentMethodID: pmID,
	}, testNow)
	require.NoError(t, err)
	require.NoError(t, s.CreateSubscription(context.Background(), sub))
	return sub
}
