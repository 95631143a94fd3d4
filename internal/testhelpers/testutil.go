// Package testhelpers provides database fixtures shared by package tests.
package testhelpers

import (
	"context"
	"fmt"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/platewise/backend/internal/database"
	"github.com/platewise/backend/internal/models"
)

var sqliteSeq atomic.Int64

// NewSQLiteDB returns a migrated in-memory sqlite database private to t.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:platewise_test_%d?mode=memory&cache=shared", sqliteSeq.Add(1))
	db, err := database.OpenSQLite(name)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return db.Gorm
}

// NewPostgresDB starts a disposable postgres container, applies the goose
// migrations and returns the connection. The test is skipped when docker
// is unavailable.
func NewPostgresDB(t *testing.T) *database.DB {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=testuser password=testpass dbname=testdb sslmode=disable", host, port.Port())
	db, err := database.OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("failed to migrate postgres: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given subject id.
func CreateUser(t *testing.T, db *gorm.DB, googleID string) *models.User {
	t.Helper()
	user := &models.User{
		GoogleID: &googleID,
		Username: googleID,
		Email:    googleID + "@example.com",
		Name:     "User " + googleID,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateMeal inserts a meal for user at the given time.
func CreateMeal(t *testing.T, db *gorm.DB, user *models.User, mealType string, calories float64, at time.Time) *models.Meal {
	t.Helper()
	meal := &models.Meal{
		UserID:    user.ID,
		MealType:  mealType,
		Calories:  calories,
		Protein:   calories / 10,
		Carbs:     calories / 5,
		Fats:      calories / 20,
		Items:     "test item",
		Macros:    models.Macros{Protein: calories / 10, Carbs: calories / 5, Fats: calories / 20},
		CreatedAt: at.UTC(),
	}
	if err := db.Create(meal).Error; err != nil {
		t.Fatalf("failed to create meal: %v", err)
	}
	return meal
}
