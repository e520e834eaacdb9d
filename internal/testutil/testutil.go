package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dom/sticky-notes/internal/api"
	"github.com/dom/sticky-notes/internal/config"
	"github.com/dom/sticky-notes/internal/domain"
	"github.com/dom/sticky-notes/internal/repository"
	repoPostgres "github.com/dom/sticky-notes/internal/repository/postgres"
	"github.com/dom/sticky-notes/internal/service"
	"github.com/dom/sticky-notes/internal/storage"
	"github.com/dom/sticky-notes/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres-backed test in short mode")
	}

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:16-alpine",
		tcPostgres.WithDatabase("test_sticky_notes"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(repoPostgres.Models...); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	for _, table := range []string{"notes", "users"} {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// CountUsers returns the number of stored users.
func (tdb *TestDB) CountUsers(t *testing.T) int64 {
	t.Helper()

	var n int64
	if err := tdb.DB.Model(&domain.User{}).Count(&n).Error; err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	return n
}

// TestConfig returns a configuration suitable for testing. Avatars are
// written to a per-test temp dir.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Port:           "0",
		Environment:    "test",
		AllowedOrigins: []string{"*"},
		LogLevel:       "debug",
		JWTSecret:      "test-jwt-secret-key-for-testing-only",
		TokenTTL:       time.Hour,
		BcryptCost:     4, // bcrypt.MinCost keeps tests fast
		Storage: config.StorageConfig{
			Driver:           config.StorageDriverLocal,
			UploadDir:        t.TempDir(),
			PublicUploadPath: "/uploads",
			AvatarMaxBytes:   64 << 10,
		},
	}
}

// TestLogger returns a logger that writes through t.Log
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Store    *storage.LocalStore
	Hub      *websocket.Hub
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig(t)
	log := TestLogger(t)

	repos := repoPostgres.NewRepositories(testDB.DB)
	store, err := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.Storage.PublicUploadPath)
	if err != nil {
		t.Fatalf("failed to create local store: %v", err)
	}

	hub := websocket.NewHub(log)
	go hub.Run()

	services := service.NewServices(repos, store, hub, cfg, log)
	router := api.NewRouter(services, hub, cfg, log)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Store:    store,
		Hub:      hub,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}

// WebSocketURL returns the sync URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + strings.TrimPrefix(ts.Server.URL, "http")
	return fmt.Sprintf("%s/api/notes/ws?token=%s", wsURL, token)
}
