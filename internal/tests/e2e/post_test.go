//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/socialmock/apiserver/config"
	"github.com/socialmock/apiserver/internal/changes"
	"github.com/socialmock/apiserver/internal/db"
	"github.com/socialmock/apiserver/internal/indexer"
	"github.com/socialmock/apiserver/internal/mq"
	"github.com/socialmock/apiserver/internal/search"
	"github.com/socialmock/apiserver/internal/seed"
	"github.com/socialmock/apiserver/internal/server"
	"github.com/socialmock/apiserver/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	serverPort = 18080
	apiPrefix  = "/api/v1"
)

var index = search.NewMemoryIndex()

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d", "postgres"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	setEnv()
	cfg := config.LoadConfig()

	if err := waitForPostgres(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, stop, err := startServer(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		stop()
		_ = srv.Shutdown(context.Background())
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	stop()
	_ = srv.Shutdown(context.Background())
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestSeededStoreServesDataset(t *testing.T) {
	resp, body := request(t, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "10", resp.Header.Get("X-Total-Count"))

	var users []map[string]any
	require.NoError(t, json.Unmarshal(body, &users))
	require.Len(t, users, 10)
	for _, u := range users {
		assert.NotContains(t, u, "password")
	}

	resp, _ = request(t, http.MethodGet, "/comments?_limit=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "300", resp.Header.Get("X-Total-Count"))
}

func TestPostLifecycle(t *testing.T) {
	username := fmt.Sprintf("e2e_%d", time.Now().UnixNano())

	resp, body := request(t, http.MethodPost, "/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "testpass123!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	userID := field(t, body, "id")

	resp, body = request(t, http.MethodPost, "/posts", map[string]string{
		"userId": userID,
		"title":  "End to end",
		"body":   "Written through the API.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	postID := field(t, body, "id")

	require.Eventually(t, func() bool {
		record, ok := index.Get(postID)
		return ok && record.Title == "End to end"
	}, 5*time.Second, 50*time.Millisecond)

	resp, body = request(t, http.MethodPost, "/posts/"+postID+"/comments", map[string]string{
		"userId": userID,
		"body":   "First!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	commentID := field(t, body, "id")

	resp, body = request(t, http.MethodPatch, "/posts/"+postID, map[string]string{"title": "Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Eventually(t, func() bool {
		record, ok := index.Get(postID)
		return ok && record.Title == "Renamed"
	}, 5*time.Second, 50*time.Millisecond)

	resp, _ = request(t, http.MethodDelete, "/posts/"+postID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = request(t, http.MethodGet, "/comments/"+commentID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Eventually(t, func() bool {
		_, ok := index.Get(postID)
		return !ok
	}, 5*time.Second, 50*time.Millisecond)

	resp, _ = request(t, http.MethodPost, "/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "again",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func request(t *testing.T, method, path string, payload any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(body)
	}

	url := fmt.Sprintf("http://localhost:%d%s%s", serverPort, apiPrefix, path)
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func field(t *testing.T, body []byte, name string) string {
	t.Helper()
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(body, &parsed), strings.TrimSpace(string(body)))
	value, ok := parsed[name].(string)
	require.True(t, ok, "missing %s in %s", name, body)
	return value
}

func setEnv() {
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("API_PREFIX", apiPrefix)
	_ = os.Setenv("DELAY_MS", "0")
	_ = os.Setenv("STORE_DRIVER", "postgres")
	_ = os.Setenv("MQ_DRIVER", "memory")
	_ = os.Setenv("DB_HOST", "localhost")
	_ = os.Setenv("DB_PORT", "5432")
	_ = os.Setenv("DB_USER", "socialmock")
	_ = os.Setenv("DB_PASSWORD", "password")
	_ = os.Setenv("DB_NAME", "socialmock")
	_ = os.Setenv("DB_USE_SSL", "false")
}

func waitForPostgres(ctx context.Context, cfg config.Config) error {
	conn, err := sql.Open("postgres", db.DSN(cfg.Database))
	if err != nil {
		return err
	}
	defer conn.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := conn.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func runMigrations(root string, cfg config.Config) error {
	migrationsURL := "file://" + filepath.Join(root, "internal", "db", "migrations")

	migrator, err := migrate.New(migrationsURL, db.DSN(cfg.Database))
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// startServer seeds the postgres store and serves it with the indexer
// running in-process, the way `server --sync` does.
func startServer(ctx context.Context, cfg config.Config) (*server.Server, func(), error) {
	queue, err := mq.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(ctx, cfg, store.WithChangeSink(changes.NewPublisher(queue, cfg.MQ.ChannelPrefix)))
	if err != nil {
		return nil, nil, err
	}
	opts := seed.DefaultOptions()
	opts.Seed = 1
	if err := seed.NewSeeder(st).Run(ctx, seed.NewGenerator(opts).Generate()); err != nil {
		return nil, nil, err
	}

	srv, err := server.New(cfg, st)
	if err != nil {
		return nil, nil, err
	}

	workerCtx, cancel := context.WithCancel(context.Background())
	worker := indexer.New(queue, index, cfg.MQ.ChannelPrefix)
	go func() {
		_ = worker.Run(workerCtx)
	}()
	go func() {
		_ = srv.Start()
	}()

	stop := func() {
		cancel()
		_ = queue.Close()
	}
	return srv, stop, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
