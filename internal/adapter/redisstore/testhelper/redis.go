// Package testhelper starts a throwaway Redis for integration tests.
package testhelper

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	once       sync.Once
	sharedAddr string
	initErr    error
)

// SetupRedis starts a shared Redis container (once for the entire test run)
// and returns a client connected to it. The client is closed via t.Cleanup;
// the container lives until the process exits.
func SetupRedis(t *testing.T) *redis.Client {
	t.Helper()

	once.Do(func() {
		sharedAddr, initErr = startContainer()
	})
	if initErr != nil {
		t.Fatalf("testhelper: failed to setup redis: %v", initErr)
	}

	client := redis.NewClient(&redis.Options{Addr: sharedAddr})
	t.Cleanup(func() {
		client.Close()
	})
	return client
}

func startContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	return fmt.Sprintf("%s:%s", host, port.Port()), nil
}
