//go:build integration

package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/linskybing/survey-platform/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMinioStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			Cmd:          []string{"server", "/data"},
			Env:          map[string]string{"MINIO_ROOT_USER": "minioadmin", "MINIO_ROOT_PASSWORD": "minioadmin"},
			ExposedPorts: []string{"9000/tcp"},
			WaitingFor:   wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.PortEndpoint(ctx, "9000/tcp", "")
	require.NoError(t, err)

	store, err := NewMinioStore(ctx, &config.Config{
		MinioEndpoint:  endpoint,
		MinioAccessKey: "minioadmin",
		MinioSecretKey: "minioadmin",
		MinioBucket:    "attachments-test",
	})
	require.NoError(t, err)

	key := AttachmentKey(1, "note.txt")
	content := "household photo placeholder"
	require.NoError(t, store.Put(ctx, key, "text/plain", strings.NewReader(content), int64(len(content))))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))

	require.NoError(t, store.Delete(ctx, key))
}
