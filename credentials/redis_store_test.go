package credentials_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jrsteele09/csv-sheet-sync/credentials"
	"github.com/stretchr/testify/require"
)

// TestRedisStore needs a running server, e.g. REDIS_ADDR=localhost:6379
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client, err := credentials.NewRedisClient(context.Background(), addr, os.Getenv("REDIS_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	storeContract(t, credentials.NewRedisStore(client, time.Minute))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := credentials.NewRedisClient(context.Background(), "127.0.0.1:1", "")
	require.Error(t, err)
}
