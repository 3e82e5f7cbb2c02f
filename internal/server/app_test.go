package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob/core"
	"github.com/dmitrijs2005/filekeeper/internal/server/config"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func memoryConfig(t *testing.T) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.Host = "127.0.0.1"
	c.Port = freePort(t)
	c.DatabaseDSN = "memory://"
	c.BlobDriver = config.BlobDriverMemory
	c.BcryptCost = 4
	return c
}

func TestNewApp_MissingDSNIsStartupFault(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()

	_, err := NewApp(context.Background(), c, logging.Nop())
	require.ErrorIs(t, err, ErrStartup)
	assert.ErrorIs(t, err, config.ErrMissingDatabaseDSN)
}

func TestNewApp_BadOriginsIsStartupFault(t *testing.T) {
	for _, origins := range [][]string{nil, {"localhost:5173"}} {
		c := memoryConfig(t)
		c.AllowedOrigins = origins

		_, err := NewApp(context.Background(), c, logging.Nop())
		assert.ErrorIs(t, err, ErrStartup, "origins %v", origins)
	}
}

func TestNewApp_UnsupportedDSN(t *testing.T) {
	c := memoryConfig(t)
	c.DatabaseDSN = "mysql://localhost/db"

	_, err := NewApp(context.Background(), c, logging.Nop())
	assert.ErrorIs(t, err, ErrStartup)
}

func TestApp_RunServesUntilCancelled(t *testing.T) {
	c := memoryConfig(t)
	app, err := NewApp(context.Background(), c, logging.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()

	url := "http://" + c.Addr() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func TestApp_RunReportsListenFailure(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	c := memoryConfig(t)
	c.Port = taken.Addr().(*net.TCPAddr).Port
	app, err := NewApp(context.Background(), c, logging.Nop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- app.Run(context.Background())
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app kept running with its port taken")
	}
}

func TestBlobOptions(t *testing.T) {
	c := memoryConfig(t)
	c.BlobDriver = config.BlobDriverS3
	c.S3Bucket = "files"

	opts := blobOptions(c, repomanager.NewMemoryRepositoryManager())
	assert.Equal(t, core.DriverS3, opts.Driver)
	assert.Equal(t, "files", opts.S3.Bucket)
	assert.Equal(t, c.S3RootUser, opts.S3.AccessKeyID)
	assert.Equal(t, c.UploadDir, opts.Root)
	assert.Nil(t, opts.Mongo)
}
