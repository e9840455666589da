package api

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/hiddengrid/internal/config"
	"github.com/mcoot/hiddengrid/internal/testutil"
)

func TestServerConfigFrom(t *testing.T) {
	sc := ServerConfigFrom(config.ServerConfig{Host: "127.0.0.1", Port: 9000})
	assert.Equal(t, "127.0.0.1", sc.Host)
	assert.Equal(t, 9000, sc.Port)
	assert.Equal(t, DefaultServerConfig().ShutdownTimeout, sc.ShutdownTimeout)

	assert.Equal(t, 8080, ServerConfigFrom(config.ServerConfig{}).Port)
}

func TestServerStartAndShutdown(t *testing.T) {
	sc := DefaultServerConfig()
	sc.Host = "127.0.0.1"
	sc.Port = 0

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	server, err := NewServer(handler, sc, testutil.NopLogger())
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	resp, err := http.Get("http://" + server.Addr() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	require.NoError(t, server.Shutdown(context.Background()))
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewServerPortInUse(t *testing.T) {
	sc := DefaultServerConfig()
	sc.Host = "127.0.0.1"
	sc.Port = 0
	first, err := NewServer(http.NotFoundHandler(), sc, testutil.NopLogger())
	require.NoError(t, err)
	defer func() { _ = first.listener.Close() }()

	_, port, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)
	sc.Port, err = strconv.Atoi(port)
	require.NoError(t, err)
	_, err = NewServer(http.NotFoundHandler(), sc, testutil.NopLogger())
	assert.Error(t, err)
}
