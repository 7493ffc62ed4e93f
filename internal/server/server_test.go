package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) (*Server, net.Listener) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	srv := New(h, Config{ShutdownTimeout: 5 * time.Second}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return srv, ln
}

func serve(ctx context.Context, srv *Server, ln net.Listener) <-chan error {
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	return done
}

func TestServe_HandlesRequestsUntilCancelled(t *testing.T) {
	srv, ln := testServer(t)

	var mu sync.Mutex
	var order []string
	record := func(name string) ShutdownFunc {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}
	srv.OnShutdown("database", record("database"))
	srv.OnShutdown("sweeper", record("sweeper"))

	ctx, cancel := context.WithCancel(context.Background())
	done := serve(ctx, srv, ln)

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	assert.Equal(t, []string{"sweeper", "database"}, order)
}

func TestServe_JoinsHookErrors(t *testing.T) {
	srv, ln := testServer(t)

	errDB := errors.New("db close failed")
	errCache := errors.New("cache close failed")
	ran := false

	srv.OnShutdown("database", func(context.Context) error { return errDB })
	srv.OnShutdown("healthy", func(context.Context) error { ran = true; return nil })
	srv.OnShutdown("redis", func(context.Context) error { return errCache })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := <-serve(ctx, srv, ln)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDB)
	assert.ErrorIs(t, err, errCache)
	assert.Contains(t, err.Error(), "redis:")
	assert.True(t, ran, "a failing hook must not stop the remaining ones")
}

func TestServe_ListenerFailureShutsDown(t *testing.T) {
	srv, ln := testServer(t)

	stopped := false
	srv.OnShutdown("database", func(context.Context) error { stopped = true; return nil })

	require.NoError(t, ln.Close())

	select {
	case err := <-serve(context.Background(), srv, ln):
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server error")
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after listener failure")
	}
	assert.True(t, stopped)
}

func TestNew_Addr(t *testing.T) {
	srv := New(http.NotFoundHandler(), Config{Port: 8080}, nil)
	assert.Equal(t, ":8080", srv.Addr())
}
