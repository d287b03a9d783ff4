package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/easyfin/easyfin/config"
)

func newTestServer(t *testing.T, addr string, reloadFunc func() error) (*Server, chan int) {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Server.Addr = addr
	cfg.Server.ShutdownGracefulTimeout.Duration = 200 * time.Millisecond
	provider := config.NewProvider(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	if reloadFunc == nil {
		reloadFunc = func() error { return nil }
	}

	s := NewServer(provider, handler, logger, reloadFunc)
	exitCalledChan := make(chan int, 1)
	s.exitFunc = func(code int) {
		exitCalledChan <- code
	}
	return s, exitCalledChan
}

func TestServer_Run_GracefulShutdown(t *testing.T) {
	server, exitCalledChan := newTestServer(t, "127.0.0.1:0", nil)

	go server.Run()
	time.Sleep(20 * time.Millisecond)

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("Failed to send SIGINT: %v", err)
	}

	select {
	case code := <-exitCalledChan:
		if code != 0 {
			t.Errorf("expected exit code 0 for graceful shutdown, got %d", code)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for server to exit")
	}
}

func TestServer_Run_ListenFailure(t *testing.T) {
	server, exitCalledChan := newTestServer(t, "256.0.0.1:bad", nil)

	go server.Run()

	select {
	case code := <-exitCalledChan:
		if code == 0 {
			t.Error("expected non-zero exit code for a listen failure, got 0")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for server to exit after listen failure")
	}
}

func TestServer_Run_HandlesSIGHUP(t *testing.T) {
	reloadCalledChan := make(chan bool, 2)
	calls := 0
	reloader := func() error {
		calls++
		reloadCalledChan <- true
		if calls == 1 {
			return errors.New("bad config")
		}
		return nil
	}
	server, exitCalledChan := newTestServer(t, "127.0.0.1:0", reloader)

	go server.Run()
	time.Sleep(20 * time.Millisecond)

	// a failing reload keeps the server running, as does a good one
	for i := 0; i < 2; i++ {
		if err := syscall.Kill(syscall.Getpid(), syscall.SIGHUP); err != nil {
			t.Fatalf("Failed to send SIGHUP: %v", err)
		}
		select {
		case <-reloadCalledChan:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for reload func to be called")
		}
	}

	select {
	case code := <-exitCalledChan:
		t.Fatalf("server exited with code %d after SIGHUP, but should have continued running", code)
	default:
	}

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("Failed to send SIGINT for cleanup: %v", err)
	}
	select {
	case <-exitCalledChan:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for server to exit during cleanup")
	}
}

func TestServer_Run_RunsClosersOnShutdown(t *testing.T) {
	testCases := []struct {
		name     string
		closeErr error
		wantCode int
	}{
		{"closers succeed", nil, 0},
		{"closer fails", errors.New("database is busy"), 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, exitCalledChan := newTestServer(t, "127.0.0.1:0", nil)
			var order []string
			server.AddCloser(func() error {
				order = append(order, "first")
				return tc.closeErr
			})
			server.AddCloser(func() error {
				order = append(order, "second")
				return nil
			})

			go server.Run()
			time.Sleep(20 * time.Millisecond)

			if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
				t.Fatalf("Failed to send SIGTERM: %v", err)
			}

			select {
			case code := <-exitCalledChan:
				if code != tc.wantCode {
					t.Errorf("expected exit code %d, got %d", tc.wantCode, code)
				}
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for server to exit")
			}

			if len(order) != 2 || order[0] != "first" || order[1] != "second" {
				t.Errorf("expected closers to run in registration order, got %v", order)
			}
		})
	}
}
