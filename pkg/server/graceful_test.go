package server

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// startServer runs gs in the background and waits until it is listening
func startServer(t *testing.T, gs *GracefulServer, ctx context.Context) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- gs.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for gs.Addr() == nil {
		if time.Now().After(deadline) {
			t.Fatal("Server did not start listening")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

// TestGracefulServer_SIGHUPReloads tests model reload via SIGHUP
func TestGracefulServer_SIGHUPReloads(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", okHandler(), Options{})

	var reloads atomic.Int32
	gs.SetReloadFunc(func() error {
		reloads.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := startServer(t, gs, ctx)

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGHUP); err != nil {
		t.Fatalf("Failed to send SIGHUP: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for reloads.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if reloads.Load() != 1 {
		t.Errorf("Reload called %d times, want 1", reloads.Load())
	}
	if gs.IsShuttingDown() {
		t.Error("Server should not be shutting down after SIGHUP")
	}

	cancel()
	if err := waitDone(t, done); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestGracefulServer_ServesUntilCancelled(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", okHandler(), Options{ShutdownTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := startServer(t, gs, ctx)

	resp, err := http.Get("http://" + gs.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}

	cancel()
	if err := waitDone(t, done); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if !gs.IsShuttingDown() {
		t.Error("Expected shutdown after cancellation")
	}
}

func TestGracefulServer_DirectShutdown(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", okHandler(), Options{})
	done := startServer(t, gs, context.Background())

	if err := gs.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := gs.Shutdown(time.Second); err != nil {
		t.Errorf("Second Shutdown() error = %v", err)
	}
	if err := waitDone(t, done); err != nil {
		t.Errorf("Run() error = %v", err)
	}

	select {
	case <-gs.ShutdownChannel():
	default:
		t.Error("Shutdown channel should be closed")
	}
}

func TestGracefulServer_ListenError(t *testing.T) {
	gs := NewGracefulServer("256.0.0.1:bad", okHandler(), Options{})
	if err := gs.Run(context.Background()); err == nil {
		t.Fatal("Expected listen error")
	}
}

// TestGracefulServer_Reload tests the Reload method
func TestGracefulServer_Reload(t *testing.T) {
	gs := NewGracefulServer(":0", okHandler(), Options{})

	if err := gs.Reload(); err != nil {
		t.Errorf("Reload() without function error = %v", err)
	}

	called := false
	gs.SetReloadFunc(func() error {
		called = true
		return nil
	})
	if err := gs.Reload(); err != nil {
		t.Errorf("Reload() error = %v", err)
	}
	if !called {
		t.Error("Reload function was not called")
	}

	wantErr := errors.New("edges: key \"ab\": pair key has no valid split")
	gs.SetReloadFunc(func() error { return wantErr })
	if err := gs.Reload(); !errors.Is(err, wantErr) {
		t.Errorf("Reload() error = %v, want %v", err, wantErr)
	}
}
