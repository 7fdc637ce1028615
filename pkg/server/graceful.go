package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/logging"
)

// ReloadFunc reloads the served model
type ReloadFunc func() error

// Options configures a GracefulServer. Zero durations use the defaults.
type Options struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Logger          logging.Logger
}

// GracefulServer wraps an HTTP server with signal handling: SIGINT and
// SIGTERM drain connections and stop, SIGHUP calls the reload function.
type GracefulServer struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          logging.Logger

	shutdownCh   chan struct{} // Closed when shutdown starts
	shutdownDone chan struct{} // Closed when shutdown has finished
	shutdownOnce sync.Once
	shutdownErr  error

	reloadFn ReloadFunc
	reloadMu sync.RWMutex

	addrMu sync.RWMutex
	addr   net.Addr
}

// NewGracefulServer creates a new graceful HTTP server
func NewGracefulServer(addr string, handler http.Handler, opts Options) *GracefulServer {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GracefulServer{
		server: &http.Server{
			Addr:           addr,
			Handler:        handler,
			ReadTimeout:    durationOr(opts.ReadTimeout, 30*time.Second),
			WriteTimeout:   durationOr(opts.WriteTimeout, 30*time.Second),
			IdleTimeout:    120 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		shutdownTimeout: durationOr(opts.ShutdownTimeout, 10*time.Second),
		logger:          logger.With(logging.Component("server")),
		shutdownCh:      make(chan struct{}),
		shutdownDone:    make(chan struct{}),
	}
}

func durationOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Run serves until ctx is cancelled, a termination signal arrives or the
// listener fails, then shuts down gracefully.
func (gs *GracefulServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return err
	}
	gs.addrMu.Lock()
	gs.addr = ln.Addr()
	gs.addrMu.Unlock()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- gs.server.Serve(ln)
	}()
	gs.logger.Info("HTTP server listening", logging.String("addr", ln.Addr().String()))

	for {
		select {
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				<-gs.shutdownDone
				return gs.shutdownErr
			}
			return err

		case <-ctx.Done():
			gs.logger.Info("context cancelled, starting graceful shutdown")
			return gs.Shutdown(gs.shutdownTimeout)

		case <-gs.shutdownDone:
			// Shutdown called directly
			<-serveErr
			return gs.shutdownErr

		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				gs.logger.Info("received SIGHUP, reloading model")
				// Failures are logged by Reload; keep serving the old model
				_ = gs.Reload()
			default:
				gs.logger.Info("received signal, starting graceful shutdown", logging.String("signal", sig.String()))
				return gs.Shutdown(gs.shutdownTimeout)
			}
		}
	}
}

// Addr returns the bound listener address once Run has started listening.
func (gs *GracefulServer) Addr() net.Addr {
	gs.addrMu.RLock()
	defer gs.addrMu.RUnlock()
	return gs.addr
}

// Shutdown initiates a graceful shutdown. Only the first call does any work.
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)
		defer close(gs.shutdownDone)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		gs.logger.Info("initiating graceful shutdown", logging.Duration("timeout", timeout))
		if err := gs.server.Shutdown(ctx); err != nil {
			gs.shutdownErr = err
			gs.logger.Error("error during shutdown", logging.Error(err))
			return
		}
		gs.logger.Info("server shutdown complete")
	})
	return gs.shutdownErr
}

// IsShuttingDown returns true if shutdown has been initiated
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownChannel returns a channel that closes when shutdown is initiated
func (gs *GracefulServer) ShutdownChannel() <-chan struct{} {
	return gs.shutdownCh
}

// SetReloadFunc sets the function called on SIGHUP
func (gs *GracefulServer) SetReloadFunc(fn ReloadFunc) {
	gs.reloadMu.Lock()
	defer gs.reloadMu.Unlock()
	gs.reloadFn = fn
}

// Reload calls the reload function, if one is set
func (gs *GracefulServer) Reload() error {
	gs.reloadMu.RLock()
	reloadFn := gs.reloadFn
	gs.reloadMu.RUnlock()

	if reloadFn == nil {
		gs.logger.Warn("reload requested, but no reload function configured")
		return nil
	}

	if err := reloadFn(); err != nil {
		gs.logger.Error("reload failed", logging.Error(err))
		return err
	}
	gs.logger.Info("reload complete")
	return nil
}
