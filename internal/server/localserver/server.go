package localserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"
)

// ErrInUse is returned when another process answers on the socket path.
var ErrInUse = errors.New("localserver: socket is in use")

// Server serves an http.Handler on a unix socket.
type Server struct {
	path     string
	srv      *http.Server
	logger   *slog.Logger
	listener net.Listener
	running  atomic.Bool
}

// New creates a local server for handler at socketPath.
func New(socketPath string, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		path: socketPath,
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.With("component", "localserver"),
	}
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Listen creates the socket. A stale socket left by a crashed process is
// removed; a live one is ErrInUse.
func (s *Server) Listen() error {
	if err := s.removeStale(); err != nil {
		return err
	}
	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("localserver: listen: %w", err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		ln.Close()
		return fmt.Errorf("localserver: chmod socket: %w", err)
	}
	s.listener = ln
	return nil
}

func (s *Server) removeStale() error {
	fi, err := os.Lstat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("localserver: %w", err)
	}
	if fi.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("localserver: %s exists and is not a socket", s.path)
	}
	if conn, err := net.DialTimeout("unix", s.path, time.Second); err == nil {
		conn.Close()
		return ErrInUse
	}
	s.logger.Info("removing stale socket", "path", s.path)
	return os.Remove(s.path)
}

// Serve accepts connections until Shutdown. It returns nil after Shutdown.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("localserver: Serve called before Listen")
	}
	s.running.Store(true)
	s.logger.Info("local socket listening", "path", s.path)
	err := s.srv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) || !s.running.Load() {
		return nil
	}
	return err
}

// ListenAndServe is Listen followed by Serve.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Shutdown drains open requests and removes the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)
	err := s.srv.Shutdown(ctx)
	if s.listener != nil {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}
	return err
}
