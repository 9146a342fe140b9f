package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"
)

// Config holds listener settings for Server.
type Config struct {
	Addr         string
	TLSCertFile  string
	TLSKeyFile   string
	// TLSConfig takes precedence over the file pair, e.g. to serve a
	// certificate that reloads.
	TLSConfig    *tls.Config
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	cfg        Config
}

// New creates a new HTTP server.
func New(cfg Config, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       2 * time.Minute,
			TLSConfig:         cfg.TLSConfig,
		},
		handler: handler,
		cfg:     cfg,
	}
}

// TLS reports whether the server serves HTTPS.
func (s *Server) TLS() bool {
	return s.cfg.TLSConfig != nil || (s.cfg.TLSCertFile != "" && s.cfg.TLSKeyFile != "")
}

// ListenAndServe starts the server on the configured address, using TLS
// when a certificate pair is configured. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It returns nil after Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	var err error
	switch {
	case s.cfg.TLSConfig != nil:
		err = s.httpServer.ServeTLS(ln, "", "")
	case s.TLS():
		err = s.httpServer.ServeTLS(ln, s.cfg.TLSCertFile, s.cfg.TLSKeyFile)
	default:
		err = s.httpServer.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
