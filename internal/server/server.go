// Package server runs the filedesk HTTP API until its context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/CageChen/filedesk/internal/config"
	"github.com/CageChen/filedesk/internal/handler"
	"github.com/CageChen/filedesk/internal/util"
	"github.com/CageChen/filedesk/internal/watcher"
	"github.com/rs/zerolog"
)

// FileService is what the server exposes over HTTP.
type FileService interface {
	handler.FileService
	BaseDir() string
}

// Option customizes a Server.
type Option func(*Server)

// WithListenHook registers fn to be called with the bound address once the
// listener is open.
func WithListenHook(fn func(net.Addr)) Option {
	return func(s *Server) { s.onListen = fn }
}

// Server is the HTTP adapter over a FileService.
type Server struct {
	cfg      *config.Config
	files    FileService
	log      zerolog.Logger
	onListen func(net.Addr)
}

// New creates a server for cfg. Nothing is bound until Run.
func New(cfg *config.Config, files FileService, opts ...Option) *Server {
	s := &Server{
		cfg:   cfg,
		files: files,
		log:   util.GetLogger("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run binds the configured address and serves until ctx is cancelled, then
// stops accepting connections and waits up to the shutdown timeout for
// in-flight requests. A bind failure is returned immediately.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr(), err)
	}

	var (
		changes     *handler.WSHandler
		stopWatcher = func() {}
	)
	if s.cfg.Watch {
		changes = handler.NewWSHandler()
		if stop := s.startWatcher(changes); stop != nil {
			stopWatcher = stop
		}
	}
	defer stopWatcher()

	router := handler.NewRouter(handler.RouterOptions{
		Files:      s.files,
		IsMarkdown: s.cfg.IsMarkdownFile,
		Changes:    changes,
	})
	srv := &http.Server{Handler: router}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	s.logEndpoints(ln.Addr())
	if s.onListen != nil {
		s.onListen(ln.Addr())
	}

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("Stopping server")
	// No broadcast may start once clients are being closed.
	stopWatcher()
	if changes != nil {
		changes.CloseAll()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	<-serveErr

	s.log.Info().Msg("Server stopped")
	return nil
}

// startWatcher feeds base directory changes to the websocket handler. A
// watcher failure only disables the change feed.
func (s *Server) startWatcher(changes *handler.WSHandler) (stop func()) {
	w, err := watcher.New(s.files.BaseDir())
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to create file watcher")
		return nil
	}
	w.OnChange(changes.OnFileChange)
	if err := w.Start(); err != nil {
		s.log.Warn().Err(err).Msg("failed to start file watcher")
		_ = w.Stop()
		return nil
	}
	s.log.Debug().Str("dir", s.files.BaseDir()).Msg("File watcher enabled")
	return func() { _ = w.Stop() }
}

func (s *Server) logEndpoints(addr net.Addr) {
	url := "http://" + addr.String()
	if tcp, ok := addr.(*net.TCPAddr); ok && (tcp.IP == nil || tcp.IP.IsUnspecified()) {
		url = fmt.Sprintf("http://localhost:%d", tcp.Port)
	}

	s.log.Info().Str("url", url).Str("dir", s.files.BaseDir()).Msg("File Manager Server running")
	for _, e := range []struct{ route, desc string }{
		{"GET /files", "List all files"},
		{"GET /files/:filename", "Read a file"},
		{"POST /files/:filename", "Create a file (send content in body)"},
		{"DELETE /files/:filename", "Delete a file"},
		{"GET /preview/:filename", "Render a markdown file"},
	} {
		s.log.Info().Str("endpoint", e.route).Msg(e.desc)
	}
	if s.cfg.Watch {
		s.log.Info().Str("endpoint", "GET /ws").Msg("Stream file changes")
	}
}
