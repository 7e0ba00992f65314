package preview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/remup-cli/internal/core/ports/driven"
	"github.com/custodia-labs/remup-cli/internal/core/ports/driving"
	"github.com/custodia-labs/remup-cli/internal/logger"
)

// Options configure a preview server.
type Options struct {
	// SourcePath is the RemUp file to watch and serve.
	SourcePath string

	// Port serves the rendered page.
	Port int

	// ReloadPort serves the websocket reload hub.
	ReloadPort int

	// Theme names the CSS theme passed to the renderer.
	Theme string
}

// Server compiles one source file, serves the result and recompiles
// whenever the file changes.
type Server struct {
	opts     Options
	compiler driving.CompilerService
	renderer driven.Renderer
	hub      *Hub

	mu   sync.RWMutex
	page []byte
}

// NewServer creates a preview server. The source is not compiled
// until Run.
func NewServer(compiler driving.CompilerService, renderer driven.Renderer, opts Options) *Server {
	return &Server{
		opts:     opts,
		compiler: compiler,
		renderer: renderer,
		hub:      NewHub(),
	}
}

// Run compiles the source, then serves it until the context is
// cancelled. The page server, the reload hub and the file watcher run
// concurrently; the first hard failure stops all three.
func (s *Server) Run(ctx context.Context) error {
	if s.compiler == nil || s.renderer == nil {
		return errors.New("preview server not fully wired")
	}

	if err := s.recompile(ctx); err != nil {
		return err
	}

	pageSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.pageHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/ws", s.hub.ServeWS)
	wsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.ReloadPort),
		Handler:           wsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("preview: http://localhost:%d (reload on :%d)", s.opts.Port, s.opts.ReloadPort)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := pageSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := wsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.watch(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = pageSrv.Shutdown(shutdownCtx)
		_ = wsSrv.Shutdown(shutdownCtx)
		return nil
	})
	return g.Wait()
}

// pageHandler serves the latest rendered page for every path.
func (s *Server) pageHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		page := s.page
		s.mu.RUnlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(page)
	})
}

// recompile runs the pipeline and swaps in the new page. Parse
// failures keep the previous page and notify connected browsers.
func (s *Server) recompile(ctx context.Context) error {
	source, err := os.ReadFile(s.opts.SourcePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.opts.SourcePath, err)
	}

	result, err := s.compiler.Compile(ctx, driving.CompileRequest{
		Source:     string(source),
		SourceName: s.opts.SourcePath,
	})
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}

	page, err := s.renderer.Render(ctx, result.Document, driven.RenderOptions{
		Title:      result.Title,
		Theme:      s.opts.Theme,
		LiveReload: true,
		ReloadPort: s.opts.ReloadPort,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	return nil
}

// onChange recompiles after a file event and tells browsers the
// outcome. A compile failure is pushed as a status message so the
// page keeps showing the last good build.
func (s *Server) onChange(ctx context.Context) {
	if err := s.recompile(ctx); err != nil {
		logger.Warn("recompile failed: %v", err)
		s.hub.Broadcast(message{Type: "status", Status: "error", Message: err.Error()})
		return
	}
	logger.Info("recompiled %s", s.opts.SourcePath)
	s.hub.Broadcast(message{Type: "reload"})
}
