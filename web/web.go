// Package web provides a localhost HTTP JSON API over the analysis
// engine.
//
// Two modes are supported, separately or together:
//
//   - Upload mode: POST /api/analyze accepts SIE file content and returns
//     the full analysis. Requests are independent; nothing is retained.
//   - Serve-file mode: when constructed with a file path, the server keeps
//     that file's document in memory, re-reads it on file system changes,
//     and notifies connected clients over SSE.
//
// The server has no authentication and should only be bound to localhost.
// Rendering (the Sankey diagram itself) is owned by the consuming
// front-end; this API only emits the node/link and time-series shapes.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/sieflow/sieflow/document"
	"github.com/sieflow/sieflow/telemetry"
)

type Server struct {
	Port int
	Host string

	// File is the SIE file served in serve-file mode; empty means
	// upload-only.
	File string

	// WatchEnabled re-reads File on change and broadcasts SSE reloads.
	WatchEnabled bool

	log *zap.Logger

	mu  sync.RWMutex
	doc *document.Document

	sseMu      sync.Mutex
	sseClients map[chan string]struct{}
}

// New creates a server. Passing an empty file path yields an upload-only
// server. A nil logger disables logging.
func New(port int, file string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		Port:       port,
		Host:       "127.0.0.1",
		File:       file,
		log:        log,
		sseClients: make(map[chan string]struct{}),
	}
}

// Start loads the served file (when configured), optionally starts the
// watcher, and blocks serving HTTP.
func (s *Server) Start(ctx context.Context) error {
	timer := telemetry.StartTimer(ctx, fmt.Sprintf("web.start %s:%d", s.Host, s.Port))
	defer timer.End()

	if s.File != "" {
		if err := s.reload(ctx); err != nil {
			return fmt.Errorf("failed to load %s: %w", s.File, err)
		}
		if s.WatchEnabled {
			if err := s.startWatcher(ctx); err != nil {
				return fmt.Errorf("failed to start file watcher: %w", err)
			}
		}
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	s.log.Info("listening", zap.String("addr", addr), zap.String("file", s.File))
	return http.ListenAndServe(addr, s.router())
}

func (s *Server) router() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)

	if s.File != "" {
		mux.HandleFunc("GET /api/document", s.handleGetDocument)
		mux.HandleFunc("GET /api/ratios", s.handleGetRatios)
		mux.HandleFunc("GET /api/flow", s.handleGetFlow)
		mux.HandleFunc("GET /api/monthly", s.handleGetMonthly)
		mux.HandleFunc("GET /api/events", s.handleSSE)
	}

	return mux
}

// reload re-reads the served file and swaps in the fresh document.
// Acquires the state mutex internally.
func (s *Server) reload(ctx context.Context) error {
	raw, err := os.ReadFile(s.File)
	if err != nil {
		return err
	}

	doc, err := document.Build(ctx, raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()

	for _, warning := range doc.Warnings {
		s.log.Warn("document warning", zap.String("warning", warning.Error()))
	}
	return nil
}

func (s *Server) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(s.File); err != nil {
		_ = watcher.Close()
		return err
	}

	go s.runWatcher(ctx, watcher)
	return nil
}

// runWatcher debounces file system events before reloading; editors and
// accounting software often write a file in several steps.
func (s *Server) runWatcher(ctx context.Context, watcher *fsnotify.Watcher) {
	const debounceDelay = 100 * time.Millisecond

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
		_ = watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				s.handleFileChange(ctx, watcher)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Error("watcher error", zap.Error(err))
		}
	}
}

func (s *Server) handleFileChange(ctx context.Context, watcher *fsnotify.Watcher) {
	if err := s.reload(ctx); err != nil {
		s.log.Error("reload failed", zap.Error(err))
		return
	}

	// Atomic saves replace the inode; re-add to keep watching.
	if err := watcher.Add(s.File); err != nil {
		s.log.Warn("re-watch failed", zap.String("file", s.File), zap.Error(err))
	}

	s.log.Info("document reloaded", zap.String("file", s.File))
	s.broadcast("reload")
}

// handleSSE streams reload notifications to clients.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := make(chan string, 10)

	s.sseMu.Lock()
	s.sseClients[clientChan] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseClients, clientChan)
		s.sseMu.Unlock()
		close(clientChan)
	}()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-clientChan:
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

func (s *Server) broadcast(event string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- event:
		default:
			// Client buffer full, skip.
		}
	}
}
