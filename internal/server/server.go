package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jpalmerr/sidebar"
	"github.com/jpalmerr/sidebar/command"
	"github.com/jpalmerr/sidebar/internal/surface"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	// defaultShutdownTimeout is used when no shutdown timeout is configured.
	defaultShutdownTimeout = 5 * time.Second

	// maxCommandBody bounds the size of a POST /api/command request.
	maxCommandBody = 4 << 10

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "SimpleSidebar"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"
)

// PanelSource is the read side of the scoreboard the server renders.
type PanelSource interface {
	Panel(slot sidebar.DisplaySlot) surface.Panel
	Subscribe() <-chan surface.Panel
	Unsubscribe(ch <-chan surface.Panel)
}

// Executor runs a sidebar command on behalf of a request.
type Executor interface {
	Execute(ctx context.Context, args []string) (command.Result, error)
}

// commandRequest is the body of POST /api/command. Args wins over Line when
// both are set.
type commandRequest struct {
	Line string   `json:"line"`
	Args []string `json:"args"`
}

// commandResponse is the body returned by POST /api/command.
type commandResponse struct {
	command.Result
	Usage []string `json:"usage,omitempty"`
}

// Server handles HTTP requests for the sidebar panel and command API.
//
// Server provides four endpoints:
//   - GET /: Serves the embedded panel HTML
//   - GET /api/sidebar: Returns the current sidebar panel as JSON
//   - GET /api/sse: Server-Sent Events stream of panel updates
//   - POST /api/command: Executes a sidebar command
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	panels          PanelSource
	exec            Executor
	port            int
	httpServer      *http.Server
	assets          fs.FS
	title           string
	shutdownTimeout time.Duration
	logger          *slog.Logger

	mu   sync.Mutex
	addr net.Addr
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - panels: Source of rendered sidebar panels
//   - exec: Command executor; POST /api/command answers 503 if nil
//   - port: TCP port to listen on (0 picks a free port)
//   - assets: Embedded filesystem containing panel assets (may be nil)
//   - title: Page title (defaults to "SimpleSidebar" if empty)
//   - logger: Logger for server events
//
// The server is not started until [Server.Start] is called.
func NewServer(panels PanelSource, exec Executor, port int, assets fs.FS, title string, logger *slog.Logger) *Server {
	return &Server{
		panels:          panels,
		exec:            exec,
		port:            port,
		assets:          assets,
		title:           title,
		shutdownTimeout: defaultShutdownTimeout,
		logger:          logger,
	}
}

// SetShutdownTimeout changes how long in-flight requests get once the start
// context is cancelled. Non-positive values are ignored. Must be called
// before [Server.Start].
func (s *Server) SetShutdownTimeout(d time.Duration) {
	if d > 0 {
		s.shutdownTimeout = d
	}
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Handler: s.Handler(),
		// BaseContext derives all request contexts from the server context.
		// When ctx is cancelled, all request contexts are also cancelled,
		// enabling graceful shutdown of long-running handlers like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	s.logger.Info("panel server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the address the server is listening on, or nil before
// [Server.Start] succeeds.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/sidebar", s.handleSidebar)
	mux.HandleFunc("/api/sse", s.handleSSE)
	mux.HandleFunc("/api/command", s.handleCommand)

	// serve panel assets
	if s.assets != nil {
		mux.HandleFunc("/", s.handleDashboard)
	}

	return mux
}

// handleDashboard serves the panel page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if s.assets == nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	content, err := fs.ReadFile(s.assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// apply title substitution with HTML escaping to prevent XSS
	title := s.title
	if title == "" {
		title = defaultTitle
	}
	safeTitle := html.EscapeString(title)
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, safeTitle)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

// handleSidebar returns the current sidebar panel as JSON.
func (s *Server) handleSidebar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(s.panels.Panel(sidebar.SlotSidebar)); err != nil {
		s.logger.Error("failed to encode sidebar response", "error", err)
	}
}

// handleCommand executes one sidebar command.
//
// Unrecognised commands are answered with 200, handled=false and the usage
// lines, the same way the console prints usage.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.exec == nil {
		http.Error(w, "Commands not available", http.StatusServiceUnavailable)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommandBody)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	args := req.Args
	if len(args) == 0 {
		split, err := command.SplitLine(req.Line)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		args = split
	}

	res, err := s.exec.Execute(r.Context(), args)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		s.logger.Error("command failed", "args", args, "error", err)
		http.Error(w, err.Error(), status)
		return
	}

	resp := commandResponse{Result: res}
	if !res.Handled {
		resp.Usage = command.Usage()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode command response", "error", err)
	}
}

// handleSSE streams sidebar panels via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when clients are
// slow or disconnected. Without deadlines, a blocked Fprintf call would prevent
// the handler from detecting context cancellation or channel closure.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch := s.panels.Subscribe()
	defer s.panels.Unsubscribe(ch)

	// send the current panel first (also protected by write deadline)
	if data, err := json.Marshal(s.panels.Panel(sidebar.SlotSidebar)); err == nil {
		if err := writeAndFlush(data); err != nil {
			return
		}
	}

	for {
		select {
		case panel, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(panel)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return
		}
	}
}
