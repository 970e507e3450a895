// Package server serves the interactive trend page and relays streamed reports
// to the browser behind HTTP basic authentication.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sonnes/cheftrends/prompt"
	htmlrender "github.com/sonnes/cheftrends/render/html"
)

// Realm is the basic auth realm announced on 401 responses.
const Realm = "cheftrends"

// MaxRequestBytes caps the size of a stream request body.
const MaxRequestBytes = 64 << 10

// Streamer relays one report for a prompt to w. relay.Relay implements it.
type Streamer interface {
	Pipe(ctx context.Context, w io.Writer, p prompt.Prompt) error
}

// Config holds the server settings resolved at startup.
type Config struct {
	Addr string

	// SessionSecret signs session cookies. Empty disables sessions, so every
	// request needs basic auth.
	SessionSecret string
	SessionTTL    time.Duration

	// Now returns the current time for prompts and sessions. Defaults to time.Now.
	Now func() time.Time
}

// Server serves the app page and the stream endpoint.
type Server struct {
	cfg      Config
	creds    *Credentials
	sessions *sessions
	streamer Streamer
	page     *htmlrender.Renderer
	logger   *log.Logger
}

// New creates a Server. A nil logger uses log.Default().
func New(cfg Config, creds *Credentials, streamer Streamer, page *htmlrender.Renderer, logger *log.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		cfg:      cfg,
		creds:    creds,
		streamer: streamer,
		page:     page,
		logger:   logger,
	}
	if cfg.SessionSecret != "" {
		s.sessions = &sessions{secret: []byte(cfg.SessionSecret), ttl: cfg.SessionTTL, now: cfg.Now}
	}
	return s
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.requireAuth(s.handleApp))
	mux.HandleFunc("POST /stream", s.requireAuth(s.handleStream))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Start listens on the configured address and serves until ctx is canceled,
// then shuts down gracefully. It returns nil after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", "http://"+ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown", "err", err)
		}
		s.logger.Info("server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.RenderApp(w, htmlrender.AppData{StreamPath: "/stream"}); err != nil {
		s.logger.Error("render app", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

// streamRequest is the body of POST /stream.
type streamRequest struct {
	Focus string `json:"focus"`
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	var req streamRequest
	body := http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.logger.Debug("unreadable stream request, using empty focus", "err", err)
		req = streamRequest{}
	}

	p := prompt.Build(req.Focus, s.cfg.Now())

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	start := time.Now()
	err := s.streamer.Pipe(r.Context(), &flushWriter{w: w, rc: http.NewResponseController(w)}, p)
	if err != nil {
		s.logger.Debug("stream ended with error", "focus", p.Focus, "elapsed", time.Since(start), "err", err)
		return
	}
	s.logger.Info("stream complete", "focus", p.Focus, "elapsed", time.Since(start).Round(time.Millisecond))
}

// flushWriter flushes through the response controller so wrapped writers
// still deliver every record immediately.
type flushWriter struct {
	w  io.Writer
	rc *http.ResponseController
}

func (f *flushWriter) Write(p []byte) (int, error) { return f.w.Write(p) }

func (f *flushWriter) Flush() error { return f.rc.Flush() }
