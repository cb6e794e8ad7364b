package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/middleware/ratelimit"
	"budgetbuddy/internal/middleware/security"
	"budgetbuddy/internal/middleware/trace"
	"budgetbuddy/internal/report"
	appweb "budgetbuddy/web"
)

// DefaultUserHeader is the trusted header carrying the authenticated user.
const DefaultUserHeader = "X-Remote-User"

// Config configures the HTTP server.
type Config struct {
	Addr            string
	UserHeader      string
	ExportRateLimit int // exports per user per minute

	// Publisher receives budget alerts; nil disables them.
	Publisher amqp.Publisher

	// Ready reports whether the data backend is reachable; nil means always.
	Ready func(context.Context) error
}

type Server struct {
	http.Server
	engine     *report.Engine
	templates  *template.Template
	userHeader string
	publisher  amqp.Publisher
	ready      func(context.Context) error
	logger     *log.Logger
	startedAt  time.Time

	traceMiddleware  *trace.Middleware
	securityDetector *security.Detector
	exportLimiter    *ratelimit.Limiter

	alerts       sync.WaitGroup
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(cfg Config, engine *report.Engine, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default(log.ComponentHTTP)
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	header := strings.TrimSpace(cfg.UserHeader)
	if header == "" {
		header = DefaultUserHeader
	}

	detector := security.NewDetector()
	s := &Server{
		engine:           engine,
		templates:        t,
		userHeader:       header,
		publisher:        cfg.Publisher,
		ready:            cfg.Ready,
		logger:           logger,
		startedAt:        time.Now(),
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, logger),
		securityDetector: detector,
		exportLimiter:    ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.ExportRateLimit}),
	}

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	private := func(h http.HandlerFunc) http.Handler { return security.NoStore(h) }
	mux.Handle("/", private(s.handleDashboard))
	mux.Handle("/ui/breakdown", private(s.handleBreakdownPartial))
	mux.Handle("/ui/budget", private(s.handleBudgetPartial))
	mux.Handle("/api/breakdown", private(s.handleBreakdownAPI))

	limited := s.exportLimiter.Middleware(s.rateLimitKey, func(w http.ResponseWriter, r *http.Request) {
		requestLogger(r).WarnContext(r.Context(), "Export rate limit exceeded", log.FieldUser, s.userFrom(r))
		ErrorResponse(http.StatusTooManyRequests, "Too many downloads. Please wait a minute and try again.").Write(w)
	})
	mux.Handle("/export", limited(private(s.handleExport)))

	var h http.Handler = mux
	h = log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(h)
	h = log.Middleware(s.logger)(h)
	h = s.securityDetector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.traceMiddleware.Middleware(h)
	return h
}

// userFrom returns the trusted user id, or "" when the header is absent.
func (s *Server) userFrom(r *http.Request) string {
	return sanitizeInput(r.Header.Get(s.userHeader))
}

func (s *Server) rateLimitKey(r *http.Request) string {
	if u := s.userFrom(r); u != "" {
		return "user:" + u
	}
	return "ip:" + s.securityDetector.ExtractClientIP(r)
}

// Shutdown stops accepting requests, waits for in-flight alert publishes and
// stops the limiter's cleanup loop.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
		s.exportLimiter.Stop()

		done := make(chan struct{})
		go func() {
			s.alerts.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.logger.Warn("Shutdown timed out waiting for alert publishes")
		}
	})
	return shutdownErr
}
