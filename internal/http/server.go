package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	applog "paghetta/internal/log"
	"paghetta/internal/metrics"
	"paghetta/internal/middleware/ratelimit"
	"paghetta/internal/middleware/security"
	"paghetta/internal/middleware/trace"
	"paghetta/internal/services"
	appweb "paghetta/web"
)

// Server serves the chore form, the summary fragments and the operational
// endpoints.
type Server struct {
	http.Server
	templates *template.Template
	service   *services.ChoreService
	metrics   *metrics.Metrics
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	logger    *applog.Logger
	currency  string
	started   time.Time

	shutdownOnce sync.Once
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	metrics       *metrics.Metrics
	logger        *applog.Logger
	currency      string
	ratePerMinute int
	proxies       []string
	templatesFS   fs.FS
	staticFS      fs.FS
}

// WithMetrics exposes m on /metrics and counts requests into it.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *serverOptions) { o.metrics = m }
}

// WithLogger sets the base logger handed to every request.
func WithLogger(l *applog.Logger) Option {
	return func(o *serverOptions) { o.logger = l }
}

// WithCurrency sets the symbol printed before amounts.
func WithCurrency(symbol string) Option {
	return func(o *serverOptions) { o.currency = symbol }
}

// WithRateLimit caps chore submissions per client IP and minute.
func WithRateLimit(perMinute int) Option {
	return func(o *serverOptions) { o.ratePerMinute = perMinute }
}

// WithTrustedProxies trusts X-Forwarded-For from these peers, given as
// CIDRs or bare IPs, in addition to loopback.
func WithTrustedProxies(proxies []string) Option {
	return func(o *serverOptions) { o.proxies = proxies }
}

// WithTemplateFS replaces the embedded templates. The FS must hold
// templates/*.html.
func WithTemplateFS(fsys fs.FS) Option {
	return func(o *serverOptions) { o.templatesFS = fsys }
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.ChoreService, opts ...Option) *Server {
	o := serverOptions{
		currency:      "¥",
		ratePerMinute: ratelimit.DefaultConfig().RequestsPerMinute,
		templatesFS:   appweb.TemplatesFS,
		staticFS:      appweb.StaticFS,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = applog.New(applog.DefaultConfig())
	}

	detector := security.NewDetector()
	for _, p := range o.proxies {
		if err := detector.AddTrustedProxy(p); err != nil {
			o.logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}

	limitCfg := ratelimit.DefaultConfig()
	limitCfg.RequestsPerMinute = o.ratePerMinute

	s := &Server{
		service:  svc,
		metrics:  o.metrics,
		limiter:  ratelimit.NewLimiter(limitCfg),
		detector: detector,
		logger:   o.logger.WithComponent(applog.ComponentHTTP),
		currency: o.currency,
		started:  time.Now(),
	}

	// Parse templates at startup.
	t, err := template.New("").Funcs(s.templateFuncs()).ParseFS(o.templatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(o.staticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /chores", s.handleCreateChore)
	mux.HandleFunc("GET /ui/summary", s.handleSummaryFragment)
	mux.HandleFunc("GET /api/summary", s.handleSummaryJSON)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Outermost first: base logger, trace, request-scoped logger, headers,
	// detection, rate limit.
	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(handler)
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = applog.ComponentMiddleware(applog.ComponentHTTP)(handler)
	handler = applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP,
		trace.WithRecorder(s.metrics),
		trace.WithRouteFunc(routeLabel(mux))).Middleware(handler)
	handler = applog.Middleware(o.logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(o.logger.Handler(), slog.LevelError),
	}
	return s
}

// Shutdown stops the rate limiter and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"amount": func(v int64) string { return formatAmount(s.currency, v) },
	}
}
