package adapthttp

import (
	"context"
	"log/slog"
	"net/http"

	"nutrilog/internal/agent"
	"nutrilog/internal/app"
	"nutrilog/internal/domain"
)

// Chatter answers agent chat messages.
type Chatter interface {
	Chat(ctx context.Context, user *domain.User, conversationID, message string) (*agent.Reply, error)
}

// Services bundles the application services the HTTP adapter drives.
type Services struct {
	Auth     *app.AuthService
	Logs     *app.FoodLogService
	Foods    *app.FoodSearchService
	Goals    *app.GoalsService
	Insights *app.InsightsService
	Agent    Chatter
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	authSvc     *app.AuthService
	logs        *app.FoodLogService
	foods       *app.FoodSearchService
	goals       *app.GoalsService
	insights    *app.InsightsService
	agent       Chatter
	oidcConfig  OIDCConfig
	forwardAuth bool
	disableAuth bool
	devUser     *domain.User
	log         *slog.Logger
	webDir      string
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		authSvc:  svc.Auth,
		logs:     svc.Logs,
		foods:    svc.Foods,
		goals:    svc.Goals,
		insights: svc.Insights,
		agent:    svc.Agent,
		log:      logger,
		webDir:   webDir,
	}
}

// WithoutAuth disables authentication; every request acts as user 1.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	s.devUser = &domain.User{ID: 1, Username: "dev"}
	return s
}

// WithDevUser sets the user that requests act as when auth is disabled.
func (s *Server) WithDevUser(u *domain.User) *Server {
	s.devUser = u
	return s
}

// WithForwardAuth trusts the Remote-User header set by a reverse proxy.
func (s *Server) WithForwardAuth() *Server {
	s.forwardAuth = true
	return s
}

// WithOIDC enables SSO login.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	public := http.NewServeMux()
	public.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	public.HandleFunc("/config", s.handleConfig)
	public.HandleFunc("/auth/login", s.handleLogin)
	public.HandleFunc("/auth/logout", s.handleLogout)
	public.HandleFunc("/auth/setup", s.handleSetupUser)
	public.HandleFunc("/auth/token", s.handleToken)
	public.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	public.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	protected := http.NewServeMux()
	protected.HandleFunc("/auth/me", s.handleMe)

	protected.HandleFunc("/foods/search", s.handleFoodSearch)
	protected.HandleFunc("/foods/barcode/{code}", s.handleFoodBarcode)
	protected.HandleFunc("/foods/{id}", s.handleFoodGet)

	protected.HandleFunc("/logs", s.handleLogs)
	protected.HandleFunc("/logs/recent", s.handleLogsRecent)
	protected.HandleFunc("/logs/undo-last", s.handleLogsUndoLast)
	protected.HandleFunc("/logs/{id}", s.handleLogEntry)

	protected.HandleFunc("/goals", s.handleGoals)
	protected.HandleFunc("/goals/calculate", s.handleGoalsCalculate)

	protected.HandleFunc("/insights/daily", s.handleInsightsDaily)
	protected.HandleFunc("/insights/weekly", s.handleInsightsWeekly)
	protected.HandleFunc("/insights/monthly", s.handleInsightsMonthly)
	protected.HandleFunc("/insights/range", s.handleInsightsRange)
	protected.HandleFunc("/insights/export", s.handleInsightsExport)

	protected.HandleFunc("/agent/chat", s.handleAgentChat)

	api := http.NewServeMux()
	for _, p := range []string{"/health", "/config", "/auth/login", "/auth/logout", "/auth/setup", "/auth/token", "/auth/sso/"} {
		api.Handle(p, public)
	}
	api.Handle("/", s.authMiddleware(protected))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.recoverMiddleware(s.loggingMiddleware(withNoCache(root)))
}
