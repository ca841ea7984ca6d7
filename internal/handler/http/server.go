package http

import (
	"Linkfolio-Backend/internal/analytics"
	"Linkfolio-Backend/internal/auth"
	"Linkfolio-Backend/internal/repository"
	"Linkfolio-Backend/internal/service"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Server wires the HTTP handlers and middleware together.
type Server struct {
	authHandler      *AuthHandler
	linksHandler     *LinksHandler
	sectionsHandler  *SectionsHandler
	profileHandler   *ProfileHandler
	publicHandler    *PublicHandler
	analyticsHandler *AnalyticsHandler
	healthHandler    *HealthHandler
	authMiddleware   *auth.Middleware
	log              *zap.Logger
}

// NewServer creates the HTTP server.
func NewServer(
	storage repository.Storage,
	authService *auth.Service,
	linkService *service.LinkService,
	layoutService *service.LayoutService,
	profileService *service.ProfileService,
	summaryService *analytics.SummaryService,
	processor *analytics.Processor,
	authMiddleware *auth.Middleware,
	log *zap.Logger,
) *Server {
	return &Server{
		authHandler:      NewAuthHandler(authService, log),
		linksHandler:     NewLinksHandler(storage, linkService, layoutService, log),
		sectionsHandler:  NewSectionsHandler(storage, layoutService, log),
		profileHandler:   NewProfileHandler(profileService, log),
		publicHandler:    NewPublicHandler(storage, linkService, processor, log),
		analyticsHandler: NewAnalyticsHandler(storage, summaryService, log),
		healthHandler:    NewHealthHandler(storage, processor, log),
		authMiddleware:   authMiddleware,
		log:              log,
	}
}

// SetupRoutes builds the route table.
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Probes, no auth
	mux.HandleFunc("GET /health", s.healthHandler.Health)
	mux.HandleFunc("GET /ready", s.healthHandler.Ready)

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// CORS preflight for all API routes
	mux.HandleFunc("OPTIONS /api/", s.withCORS(func(http.ResponseWriter, *http.Request) {}))

	// Auth endpoints, no auth
	mux.HandleFunc("POST /api/auth/register", s.withCORS(s.authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", s.withCORS(s.authHandler.Login))

	// Profile endpoints
	mux.HandleFunc("GET /api/profile", s.withAuth(s.profileHandler.GetProfile))
	mux.HandleFunc("POST /api/profile", s.withAuth(s.profileHandler.CreateProfile))
	mux.HandleFunc("PATCH /api/profile", s.withAuth(s.profileHandler.UpdateProfile))
	mux.HandleFunc("GET /api/profile/username-check", s.withAuth(s.profileHandler.CheckUsername))

	// Link and layout endpoints
	mux.HandleFunc("GET /api/links", s.withAuth(s.linksHandler.ListLayout))
	mux.HandleFunc("POST /api/links", s.withAuth(s.linksHandler.CreateLink))
	mux.HandleFunc("POST /api/links/reorder", s.withAuth(s.linksHandler.Reorder))
	mux.HandleFunc("PATCH /api/links/{id}", s.withAuth(s.linksHandler.UpdateLink))
	mux.HandleFunc("DELETE /api/links/{id}", s.withAuth(s.linksHandler.DeleteLink))

	// Section endpoints
	mux.HandleFunc("POST /api/sections", s.withAuth(s.sectionsHandler.CreateSection))
	mux.HandleFunc("PATCH /api/sections/{id}", s.withAuth(s.sectionsHandler.RenameSection))
	mux.HandleFunc("DELETE /api/sections/{id}", s.withAuth(s.sectionsHandler.DeleteSection))

	// Analytics endpoints
	mux.HandleFunc("GET /api/analytics/summary", s.withAuth(s.analyticsHandler.GetSummary))

	// Public page endpoints, no auth
	mux.HandleFunc("GET /api/public/{username}", s.withCORS(s.publicHandler.GetProfile))
	mux.HandleFunc("POST /api/public/{username}/links/{id}/click", s.withCORS(s.publicHandler.RecordClick))

	return mux
}

func (s *Server) withAuth(handler http.HandlerFunc) http.HandlerFunc {
	return s.authMiddleware.CORS(s.authMiddleware.RequireAuth(handler))
}

func (s *Server) withCORS(handler http.HandlerFunc) http.HandlerFunc {
	return s.authMiddleware.CORS(handler)
}
