package router

import (
	"net/http"

	"devconnector/internal/config"
	_ "devconnector/internal/docs" // registers the swagger spec
	"devconnector/internal/handlers/api/comments"
	"devconnector/internal/handlers/api/health"
	"devconnector/internal/handlers/api/posts"
	"devconnector/internal/handlers/api/profile"
	"devconnector/internal/handlers/api/users"
	"devconnector/internal/middleware"
	"devconnector/internal/response"
	"devconnector/internal/services"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Services are the domain services the API routes depend on
type Services struct {
	Auth     services.AuthService
	Users    services.UserService
	Profiles services.ProfileService
	Posts    services.PostService
	Comments services.CommentService
	Health   health.Checker
}

// ServicesFrom pulls the route dependencies out of a service collection
func ServicesFrom(sc *services.ServiceCollection) Services {
	return Services{
		Auth:     sc.AuthService,
		Users:    sc.UserService,
		Profiles: sc.ProfileService,
		Posts:    sc.PostService,
		Comments: sc.CommentService,
		Health:   sc,
	}
}

// Options configures the operational side of the router
type Options struct {
	Config          *config.Config
	ResponseBuilder *response.Builder
	Metrics         *middleware.Metrics // nil disables request metrics
	Gatherer        prometheus.Gatherer // nil falls back to the default registry
	Logger          *zap.Logger
}

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(svc Services, opts Options) http.Handler {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	builder := opts.ResponseBuilder
	if builder == nil {
		builder = response.NewBuilder(nil, logger)
	}

	r := mux.NewRouter()
	if opts.Metrics != nil {
		// registered on the router so the route template is known
		r.Use(opts.Metrics.Middleware)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		builder.WriteError(w, req, services.NewNotFoundError("Route not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		builder.WriteError(w, req, &services.ServiceError{
			Type:       "METHOD_NOT_ALLOWED",
			Message:    "Method not allowed",
			StatusCode: http.StatusMethodNotAllowed,
		})
	})

	authMiddleware := middleware.NewAuthMiddleware(svc.Auth, logger)

	setupAPIRoutes(r.PathPrefix("/api").Subrouter(), svc, authMiddleware, builder, logger)
	setupOperationalRoutes(r, svc, cfg.Monitoring, opts.Gatherer, builder, logger)

	logger.Info("🚀 Routes configured",
		zap.Bool("metrics", cfg.Monitoring.EnableMetrics),
		zap.Bool("swagger", cfg.Monitoring.EnableSwagger),
	)

	return middleware.Chain(r,
		middleware.RequestID(logger),
		response.Middleware(builder),
		middleware.StructuredLogging(middleware.DefaultLoggingConfig()),
		middleware.Recovery(&middleware.RecoveryConfig{EnableStackTrace: !cfg.IsProduction()}),
		middleware.SecureHeaders(cfg.Security),
		middleware.CORS(cfg.Security),
		middleware.MaxBodySize(cfg.Security.MaxRequestBodyBytes),
	)
}

// ===============================
// API ROUTES
// ===============================

func setupAPIRoutes(api *mux.Router, svc Services, auth *middleware.AuthMiddleware, builder *response.Builder, logger *zap.Logger) {
	protected := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}

	// Users
	userController := users.NewUserController(svc.Auth, svc.Users, builder, logger)
	api.HandleFunc("/users/register", userController.Register).Methods(http.MethodPost)
	api.HandleFunc("/users/login", userController.Login).Methods(http.MethodPost)
	api.Handle("/users/current", protected(userController.GetCurrentUser)).Methods(http.MethodGet)

	// Profiles; /profile/all must be registered before the parameterised routes
	profileController := profile.NewProfileController(svc.Profiles, builder, logger)
	api.HandleFunc("/profile/all", profileController.ListProfiles).Methods(http.MethodGet)
	api.HandleFunc("/profile/handle/{handle}", profileController.GetByHandle).Methods(http.MethodGet)
	api.HandleFunc("/profile/user/{user_id}", profileController.GetByUserID).Methods(http.MethodGet)
	api.Handle("/profile", protected(profileController.GetOwnProfile)).Methods(http.MethodGet)
	api.Handle("/profile", protected(profileController.UpsertProfile)).Methods(http.MethodPost)
	api.Handle("/profile", protected(profileController.DeleteAccount)).Methods(http.MethodDelete)
	api.Handle("/profile/experience", protected(profileController.AddExperience)).Methods(http.MethodPost)
	api.Handle("/profile/experience/{exp_id}", protected(profileController.RemoveExperience)).Methods(http.MethodDelete)
	api.Handle("/profile/education", protected(profileController.AddEducation)).Methods(http.MethodPost)
	api.Handle("/profile/education/{edu_id}", protected(profileController.RemoveEducation)).Methods(http.MethodDelete)

	// Posts
	postController := posts.NewPostController(svc.Posts, builder, logger)
	api.HandleFunc("/posts", postController.ListPosts).Methods(http.MethodGet)
	api.Handle("/posts", protected(postController.CreatePost)).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", postController.GetPost).Methods(http.MethodGet)
	api.Handle("/posts/{id}", protected(postController.DeletePost)).Methods(http.MethodDelete)
	api.Handle("/posts/like/{id}", protected(postController.LikePost)).Methods(http.MethodPost)
	api.Handle("/posts/unlike/{id}", protected(postController.UnlikePost)).Methods(http.MethodPost)

	// Comments
	commentController := comments.NewCommentController(svc.Comments, builder, logger)
	api.Handle("/posts/comment/{id}", protected(commentController.CreateComment)).Methods(http.MethodPost)
	api.Handle("/posts/comment/{id}/{comment_id}", protected(commentController.DeleteComment)).Methods(http.MethodDelete)
}

// ===============================
// OPERATIONAL ROUTES
// ===============================

func setupOperationalRoutes(r *mux.Router, svc Services, cfg config.MonitoringConfig, gatherer prometheus.Gatherer, builder *response.Builder, logger *zap.Logger) {
	if svc.Health != nil {
		healthController := health.NewHealthController(svc.Health, builder, logger)
		r.HandleFunc(cfg.HealthCheckPath, healthController.Health).Methods(http.MethodGet)
	}

	if cfg.EnableMetrics {
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		r.Handle(cfg.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
			ErrorLog: zap.NewStdLog(logger),
		})).Methods(http.MethodGet)
	}

	if cfg.EnableSwagger {
		r.Handle("/swagger", http.RedirectHandler("/swagger/", http.StatusMovedPermanently))
		r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}
}
