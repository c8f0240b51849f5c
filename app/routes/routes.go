package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"feedapp/app/config"
	"feedapp/app/controllers"
	"feedapp/app/logging"
	"feedapp/app/middleware"
	"feedapp/app/repositories"
	"feedapp/app/services"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Store    repositories.Store
	Tokens   middleware.TokenValidator
	Feed     config.FeedConfig
	Security config.SecurityConfig
}

// SetupRoutes builds the API router and wraps it with CORS and per-IP rate
// limiting.
func SetupRoutes(deps Deps) http.Handler {
	router := NewRouter(deps)

	var handler http.Handler = router
	if deps.Security.RateLimitRequests > 0 {
		handler = httprate.LimitByIP(deps.Security.RateLimitRequests, deps.Security.RateLimitWindow)(handler)
	}
	handler = cors.Handler(cors.Options{
		AllowedOrigins:   deps.Security.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(handler)
	return handler
}

// NewRouter registers every route on a mux router with the global
// middleware applied.
func NewRouter(deps Deps) *mux.Router {
	interests := services.NewInterestService(deps.Store)
	postService := services.NewPostService(deps.Store)
	upvoteService := services.NewUpvoteService(deps.Store, interests)
	feedService := services.NewFeedService(deps.Store, deps.Feed.InterestLimit, deps.Feed.GeneralLimit)

	feedController := controllers.NewFeedController(feedService)
	postController := controllers.NewPostController(postService, upvoteService)
	meController := controllers.NewMeController(interests, services.NewProfileService(deps.Store))

	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Metrics)
	router.Use(middleware.Recoverer)

	router.HandleFunc("/healthz", health).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API routes
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	if deps.Tokens != nil {
		api.Use(middleware.Authenticate(deps.Tokens))
	}

	// Feeds
	api.HandleFunc("/feed/global", feedController.Global).Methods("GET")
	api.HandleFunc("/feed/personalized", feedController.Personalized).Methods("GET")

	// Posts
	api.HandleFunc("/posts/{id}", postController.Show).Methods("GET")
	api.Handle("/posts", authed(postController.Create)).Methods("POST")
	api.Handle("/posts/{id}/upvote", authed(postController.Upvote)).Methods("POST")
	api.HandleFunc("/tags", postController.Tags).Methods("GET")

	// Caller
	api.Handle("/me/interests", authed(meController.Interests)).Methods("GET")
	api.Handle("/me/profile", authed(meController.Profile)).Methods("GET")
	api.Handle("/me/profile", authed(meController.UpdateProfile)).Methods("PUT")

	return router
}

func authed(fn http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(fn)
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("failed to encode health response")
	}
}

// NewServer wraps handler in an http.Server with the configured timeouts.
func NewServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
}
