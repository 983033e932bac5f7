package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions holds the environment-dependent router settings.
type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Auth       AuthHandler
	User       UserHandler
	Personnel  PersonnelHandler
	Evaluation EvaluationHandler
	Statistics StatisticsHandler
	Poll       PollHandler
}

func NewRouter(JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "appraisal-cmlabs"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	authenticated := []func(http.Handler) http.Handler{
		jwtauth.Verifier(JWTService.JWTAuth()),
		middleware.AuthRequired(JWTService),
		chiMiddleware.AllowContentType("application/json"),
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Route("/oauth/callback", func(r chi.Router) {
				r.Get("/google", h.Auth.OAuthCallbackGoogle)
			})

			r.Route("/login", func(r chi.Router) {
				r.Post("/", h.Auth.Login)
				r.Route("/oauth", func(r chi.Router) {
					r.Get("/google", h.Auth.LoginWithGoogle)
				})
			})
		})

		r.Route("/polls", func(r chi.Router) {
			// EventSource clients authenticate with an SSE token in the query string
			r.Get("/{id}/events", h.Poll.Stream)

			r.Group(func(r chi.Router) {
				r.Use(authenticated...)
				r.Get("/", h.Poll.List)
				r.With(middleware.RequirePermission(user.PermissionPollCreate)).Post("/", h.Poll.Create)
				r.Get("/{id}", h.Poll.GetByID)
				r.Get("/{id}/results", h.Poll.Results)
				r.With(middleware.RequirePermission(user.PermissionPollVote)).Post("/{id}/votes", h.Poll.Vote)
				r.Post("/{id}/close", h.Poll.Close)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(authenticated...)

			r.Get("/auth/me", h.Auth.Me)
			r.Post("/auth/sse-token", h.Auth.SSEToken)

			r.With(middleware.AdminOnly).Post("/users", h.User.Create)

			r.Route("/personnel", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionPersonnelView)).Get("/", h.Personnel.List)
				r.With(middleware.RequirePermission(user.PermissionPersonnelView)).Get("/{id}", h.Personnel.GetByID)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Personnel.Create)
					r.Put("/{id}", h.Personnel.Update)
					r.Delete("/{id}", h.Personnel.Delete)
				})
			})

			r.Route("/evaluations", func(r chi.Router) {
				r.Get("/criteria", h.Evaluation.Criteria)
				r.Get("/departments", h.Evaluation.Departments)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEvaluationCreate))
					r.Get("/mine", h.Evaluation.ListMine)
					r.Get("/validation", h.Evaluation.Validate)
					r.Put("/drafts/{rateeID}", h.Evaluation.SaveDraft)
					r.Delete("/drafts/{rateeID}", h.Evaluation.DeleteDraft)
				})
				r.With(middleware.RequirePermission(user.PermissionEvaluationSubmit)).Post("/submit", h.Evaluation.Submit)
			})

			r.Route("/statistics", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionStatisticsView))
				r.Get("/overview", h.Statistics.GetOverview)
				r.Get("/departments/{department}", h.Statistics.GetDepartment)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"Route not found"}}`))
	})
	return r
}
