package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/qa-forum/internal/api/handlers"
	"github.com/baharkarakas/qa-forum/internal/api/httpx"
	"github.com/baharkarakas/qa-forum/internal/apperr"
	"github.com/baharkarakas/qa-forum/internal/auth"
	"github.com/baharkarakas/qa-forum/internal/config"
	"github.com/baharkarakas/qa-forum/internal/metrics"
	"github.com/baharkarakas/qa-forum/internal/middleware"
	"github.com/baharkarakas/qa-forum/internal/models"
	"github.com/baharkarakas/qa-forum/internal/ratelimit"
	"github.com/baharkarakas/qa-forum/internal/repository"
	"github.com/baharkarakas/qa-forum/internal/services"
)

type RouterDeps struct {
	Cfg       config.Config
	Log       *slog.Logger
	Store     repository.Store
	Tokens    *auth.TokenManager
	Users     *services.UserService
	Questions *services.QuestionService
	Answers   *services.AnswerService
	Votes     *services.VoteService
	// Nil limiters disable the per-route throttles.
	LoginLimiter  *ratelimit.Limiter
	ForgotLimiter *ratelimit.Limiter
}

func NewRouter(d RouterDeps) http.Handler {
	authMW := middleware.NewAuthMiddleware(d.Tokens, d.Cfg.Env)
	users := handlers.NewUserHandler(d.Users)
	questions := handlers.NewQuestionHandler(d.Questions, d.Answers)
	answers := handlers.NewAnswerHandler(d.Answers)
	votes := handlers.NewVoteHandler(d.Votes)
	health := handlers.NewHealthHandler(d.Store.Ping)

	r := chi.NewRouter()
	r.Use(chimw.RealIP, middleware.RequestID, middleware.AccessLog(d.Log), middleware.HTTPMetrics, middleware.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(d.Cfg.FrontendURL),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(d.Cfg.RateRPS))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteAppError(w, r, apperr.New(apperr.NotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	// health & metrics
	r.Get("/health", health.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- users ----------
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", users.Register)
			r.With(middleware.Throttle(d.LoginLimiter, "login")).Post("/login", users.Login)
			r.With(authMW.Require).Get("/me", users.Me)
			r.Post("/check", users.Check)
			r.With(middleware.Throttle(d.ForgotLimiter, "forgot_password")).Post("/forgot-password", users.ForgotPassword)
			r.Post("/reset-password/{token}", users.ResetPassword)
		})

		// ---------- questions & answers ----------
		r.Route("/questions", func(r chi.Router) {
			r.With(authMW.Optional).Get("/", questions.List)
			r.With(authMW.Require).Post("/", questions.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.With(authMW.Optional).Get("/", questions.Get)
				r.With(authMW.Require).Put("/", questions.Update)
				r.With(authMW.Require).Delete("/", questions.Delete)
				r.With(authMW.Optional).Get("/answers", questions.ListAnswers)
				r.With(authMW.Require).Post("/answers", questions.CreateAnswer)
			})
		})
		r.Route("/answers/{id}", func(r chi.Router) {
			r.Use(authMW.Require)
			r.Put("/", answers.Update)
			r.Delete("/", answers.Delete)
		})

		// ---------- votes ----------
		r.Route("/votes", func(r chi.Router) {
			r.With(authMW.Require).Post("/questions/{id}", votes.Toggle(models.TargetQuestion))
			r.With(authMW.Require).Post("/answers/{id}", votes.Toggle(models.TargetAnswer))
			r.With(authMW.Optional).Get("/questions/{id}", votes.Score(models.TargetQuestion))
			r.With(authMW.Optional).Get("/answers/{id}", votes.Score(models.TargetAnswer))
		})
	})

	return r
}

func allowedOrigins(frontendURL string) []string {
	var out []string
	for _, o := range strings.Split(frontendURL, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}
