package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/go-auth-api/internal/application/auth"
	"github.com/go-auth-api/internal/application/authorization"
	"github.com/go-auth-api/internal/application/otp"
	"github.com/go-auth-api/internal/application/role"
	"github.com/go-auth-api/internal/application/user"
	"github.com/go-auth-api/internal/config"
	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/infrastructure/google"
	jwtinfra "github.com/go-auth-api/internal/infrastructure/jwt"
	"github.com/go-auth-api/internal/infrastructure/smtp"
	"github.com/go-auth-api/internal/infrastructure/sns"
	"github.com/go-auth-api/internal/transport/http/handler"
	appmiddleware "github.com/go-auth-api/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo          UserRepository
	RoleRepo          RoleRepository
	OTPRepo           OTPRepository
	AuthorizationRepo AuthorizationRepository
	Mailer            smtp.Mailer
	SMSSender         sns.SMSSender
	JWTProvider       *jwtinfra.Provider
	GoogleVerifier    *google.Verifier
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Session-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second with a burst of 10 on sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpSvc := otp.NewService(otp.ServiceDeps{
		Repo:       deps.OTPRepo,
		Mailer:     deps.Mailer,
		SMSSender:  deps.SMSSender,
		Secret:     cfg.OTPHashSecret,
		TTL:        cfg.OTPTTL,
		MaxRetries: cfg.OTPMaxRetries,
	})
	authzSvc := authorization.NewService(authorization.ServiceDeps{
		Repo:  deps.AuthorizationRepo,
		Users: deps.UserRepo,
		Roles: deps.RoleRepo,
		TTL:   cfg.SessionTTL,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:       deps.UserRepo,
		OTP:            otpSvc,
		Authorizations: authzSvc,
		Signer:         deps.JWTProvider,
		Google:         deps.GoogleVerifier,
	})
	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo})
	roleSvc := role.NewService(deps.RoleRepo)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(authSvc)
	otpH := handler.NewOTPHandler(authSvc)
	userH := handler.NewUserHandler(userSvc, authSvc)
	roleH := handler.NewRoleHandler(roleSvc)

	authMw := appmiddleware.Auth(authSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no session) ───────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/sessions/google", sessionH.Google)
		r.With(sensitiveRL.Limit).Post("/sessions/resume", sessionH.Resume)
		r.With(sensitiveRL.Limit).Post("/otp/request", otpH.Request)
		r.With(sensitiveRL.Limit).Post("/otp/verify", otpH.Verify)
		// Self-validating: the account is not active yet at this point, so
		// the session gate cannot apply.
		r.With(sensitiveRL.Limit).Post("/sessions/activate", sessionH.Activate)

		// ── Session-gated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			// Any authorized session
			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Post("/users/change-password", userH.ChangePassword)
			r.Get("/roles", roleH.List)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Delete("/users/{id}", userH.Delete)

				r.Post("/roles", roleH.Create)
				r.Get("/roles/{id}", roleH.Get)
				r.Put("/roles/{id}", roleH.Update)
				r.Delete("/roles/{id}", roleH.Delete)
			})
		})
	})

	return r
}
