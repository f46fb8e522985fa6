package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/sistema-nomina/backend-nomina/internal/domain/user"
	"github.com/sistema-nomina/backend-nomina/internal/handler/http/middleware"
	"github.com/sistema-nomina/backend-nomina/internal/pkg/jwt"
	"golang.org/x/time/rate"
)

type RouterOptions struct {
	AllowedOrigins []string
	Logger         *slog.Logger

	// Per-user limit on payroll writes. Zero disables it.
	WriteRateLimit rate.Limit
	WriteBurst     int
}

func NewRouter(JWTService jwt.Service, payrollHandler PayrollHandler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/nomina", func(r chi.Router) {
				// ADMINISTRADOR or RRHH
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRoles(user.RoleAdmin, user.RoleHR))
					r.Use(middleware.RateLimitByUser(opts.WriteRateLimit, opts.WriteBurst))
					r.Post("/", payrollHandler.CreatePayroll)
					r.Post("/calcular", payrollHandler.CalculatePayroll)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionPayrollView))
					r.Get("/", payrollHandler.ListPayrollRecords)
					r.Get("/{id}", payrollHandler.GetPayrollRecord)
				})

				r.With(middleware.RequirePermission(user.PermissionReportsView)).
					Get("/reportes/mensual", payrollHandler.GetMonthlyReport)
			})
		})
	})
	return r
}
