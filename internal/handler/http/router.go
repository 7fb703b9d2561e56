package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/handler/http/middleware"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/jwt"
)

func NewRouter(
	env string,
	jwtService jwt.Service,
	attendanceHandler AttendanceHandler,
	dashboardHandler DashboardHandler,
	leaveHandler LeaveHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "talenttrack"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/events", attendanceHandler.IngestEvent)
				r.Post("/reconcile", attendanceHandler.Reconcile)
				r.Get("/summaries", attendanceHandler.GetSummaries)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/overview", dashboardHandler.Overview)
				r.Get("/anomalies", dashboardHandler.Anomalies)
				r.Get("/kpi", dashboardHandler.KPI)
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/", leaveHandler.Submit)
				r.Get("/", leaveHandler.List)
				r.Get("/balances", leaveHandler.Balances)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", leaveHandler.Get)
					r.Post("/approve", leaveHandler.Approve)
					r.Post("/reject", leaveHandler.Reject)
					r.Post("/cancel", leaveHandler.Cancel)
				})
			})
		})
	})

	return r
}
