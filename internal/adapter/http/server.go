package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/caretrack/caretrack/internal/config"
	"github.com/caretrack/caretrack/internal/service/ratelimit"
	"github.com/caretrack/caretrack/internal/usecase"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// Managers bundles the use cases the API exposes.
type Managers struct {
	Patients    *usecase.PatientManager
	Exams       *usecase.ExamManager
	ClinicSites *usecase.ClinicSiteManager
	Users       *usecase.UserManager
	Notes       *usecase.PatientNoteManager
	Reports     *usecase.PatientReportManager
	AuditTrail  *usecase.AuditTrailManager
}

// NewServer creates the HTTP server with all routes and middleware wired.
func NewServer(cfg config.ServerConfig, managers Managers, limiter ratelimit.Service, logger *logrus.Logger) *Server {
	router := mux.NewRouter()

	NewPatientHandler(managers.Patients, managers.Notes).RegisterRoutes(router)
	NewExamHandler(managers.Exams).RegisterRoutes(router)
	NewClinicSiteHandler(managers.ClinicSites).RegisterRoutes(router)
	NewUserHandler(managers.Users).RegisterRoutes(router)
	NewReportHandler(managers.Reports).RegisterRoutes(router)
	NewAuditHandler(managers.AuditTrail).RegisterRoutes(router)

	router.Use(correlationMiddleware)
	router.Use(corsMiddleware(cfg.CORSOrigins))
	router.Use(rateLimitMiddleware(limiter, logger))
	router.Use(loggingMiddleware(logger))
	router.Use(recoveryMiddleware(logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return &Server{
		server: &http.Server{
			Addr:         cfg.Host + ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
