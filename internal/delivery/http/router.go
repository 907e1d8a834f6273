package http

import (
	"net/http"

	"mentalwell/internal/delivery/http/handler"
	"mentalwell/internal/delivery/http/middleware"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/session"

	"github.com/gorilla/mux"
)

type Router struct {
	router                *mux.Router
	authHandler           *handler.AuthHandler
	pageHandler           *handler.PageHandler
	profileHandler        *handler.ProfileHandler
	recordHandler         *handler.EmotionalRecordHandler
	recommendationHandler *handler.RecommendationHandler
	assessmentHandler     *handler.AssessmentHandler
	analysisHandler       *handler.AnalysisHandler
	adminHandler          *handler.AdminHandler
	sessions              *session.Controller
	pathGate              *middleware.PathGate
	corsMiddleware        *middleware.CORSMiddleware
}

type Handlers struct {
	Auth           *handler.AuthHandler
	Page           *handler.PageHandler
	Profile        *handler.ProfileHandler
	Record         *handler.EmotionalRecordHandler
	Recommendation *handler.RecommendationHandler
	Assessment     *handler.AssessmentHandler
	Analysis       *handler.AnalysisHandler
	Admin          *handler.AdminHandler
}

func NewRouter(
	handlers Handlers,
	sessions *session.Controller,
	pathGate *middleware.PathGate,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:                mux.NewRouter(),
		authHandler:           handlers.Auth,
		pageHandler:           handlers.Page,
		profileHandler:        handlers.Profile,
		recordHandler:         handlers.Record,
		recommendationHandler: handlers.Recommendation,
		assessmentHandler:     handlers.Assessment,
		analysisHandler:       handlers.Analysis,
		adminHandler:          handlers.Admin,
		sessions:              sessions,
		pathGate:              pathGate,
		corsMiddleware:        corsMiddleware,
	}
}

// Setup registers every route and returns the root handler. CORS wraps the
// router from outside because mux only runs Use middleware on matched routes,
// and preflight OPTIONS requests match none.
func (r *Router) Setup() http.Handler {
	pages := middleware.NewRouteGuard(middleware.PageMode)
	apiGuard := middleware.NewRouteGuard(middleware.APIMode)

	// Order matters: the cookie-only gate, then session resolution.
	r.router.Use(r.pathGate.Handle)
	r.router.Use(r.sessions.Provide)

	// Pages
	r.router.HandleFunc(entity.LoginPath, r.pageHandler.LoginPage).Methods(http.MethodGet)
	r.router.HandleFunc(entity.RegisterPath, r.pageHandler.RegisterPage).Methods(http.MethodGet)

	r.router.Handle(entity.PatientDashboardPath,
		pages.Allow(entity.RolePatient)(http.HandlerFunc(r.pageHandler.PatientDashboard))).Methods(http.MethodGet)
	r.router.Handle(entity.PsychologistDashboardPath,
		pages.Allow(entity.RolePsychologist)(http.HandlerFunc(r.pageHandler.PsychologistDashboard))).Methods(http.MethodGet)
	r.router.Handle(entity.AdminDashboardPath,
		pages.Allow(entity.RoleAdmin)(http.HandlerFunc(r.pageHandler.AdminDashboard))).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	auth.HandleFunc("/session", r.authHandler.Session).Methods(http.MethodGet)

	// Profile (any role)
	me := api.PathPrefix("/me").Subrouter()
	me.Use(apiGuard.Authenticated())
	me.HandleFunc("", r.profileHandler.GetProfile).Methods(http.MethodGet)
	me.HandleFunc("", r.profileHandler.UpdateProfile).Methods(http.MethodPut)
	me.HandleFunc("", r.profileHandler.DeleteAccount).Methods(http.MethodDelete)
	me.HandleFunc("/preferences", r.profileHandler.GetPreferences).Methods(http.MethodGet)
	me.HandleFunc("/preferences", r.profileHandler.UpdatePreferences).Methods(http.MethodPut)
	me.HandleFunc("/password", r.profileHandler.ChangePassword).Methods(http.MethodPut)

	// Patient routes
	patientOnly := apiGuard.Allow(entity.RolePatient)
	api.Handle("/records", patientOnly(http.HandlerFunc(r.recordHandler.CreateRecord))).Methods(http.MethodPost)
	api.Handle("/records", patientOnly(http.HandlerFunc(r.recordHandler.ListRecords))).Methods(http.MethodGet)
	api.Handle("/recommendations", patientOnly(http.HandlerFunc(r.recommendationHandler.GetRecommendations))).Methods(http.MethodGet)
	api.Handle("/recommendations/{key}/complete", patientOnly(http.HandlerFunc(r.recommendationHandler.CompleteActivity))).Methods(http.MethodPost)
	api.Handle("/assessment/questions", patientOnly(http.HandlerFunc(r.assessmentHandler.GetQuestions))).Methods(http.MethodGet)
	api.Handle("/assessment", patientOnly(http.HandlerFunc(r.assessmentHandler.Submit))).Methods(http.MethodPost)
	api.Handle("/assessment/history", patientOnly(http.HandlerFunc(r.assessmentHandler.History))).Methods(http.MethodGet)

	// Psychologist routes
	psychologist := api.PathPrefix("/psychologist").Subrouter()
	psychologist.Use(apiGuard.Allow(entity.RolePsychologist))
	psychologist.HandleFunc("/patients", r.recordHandler.ListPatients).Methods(http.MethodGet)
	psychologist.HandleFunc("/patients/{id}/records", r.recordHandler.PatientRecords).Methods(http.MethodGet)

	// Analysis (psychologist and admin)
	api.Handle("/analysis",
		apiGuard.Allow(entity.RolePsychologist, entity.RoleAdmin)(http.HandlerFunc(r.analysisHandler.GetAnalysis))).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(apiGuard.Allow(entity.RoleAdmin))
	admin.HandleFunc("/users", r.adminHandler.CreateUser).Methods(http.MethodPost)
	admin.HandleFunc("/users", r.adminHandler.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", r.adminHandler.UpdateUser).Methods(http.MethodPut)
	admin.HandleFunc("/users/{id}/status", r.adminHandler.SetStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/users/{id}", r.adminHandler.DeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/stats", r.adminHandler.Stats).Methods(http.MethodGet)
	admin.HandleFunc("/export", r.adminHandler.Export).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs", r.adminHandler.AuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/config", r.adminHandler.GetConfig).Methods(http.MethodGet)
	admin.HandleFunc("/config", r.adminHandler.UpdateConfig).Methods(http.MethodPut)

	return r.corsMiddleware.Handle(r.router)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
