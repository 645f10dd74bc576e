package rest

import (
	"net/http"

	"echoreport/internal/form"
	"echoreport/internal/metrics"
	"echoreport/internal/service"
	"echoreport/internal/transport/rest/handler"
	"echoreport/internal/transport/rest/middleware"
	"echoreport/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	Catalogue      *form.Catalogue
	AuthService    *service.AuthService
	SessionService *service.SessionService
	ReportService  *service.ReportService
	Metrics        *metrics.Metrics
	WSHub          *ws.Hub
	AllowedOrigins string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	schemaHandler := handler.NewSchemaHandler(c.Catalogue)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	reportHandler := handler.NewReportHandler(c.ReportService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SessionService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware(c.AllowedOrigins))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	if c.Metrics != nil {
		r.Handle("/metrics", c.Metrics.Handler()).Methods("GET")
	}

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/sessions/{id}", wsHandler.SessionWS).Methods("GET")

	// Clinician routes
	api := v1.NewRoute().Subrouter()
	api.Use(authMW.RequireClinician)

	api.HandleFunc("/schema", schemaHandler.Get).Methods("GET", "OPTIONS")

	api.HandleFunc("/sessions", sessionHandler.Start).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/sessions/{id}", sessionHandler.Discard).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/sessions/{id}/submit", sessionHandler.Submit).Methods("POST", "OPTIONS")
	// Field names may contain slashes ("E/A ratio").
	api.HandleFunc("/sessions/{id}/fields/{name:.+}", sessionHandler.SetField).Methods("PUT", "OPTIONS")

	api.HandleFunc("/reports", reportHandler.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/export.xlsx", reportHandler.Export).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/{id}", reportHandler.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/{id}", reportHandler.Delete).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/reports/{id}/print", reportHandler.Print).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
