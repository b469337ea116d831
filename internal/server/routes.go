package server

import (
	"net/http"
	"strings"

	"github.com/ternarybob/equitas/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Accounts
	mux.HandleFunc("/api/auth/signup", s.app.AuthHandler.SignupHandler) // POST - create account
	mux.HandleFunc("/api/auth/login", s.app.AuthHandler.LoginHandler)   // POST - issue token

	// API routes - Reports (authenticated)
	mux.Handle("/api/reports", s.requireAuth(http.HandlerFunc(s.handleReportsRoute)))  // GET (list), POST (submit)
	mux.Handle("/api/reports/", s.requireAuth(http.HandlerFunc(s.handleReportRoutes))) // GET/DELETE /{id}, GET /{id}/export/{format}, GET /{id}/export-{format}

	// API routes - Admin
	mux.Handle("/api/admin/reports", s.requireAuth(s.requireAdmin(http.HandlerFunc(s.app.ReportHandler.AdminListHandler))))

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", handlers.NotFoundHandler)

	return mux
}

// handleReportsRoute routes the report collection
func (s *Server) handleReportsRoute(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r, s.app.ReportHandler.ListHandler, s.app.ReportHandler.SubmitHandler)
}

// handleReportRoutes routes report item requests to the appropriate handler.
// Paths with segments beyond a known route are not found.
func (s *Server) handleReportRoutes(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r.URL.Path, "/api/reports/")

	switch {
	case len(segments) == 1:
		RouteResourceItem(w, r, s.app.ReportHandler.GetHandler, nil, s.app.ReportHandler.DeleteHandler)
	case len(segments) == 2 && strings.HasPrefix(segments[1], "export-"):
		// GET /api/reports/{id}/export-text, /export-pdf
		s.app.ReportHandler.ExportHandler(w, r)
	case len(segments) == 3 && segments[1] == "export":
		// GET /api/reports/{id}/export/{format}
		s.app.ReportHandler.ExportHandler(w, r)
	default:
		handlers.NotFoundHandler(w, r)
	}
}
