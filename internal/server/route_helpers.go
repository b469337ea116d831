package server

import (
	"net/http"
	"strings"

	"github.com/ternarybob/equitas/internal/handlers"
)

// methodRoutes maps HTTP methods to handlers
type methodRoutes map[string]http.HandlerFunc

// serve dispatches on r.Method, answering 405 for methods with no handler
func (m methodRoutes) serve(w http.ResponseWriter, r *http.Request) {
	handler, ok := m[r.Method]
	if !ok || handler == nil {
		handlers.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	handler(w, r)
}

// RouteResourceCollection routes GET to list and POST to create
func RouteResourceCollection(w http.ResponseWriter, r *http.Request, list, create http.HandlerFunc) {
	methodRoutes{http.MethodGet: list, http.MethodPost: create}.serve(w, r)
}

// RouteResourceItem routes GET to get, PUT to update and DELETE to remove.
// A nil handler answers 405.
func RouteResourceItem(w http.ResponseWriter, r *http.Request, get, update, remove http.HandlerFunc) {
	methodRoutes{http.MethodGet: get, http.MethodPut: update, http.MethodDelete: remove}.serve(w, r)
}

// pathSegments splits the part of path after prefix on "/", ignoring a trailing slash.
// pathSegments("/api/reports/rpt_1/export/pdf", "/api/reports/") returns [rpt_1 export pdf].
func pathSegments(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	return strings.Split(rest, "/")
}
