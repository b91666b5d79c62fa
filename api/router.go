// api/router.go
package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the versioned HTTP API. The Inngest handler is mounted by
// the caller so the workflow endpoint and the API share one server.
func NewRouter(handlers *Handlers, inngestHandler http.Handler) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", handlers.Health).Methods("GET")
	if inngestHandler != nil {
		router.Handle("/api/inngest", inngestHandler)
	}

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/checks", handlers.CreateCheck).Methods("POST")
	v1.HandleFunc("/checks/{check_id}", handlers.GetCheck).Methods("GET")
	v1.HandleFunc("/analyze", handlers.AnalyzeContent).Methods("POST")

	v1.HandleFunc("/projects/{project_id}/checks", handlers.ListChecks).Methods("GET")
	v1.HandleFunc("/projects/{project_id}/analytics", handlers.GetAnalytics).Methods("GET")
	v1.HandleFunc("/projects/{project_id}/analytics/compare", handlers.CompareBrands).Methods("POST")

	v1.HandleFunc("/templates", handlers.CreateTemplate).Methods("POST")
	v1.HandleFunc("/templates", handlers.ListTemplates).Methods("GET")
	v1.HandleFunc("/templates/{template_id}/render", handlers.RenderTemplate).Methods("POST")

	return router
}
