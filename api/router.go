package api

import (
	"net/http"

	"github.com/ai-synapse/ocr-core/services"
	"github.com/gorilla/mux"
)

func NewRouter(documentService *services.DocumentService, queryService *services.QueryService) http.Handler {
	r := mux.NewRouter()

	docHandler := NewDocumentHandler(documentService)
	queryHandler := NewQueryHandler(queryService)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	v1.HandleFunc("/documents/upload", docHandler.Upload).Methods(http.MethodPost)
	v1.HandleFunc("/documents/{id}/process", docHandler.Trigger).Methods(http.MethodPost)
	v1.HandleFunc("/documents/{id}", docHandler.Status).Methods(http.MethodGet)
	v1.HandleFunc("/documents/{id}", docHandler.Delete).Methods(http.MethodDelete)

	v1.HandleFunc("/query", queryHandler.Query).Methods(http.MethodPost)
	v1.HandleFunc("/queries", queryHandler.History).Methods(http.MethodGet)

	return r
}
