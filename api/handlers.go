package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/ai-synapse/ocr-core/services"
	"github.com/gorilla/mux"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const maxUploadSize = 50 << 20 // 50MB, scanned PDFs get large

type DocumentHandler struct {
	service *services.DocumentService
}

func NewDocumentHandler(service *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, status.Error(codes.InvalidArgument, "invalid form data"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, status.Error(codes.InvalidArgument, "no file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, status.Error(codes.Internal, "failed to read file"))
		return
	}

	doc, err := h.service.Upload(r.Context(), r.FormValue("userId"), header.Filename,
		header.Header.Get("Content-Type"), data)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Engines []string `json:"engines"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body) // empty body means default engines
	}

	workflowID, err := h.service.TriggerProcessing(r.Context(), mux.Vars(r)["id"], body.Engines)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"workflowId": workflowID})
}

func (h *DocumentHandler) Status(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Status(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type QueryHandler struct {
	service *services.QueryService
}

func NewQueryHandler(service *services.QueryService) *QueryHandler {
	return &QueryHandler{service: service}
}

func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID      string   `json:"userId"`
		Question    string   `json:"question"`
		DocumentIDs []string `json:"documentIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Question == "" {
		respondError(w, status.Error(codes.InvalidArgument, "question is required"))
		return
	}

	answer, err := h.service.Query(r.Context(), body.UserID, body.Question, body.DocumentIDs)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, answer)
}

func (h *QueryHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if limit <= 0 {
		limit = 20
	}

	entries, err := h.service.History(r.Context(), r.URL.Query().Get("userId"), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, httpCode(err), map[string]string{"error": status.Convert(err).Message()})
}

func httpCode(err error) int {
	switch status.Code(err) {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition, codes.AlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
