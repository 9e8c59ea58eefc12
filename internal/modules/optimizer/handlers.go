package optimizer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles optimizer HTTP requests
type Handler struct {
	service *Service
	repo    *Repository
	log     zerolog.Logger
}

// NewHandler creates a new optimizer handler
func NewHandler(service *Service, repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		log:     log.With().Str("handler", "optimizer").Logger(),
	}
}

// RegisterRoutes mounts the optimizer routes on a chi router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/run", h.HandleRun)
	r.Get("/runs", h.HandleListRuns)
	r.Get("/runs/{id}", h.HandleGetRun)
}

// runRequest is the POST /run body: one optimizer invocation, optionally
// persisted
type runRequest struct {
	Request
	Persist bool `json:"persist,omitempty"`
}

type runResponse struct {
	RunID string `json:"run_id,omitempty"`
	*Result
}

// HandleRun executes one optimizer run
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Run(req.Request)
	if err != nil {
		if errors.Is(err, ErrConfig) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Optimizer run failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := runResponse{Result: result}
	if req.Persist && h.repo != nil {
		runID, err := h.repo.SaveRun(req.Request, result)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to persist run")
			h.writeError(w, http.StatusInternalServerError, "Run succeeded but could not be persisted")
			return
		}
		resp.RunID = runID
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HandleListRuns returns recent persisted run summaries
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.repo.ListRuns(limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs": runs,
	})
}

// HandleGetRun returns one persisted run with its audit rows
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	run, err := h.repo.GetRun(runID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		h.writeError(w, http.StatusNotFound, "Run not found")
		return
	}

	h.writeJSON(w, http.StatusOK, run)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
