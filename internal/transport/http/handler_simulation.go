package httptransport

import (
	"encoding/json"
	"net/http"

	"dilemma-lab/internal/app/play"

	"github.com/go-chi/chi/v5"
)

type SimulationHandlers struct {
	svc *play.Service
}

func NewSimulationHandlers(svc *play.Service) *SimulationHandlers {
	return &SimulationHandlers{svc: svc}
}

type stepRequest struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
}

func (h *SimulationHandlers) Strategies() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, h.svc.Strategies())
	}
}

func (h *SimulationHandlers) Init() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricSimulationInitTotal.Add(1)
		var req play.StartInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metricSimulationInitErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Start(r.Context(), req)
		if err != nil {
			metricSimulationInitErrors.Add(1)
			WriteServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *SimulationHandlers) Step() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricSimulationStepTotal.Add(1)
		var req stepRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metricSimulationStepErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		resp, err := h.svc.Step(r.Context(), req.SessionID, req.Action)
		if err != nil {
			metricSimulationStepErrors.Add(1)
			WriteServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *SimulationHandlers) State() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.svc.State(r.Context(), chi.URLParam(r, "session_id"))
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *SimulationHandlers) Abandon() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.Abandon(r.Context(), chi.URLParam(r, "session_id")); err != nil {
			WriteServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
