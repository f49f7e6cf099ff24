package httptransport

import (
	"net/http"
	"time"

	"dilemma-lab/internal/app/play"

	"github.com/go-chi/chi/v5"
)

type RecordHandlers struct {
	svc *play.Service
}

func NewRecordHandlers(svc *play.Service) *RecordHandlers {
	return &RecordHandlers{svc: svc}
}

func (h *RecordHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			recordQueryLastMS.Set(time.Since(start).Milliseconds())
		}()
		recordQueryTotal.Add(1)

		limit, offset := ParsePagination(r)
		resp, err := h.svc.Records(r.Context(), limit, offset)
		if err != nil {
			recordQueryErrorsTotal.Add(1)
			WriteServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *RecordHandlers) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			recordQueryLastMS.Set(time.Since(start).Milliseconds())
		}()
		recordQueryTotal.Add(1)

		rec, err := h.svc.Record(r.Context(), chi.URLParam(r, "session_id"))
		if err != nil {
			recordQueryErrorsTotal.Add(1)
			WriteServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}
