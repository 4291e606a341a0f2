package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mailmerge"
	"github.com/dmitrymomot/mailmerge/pkg/merge"
)

type handlers struct {
	svc Service
}

type scheduleRequest struct {
	At     time.Time    `json:"at"`
	Config merge.Config `json:"config"`
}

type templateRequest struct {
	Body string `json:"body"`
}

func (h *handlers) sendNow(w http.ResponseWriter, r *http.Request) {
	var cfg merge.Config
	if !decode(w, r, &cfg) {
		return
	}
	writeResult(w, h.svc.SendNow(r.Context(), cfg))
}

func (h *handlers) sendTest(w http.ResponseWriter, r *http.Request) {
	var cfg merge.Config
	if !decode(w, r, &cfg) {
		return
	}
	writeResult(w, h.svc.SendTest(r.Context(), cfg))
}

func (h *handlers) schedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !decode(w, r, &req) {
		return
	}
	if req.At.IsZero() {
		writeError(w, http.StatusBadRequest, "at is required")
		return
	}
	writeResult(w, h.svc.Schedule(r.Context(), req.At, req.Config))
}

func (h *handlers) cancelSchedule(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.CancelSchedule(r.Context()))
}

func (h *handlers) scheduleStatus(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.ScheduleStatus(r.Context()))
}

func (h *handlers) loadConfig(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.LoadConfig(r.Context()))
}

func (h *handlers) saveConfig(w http.ResponseWriter, r *http.Request) {
	var cfg merge.Config
	if !decode(w, r, &cfg) {
		return
	}
	writeResult(w, h.svc.SaveConfig(r.Context(), cfg))
}

func (h *handlers) loadTemplates(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.LoadTemplates(r.Context()))
}

func (h *handlers) saveTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !decode(w, r, &req) {
		return
	}
	writeResult(w, h.svc.SaveTemplate(r.Context(), chi.URLParam(r, "name"), req.Body))
}

func (h *handlers) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.DeleteTemplate(r.Context(), chi.URLParam(r, "name")))
}

func (h *handlers) headers(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.Headers(r.Context(), chi.URLParam(r, "name")))
}

func (h *handlers) sources(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.Sources(r.Context()))
}

func (h *handlers) runOutcomes(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.RunOutcomes(r.Context(), chi.URLParam(r, "id")))
}

// decode reads a JSON body into v. It writes a 400 and returns false on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		msg := "invalid request body: " + err.Error()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

func writeResult(w http.ResponseWriter, res mailmerge.Result) {
	status := http.StatusOK
	if !res.OK() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, mailmerge.Result{Status: mailmerge.StatusError, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
