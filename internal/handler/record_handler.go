package handler

import (
	"net/http"

	"heart-clinic/internal/api"
)

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req api.PredictRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Predict(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, func(msg string) any { return api.PredictResponse{Error: msg} })
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.Records(r.Context())
	if err != nil {
		h.fail(w, r, err, errorBody)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Chat(r.Context(), req))
}

func errorBody(msg string) any { return map[string]string{"error": msg} }

func resultBody(msg string) any { return api.Result{Error: msg} }
