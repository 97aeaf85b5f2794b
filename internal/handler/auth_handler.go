package handler

import (
	"net/http"

	"heart-clinic/internal/api"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.svc.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, func(msg string) any { return api.LoginResponse{Message: msg} })
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
