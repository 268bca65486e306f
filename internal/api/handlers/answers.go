package handlers

import (
	"net/http"

	"github.com/baharkarakas/qa-forum/internal/api/httpx"
	"github.com/baharkarakas/qa-forum/internal/middleware"
	"github.com/baharkarakas/qa-forum/internal/services"
)

type AnswerHandler struct {
	svc *services.AnswerService
}

func NewAnswerHandler(svc *services.AnswerService) *AnswerHandler {
	return &AnswerHandler{svc: svc}
}

func (h *AnswerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	var req services.AnswerInput
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	a, err := h.svc.Update(r.Context(), middleware.ActorID(r.Context()), id, req)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func (h *AnswerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), middleware.ActorID(r.Context()), id); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, messageResp{Message: "answer deleted"})
}
