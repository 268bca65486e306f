package handlers

import (
	"net/http"

	"github.com/baharkarakas/qa-forum/internal/api/httpx"
	"github.com/baharkarakas/qa-forum/internal/middleware"
	"github.com/baharkarakas/qa-forum/internal/models"
	"github.com/baharkarakas/qa-forum/internal/services"
)

type QuestionHandler struct {
	questions *services.QuestionService
	answers   *services.AnswerService
}

func NewQuestionHandler(q *services.QuestionService, a *services.AnswerService) *QuestionHandler {
	return &QuestionHandler{questions: q, answers: a}
}

type questionListResp struct {
	Questions []models.QuestionView `json:"questions"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
}

func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	p := page(r)
	list, err := h.questions.List(r.Context(), p, middleware.ActorID(r.Context()))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	if list == nil {
		list = []models.QuestionView{}
	}
	httpx.WriteJSON(w, http.StatusOK, questionListResp{Questions: list, Limit: p.Limit, Offset: p.Offset})
}

func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.QuestionInput
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	q, err := h.questions.Create(r.Context(), middleware.ActorID(r.Context()), req)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, q)
}

func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	v, err := h.questions.Get(r.Context(), id, middleware.ActorID(r.Context()))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	var req services.QuestionInput
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	q, err := h.questions.Update(r.Context(), middleware.ActorID(r.Context()), id, req)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, q)
}

func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	if err := h.questions.Delete(r.Context(), middleware.ActorID(r.Context()), id); err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, messageResp{Message: "question deleted"})
}

func (h *QuestionHandler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	list, err := h.answers.ListByQuestion(r.Context(), id, middleware.ActorID(r.Context()))
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	if list == nil {
		list = []models.AnswerView{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"answers": list})
}

func (h *QuestionHandler) CreateAnswer(w http.ResponseWriter, r *http.Request) {
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
	a, err := h.answers.Create(r.Context(), middleware.ActorID(r.Context()), id, req)
	if err != nil {
		httpx.WriteAppError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}
