package handlers

import (
	"net/http"

	"github.com/baharkarakas/qa-forum/internal/api/httpx"
	"github.com/baharkarakas/qa-forum/internal/apperr"
	"github.com/baharkarakas/qa-forum/internal/middleware"
	"github.com/baharkarakas/qa-forum/internal/models"
	"github.com/baharkarakas/qa-forum/internal/services"
)

type VoteHandler struct {
	svc *services.VoteService
}

func NewVoteHandler(svc *services.VoteService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

type voteReq struct {
	Value *int `json:"value"`
	// Older clients send vote_value.
	VoteValue *int `json:"vote_value"`
}

func (q voteReq) value() *int {
	if q.Value != nil {
		return q.Value
	}
	return q.VoteValue
}

type voteResp struct {
	Message string `json:"message"`
	models.VoteResult
}

var voteMessages = map[models.VoteAction]string{
	models.VoteInsert: "vote recorded",
	models.VoteDelete: "vote removed",
	models.VoteUpdate: "vote changed",
}

// Toggle handles POST /votes/{kind}s/{id}.
func (h *VoteHandler) Toggle(kind models.TargetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			httpx.WriteAppError(w, r, err)
			return
		}
		var req voteReq
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			httpx.WriteAppError(w, r, err)
			return
		}
		value := req.value()
		if value == nil {
			httpx.WriteAppError(w, r, apperr.Invalid(apperr.FieldError{Field: "value", Msg: "required"}))
			return
		}
		res, err := h.svc.Toggle(r.Context(), middleware.ActorID(r.Context()), models.Target{Kind: kind, ID: id}, *value)
		if err != nil {
			httpx.WriteAppError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, voteResp{Message: voteMessages[res.Action], VoteResult: res})
	}
}

type scoreResp struct {
	models.Target
	Score int64 `json:"score"`
	// Only set for identified callers.
	MyVote *int `json:"my_vote,omitempty"`
}

func (h *VoteHandler) Score(kind models.TargetKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			httpx.WriteAppError(w, r, err)
			return
		}
		t := models.Target{Kind: kind, ID: id}
		score, err := h.svc.Score(r.Context(), t)
		if err != nil {
			httpx.WriteAppError(w, r, err)
			return
		}
		resp := scoreResp{Target: t, Score: score}
		if actor := middleware.ActorID(r.Context()); actor != "" {
			mine, err := h.svc.MyVote(r.Context(), actor, t)
			if err != nil {
				httpx.WriteAppError(w, r, err)
				return
			}
			resp.MyVote = &mine
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	}
}
