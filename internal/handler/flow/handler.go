package flow

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	flowService "github.com/wuffchat/wuffchat-cli/internal/service/flow"
	"github.com/wuffchat/wuffchat-cli/pkg/utils"
)

// Handler exposes the flow contract over HTTP.
type Handler struct {
	flowSvc *flowService.Service
}

// New creates the flow handler.
func New(flowSvc *flowService.Service) *Handler {
	return &Handler{flowSvc: flowSvc}
}

// RegisterRoutes mounts the flow endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/flow_intro", h.handleIntro)
	r.Post("/flow_step", h.handleStep)
}

// handleIntro opens a conversation. No request body is required.
func (h *Handler) handleIntro(w http.ResponseWriter, r *http.Request) {
	intro, err := h.flowSvc.Intro(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to open conversation")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"session_id":    intro.SessionID,
		"session_token": intro.SessionToken,
		"messages":      intro.Messages,
	})
}

// handleStep advances a conversation by one user turn.
func (h *Handler) handleStep(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID    string `json:"session_id"`
		SessionToken string `json:"session_token"`
		Message      string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.flowSvc.Step(r.Context(), payload.SessionID, payload.SessionToken, payload.Message)
	if err != nil {
		if errors.Is(err, flowService.ErrUnauthorized) {
			utils.RespondError(w, http.StatusUnauthorized, "session invalid or expired")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"session_id": result.SessionID,
		"messages":   result.Messages,
		"done":       result.Done,
	})
}
