// Package world exposes on-demand world generation for a session.
package world

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-dungeon/backend/internal/handler/httperr"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/session"
	"github.com/zhouzirui/z-dungeon/backend/pkg/utils"
)

// Handler 世界生成相关的HTTP处理器
type Handler struct {
	store *session.Store
}

// New 创建世界处理器
func New(store *session.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册世界相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/world", func(r chi.Router) {
		r.Post("/location", h.handleLocation)
		r.Post("/encounter", h.handleEncounter)
		r.Post("/lore", h.handleLore)
	})
}

type generateRequest struct {
	SessionID string `json:"sessionId"`
	Type      string `json:"type"`
	Topic     string `json:"topic"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (generateRequest, *session.Orchestrator, bool) {
	var req generateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return req, nil, false
	}
	o, err := h.store.Resolve(utils.SessionID(r, req.SessionID))
	if err != nil {
		httperr.Respond(w, err)
		return req, nil, false
	}
	return req, o, true
}

// handleLocation 生成新地点并把玩家移动过去
func (h *Handler) handleLocation(w http.ResponseWriter, r *http.Request) {
	req, o, ok := h.decode(w, r)
	if !ok {
		return
	}

	loc, err := o.Location(r.Context(), req.Type)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"location":  loc,
		"gameState": o.Snapshot(),
	})
}

// handleEncounter 在当前地点生成一场遭遇
func (h *Handler) handleEncounter(w http.ResponseWriter, r *http.Request) {
	_, o, ok := h.decode(w, r)
	if !ok {
		return
	}

	enc, err := o.Challenge(r.Context())
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"encounter": enc})
}

// handleLore 扩展世界设定
func (h *Handler) handleLore(w http.ResponseWriter, r *http.Request) {
	req, o, ok := h.decode(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		utils.RespondError(w, http.StatusBadRequest, "topic is required")
		return
	}

	lore, err := o.Lore(r.Context(), req.Topic)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"topic": req.Topic, "lore": lore})
}
