// Package npc exposes the NPCs around a session over HTTP.
package npc

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-dungeon/backend/internal/handler/game"
	"github.com/zhouzirui/z-dungeon/backend/internal/handler/httperr"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/session"
	"github.com/zhouzirui/z-dungeon/backend/pkg/utils"
)

// Handler NPC 相关的HTTP处理器
type Handler struct {
	store     *session.Store
	staticDir string
}

// New 创建NPC处理器
func New(store *session.Store, staticDir string) *Handler {
	return &Handler{store: store, staticDir: staticDir}
}

// RegisterRoutes 注册NPC相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/npcs", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/encounter", h.handleEncounter)
		r.Post("/{name}/talk", h.handleTalk)
		r.Post("/{name}/relationship", h.handleRelationship)
	})
}

type talkRequest struct {
	SessionID string `json:"sessionId"`
	Input     string `json:"input"`
}

type relationshipRequest struct {
	SessionID string `json:"sessionId"`
	Delta     int    `json:"delta"`
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, bodyID string) (*session.Orchestrator, bool) {
	o, err := h.store.Resolve(utils.SessionID(r, bodyID))
	if err != nil {
		httperr.Respond(w, err)
		return nil, false
	}
	return o, true
}

func npcName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(raw)
}

// handleList 列出当前场景中的NPC
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	o, ok := h.resolve(w, r, "")
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"npcs": o.Snapshot().ActiveNPCs})
}

// handleEncounter 在当前地点遭遇一名随机NPC
func (h *Handler) handleEncounter(w http.ResponseWriter, r *http.Request) {
	var req talkRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, ok := h.resolve(w, r, req.SessionID)
	if !ok {
		return
	}

	reply, err := o.Encounter(r.Context())
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, game.ReplyBody(h.staticDir, reply))
}

// handleTalk 与场景中的NPC对话
func (h *Handler) handleTalk(w http.ResponseWriter, r *http.Request) {
	var req talkRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		utils.RespondError(w, http.StatusBadRequest, "input is required")
		return
	}
	o, ok := h.resolve(w, r, req.SessionID)
	if !ok {
		return
	}

	name := npcName(r)
	reply, err := o.Talk(r.Context(), name, req.Input)
	if err != nil {
		status, message := httperr.Status(err)
		if reply.Text != "" && status < http.StatusInternalServerError {
			message = reply.Text
		}
		utils.RespondError(w, status, message)
		return
	}
	utils.RespondJSON(w, http.StatusOK, game.ReplyBody(h.staticDir, reply))
}

// handleRelationship 调整NPC对玩家的好感度
func (h *Handler) handleRelationship(w http.ResponseWriter, r *http.Request) {
	var req relationshipRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, ok := h.resolve(w, r, req.SessionID)
	if !ok {
		return
	}

	name := npcName(r)
	score, status, err := o.AdjustRelationship(name, req.Delta)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"name":         name,
		"relationship": score,
		"status":       status,
	})
}
