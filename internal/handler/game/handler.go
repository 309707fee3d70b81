// Package game exposes the session lifecycle over HTTP.
package game

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-dungeon/backend/internal/handler/httperr"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/session"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/speech"
	"github.com/zhouzirui/z-dungeon/backend/pkg/utils"
)

// Handler 游戏会话的HTTP处理器
type Handler struct {
	store     *session.Store
	staticDir string
}

// New 创建游戏处理器，staticDir 用于把音频文件映射为 URL
func New(store *session.Store, staticDir string) *Handler {
	return &Handler{store: store, staticDir: staticDir}
}

// RegisterRoutes 注册游戏相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/start", h.handleStart)
	r.Get("/status", h.handleStatus)
	r.Post("/input", h.handleInput)
	r.Delete("/session", h.handleAbandon)
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", h.handleInventory)
		r.Post("/", h.handleAddItem)
		r.Delete("/{item}", h.handleRemoveItem)
	})
}

type inputRequest struct {
	SessionID string `json:"sessionId"`
	Input     string `json:"input"`
}

type itemRequest struct {
	SessionID string `json:"sessionId"`
	Item      string `json:"item"`
}

// ReplyResponse is the body returned for every player turn.
type ReplyResponse struct {
	Response string `json:"response"`
	Audio    string `json:"audio"`
}

// ReplyBody converts an orchestrator reply into its JSON body, turning the
// audio file path under staticDir into a URL path.
func ReplyBody(staticDir string, reply session.Reply) ReplyResponse {
	return ReplyResponse{Response: reply.Text, Audio: speech.URLPath(staticDir, reply.Audio)}
}

// handleStart 开始新游戏
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req session.SetupRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.store.Start(r.Context(), req)
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message":   "Game started",
		"sessionId": o.ID(),
		"gameState": o.Snapshot(),
	})
}

// handleStatus 查询会话状态
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	o, err := h.store.Resolve(utils.SessionID(r, ""))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"gameState": o.Snapshot()})
}

// handleInput 处理玩家输入
func (h *Handler) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		utils.RespondError(w, http.StatusBadRequest, "input is required")
		return
	}

	o, err := h.store.Resolve(utils.SessionID(r, req.SessionID))
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	reply, err := o.Handle(r.Context(), req.Input)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, ReplyBody(h.staticDir, reply))
}

// handleAbandon 结束并移除会话
func (h *Handler) handleAbandon(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.store.Resolve(utils.SessionID(r, req.SessionID))
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	reply, err := h.store.Abandon(r.Context(), o.ID())
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, ReplyBody(h.staticDir, reply))
}

// handleInventory 查看背包
func (h *Handler) handleInventory(w http.ResponseWriter, r *http.Request) {
	o, err := h.store.Resolve(utils.SessionID(r, ""))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"inventory": o.Snapshot().Inventory})
}

// handleAddItem 向背包放入物品
func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := h.store.Resolve(utils.SessionID(r, req.SessionID))
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	items, err := o.AddItem(req.Item)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"inventory": items})
}

// handleRemoveItem 从背包取出物品
func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	o, err := h.store.Resolve(utils.SessionID(r, ""))
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	item, err := url.PathUnescape(chi.URLParam(r, "item"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid item")
		return
	}
	items, err := o.RemoveItem(item)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"inventory": items})
}
