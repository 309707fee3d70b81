// Package httperr maps game errors onto HTTP responses.
package httperr

import (
	"errors"
	"log"
	"net/http"

	"github.com/zhouzirui/z-dungeon/backend/internal/service/ai"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/npc"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/session"
	"github.com/zhouzirui/z-dungeon/backend/pkg/utils"
)

// GameNotStarted is the error text used when no session can be resolved.
const GameNotStarted = "Game not started"

// Status returns the HTTP status and client message for err.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNoActiveSession), errors.Is(err, session.ErrNotSetUp):
		return http.StatusNotFound, GameNotStarted
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, session.ErrTerminated):
		return http.StatusConflict, "game is over"
	case errors.Is(err, npc.ErrNPCNotPresent), errors.Is(err, session.ErrItemNotHeld):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, npc.ErrEmptyInput), errors.Is(err, ai.ErrEmptyPrompt), errors.Is(err, session.ErrEmptyItem):
		return http.StatusBadRequest, err.Error()
	case ai.IsTimeout(err):
		return http.StatusGatewayTimeout, session.UnavailableMessage
	case ai.IsProviderError(err):
		return http.StatusBadGateway, session.UnavailableMessage
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// Respond writes err as a JSON error body.
func Respond(w http.ResponseWriter, err error) {
	status, message := Status(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[http] request failed: %v", err)
	}
	utils.RespondError(w, status, message)
}
