package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/z-dungeon/backend/internal/handler/game"
	"github.com/zhouzirui/z-dungeon/backend/internal/handler/npc"
	"github.com/zhouzirui/z-dungeon/backend/internal/handler/world"
	middlewarePkg "github.com/zhouzirui/z-dungeon/backend/internal/middleware"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/session"
	"github.com/zhouzirui/z-dungeon/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the session store. staticDir is served
// under /static so generated narration audio can be played back.
func NewRouter(store *session.Store, staticDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "AI Dungeon Master API"})
	})

	game.New(store, staticDir).RegisterRoutes(r)
	npc.New(store, staticDir).RegisterRoutes(r)
	world.New(store).RegisterRoutes(r)

	if strings.TrimSpace(staticDir) != "" {
		files := http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir)))
		r.Get("/static/*", files.ServeHTTP)
	}

	return r
}
