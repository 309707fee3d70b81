// Package app wires the game services from configuration.
package app

import (
	"context"
	"log"

	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/z-dungeon/backend/internal/config"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/ai"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/npc"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/session"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/speech"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/world"
)

// BuildDeps creates the model client, generators and optional voice shared
// by every session. notify, when set, receives narrative retry notices.
func BuildDeps(ctx context.Context, cfg *config.Config, notify func(ai.RetryNotice)) (session.Deps, error) {
	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		return session.Deps{}, err
	}
	return Wire(ctx, chatModel, cfg, notify)
}

// Wire builds the dependencies around an existing chat model.
func Wire(ctx context.Context, chatModel model.BaseChatModel, cfg *config.Config, notify func(ai.RetryNotice)) (session.Deps, error) {
	client, err := ai.NewClient(ctx, chatModel,
		ai.WithMaxAttempts(cfg.Game.MaxAttempts),
		ai.WithRetryDelay(cfg.Game.RetryDelay),
	)
	if err != nil {
		return session.Deps{}, err
	}
	log.Println("AI client initialized successfully")

	builder, err := world.NewBuilder(client, ai.WithTimeout(cfg.Game.GenerationTimeout))
	if err != nil {
		return session.Deps{}, err
	}

	registry, err := npc.NewRegistry(client, npc.Config{
		MemoryLength:    cfg.Game.NPCMemoryLength,
		GenerateOptions: []ai.Option{ai.WithTimeout(cfg.Game.GenerationTimeout)},
		DialogueOptions: []ai.Option{ai.WithTimeout(cfg.Game.DialogueTimeout)},
	})
	if err != nil {
		return session.Deps{}, err
	}

	deps := session.Deps{Client: client, World: builder, NPCs: registry, Notify: notify}

	if cfg.Speech.Enabled {
		deps.Voice = speech.NewService(cfg.Speech)
		log.Println("Speech service initialized successfully")
	} else {
		log.Println("语音服务凭证未配置，跳过语音功能初始化")
	}
	return deps, nil
}
