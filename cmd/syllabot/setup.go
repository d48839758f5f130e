package main

import (
	"context"

	"github.com/syllabot/syllabot/internal/config"
	"github.com/syllabot/syllabot/internal/index"
	"github.com/syllabot/syllabot/internal/ingest"
	"github.com/syllabot/syllabot/internal/providers/llm"
	"github.com/syllabot/syllabot/internal/providers/rag"
	"github.com/syllabot/syllabot/internal/service/assistant"
	"github.com/syllabot/syllabot/internal/service/orchestrator"
	"github.com/syllabot/syllabot/internal/storage/sqlite"
	"github.com/syllabot/syllabot/internal/tools"
	"github.com/syllabot/syllabot/pkg/log"
	"github.com/syllabot/syllabot/pkg/retry"
)

// app holds the wired-up services behind the CLI commands.
type app struct {
	assistant *assistant.Assistant
	loader    *ingest.Loader
	close     func()
}

func newApp(ctx context.Context) *app {
	logger := log.FromCtx(ctx)

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	ragCfg := config.NewRAGConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	sessions := sqlite.NewSessions(db, appCfg.MaxHistory, appCfg.MaxSessions)
	courses := sqlite.NewCourses(db)

	// 3. Embeddings + semantic index
	embedder, err := rag.NewEmbedder(ctx, ragCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedder")
	}
	idx, err := index.New(appCfg.GetIndexPath(), embedder.Func(), ragCfg.TitleSimilarityFloor)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open semantic index")
	}

	// 4. Generation engine
	engine, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize llm provider")
	}

	// 5. Tools + orchestration
	registry := tools.NewRegistry(
		tools.NewSearchTool(idx, ragCfg.MaxResults),
		tools.NewOutlineTool(idx, courses),
	)

	opts := []orchestrator.Option{orchestrator.WithContextBudget(appCfg.MaxContextTokens)}
	if appCfg.EngineRetries > 0 {
		retryCfg := retry.NewDefaultConfig()
		retryCfg.MaxRetries = appCfg.EngineRetries
		opts = append(opts, orchestrator.WithRetrier(retry.NewRetrier(retryCfg)))
	}
	orch := orchestrator.New(engine, registry, appCfg.MaxToolRounds, opts...)

	// 6. Ingestion
	parser := ingest.NewParser(rag.ChunkerConfig{
		MaxChars:     ragCfg.ChunkSize,
		OverlapChars: ragCfg.ChunkOverlap,
	})

	return &app{
		assistant: assistant.New(orch, sessions, courses),
		loader:    ingest.NewLoader(parser, idx, courses),
		close: func() {
			if err := db.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close database")
			}
		},
	}
}
