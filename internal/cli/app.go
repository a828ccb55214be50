package cli

import (
	"context"
	"log/slog"

	"github.com/gymleadhub/atlas-agent/internal/agent"
	"github.com/gymleadhub/atlas-agent/internal/config"
	"github.com/gymleadhub/atlas-agent/internal/knowledge"
	"github.com/gymleadhub/atlas-agent/internal/llm"
	"github.com/gymleadhub/atlas-agent/internal/scheduler"
	"github.com/gymleadhub/atlas-agent/internal/store"
	"github.com/gymleadhub/atlas-agent/internal/tools"
)

// app holds the wired service graph shared by the subcommands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *store.DB
	registry *tools.Registry
	orch     *agent.Orchestrator
	runner   *scheduler.Runner

	cleanup []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, closeLog := config.SetupLogger(cfg.Logging.File, config.ParseLevel(cfg.Logging.Level))
	slog.SetDefault(logger)

	db, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	registry := tools.NewBuiltinRegistry(db, logger)
	client := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, llm.Pricing{
		PromptPerMTok:     cfg.LLM.PromptPricePerMTok,
		CompletionPerMTok: cfg.LLM.CompletionPricePerMTok,
	})
	orch := agent.NewOrchestrator(db, client, registry, knowledge.NewProvider(db),
		cfg.Orchestrator, cfg.LLM.Model, logger)
	runner := scheduler.NewRunner(db, orch, cfg.Scheduler.Interval, cfg.Scheduler.StaleTimeout, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		registry: registry,
		orch:     orch,
		runner:   runner,
		cleanup:  []func() error{db.Close, closeLog},
	}, nil
}

func (a *app) close() {
	for _, fn := range a.cleanup {
		if err := fn(); err != nil {
			a.logger.Error("cleanup failed", "error", err)
		}
	}
}
