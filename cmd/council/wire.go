package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tkaria/council/internal/bridge"
	"github.com/tkaria/council/internal/config"
	"github.com/tkaria/council/internal/content"
	"github.com/tkaria/council/internal/council"
	"github.com/tkaria/council/internal/engagement"
	"github.com/tkaria/council/internal/journal"
	"github.com/tkaria/council/internal/llm"
	"github.com/tkaria/council/internal/logging"
	"github.com/tkaria/council/internal/orchestrator"
	"github.com/tkaria/council/internal/trends"
)

// runtime bundles everything a subcommand needs after wiring.
type runtime struct {
	cfg     *config.Config
	orch    *orchestrator.Orchestrator
	store   *orchestrator.Store
	journal *journal.Journal
	logger  *logging.Logger
}

func (rt *runtime) Close() {
	if rt.logger != nil {
		_ = rt.logger.Close()
	}
}

// buildRuntime initializes the .council directory and assembles the
// orchestrator with its collaborators from project config.
func buildRuntime() (*runtime, error) {
	projectDir, err := workingDir()
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	if err := config.InitCouncilDir(projectDir); err != nil {
		return nil, fmt.Errorf("init .council: %w", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(projectDir)
	if err != nil {
		return nil, err
	}
	sessionLog, err := journal.New(filepath.Join(cfg.LogsDir(), "session.log"))
	if err != nil {
		logger.Close()
		return nil, err
	}

	client, err := llm.NewFromConfig(cfg.Project.LLM)
	if err != nil {
		logger.Close()
		return nil, err
	}
	roster, err := council.LoadRoster(cfg.RosterPath(), client)
	if err != nil {
		logger.Close()
		return nil, err
	}

	sample := trends.NewSampleSource(cfg.SampleTrendsPath())
	var sources []trends.Source
	if keywords := cfg.Project.Trends.GoogleKeywords; len(keywords) > 0 {
		sources = append(sources, trends.NewGoogleSource(keywords))
	}
	if subs := cfg.Project.Trends.Subreddits; len(subs) > 0 {
		sources = append(sources, trends.NewRedditSource(subs))
	}
	fetcher := trends.NewFetcher(sample, sources, trends.WithLogger(logger))

	genOpts := []content.Option{}
	if token := os.Getenv("HUGGINGFACE_TOKEN"); token != "" {
		genOpts = append(genOpts, content.WithImageClient(content.NewImageClient(token)))
	}
	generator := content.NewGenerator(client, genOpts...)

	store, err := orchestrator.NewStore(cfg.IterationsDir())
	if err != nil {
		logger.Close()
		return nil, err
	}

	orch := orchestrator.New(roster, fetcher, generator, engagement.NewSimulator(cfg.Project.Engagement),
		orchestrator.WithStore(store),
		orchestrator.WithJournal(sessionLog),
		orchestrator.WithLogger(logger),
		orchestrator.WithTrendLimit(cfg.Project.Trends.Limit),
		orchestrator.WithImagesDir(cfg.ImagesDir()),
	)
	return &runtime{cfg: cfg, orch: orch, store: store, journal: sessionLog, logger: logger}, nil
}

func bridgeSettings(rt *runtime) bridge.Settings {
	return bridge.SettingsFromConfig(rt.cfg)
}
