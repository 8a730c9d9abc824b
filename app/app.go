// Package app wires the registry, cache, LLM and services shared by the
// HTTP server and the command line tool.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"egovlaw-backend/config"
	"egovlaw-backend/llm"
	"egovlaw-backend/repository"
	"egovlaw-backend/service"
	"egovlaw-backend/storage"

	"go.uber.org/zap"
)

// App holds the long-lived components built from a Config
type App struct {
	Config    *config.Config
	LawLists  *repository.LawListRepository
	LawData   *repository.LawDataRepository
	Assistant *service.AssistantService
	Laws      *service.LawService

	gemini *llm.GeminiGenerator
}

// New builds the application. A missing Gemini key is not an error; AI
// features are then reported as disabled.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	cache, err := storage.NewTextCache(storage.CacheConfig{
		Type: storage.CacheType(cfg.Cache.Type),
		TTL:  cfg.Cache.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize text cache: %w", err)
	}

	client := repository.NewRegistryClient(cfg.Registry.BaseURL, &http.Client{})
	a := &App{
		Config:   cfg,
		LawLists: repository.NewLawListRepository(client, cfg.Registry.ListTimeout),
		LawData:  repository.NewLawDataRepository(client, cache, cfg.Registry.DataTimeout),
	}

	var assistantOpts []service.AssistantServiceOption
	gemini, err := llm.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		log.Warn("GEMINI_API_KEY not set, AI features disabled")
	case err != nil:
		return nil, fmt.Errorf("failed to initialize Gemini: %w", err)
	default:
		a.gemini = gemini
		generator := llm.NewRetryGenerator(gemini, cfg.Gemini.MaxRetries, cfg.Gemini.InitialBackoff)
		assistantOpts = append(assistantOpts, service.AssistantWithGenerator(generator))
		log.Info("Gemini client initialized",
			zap.String("model", cfg.Gemini.Model),
			zap.Int("max_retries", cfg.Gemini.MaxRetries),
		)
	}
	a.Assistant = service.NewAssistantService(assistantOpts...)

	a.Laws = service.NewLawService(
		service.LawWithLister(a.LawLists),
		service.LawWithViewerURL(cfg.Registry.ViewerURL),
	)

	log.Info("application initialized",
		zap.String("registry", client.BaseURL()),
		zap.String("cache", cfg.Cache.Type),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
		zap.Bool("ai_enabled", a.Assistant.Enabled()),
	)
	return a, nil
}

// NewSession builds the service backing one browse session
func (a *App) NewSession() *service.SessionService {
	return service.NewSessionService(
		service.SessionWithLawLister(a.LawLists),
		service.SessionWithTextFetcher(a.LawData),
		service.SessionWithAssistant(a.Assistant),
		service.SessionWithViewerURL(a.Config.Registry.ViewerURL),
	)
}

// Close releases the LLM client
func (a *App) Close() error {
	if a.gemini == nil {
		return nil
	}
	return a.gemini.Close()
}
