package app

import (
	"context"
	"fmt"
	"time"

	"github.com/modelwatch-hq/release-scout/internal/config"
	"github.com/modelwatch-hq/release-scout/internal/discovery"
	"github.com/modelwatch-hq/release-scout/internal/logger"
	"github.com/modelwatch-hq/release-scout/internal/store"
	"github.com/modelwatch-hq/release-scout/pkg/emitters"
	"github.com/modelwatch-hq/release-scout/pkg/httpclient"
	"github.com/modelwatch-hq/release-scout/pkg/profiles"
)

// Scout wires together profiles, the fetcher, the release store and the
// emitters, and executes a single discovery run. Scheduling is the caller's
// concern: the binary runs once per invocation and exits.
type Scout struct {
	cfg     *config.Config
	service *discovery.Service
	store   store.Store
	fanout  *emitters.Fanout
}

// loggerAdapter lets the emitters package log through the package logger
// without importing it.
type loggerAdapter struct{}

func (loggerAdapter) InfoObj(msg, key string, obj interface{})  { logger.InfoObj(msg, key, obj) }
func (loggerAdapter) DebugObj(msg, key string, obj interface{}) { logger.DebugObj(msg, key, obj) }
func (loggerAdapter) WarnObj(msg, key string, obj interface{})  { logger.WarnObj(msg, key, obj) }
func (loggerAdapter) ErrorObj(msg, key string, obj interface{}) { logger.ErrorObj(msg, key, obj) }

// NewScout builds the scout runtime from config files.
func NewScout(ctx context.Context, cfg *config.Config) (*Scout, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	profileReg, err := profiles.LoadRegistry(cfg.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("load provider profiles: %w", err)
	}
	profileList := profileReg.All()
	profileIDs := make([]string, 0, len(profileList))
	for _, p := range profileList {
		profileIDs = append(profileIDs, p.ID)
	}
	logger.InfoObj("provider profiles loaded", "profiles_meta", map[string]any{
		"count": len(profileIDs),
		"ids":   profileIDs,
	})

	emitterReg, err := emitters.LoadRegistry(cfg.EmittersFile)
	if err != nil {
		return nil, fmt.Errorf("load emitters registry: %w", err)
	}
	enabled := emitterReg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no emitters configured")
	}

	built, err := emitters.BuildAll(ctx, emitters.DefaultRegistry(), enabled, loggerAdapter{})
	if err != nil {
		return nil, fmt.Errorf("build emitters: %w", err)
	}
	fanout := emitters.NewFanout(built)
	emitterSummaries := make([]map[string]string, 0, len(enabled))
	for _, emCfg := range enabled {
		emitterSummaries = append(emitterSummaries, map[string]string{
			"id":   emCfg.ID,
			"type": emCfg.Type,
		})
	}
	logger.InfoObj("emitters registry loaded", "emitters_meta", map[string]any{
		"count":    len(emitterSummaries),
		"emitters": emitterSummaries,
	})

	st, err := store.NewStore(cfg.StoreType, cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("init release store: %w", err)
	}
	logger.InfoObj("release store initialized", "store_config", map[string]any{
		"type": cfg.StoreType,
		"path": cfg.StorePath,
	})

	fetcher := httpclient.NewFetcher(httpclient.NewRestyClient(cfg.FetchTimeout), cfg.MaxRedirects)

	service := discovery.NewService(fetcher, st, fanout, profileList, cfg.AppName, discovery.Options{
		RecencyWindow: cfg.RecencyWindow,
		MaxFeedItems:  cfg.MaxFeedItems,
		FuzzyRatio:    cfg.FuzzyRatio,
	})

	return &Scout{
		cfg:     cfg,
		service: service,
		store:   st,
		fanout:  fanout,
	}, nil
}

// Run executes one discovery pass and closes the store on the way out.
func (s *Scout) Run(ctx context.Context) error {
	if s == nil || s.service == nil {
		return fmt.Errorf("scout is not initialized")
	}
	defer s.closeStore()

	start := time.Now()
	logger.InfoObj("discovery run started", "run_meta", map[string]any{
		"started_at": start.UTC(),
		"emitters":   s.fanout.Size(),
	})

	summary, err := s.service.Run(ctx)
	if err != nil {
		return err
	}

	logger.InfoObj("discovery run completed", "run_meta", map[string]any{
		"new_releases":     summary.Count,
		"persist_failures": len(summary.PersistFailures),
		"elapsed_ms":       time.Since(start).Milliseconds(),
	})
	return nil
}

// closeStore safely closes the release store, logging any errors encountered.
func (s *Scout) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		logger.ErrorObj("release store close failed", "error", err)
	}
}
