package run

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/thomas-vilte/debtguard/internal/ai"
	"github.com/thomas-vilte/debtguard/internal/cache"
	cfg "github.com/thomas-vilte/debtguard/internal/config"
	domainErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/git"
	"github.com/thomas-vilte/debtguard/internal/logger"
	"github.com/thomas-vilte/debtguard/internal/providers"
	"github.com/thomas-vilte/debtguard/internal/report"
	"github.com/thomas-vilte/debtguard/internal/services"
	"github.com/thomas-vilte/debtguard/internal/snippet"
)

// NewScannerProvider wires the real repository, model and report store for
// a scan request. The base configuration is never modified.
func NewScannerProvider(base *cfg.Config) ScannerProvider {
	return func(ctx context.Context, req ScanRequest) (Scanner, func(), error) {
		log := logger.FromContext(ctx)

		conf, err := applyOverrides(base, req)
		if err != nil {
			return nil, nil, err
		}

		// The model must be usable before anything is cloned.
		assessor, err := providers.NewSnippetAssessor(ctx, conf)
		if err != nil {
			return nil, nil, err
		}
		if (conf.Cache.Enabled || req.UseCache) && conf.CacheDir() != "" {
			assessmentCache, err := cache.NewCache(conf.CacheDir(), conf.CacheTTL())
			if err != nil {
				log.Warn("assessment cache disabled", "error", err)
			} else {
				assessor = ai.NewCachedAssessor(assessor, assessmentCache, string(conf.ActiveModel()))
			}
		}

		repo, err := git.Open(ctx, req.Address, git.OpenOptions{
			Rev:      req.Rev,
			Since:    req.Since,
			Resolver: providers.NewRepositoryResolver(),
		})
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := repo.Close(); err != nil {
				log.Warn("failed to remove temporary clone", "error", err)
			}
		}

		storePath := filepath.Join(conf.OutputDir, report.FileName(req.Address))
		log.Debug("report store", "path", storePath)

		scanner := services.NewScanService(
			services.WithScanWalker(repo),
			services.WithScanExtractor(snippet.NewExtractor(conf.Scan)),
			services.WithScanAssessor(assessor),
			services.WithScanStore(report.NewStore(storePath)),
			services.WithScanConfig(conf.Scan),
		)
		return scanner, cleanup, nil
	}
}

func applyOverrides(base *cfg.Config, req ScanRequest) (*cfg.Config, error) {
	conf := *base
	conf.AIConfig.Models = make(map[cfg.AI]cfg.Model, len(base.AIConfig.Models))
	for k, v := range base.AIConfig.Models {
		conf.AIConfig.Models[k] = v
	}

	if req.OutputDir != "" {
		conf.OutputDir = req.OutputDir
	}
	if p := strings.TrimSpace(req.Provider); p != "" {
		active := cfg.AI(strings.ToLower(p))
		if !cfg.IsSupportedAI(active) {
			return nil, domainErrors.ErrProviderNotSupported.WithContext("provider", p)
		}
		conf.AIConfig.ActiveAI = active
	}
	if m := strings.TrimSpace(req.Model); m != "" {
		conf.AIConfig.Models[conf.AIConfig.ActiveAI] = cfg.Model(m)
	}

	if err := conf.Validate(); err != nil {
		return nil, domainErrors.ErrInvalidConfig.WithError(err)
	}
	return &conf, nil
}
