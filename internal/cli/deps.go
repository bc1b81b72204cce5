package cli

import (
	"context"
	"fmt"

	"github.com/dshills/snapreview/internal/cache"
	"github.com/dshills/snapreview/internal/config"
	"github.com/dshills/snapreview/internal/credential"
	"github.com/dshills/snapreview/internal/kv"
	"github.com/dshills/snapreview/internal/providers"
	"github.com/dshills/snapreview/internal/review"
)

// newReviewer builds providers; tests replace it.
var newReviewer review.ReviewerFactory = providers.New

// Shared flags
var (
	flagProvider string
	flagModel    string
)

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	return m
}

func loadConfig(ctx context.Context) (config.Config, error) {
	return config.LoadWith(ctx, lookuper, buildOverrides())
}

// openStore connects the configured key-value backend. The returned func
// releases it.
func openStore(ctx context.Context, cfg config.Config) (kv.Store, func(), error) {
	switch cfg.Store.Backend {
	case "memory":
		return kv.NewMemory(), func() {}, nil
	case "nats":
		n, err := kv.DialNATS(ctx, cfg.Store.NATSURL, cfg.Store.Bucket)
		if err != nil {
			return nil, nil, err
		}
		return n, func() { _ = n.Close() }, nil
	default:
		dir := cfg.Store.Dir
		if dir == "" {
			d, err := kv.DefaultDir()
			if err != nil {
				return nil, nil, err
			}
			dir = d
		}
		f, err := kv.NewFile(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening store: %w", err)
		}
		return f, func() {}, nil
	}
}

func newResolver(store kv.Store, cfg config.Config) *credential.Resolver {
	return credential.ForProvider(store, cfg.Provider, lookuper)
}

func openCache(cfg config.Config) (*cache.Cache, error) {
	c, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds, cfg.Cache.MemoryBytes)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return c, nil
}

func effectiveModel(cfg config.Config) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	if info, ok := providers.Lookup(cfg.Provider); ok {
		return info.DefaultModel
	}
	return ""
}
