package app

import (
	"context"
	"os"

	"github.com/vladicamp/campvote/internal/logger"
	"github.com/vladicamp/campvote/internal/repository"
	"github.com/vladicamp/campvote/pkg/supastore"
)

// Environment variables for the remote row store. A .env file loaded at
// startup can provide these too.
const (
	EnvStoreURL = "SUPABASE_URL"
	EnvStoreKey = "SUPABASE_ANON_KEY"
)

// resolveStoreConfig fills in store credentials when the client arrives
// unconfigured. Precedence: whatever the caller already configured
// (flags), then environment, then the stored admin override. A store
// that stays unconfigured is fine; voting still works without it.
func resolveStoreConfig(log logger.Logger, repo *repository.Repository, store supastore.Client) {
	if store.Configured() {
		return
	}

	if url, key := os.Getenv(EnvStoreURL), os.Getenv(EnvStoreKey); url != "" && key != "" {
		store.SetConfig(url, key)
		log.Info("Remote store configured from environment")
		return
	}

	ctx := context.Background()
	url, err := repo.GetSetting(ctx, "store_url")
	if err != nil {
		if err != repository.ErrNotFound {
			log.Warn("Failed to read store override", "error", err)
		}
		log.Info("Remote store not configured; submissions stay local-only")
		return
	}
	key, err := repo.GetSetting(ctx, "store_key")
	if err != nil {
		if err != repository.ErrNotFound {
			log.Warn("Failed to read store override", "error", err)
		}
		log.Info("Remote store not configured; submissions stay local-only")
		return
	}

	store.SetConfig(url, key)
	log.Info("Remote store configured from stored override")
}
