package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"recordstore/internal/store"
)

// reportAccounts logs whether the next registration will become the admin.
func reportAccounts(ctx context.Context, dataStore *store.Store) {
	n, err := dataStore.CountUsers(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("count users")
		return
	}
	if n == 0 {
		log.Info().Msg("no accounts yet; the first user to register becomes admin")
		return
	}
	log.Info().Int("users", n).Msg("accounts loaded")
}
