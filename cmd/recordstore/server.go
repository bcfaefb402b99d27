package main

import (
	"net/http"

	"recordstore/internal/acquisition"
	"recordstore/internal/app/catalog"
	"recordstore/internal/app/requests"
	"recordstore/internal/app/settings"
	"recordstore/internal/app/users"
	"recordstore/internal/auth"
	"recordstore/internal/config"
	"recordstore/internal/coverart"
	"recordstore/internal/http/middleware"
	"recordstore/internal/httpapi"
	"recordstore/internal/lidarr"
	"recordstore/internal/musicbrainz"
	"recordstore/internal/ratelimit"
	"recordstore/internal/store"
)

func newHTTPHandler(cfg *config.Config, dataStore *store.Store) http.Handler {
	outbound := &http.Client{Timeout: cfg.Server.HTTPTimeout}

	// Every catalog call in the process shares one limiter.
	limiter := ratelimit.NewLimiter(cfg.MusicBrainz.MinInterval)
	fetcher := ratelimit.NewFetcher("musicbrainz", cfg.MusicBrainz.UserAgent, limiter, outbound)
	mb := musicbrainz.New(cfg.MusicBrainz.BaseURL, fetcher)

	covers := coverart.New(coverart.Config{
		BaseURL:     cfg.CoverArt.BaseURL,
		UserAgent:   cfg.MusicBrainz.UserAgent,
		Concurrency: cfg.CoverArt.Concurrency,
		HTTPClient:  outbound,
	})

	lidarrClient := lidarr.New(dataStore, outbound)
	reconciler := acquisition.New(lidarrClient, mb, dataStore)

	sessions := auth.NewManager(cfg.Security.JWTSecret, cfg.Security.SessionTTL)

	userSvc := users.New(dataStore, sessions)
	catalogSvc := catalog.New(mb, covers, cfg.CoverArt.Concurrency)
	requestSvc := requests.New(dataStore, reconciler)
	settingsSvc := settings.New(dataStore, lidarrClient)

	api := httpapi.New(userSvc, catalogSvc, requestSvc, settingsSvc, sessions).Routes()

	return middleware.Chain(api,
		middleware.Recovery(),
		middleware.RequestLogging(),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
}
