package acquisition

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"recordstore/internal/lidarr"
	"recordstore/internal/logging"
	"recordstore/internal/musicbrainz"
	"recordstore/internal/store"
)

// Library is the subset of the Lidarr client the reconciler drives.
type Library interface {
	FindArtist(ctx context.Context, catalogID string) (*lidarr.Artist, error)
	AddArtist(ctx context.Context, catalogID, kind string) (*lidarr.Artist, error)
}

// ReleaseGroups resolves an album's credited artist.
type ReleaseGroups interface {
	GetReleaseGroup(ctx context.Context, releaseGroupID string) (*musicbrainz.ReleaseGroup, error)
}

// Store persists acquisition outcomes.
type Store interface {
	ApprovedWithoutLidarrID(ctx context.Context) ([]store.Request, error)
	AttachLidarrID(ctx context.Context, id string, lidarrID int64) error
}

// SweepResult summarises a reconciliation pass.
type SweepResult struct {
	Attempted int `json:"attempted"`
	Acquired  int `json:"acquired"`
}

// Reconciler hands approved requests to Lidarr. Acquisition is best effort:
// failures are logged and never surface to the approver.
type Reconciler struct {
	library       Library
	releaseGroups ReleaseGroups
	store         Store
}

// New creates a Reconciler. releaseGroups may be nil, in which case album
// requests are looked up by their own id.
func New(library Library, releaseGroups ReleaseGroups, st Store) *Reconciler {
	return &Reconciler{library: library, releaseGroups: releaseGroups, store: st}
}

// Acquire makes sure Lidarr manages the artist behind req and returns the
// Lidarr id, or nil when that could not be done.
func (r *Reconciler) Acquire(ctx context.Context, req store.Request) *int64 {
	logger := logging.WithContext(ctx).With().
		Str("request_id", req.ID).
		Str("catalog_id", req.CatalogID).
		Str("kind", req.Kind).
		Logger()

	artistID := r.artistID(ctx, req)

	existing, err := r.library.FindArtist(ctx, artistID)
	switch {
	case errors.Is(err, lidarr.ErrNotConfigured):
		logger.Info().Msg("lidarr not configured, skipping acquisition")
		return nil
	case err != nil:
		logger.Warn().Err(err).Msg("could not check lidarr for existing artist")
	case existing != nil:
		id := int64(existing.ID)
		logger.Info().Int64("lidarr_id", id).Msg("artist already managed by lidarr")
		return &id
	}

	added, err := r.library.AddArtist(ctx, artistID, req.Kind)
	if err != nil {
		logger.Error().Err(err).Str("artist_id", artistID).Msg("failed to add artist to lidarr")
		return nil
	}
	if added == nil {
		return nil
	}

	id := int64(added.ID)
	return &id
}

// artistID maps album requests to the credited artist, since Lidarr only
// manages artists. Any lookup failure falls back to the request's own id.
func (r *Reconciler) artistID(ctx context.Context, req store.Request) string {
	if req.Kind != store.KindAlbum || r.releaseGroups == nil {
		return req.CatalogID
	}

	rg, err := r.releaseGroups.GetReleaseGroup(ctx, req.CatalogID)
	if err != nil {
		log.Warn().Err(err).Str("catalog_id", req.CatalogID).Msg("could not resolve album artist")
		return req.CatalogID
	}
	credit, ok := rg.PrimaryArtist()
	if !ok || credit.ID == "" {
		return req.CatalogID
	}
	return credit.ID
}

// Sweep retries acquisition for every approved request that has no Lidarr
// id yet. It runs synchronously.
func (r *Reconciler) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	pending, err := r.store.ApprovedWithoutLidarrID(ctx)
	if err != nil {
		return result, fmt.Errorf("list unacquired requests: %w", err)
	}

	for _, req := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Attempted++
		id := r.Acquire(ctx, req)
		if id == nil {
			continue
		}
		if err := r.store.AttachLidarrID(ctx, req.ID, *id); err != nil {
			log.Error().Err(err).Str("request_id", req.ID).Msg("failed to record lidarr id")
			continue
		}
		result.Acquired++
	}

	log.Info().Int("attempted", result.Attempted).Int("acquired", result.Acquired).Msg("reconciliation sweep finished")
	return result, nil
}
