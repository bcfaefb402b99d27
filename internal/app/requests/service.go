package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"recordstore/internal/acquisition"
	"recordstore/internal/auth"
	"recordstore/internal/store"
)

// ErrInvalidRequest wraps validation failures.
var ErrInvalidRequest = errors.New("invalid request")

// Store describes the persistence operations required by the request service.
type Store interface {
	CreateRequest(ctx context.Context, nr store.NewRequest) (store.Request, error)
	FindRequest(ctx context.Context, catalogID string, userID int64) (store.Request, error)
	ListRequests(ctx context.Context, filter store.RequestFilter) ([]store.Request, error)
	UpdateRequestStatus(ctx context.Context, id, status string, note *string) (store.Request, error)
	AttachLidarrID(ctx context.Context, id string, lidarrID int64) error
	DeleteRequest(ctx context.Context, id string) error
}

// Acquirer forwards approved requests to the library manager.
type Acquirer interface {
	Acquire(ctx context.Context, req store.Request) *int64
	Sweep(ctx context.Context) (acquisition.SweepResult, error)
}

// NewRequest is what a user submits.
type NewRequest struct {
	CatalogID  string  `json:"mbid"`
	Kind       string  `json:"type"`
	Title      string  `json:"title"`
	ArtistName *string `json:"artistName"`
	CoverURL   *string `json:"coverUrl"`
}

// Service exposes request workflows.
type Service interface {
	Create(ctx context.Context, session auth.Session, nr NewRequest) (store.Request, error)
	ListByUser(ctx context.Context, session auth.Session, status string) ([]store.Request, error)
	ListAll(ctx context.Context, status string) ([]store.Request, error)
	UpdateStatus(ctx context.Context, id, status string, note *string) (store.Request, error)
	Delete(ctx context.Context, id string) error
	Reconcile(ctx context.Context) (acquisition.SweepResult, error)
}

type service struct {
	store    Store
	acquirer Acquirer
}

// New wires a Service backed by the provided Store and Acquirer.
func New(store Store, acquirer Acquirer) Service {
	return &service{store: store, acquirer: acquirer}
}

func (s *service) Create(ctx context.Context, session auth.Session, nr NewRequest) (store.Request, error) {
	if err := ctx.Err(); err != nil {
		return store.Request{}, err
	}

	nr.CatalogID = strings.TrimSpace(nr.CatalogID)
	nr.Title = strings.TrimSpace(nr.Title)
	if nr.CatalogID == "" || nr.Title == "" {
		return store.Request{}, fmt.Errorf("%w: mbid and title are required", ErrInvalidRequest)
	}
	if nr.Kind != store.KindArtist && nr.Kind != store.KindAlbum {
		return store.Request{}, fmt.Errorf("%w: type must be ARTIST or ALBUM", ErrInvalidRequest)
	}

	_, err := s.store.FindRequest(ctx, nr.CatalogID, session.UserID)
	switch {
	case err == nil:
		return store.Request{}, store.ErrDuplicateRequest
	case !errors.Is(err, store.ErrRequestNotFound):
		return store.Request{}, err
	}

	req, err := s.store.CreateRequest(ctx, store.NewRequest{
		UserID:     session.UserID,
		CatalogID:  nr.CatalogID,
		Kind:       nr.Kind,
		Title:      nr.Title,
		ArtistName: nr.ArtistName,
		CoverURL:   nr.CoverURL,
	})
	if err != nil {
		return store.Request{}, err
	}

	log.Info().Str("request_id", req.ID).Int64("user_id", session.UserID).Str("catalog_id", req.CatalogID).Msg("request created")
	return req, nil
}

func (s *service) ListByUser(ctx context.Context, session auth.Session, status string) ([]store.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateFilter(status); err != nil {
		return nil, err
	}
	return s.store.ListRequests(ctx, store.RequestFilter{UserID: session.UserID, Status: status})
}

func (s *service) ListAll(ctx context.Context, status string) ([]store.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateFilter(status); err != nil {
		return nil, err
	}
	return s.store.ListRequests(ctx, store.RequestFilter{Status: status})
}

// UpdateStatus applies an admin decision. Approval triggers exactly one
// acquisition attempt; its outcome never changes the stored status.
func (s *service) UpdateStatus(ctx context.Context, id, status string, note *string) (store.Request, error) {
	if err := ctx.Err(); err != nil {
		return store.Request{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return store.Request{}, store.ErrRequestNotFound
	}
	if status == store.StatusPending || !store.ValidStatus(status) {
		return store.Request{}, fmt.Errorf("%w: invalid status %q", ErrInvalidRequest, status)
	}

	req, err := s.store.UpdateRequestStatus(ctx, id, status, note)
	if err != nil {
		return store.Request{}, err
	}

	if status != store.StatusApproved {
		return req, nil
	}

	lidarrID := s.acquirer.Acquire(ctx, req)
	if lidarrID == nil {
		return req, nil
	}
	if err := s.store.AttachLidarrID(ctx, req.ID, *lidarrID); err != nil {
		log.Error().Err(err).Str("request_id", req.ID).Msg("failed to record lidarr id")
		return req, nil
	}
	req.LidarrID = lidarrID
	return req, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return store.ErrRequestNotFound
	}
	return s.store.DeleteRequest(ctx, id)
}

func (s *service) Reconcile(ctx context.Context) (acquisition.SweepResult, error) {
	if err := ctx.Err(); err != nil {
		return acquisition.SweepResult{}, err
	}
	return s.acquirer.Sweep(ctx)
}

func validateFilter(status string) error {
	if status != "" && !store.ValidStatus(status) {
		return fmt.Errorf("%w: invalid status %q", ErrInvalidRequest, status)
	}
	return nil
}
