package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Request kinds.
const (
	KindArtist = "ARTIST"
	KindAlbum  = "ALBUM"
)

// Request statuses.
const (
	StatusPending    = "PENDING"
	StatusApproved   = "APPROVED"
	StatusRejected   = "REJECTED"
	StatusProcessing = "PROCESSING"
	StatusAvailable  = "AVAILABLE"
)

// ValidStatus reports whether status is a known request status.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected, StatusProcessing, StatusAvailable:
		return true
	}
	return false
}

// Request is a user's ask to acquire a catalog artist or album.
type Request struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"userId"`
	Username   string    `json:"username,omitempty"`
	CatalogID  string    `json:"mbid"`
	Kind       string    `json:"type"`
	Title      string    `json:"title"`
	ArtistName *string   `json:"artistName,omitempty"`
	CoverURL   *string   `json:"coverUrl,omitempty"`
	Status     string    `json:"status"`
	AdminNote  *string   `json:"adminNote,omitempty"`
	LidarrID   *int64    `json:"lidarrId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewRequest holds the fields a user supplies.
type NewRequest struct {
	UserID     int64
	CatalogID  string
	Kind       string
	Title      string
	ArtistName *string
	CoverURL   *string
}

// RequestFilter narrows ListRequests. Zero values match everything.
type RequestFilter struct {
	UserID int64
	Status string
}

const requestColumns = `r.id, r.user_id, r.catalog_id, r.kind, r.title, r.artist_name, r.cover_url,
		r.status, r.admin_note, r.lidarr_id, r.created_at, r.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner, extra ...any) (Request, error) {
	var (
		r          Request
		artistName sql.NullString
		coverURL   sql.NullString
		adminNote  sql.NullString
		lidarrID   sql.NullInt64
	)
	dest := []any{
		&r.ID, &r.UserID, &r.CatalogID, &r.Kind, &r.Title, &artistName, &coverURL,
		&r.Status, &adminNote, &lidarrID, &r.CreatedAt, &r.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return Request{}, err
	}

	r.ArtistName = stringPtr(artistName)
	r.CoverURL = stringPtr(coverURL)
	r.AdminNote = stringPtr(adminNote)
	if lidarrID.Valid {
		id := lidarrID.Int64
		r.LidarrID = &id
	}
	return r, nil
}

// CreateRequest inserts a PENDING request. A second request for the same
// catalog item by the same user fails with ErrDuplicateRequest.
func (s *Store) CreateRequest(ctx context.Context, nr NewRequest) (Request, error) {
	nr.CatalogID = strings.TrimSpace(nr.CatalogID)
	nr.Title = strings.TrimSpace(nr.Title)

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO requests AS r (id, user_id, catalog_id, kind, title, artist_name, cover_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'PENDING')
		RETURNING `+requestColumns,
		uuid.NewString(), nr.UserID, nr.CatalogID, nr.Kind, nr.Title, nullString(nr.ArtistName), nullString(nr.CoverURL))

	req, err := scanRequest(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Request{}, ErrDuplicateRequest
		}
		return Request{}, fmt.Errorf("insert request: %w", err)
	}
	return req, nil
}

// FindRequest loads the request a user made for a catalog item.
func (s *Store) FindRequest(ctx context.Context, catalogID string, userID int64) (Request, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+`
		FROM requests r
		WHERE r.catalog_id = $1 AND r.user_id = $2
	`, catalogID, userID)

	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Request{}, ErrRequestNotFound
		}
		return Request{}, fmt.Errorf("select request: %w", err)
	}
	return req, nil
}

// ListRequests returns matching requests, newest first, with the requester's
// username.
func (s *Store) ListRequests(ctx context.Context, filter RequestFilter) ([]Request, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		clauses = append(clauses, fmt.Sprintf("r.user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("r.status = $%d", len(args)))
	}

	query := `
		SELECT ` + requestColumns + `, u.username
		FROM requests r
		JOIN users u ON u.id = r.user_id`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY r.created_at DESC"

	return s.queryRequests(ctx, query, true, args...)
}

// ApprovedWithoutLidarrID returns approved requests whose acquisition has
// not succeeded yet, oldest first.
func (s *Store) ApprovedWithoutLidarrID(ctx context.Context) ([]Request, error) {
	return s.queryRequests(ctx, `
		SELECT `+requestColumns+`
		FROM requests r
		WHERE r.status = 'APPROVED' AND r.lidarr_id IS NULL
		ORDER BY r.created_at ASC
	`, false)
}

func (s *Store) queryRequests(ctx context.Context, query string, withUsername bool, args ...any) ([]Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select requests: %w", err)
	}
	defer rows.Close()

	requests := []Request{}
	for rows.Next() {
		var (
			req      Request
			username string
		)
		if withUsername {
			req, err = scanRequest(rows, &username)
			req.Username = username
		} else {
			req, err = scanRequest(rows)
		}
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return requests, nil
}

// UpdateRequestStatus sets the status and, when note is non-nil, the admin
// note.
func (s *Store) UpdateRequestStatus(ctx context.Context, id, status string, note *string) (Request, error) {
	var noteArg sql.NullString
	if note != nil {
		noteArg = sql.NullString{String: *note, Valid: true}
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE requests AS r
		SET status = $2, admin_note = COALESCE($3, r.admin_note), updated_at = NOW()
		WHERE r.id = $1
		RETURNING `+requestColumns,
		id, status, noteArg)

	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Request{}, ErrRequestNotFound
		}
		return Request{}, fmt.Errorf("update request: %w", err)
	}
	return req, nil
}

// AttachLidarrID records the Lidarr entry created for a request.
func (s *Store) AttachLidarrID(ctx context.Context, id string, lidarrID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE requests
		SET lidarr_id = $2, updated_at = NOW()
		WHERE id = $1
	`, id, lidarrID)
	if err != nil {
		return fmt.Errorf("attach lidarr id: %w", err)
	}
	return requireAffected(res)
}

// DeleteRequest removes a request.
func (s *Store) DeleteRequest(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM requests
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrRequestNotFound
	}
	return nil
}
