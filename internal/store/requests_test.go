package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var requestRowColumns = []string{
	"id", "user_id", "catalog_id", "kind", "title", "artist_name", "cover_url",
	"status", "admin_note", "lidarr_id", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreateRequestSuccess(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()
	artist := "Boards of Canada"

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO requests AS r (id, user_id, catalog_id, kind, title, artist_name, cover_url, status)`)).
		WithArgs(sqlmock.AnyArg(), int64(7), "rg-1", KindAlbum, "Geogaddi", "Boards of Canada", nil).
		WillReturnRows(sqlmock.NewRows(requestRowColumns).
			AddRow("11111111-1111-1111-1111-111111111111", int64(7), "rg-1", KindAlbum, "Geogaddi", "Boards of Canada", nil,
				StatusPending, nil, nil, now, now))

	req, err := s.CreateRequest(context.Background(), NewRequest{
		UserID:     7,
		CatalogID:  " rg-1 ",
		Kind:       KindAlbum,
		Title:      "Geogaddi ",
		ArtistName: &artist,
	})
	if err != nil {
		t.Fatalf("CreateRequest error: %v", err)
	}
	if req.Status != StatusPending || req.ArtistName == nil || *req.ArtistName != artist {
		t.Fatalf("unexpected request %#v", req)
	}
	if req.CoverURL != nil || req.LidarrID != nil {
		t.Fatalf("expected nil optional fields, got %#v", req)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateRequestDuplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO requests AS r`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := s.CreateRequest(context.Background(), NewRequest{UserID: 7, CatalogID: "rg-1", Kind: KindAlbum, Title: "Geogaddi"})
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindRequestNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE r.catalog_id = $1 AND r.user_id = $2`)).
		WithArgs("rg-1", int64(7)).
		WillReturnError(sql.ErrNoRows)

	if _, err := s.FindRequest(context.Background(), "rg-1", 7); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestListRequestsWithFilters(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN users u ON u.id = r.user_id WHERE r.user_id = $1 AND r.status = $2 ORDER BY r.created_at DESC`)).
		WithArgs(int64(7), StatusApproved).
		WillReturnRows(sqlmock.NewRows(append(requestRowColumns, "username")).
			AddRow("id-1", int64(7), "a-1", KindArtist, "Boards of Canada", nil, nil,
				StatusApproved, "queued", int64(42), now, now, "alice"))

	requests, err := s.ListRequests(context.Background(), RequestFilter{UserID: 7, Status: StatusApproved})
	if err != nil {
		t.Fatalf("ListRequests error: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	r := requests[0]
	if r.Username != "alice" || r.LidarrID == nil || *r.LidarrID != 42 || r.AdminNote == nil || *r.AdminNote != "queued" {
		t.Fatalf("unexpected request %#v", r)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListRequestsEmptyIsNotNil(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY r.created_at DESC`)).
		WillReturnRows(sqlmock.NewRows(append(requestRowColumns, "username")))

	requests, err := s.ListRequests(context.Background(), RequestFilter{})
	if err != nil {
		t.Fatalf("ListRequests error: %v", err)
	}
	if requests == nil || len(requests) != 0 {
		t.Fatalf("expected empty slice, got %#v", requests)
	}
}

func TestUpdateRequestStatusKeepsNoteWhenNil(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SET status = $2, admin_note = COALESCE($3, r.admin_note), updated_at = NOW()`)).
		WithArgs("id-1", StatusRejected, nil).
		WillReturnRows(sqlmock.NewRows(requestRowColumns).
			AddRow("id-1", int64(7), "a-1", KindArtist, "Boards of Canada", nil, nil,
				StatusRejected, "old note", nil, now, now))

	req, err := s.UpdateRequestStatus(context.Background(), "id-1", StatusRejected, nil)
	if err != nil {
		t.Fatalf("UpdateRequestStatus error: %v", err)
	}
	if req.Status != StatusRejected || req.AdminNote == nil || *req.AdminNote != "old note" {
		t.Fatalf("unexpected request %#v", req)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE requests AS r`)).
		WithArgs("missing", StatusApproved, "ok").
		WillReturnError(sql.ErrNoRows)

	note := "ok"
	if _, err := s.UpdateRequestStatus(context.Background(), "missing", StatusApproved, &note); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttachLidarrIDAndDelete(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`SET lidarr_id = $2, updated_at = NOW()`)).
		WithArgs("id-1", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM requests`)).
		WithArgs("id-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.AttachLidarrID(context.Background(), "id-1", 42); err != nil {
		t.Fatalf("AttachLidarrID error: %v", err)
	}
	if err := s.DeleteRequest(context.Background(), "id-2"); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApprovedWithoutLidarrID(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE r.status = 'APPROVED' AND r.lidarr_id IS NULL`)).
		WillReturnRows(sqlmock.NewRows(requestRowColumns).
			AddRow("id-1", int64(7), "a-1", KindArtist, "Boards of Canada", nil, nil, StatusApproved, nil, nil, now, now).
			AddRow("id-2", int64(8), "rg-1", KindAlbum, "Geogaddi", "Boards of Canada", nil, StatusApproved, nil, nil, now, now))

	requests, err := s.ApprovedWithoutLidarrID(context.Background())
	if err != nil {
		t.Fatalf("ApprovedWithoutLidarrID error: %v", err)
	}
	if len(requests) != 2 || requests[1].Kind != KindAlbum {
		t.Fatalf("unexpected requests %#v", requests)
	}
}
