package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSettingMissingIsEmpty(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE key = $1`)).
		WithArgs("lidarr_url").
		WillReturnError(sql.ErrNoRows)

	value, err := s.Setting(context.Background(), "lidarr_url")
	if err != nil || value != "" {
		t.Fatalf("expected empty value, got %q (%v)", value, err)
	}
}

func TestSettingsWithPrefix(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE starts_with(key, $1)`)).
		WithArgs("lidarr_").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow("lidarr_url", "http://lidarr:8686").
			AddRow("lidarr_api_key", "secret"))

	settings, err := s.SettingsWithPrefix(context.Background(), "lidarr_")
	if err != nil {
		t.Fatalf("SettingsWithPrefix error: %v", err)
	}
	if settings["lidarr_url"] != "http://lidarr:8686" || settings["lidarr_api_key"] != "secret" {
		t.Fatalf("unexpected settings %v", settings)
	}
}

func TestUpsertSettingsRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`)).
		WithArgs("lidarr_url", "http://lidarr:8686").
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	if err := s.UpsertSettings(context.Background(), map[string]string{"lidarr_url": "http://lidarr:8686"}); err == nil {
		t.Fatalf("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsertSettingsCommits(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO settings`)).
		WithArgs("lidarr_root_folder", "/music").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.UpsertSettings(context.Background(), map[string]string{"lidarr_root_folder": "/music"}); err != nil {
		t.Fatalf("UpsertSettings error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
