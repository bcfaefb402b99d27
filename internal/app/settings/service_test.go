package settings

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"recordstore/internal/lidarr"
)

type memStore struct {
	values map[string]string
}

func (m *memStore) SettingsWithPrefix(ctx context.Context, prefix string) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) UpsertSettings(ctx context.Context, values map[string]string) error {
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

type stubLidarr struct {
	result lidarr.ConnectionResult
}

func (s stubLidarr) TestConnection(ctx context.Context) lidarr.ConnectionResult { return s.result }

func (s stubLidarr) RootFolders(ctx context.Context) ([]lidarr.RootFolder, error) {
	return []lidarr.RootFolder{{ID: 1, Path: "/music"}}, nil
}

func (s stubLidarr) QualityProfiles(ctx context.Context) ([]lidarr.QualityProfile, error) {
	return nil, errors.New("boom")
}

func (s stubLidarr) MetadataProfiles(ctx context.Context) ([]lidarr.MetadataProfile, error) {
	return []lidarr.MetadataProfile{{ID: 5, Name: "Standard"}}, nil
}

func TestGetMasksAPIKey(t *testing.T) {
	st := &memStore{values: map[string]string{
		lidarr.KeyURL:    "http://lidarr:8686",
		lidarr.KeyAPIKey: "abcdef123456",
	}}
	svc := New(st, stubLidarr{})

	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got[lidarr.KeyAPIKey] != "••••••••3456" {
		t.Fatalf("expected masked key, got %q", got[lidarr.KeyAPIKey])
	}
	if got[lidarr.KeyURL] != "http://lidarr:8686" {
		t.Fatalf("unexpected url %q", got[lidarr.KeyURL])
	}
	if st.values[lidarr.KeyAPIKey] != "abcdef123456" {
		t.Fatalf("stored key must not change")
	}
}

func TestSaveIgnoresMaskedKey(t *testing.T) {
	st := &memStore{values: map[string]string{lidarr.KeyAPIKey: "abcdef123456"}}
	svc := New(st, stubLidarr{})

	var u Update
	if err := json.Unmarshal([]byte(`{
		"url": " http://lidarr:8686 ",
		"apiKey": "••••••••3456",
		"qualityProfile": 7,
		"metadataProfile": "9"
	}`), &u); err != nil {
		t.Fatalf("decode update: %v", err)
	}

	if err := svc.Save(context.Background(), u); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if st.values[lidarr.KeyAPIKey] != "abcdef123456" {
		t.Fatalf("masked key overwrote stored key: %q", st.values[lidarr.KeyAPIKey])
	}
	if st.values[lidarr.KeyURL] != "http://lidarr:8686" {
		t.Fatalf("unexpected url %q", st.values[lidarr.KeyURL])
	}
	if st.values[lidarr.KeyQualityProfile] != "7" || st.values[lidarr.KeyMetadataProfile] != "9" {
		t.Fatalf("unexpected profiles %v", st.values)
	}
	if _, ok := st.values[lidarr.KeyRootFolder]; ok {
		t.Fatalf("absent field should not be written")
	}
}

func TestSaveReplacesKey(t *testing.T) {
	st := &memStore{values: map[string]string{lidarr.KeyAPIKey: "old"}}
	svc := New(st, stubLidarr{})

	key := "new-key"
	if err := svc.Save(context.Background(), Update{APIKey: &key}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if st.values[lidarr.KeyAPIKey] != "new-key" {
		t.Fatalf("expected key replaced, got %q", st.values[lidarr.KeyAPIKey])
	}
}

func TestTestListsOptionsIndependently(t *testing.T) {
	svc := New(&memStore{values: map[string]string{}}, stubLidarr{result: lidarr.ConnectionResult{Success: true, Version: "2.1.0"}})

	result, err := svc.Test(context.Background())
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if !result.Success || result.Version != "2.1.0" {
		t.Fatalf("unexpected result %#v", result)
	}
	if len(result.RootFolders) != 1 || len(result.MetadataProfiles) != 1 {
		t.Fatalf("expected options to be listed, got %#v", result)
	}
	if len(result.QualityProfiles) != 0 {
		t.Fatalf("expected failing list to be empty, got %v", result.QualityProfiles)
	}
}

func TestTestFailureSkipsOptions(t *testing.T) {
	svc := New(&memStore{values: map[string]string{}}, stubLidarr{result: lidarr.ConnectionResult{Error: "lidarr is not configured"}})

	result, err := svc.Test(context.Background())
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if result.Success || result.RootFolders != nil {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestValueRejectsObjects(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"id": 1}`), &v); err == nil {
		t.Fatalf("expected error for object value")
	}
}
