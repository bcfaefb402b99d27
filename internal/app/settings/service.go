package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"recordstore/internal/lidarr"
)

const (
	keyPrefix  = "lidarr_"
	maskPrefix = "••••"
	mask       = "••••••••"
)

// Store describes the persistence operations required by the settings service.
type Store interface {
	SettingsWithPrefix(ctx context.Context, prefix string) (map[string]string, error)
	UpsertSettings(ctx context.Context, values map[string]string) error
}

// Lidarr is the subset of the Lidarr client used to test a configuration.
type Lidarr interface {
	TestConnection(ctx context.Context) lidarr.ConnectionResult
	RootFolders(ctx context.Context) ([]lidarr.RootFolder, error)
	QualityProfiles(ctx context.Context) ([]lidarr.QualityProfile, error)
	MetadataProfiles(ctx context.Context) ([]lidarr.MetadataProfile, error)
}

// Value is a setting sent as either a JSON string or number.
type Value string

// UnmarshalJSON accepts "7" and 7 alike.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("setting must be a string or number: %w", err)
	}
	*v = Value(n.String())
	return nil
}

// Update carries the fields an admin changed. Nil fields are left alone.
type Update struct {
	URL             *string `json:"url"`
	APIKey          *string `json:"apiKey"`
	RootFolder      *string `json:"rootFolder"`
	QualityProfile  *Value  `json:"qualityProfile"`
	MetadataProfile *Value  `json:"metadataProfile"`
}

// TestResult is a connection probe plus, on success, the available options.
type TestResult struct {
	lidarr.ConnectionResult
	RootFolders      []lidarr.RootFolder      `json:"rootFolders,omitempty"`
	QualityProfiles  []lidarr.QualityProfile  `json:"qualityProfiles,omitempty"`
	MetadataProfiles []lidarr.MetadataProfile `json:"metadataProfiles,omitempty"`
}

// Service manages the Lidarr integration settings.
type Service interface {
	Get(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, u Update) error
	Test(ctx context.Context) (TestResult, error)
}

type service struct {
	store  Store
	lidarr Lidarr
}

// New wires a Service.
func New(store Store, client Lidarr) Service {
	return &service{store: store, lidarr: client}
}

// Get returns every lidarr_* setting with the API key masked to its last
// four characters.
func (s *service) Get(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values, err := s.store.SettingsWithPrefix(ctx, keyPrefix)
	if err != nil {
		return nil, err
	}
	if key := values[lidarr.KeyAPIKey]; key != "" {
		values[lidarr.KeyAPIKey] = maskKey(key)
	}
	return values, nil
}

func (s *service) Save(ctx context.Context, u Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	values := make(map[string]string)
	if u.URL != nil {
		values[lidarr.KeyURL] = strings.TrimSpace(*u.URL)
	}
	if u.APIKey != nil && !strings.HasPrefix(*u.APIKey, maskPrefix) {
		values[lidarr.KeyAPIKey] = strings.TrimSpace(*u.APIKey)
	}
	if u.RootFolder != nil {
		values[lidarr.KeyRootFolder] = *u.RootFolder
	}
	if u.QualityProfile != nil {
		values[lidarr.KeyQualityProfile] = string(*u.QualityProfile)
	}
	if u.MetadataProfile != nil {
		values[lidarr.KeyMetadataProfile] = string(*u.MetadataProfile)
	}

	if err := s.store.UpsertSettings(ctx, values); err != nil {
		return err
	}
	log.Info().Int("fields", len(values)).Msg("lidarr settings saved")
	return nil
}

// Test probes the saved configuration. On success each option list is
// fetched independently; a failing list is reported empty.
func (s *service) Test(ctx context.Context) (TestResult, error) {
	if err := ctx.Err(); err != nil {
		return TestResult{}, err
	}

	result := TestResult{ConnectionResult: s.lidarr.TestConnection(ctx)}
	if !result.Success {
		return result, nil
	}

	var g errgroup.Group
	g.Go(func() error {
		folders, err := s.lidarr.RootFolders(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("list root folders")
		}
		result.RootFolders = folders
		return nil
	})
	g.Go(func() error {
		profiles, err := s.lidarr.QualityProfiles(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("list quality profiles")
		}
		result.QualityProfiles = profiles
		return nil
	})
	g.Go(func() error {
		profiles, err := s.lidarr.MetadataProfiles(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("list metadata profiles")
		}
		result.MetadataProfiles = profiles
		return nil
	})
	_ = g.Wait()

	return result, nil
}

func maskKey(key string) string {
	runes := []rune(key)
	if len(runes) > 4 {
		runes = runes[len(runes)-4:]
	}
	return mask + string(runes)
}
