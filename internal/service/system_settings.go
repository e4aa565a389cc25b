package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"

	"investjournal/internal/models"
	"investjournal/internal/repository"
)

const (
	FeatureAIReview  = "feature.ai_review"
	FeatureListCache = "feature.list_cache"
	FeatureCacheWarm = "feature.cache_warm"
)

func DefaultFeatureSwitches() map[string]bool {
	return map[string]bool{
		FeatureAIReview:  true,
		FeatureListCache: true,
		FeatureCacheWarm: true,
	}
}

var featureDescriptions = map[string]string{
	FeatureAIReview:  "request reviews from the AI provider",
	FeatureListCache: "cache journal listings",
	FeatureCacheWarm: "refresh cached listings on schedule",
}

func featureDescription(key string) string {
	if d, ok := featureDescriptions[key]; ok {
		return d
	}
	return "feature switch"
}

type SystemSettingsService struct {
	Repo repository.SettingsRepository
}

type FeatureSwitch struct {
	Key         string    `json:"key"`
	Enabled     bool      `json:"enabled"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EnsureDefaultSwitches inserts missing switches. Existing values are left as
// operators set them.
func (s *SystemSettingsService) EnsureDefaultSwitches(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	now := time.Now().UTC()
	for key, enabled := range DefaultFeatureSwitches() {
		existing, err := s.Repo.GetSystemSettingByKey(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		raw, _ := json.Marshal(enabled)
		item := &models.SystemSetting{
			Key:         key,
			Value:       datatypes.JSON(raw),
			Description: featureDescription(key),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.Repo.UpsertSystemSetting(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *SystemSettingsService) IsEnabled(ctx context.Context, key string, fallback bool) bool {
	if s == nil || s.Repo == nil {
		return fallback
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	item, err := s.Repo.GetSystemSettingByKey(ctx, key)
	if err != nil || item == nil || len(item.Value) == 0 {
		return fallback
	}
	var enabled bool
	if err := json.Unmarshal(item.Value, &enabled); err != nil {
		return fallback
	}
	return enabled
}

func (s *SystemSettingsService) SetEnabled(ctx context.Context, key string, enabled bool) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	existing, err := s.Repo.GetSystemSettingByKey(ctx, key)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	raw, _ := json.Marshal(enabled)
	item := &models.SystemSetting{
		Key:         key,
		Value:       datatypes.JSON(raw),
		Description: featureDescription(key),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if existing != nil {
		item.Description = existing.Description
		item.CreatedAt = existing.CreatedAt
	}
	return s.Repo.UpsertSystemSetting(ctx, item)
}

// ListSwitches returns every feature.* setting; unparsable values are reported
// with their default.
func (s *SystemSettingsService) ListSwitches(ctx context.Context) ([]FeatureSwitch, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	prefix := "feature."
	items, err := s.Repo.ListSystemSettings(ctx, repository.ListSystemSettingsParams{
		Prefix:  &prefix,
		OrderBy: "key",
		Asc:     boolPtr(true),
	})
	if err != nil {
		return nil, err
	}
	defaults := DefaultFeatureSwitches()
	out := make([]FeatureSwitch, 0, len(items))
	for _, item := range items {
		enabled := defaults[item.Key]
		_ = json.Unmarshal(item.Value, &enabled)
		out = append(out, FeatureSwitch{
			Key:         item.Key,
			Enabled:     enabled,
			Description: item.Description,
			UpdatedAt:   item.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func IsKnownFeature(key string) bool {
	_, ok := DefaultFeatureSwitches()[strings.TrimSpace(key)]
	return ok
}
