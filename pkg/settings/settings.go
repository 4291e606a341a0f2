package settings

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/dmitrymomot/mailmerge/pkg/kvstore"
	"github.com/dmitrymomot/mailmerge/pkg/merge"
)

// Storage keys.
const (
	KeyTemplates = "emailTemplates"
	KeyConfig    = "emailConfig"
	KeySchedule  = "scheduledEmailConfig"
)

// Templates maps a template name to its message body.
type Templates map[string]string

// Settings reads and writes merge settings.
type Settings struct {
	store kvstore.Store
}

// New creates Settings backed by store.
func New(store kvstore.Store) *Settings {
	return &Settings{store: store}
}

// SaveConfig stores cfg as the last-used configuration.
func (s *Settings) SaveConfig(ctx context.Context, cfg merge.Config) error {
	return s.put(ctx, KeyConfig, cfg)
}

// LoadConfig returns the last-used configuration, or ErrNotFound.
func (s *Settings) LoadConfig(ctx context.Context) (merge.Config, error) {
	var cfg merge.Config
	err := s.get(ctx, KeyConfig, &cfg)
	return cfg, err
}

// SaveSnapshot stores the configuration a scheduled run will use.
func (s *Settings) SaveSnapshot(ctx context.Context, cfg merge.Config) error {
	return s.put(ctx, KeySchedule, cfg)
}

// LoadSnapshot returns the scheduled configuration, or ErrNotFound.
func (s *Settings) LoadSnapshot(ctx context.Context) (merge.Config, error) {
	var cfg merge.Config
	err := s.get(ctx, KeySchedule, &cfg)
	return cfg, err
}

// DeleteSnapshot removes the scheduled configuration. Absent is not an error.
func (s *Settings) DeleteSnapshot(ctx context.Context) error {
	if err := s.store.Delete(ctx, KeySchedule); err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

// Templates returns every saved template. An empty store yields an empty map.
func (s *Settings) Templates(ctx context.Context) (Templates, error) {
	t := Templates{}
	if err := s.get(ctx, KeyTemplates, &t); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return t, nil
}

// SaveTemplate adds or replaces the template called name.
func (s *Settings) SaveTemplate(ctx context.Context, name, body string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	t, err := s.Templates(ctx)
	if err != nil {
		return err
	}
	t[name] = body
	return s.put(ctx, KeyTemplates, t)
}

// DeleteTemplate removes the template called name. Absent is not an error.
func (s *Settings) DeleteTemplate(ctx context.Context, name string) error {
	t, err := s.Templates(ctx)
	if err != nil {
		return err
	}
	delete(t, strings.TrimSpace(name))
	return s.put(ctx, KeyTemplates, t)
}

func (s *Settings) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

func (s *Settings) get(ctx context.Context, key string, v any) error {
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Join(ErrCorruptValue, err)
	}
	return nil
}
