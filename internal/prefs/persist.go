package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/matheuskafuri/factlet/internal/corpus"
)

// KV is the string-keyed store every surface reads and writes. Reads must
// tolerate keys written, or missing, by another surface at any time.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Keys of the persisted preference namespace. Each one is meaningful on its
// own so a reader never depends on two keys being written together.
const (
	KeyCurrentFactlet        = "current_factlet"
	KeyLastUpdate            = "last_update"
	KeyRefreshInterval       = "refresh_interval"
	KeyTextColor             = "text_color"
	KeySelectedCategories    = "selected_categories"
	KeyCategoryLevels        = "category_levels"
	KeyNotificationFrequency = "notification_frequency"
	KeyNotificationsEnabled  = "notifications_enabled"
	KeyOnboardingCompleted   = "onboarding_completed"
	KeySchemaVersion         = "schema_version"

	// schema v1 stored one flat level set for every category
	keyLegacySelectedLevels = "selected_levels"
)

// SchemaVersion is the canonical shape written by Save.
const SchemaVersion = 2

// Load reads preferences, substituting the default for every key that is
// absent or undecodable. A v1 namespace is migrated in place once; migration
// writes are best effort and their error is returned alongside a usable
// value.
func Load(kv KV) (Preferences, error) {
	p := Defaults()

	if v, ok := kv.Get(KeyCurrentFactlet); ok {
		var f corpus.Factlet
		if err := json.Unmarshal([]byte(v), &f); err == nil && f.ID != "" {
			p.Current = &f
		}
	}
	if v, ok := kv.Get(KeyLastUpdate); ok {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			p.LastUpdate = &t
		}
	}

	legacyInterval := false
	if v, ok := kv.Get(KeyRefreshInterval); ok {
		if r, err := ParseRefreshInterval(v); err == nil {
			p.RefreshInterval = r
			legacyInterval = string(r) != v
		}
	}
	if v, ok := kv.Get(KeyTextColor); ok {
		if c, err := ParseTextColor(v); err == nil {
			p.TextColor = c
		}
	}
	if v, ok := kv.Get(KeySelectedCategories); ok {
		if cats, err := decodeCategories(v); err == nil {
			p.Categories = cats
		}
	}

	migrated := false
	if v, ok := kv.Get(KeyCategoryLevels); ok {
		if m, err := decodeCategoryLevels(v); err == nil {
			p.Levels = m
		}
	} else if v, ok := kv.Get(keyLegacySelectedLevels); ok {
		if s, err := decodeLevelSet(v); err == nil {
			p.Levels = UniformCategoryLevels(s)
		}
		migrated = true
	}

	if v, ok := kv.Get(KeyNotificationFrequency); ok {
		if f, err := ParseNotificationFrequency(v); err == nil {
			p.NotificationFrequency = f
		}
	}
	if v, ok := kv.Get(KeyNotificationsEnabled); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			p.NotificationsEnabled = b
		}
	}
	if v, ok := kv.Get(KeyOnboardingCompleted); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			p.OnboardingCompleted = b
		}
	}
	if p.NotificationFrequency.Off() {
		p.NotificationsEnabled = false
	}

	p = p.Normalize()

	version := 0
	if v, ok := kv.Get(KeySchemaVersion); ok {
		version, _ = strconv.Atoi(v)
	}
	if migrated || legacyInterval || (version != 0 && version < SchemaVersion) {
		return p, migrate(kv, p)
	}
	return p, nil
}

func migrate(kv KV, p Preferences) error {
	err := Save(kv, p)
	if derr := kv.Delete(keyLegacySelectedLevels); derr != nil {
		err = errors.Join(err, fmt.Errorf("deleting legacy levels: %w", derr))
	}
	if err != nil {
		return fmt.Errorf("migrating preferences: %w", err)
	}
	return nil
}

// Save writes every canonical key. Each write is attempted; failures are
// joined into the returned error.
func Save(kv KV, p Preferences) error {
	var errs []error
	if p.Current != nil {
		data, err := json.Marshal(p.Current)
		if err == nil {
			err = kv.Set(KeyCurrentFactlet, string(data))
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("writing %s: %w", KeyCurrentFactlet, err))
		}
	}
	if p.LastUpdate != nil {
		if err := kv.Set(KeyLastUpdate, p.LastUpdate.UTC().Format(time.RFC3339Nano)); err != nil {
			errs = append(errs, fmt.Errorf("writing %s: %w", KeyLastUpdate, err))
		}
	}
	return errors.Join(append(errs, SaveSettings(kv, p))...)
}

// SaveSettings writes every canonical key except the displayed factlet and
// its timestamp, which only SaveCurrent owns after the first save. Another
// surface may have rotated them since p was loaded.
func SaveSettings(kv KV, p Preferences) error {
	var errs []error
	set := func(key, value string) {
		if err := kv.Set(key, value); err != nil {
			errs = append(errs, fmt.Errorf("writing %s: %w", key, err))
		}
	}

	set(KeyRefreshInterval, string(p.RefreshInterval))
	set(KeyTextColor, string(p.TextColor))
	set(KeySelectedCategories, encodeCategories(p.Categories))
	set(KeyCategoryLevels, encodeCategoryLevels(p.Levels))
	set(KeyNotificationFrequency, string(p.NotificationFrequency))
	set(KeyNotificationsEnabled, strconv.FormatBool(p.NotificationsEnabled))
	set(KeyOnboardingCompleted, strconv.FormatBool(p.OnboardingCompleted))
	set(KeySchemaVersion, strconv.Itoa(SchemaVersion))

	return errors.Join(errs...)
}

// SaveCurrent writes only the displayed factlet and its timestamp.
func SaveCurrent(kv KV, f corpus.Factlet, at time.Time) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding factlet: %w", err)
	}
	return errors.Join(
		kv.Set(KeyCurrentFactlet, string(data)),
		kv.Set(KeyLastUpdate, at.UTC().Format(time.RFC3339Nano)),
	)
}

func encodeCategories(s corpus.CategorySet) string {
	data, _ := json.Marshal(s.Normalize().Strings())
	return string(data)
}

func decodeCategories(v string) (corpus.CategorySet, error) {
	var names []string
	if err := json.Unmarshal([]byte(v), &names); err != nil {
		return 0, err
	}
	var s corpus.CategorySet
	for _, n := range names {
		c, err := corpus.ParseCategory(n)
		if err != nil {
			continue
		}
		s = s.With(c)
	}
	return s.Normalize(), nil
}

func encodeCategoryLevels(m CategoryLevels) string {
	raw := make(map[string][]string, len(m))
	for c, s := range m {
		raw[string(c)] = s.Tags()
	}
	data, _ := json.Marshal(raw)
	return string(data)
}

func decodeCategoryLevels(v string) (CategoryLevels, error) {
	var raw map[string][]string
	if err := json.Unmarshal([]byte(v), &raw); err != nil {
		return nil, err
	}
	m := make(CategoryLevels, len(raw))
	for name, tags := range raw {
		c, err := corpus.ParseCategory(name)
		if err != nil || c == corpus.All {
			continue
		}
		var s corpus.LevelSet
		for _, t := range tags {
			if l, err := corpus.ParseLevel(t); err == nil {
				s = s.With(l)
			}
		}
		m[c] = s
	}
	return m, nil
}

func decodeLevelSet(v string) (corpus.LevelSet, error) {
	var tags []string
	if err := json.Unmarshal([]byte(v), &tags); err != nil {
		return 0, err
	}
	var s corpus.LevelSet
	for _, t := range tags {
		if l, err := corpus.ParseLevel(t); err == nil {
			s = s.With(l)
		}
	}
	if s.Empty() {
		s = corpus.NewLevelSet(corpus.LowestLevel())
	}
	return s, nil
}
