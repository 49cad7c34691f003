package cache

import "github.com/rs/zerolog"

// Tiered puts a fast local cache in front of a shared one. Hits in the
// shared cache are copied into the local one.
type Tiered struct {
	local  TranslationCache
	shared TranslationCache
	logger zerolog.Logger
}

// NewTiered creates a two-level cache. Failed copies of shared hits into the
// local level are logged to logger.
func NewTiered(local, shared TranslationCache, logger zerolog.Logger) *Tiered {
	return &Tiered{local: local, shared: shared, logger: logger}
}

// Get checks the local cache, then the shared one.
func (t *Tiered) Get(key string) (string, bool) {
	if v, ok := t.local.Get(key); ok {
		return v, true
	}
	v, ok := t.shared.Get(key)
	if !ok {
		return "", false
	}
	if err := t.local.Set(key, v); err != nil {
		t.logger.Warn().Err(err).Str("key", key).Msg("local cache write failed")
	}
	return v, true
}

// Set writes to both levels. A failed shared write is returned after the
// local write has been made.
func (t *Tiered) Set(key, value string) error {
	if err := t.local.Set(key, value); err != nil {
		return err
	}
	return t.shared.Set(key, value)
}

// Entries lists the shared level if it can be listed, else the local one.
func (t *Tiered) Entries() (map[string]string, error) {
	if s, ok := t.shared.(Snapshotter); ok {
		return s.Entries()
	}
	if s, ok := t.local.(Snapshotter); ok {
		return s.Entries()
	}
	return map[string]string{}, nil
}

var _ Snapshotter = (*Tiered)(nil)
