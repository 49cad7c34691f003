// Package cache provides translation caches keyed by source text hash.
//
// Keys come from pugtl.CacheKey and look like "<sha256>:es:en". Every cache
// here stores the translated text with its entities already unescaped.
package cache

import "github.com/ZaguanLabs/pugtl"

// TranslationCache is an alias to the main package interface.
type TranslationCache = pugtl.TranslationCache

// Snapshotter is a cache whose contents can be listed for export.
type Snapshotter interface {
	TranslationCache
	// Entries returns every live entry.
	Entries() (map[string]string, error)
}
