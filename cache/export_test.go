package cache

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaguanLabs/pugtl"
)

func TestExporter_Export(t *testing.T) {
	c := NewInMemoryCache(0)
	require.NoError(t, c.Set(pugtl.CacheKey(pugtl.HashText("Galería")), "Gallery"))
	require.NoError(t, c.Set(pugtl.CacheKey(pugtl.HashText("Hola")), "Hello"))

	exporter := NewExporter(c)
	exporter.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	var buf bytes.Buffer
	n, err := exporter.Export(&buf, map[string]string{"views": "views"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var export ExportFormat
	require.NoError(t, json.Unmarshal(buf.Bytes(), &export))

	assert.Equal(t, FormatVersion, export.Version)
	assert.Equal(t, "2024-05-01T10:00:00Z", export.ExportedAt)
	assert.Equal(t, "es", export.SourceLang)
	assert.Equal(t, "en", export.TargetLang)
	require.Len(t, export.Entries, 2)
	assert.Less(t, export.Entries[0].Key, export.Entries[1].Key, "entries should be sorted by key")
	assert.Equal(t, "views", export.Metadata["views"])
}

func TestImporter_Import(t *testing.T) {
	key := pugtl.CacheKey(pugtl.HashText("Hola"))
	jsonData := `{
		"version": "1",
		"exported_at": "2024-01-01T00:00:00Z",
		"entries": [
			{"key": "` + key + `", "value": "Hello"},
			{"key": "abc:en:de", "value": "Hallo"},
			{"key": "` + key + `x", "value": ""}
		]
	}`

	c := NewInMemoryCache(0)
	result, err := NewImporter(c).Import(strings.NewReader(jsonData))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Skipped)
	assert.Zero(t, result.Failed)

	val, ok := c.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "Hello", val)
}

func TestImporter_InvalidJSON(t *testing.T) {
	_, err := NewImporter(NewInMemoryCache(0)).Import(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestExportImport_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	src := NewInMemoryCache(0)
	key := pugtl.CacheKey(pugtl.HashText("Buscar obras"))
	require.NoError(t, src.Set(key, "Search works"))

	_, err := NewExporter(src).ExportToFile(path, nil)
	require.NoError(t, err)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1, "temporary files left behind")

	dst := NewInMemoryCache(0)
	result, err := NewImporter(dst).ImportFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	val, _ := dst.Get(key)
	assert.Equal(t, "Search works", val)
}
