package audio

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/olegs18/transcriber/internal"
)

// keySuffix is appended to an artifact path to name its key sidecar
const keySuffix = ".key"

// FileName returns the artifact file name for a normalized phrase:
// {normalized_with_underscores}_{lang}.{ext}. When unsafe characters had to
// be replaced, a short hash of the phrase is appended so that phrases that
// sanitize alike ("ce faci?", "ce faci!") keep separate artifacts.
func FileName(normalized, lang, ext string) string {
	normalized = strings.TrimSpace(normalized)
	spaced := strings.ReplaceAll(normalized, " ", "_")
	base := internal.SanitizeFilename(spaced)
	if base != spaced || strings.Contains(normalized, "_") {
		sum := md5.Sum([]byte(normalized))
		base += "_" + hex.EncodeToString(sum[:])[:8]
	}
	return fmt.Sprintf("%s_%s.%s", base, internal.SanitizeFilename(lang), strings.TrimPrefix(ext, "."))
}

// CacheStats describes the artifact directory
type CacheStats struct {
	Files int
	Bytes int64
}

// Cache stores one audio artifact per phrase and language in a flat
// directory. Each artifact has a sidecar holding the hash of the inputs that
// produced it, so changed text, voice or rules cause regeneration.
// A Cache assumes it is the only writer of its directory.
type Cache struct {
	dir      string
	format   string
	provider Provider
	version  string

	hits      int
	generated int
	adopted   int
}

// NewCache creates a cache in dir. version identifies the transcription
// rules in effect and is part of every artifact key.
func NewCache(dir, format string, provider Provider, version string) *Cache {
	if format == "" {
		format = "mp3"
	}
	return &Cache{
		dir:      dir,
		format:   format,
		provider: provider,
		version:  version,
	}
}

// Dir returns the artifact directory
func (c *Cache) Dir() string {
	return c.dir
}

// FileName returns the artifact name for normalized in lang in the cache format
func (c *Cache) FileName(normalized, lang string) string {
	return FileName(normalized, lang, c.format)
}

// Path returns the full artifact path for filename
func (c *Cache) Path(filename string) string {
	return filepath.Join(c.dir, filename)
}

// artifactKey hashes everything that determines the artifact content
func (c *Cache) artifactKey(text, lang string) string {
	h := md5.New()
	for _, part := range []string{text, lang, providerIdentity(c.provider), c.version} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// EnsureAudio returns the path of the artifact for text in lang, generating
// it only when it is missing or was produced from different inputs.
func (c *Cache) EnsureAudio(ctx context.Context, text, lang, filename string) (string, error) {
	path := c.Path(filename)
	key := c.artifactKey(text, lang)

	fresh, err := c.lookup(path, key)
	if err != nil {
		return "", err
	}
	if fresh {
		c.hits++
		return path, nil
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	// The provider picks the format from the extension, so keep it last
	ext := filepath.Ext(filename)
	tmp := filepath.Join(c.dir, "."+strings.TrimSuffix(filename, ext)+".tmp"+ext)
	if err := c.provider.GenerateAudio(ctx, text, lang, tmp); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to generate audio for %q: %w", text, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to store audio artifact: %w", err)
	}

	if err := writeKey(path, key); err != nil {
		return "", err
	}

	c.generated++
	return path, nil
}

// lookup reports whether the artifact at path is usable for key. An artifact
// without a sidecar predates content addressing and is adopted as is.
func (c *Cache) lookup(path, key string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat audio artifact: %w", err)
	}

	stored, err := os.ReadFile(path + keySuffix)
	if errors.Is(err, fs.ErrNotExist) {
		if err := writeKey(path, key); err != nil {
			return false, err
		}
		c.adopted++
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read audio key: %w", err)
	}

	return string(bytes.TrimSpace(stored)) == key, nil
}

func writeKey(path, key string) error {
	if err := os.WriteFile(path+keySuffix, []byte(key+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write audio key: %w", err)
	}
	return nil
}

// Hits returns the number of EnsureAudio calls served from disk
func (c *Cache) Hits() int {
	return c.hits
}

// Generated returns the number of artifacts produced by the provider
func (c *Cache) Generated() int {
	return c.generated
}

// Adopted returns the number of legacy artifacts that received a key
func (c *Cache) Adopted() int {
	return c.adopted
}

// Stats returns the number and total size of artifacts in the directory
func (c *Cache) Stats() (CacheStats, error) {
	var stats CacheStats

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil
		}
		return stats, fmt.Errorf("failed to read audio directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, keySuffix) || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return stats, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		stats.Files++
		stats.Bytes += info.Size()
	}

	return stats, nil
}
