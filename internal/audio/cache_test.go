package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		normalized string
		lang       string
		ext        string
		want       string
	}{
		{"vineri", "ro", "mp3", "vineri_ro.mp3"},
		{"bună ziua", "ro", "mp3", "bună_ziua_ro.mp3"},
		{"ce faci?", "ro", ".wav", "ce_faci__6664852c_ro.wav"},
		{"a/b", "en", "mp3", "a_b_a7e86136_en.mp3"},
		{"a_b", "en", "mp3", "a_b_dbf08e00_en.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FileName(tt.normalized, tt.lang, tt.ext); got != tt.want {
				t.Errorf("FileName(%q, %q, %q) = %q, want %q", tt.normalized, tt.lang, tt.ext, got, tt.want)
			}
		})
	}
}

func TestFileNameDistinguishesSanitizedPhrases(t *testing.T) {
	phrases := []string{"bună ziua!", "bună ziua?", "bună ziua_", "bună ziua"}

	seen := make(map[string]string)
	for _, p := range phrases {
		name := FileName(p, "ro", "mp3")
		if prev, ok := seen[name]; ok {
			t.Errorf("%q and %q share artifact %s", prev, p, name)
		}
		seen[name] = p
	}
}

func TestEnsureAudioGeneratesOnce(t *testing.T) {
	dir := t.TempDir()
	provider := &mockProvider{name: "mock"}
	cache := NewCache(dir, "mp3", provider, "v1")
	ctx := context.Background()

	name := cache.FileName("bună ziua", "ro")
	path, err := cache.EnsureAudio(ctx, "bună ziua", "ro", name)
	if err != nil {
		t.Fatalf("EnsureAudio failed: %v", err)
	}
	if path != filepath.Join(dir, "bună_ziua_ro.mp3") {
		t.Errorf("Unexpected path %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil || string(content) != "bună ziua" {
		t.Errorf("Artifact content = %q, %v", content, err)
	}
	if _, err := os.Stat(path + keySuffix); err != nil {
		t.Errorf("Expected key sidecar: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := cache.EnsureAudio(ctx, "bună ziua", "ro", name); err != nil {
			t.Fatalf("EnsureAudio failed: %v", err)
		}
	}

	if provider.generateCalls != 1 {
		t.Errorf("Expected 1 synthesis call, got %d", provider.generateCalls)
	}
	if cache.Generated() != 1 || cache.Hits() != 3 {
		t.Errorf("Generated=%d Hits=%d", cache.Generated(), cache.Hits())
	}

	// No temp files are left behind
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("Leftover temp file %s", e.Name())
		}
	}
}

func TestEnsureAudioAdoptsLegacyArtifact(t *testing.T) {
	dir := t.TempDir()
	provider := &mockProvider{name: "mock"}
	cache := NewCache(dir, "mp3", provider, "v1")

	legacy := filepath.Join(dir, "vineri_ro.mp3")
	if err := os.WriteFile(legacy, []byte("old audio"), 0644); err != nil {
		t.Fatal(err)
	}

	path, err := cache.EnsureAudio(context.Background(), "vineri", "ro", "vineri_ro.mp3")
	if err != nil {
		t.Fatalf("EnsureAudio failed: %v", err)
	}
	if path != legacy {
		t.Errorf("Unexpected path %s", path)
	}
	if provider.generateCalls != 0 {
		t.Errorf("Legacy artifact should not be regenerated")
	}
	if cache.Adopted() != 1 {
		t.Errorf("Expected 1 adopted artifact, got %d", cache.Adopted())
	}
	if _, err := os.Stat(legacy + keySuffix); err != nil {
		t.Errorf("Expected sidecar to be written: %v", err)
	}
}

func TestEnsureAudioRegeneratesOnKeyChange(t *testing.T) {
	dir := t.TempDir()
	provider := &mockProvider{name: "mock"}
	ctx := context.Background()

	if _, err := NewCache(dir, "mp3", provider, "v1").EnsureAudio(ctx, "cine", "ro", "cine_ro.mp3"); err != nil {
		t.Fatal(err)
	}

	// New rules version
	if _, err := NewCache(dir, "mp3", provider, "v2").EnsureAudio(ctx, "cine", "ro", "cine_ro.mp3"); err != nil {
		t.Fatal(err)
	}
	if provider.generateCalls != 2 {
		t.Errorf("Expected regeneration after version change, got %d calls", provider.generateCalls)
	}

	// Different provider identity
	other := &mockProvider{name: "other"}
	if _, err := NewCache(dir, "mp3", other, "v2").EnsureAudio(ctx, "cine", "ro", "cine_ro.mp3"); err != nil {
		t.Fatal(err)
	}
	if other.generateCalls != 1 {
		t.Errorf("Expected regeneration after provider change")
	}
}

func TestEnsureAudioFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	provider := &mockProvider{name: "mock", generateErr: errors.New("quota")}
	cache := NewCache(dir, "mp3", provider, "v1")

	if _, err := cache.EnsureAudio(context.Background(), "vineri", "ro", "vineri_ro.mp3"); err == nil {
		t.Fatal("Expected error")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Expected empty directory, found %d entries", len(entries))
	}
}

func TestCacheStats(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(dir, "mp3", &mockProvider{name: "mock"}, "v1")

	stats, err := cache.Stats()
	if err != nil || stats.Files != 0 {
		t.Fatalf("Stats on empty dir = %+v, %v", stats, err)
	}

	ctx := context.Background()
	cache.EnsureAudio(ctx, "unu", "ro", "unu_ro.mp3")
	cache.EnsureAudio(ctx, "doi", "ro", "doi_ro.mp3")

	stats, err = cache.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Files != 2 {
		t.Errorf("Expected 2 files, got %d", stats.Files)
	}
	if stats.Bytes != int64(len("unu")+len("doi")) {
		t.Errorf("Unexpected byte count %d", stats.Bytes)
	}

	missing := NewCache(filepath.Join(dir, "missing"), "mp3", &mockProvider{}, "v1")
	if stats, err := missing.Stats(); err != nil || stats.Files != 0 {
		t.Errorf("Stats on missing dir = %+v, %v", stats, err)
	}
}
