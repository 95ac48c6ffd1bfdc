package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFileSeedsDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	c, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected LoadFromFile to write defaults to %s: %v", path, err)
	}
	if c.Audio.SampleRate != 44100 {
		t.Fatalf("expected default sample rate 44100, got %d", c.Audio.SampleRate)
	}
}

func TestSaveToFileThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	c := New()
	c.Window.Scale = 5
	c.Video.Backend = "sdl"
	if err := c.SaveToFile(path); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if loaded.Window.Scale != 5 {
		t.Fatalf("expected scale 5 to round-trip, got %d", loaded.Window.Scale)
	}
	if loaded.Video.Backend != "sdl" {
		t.Fatalf("expected backend sdl to round-trip, got %q", loaded.Video.Backend)
	}
	if !loaded.IsLoaded() {
		t.Fatal("expected IsLoaded true after loading an existing file")
	}
}

func TestValidateClampsOutOfRangeValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"window":{"width":800,"height":600,"scale":-3},"audio":{"sample_rate":-1,"volume":9.0}}`), 0o644); err != nil {
		t.Fatalf("failed to seed malformed config: %v", err)
	}

	c, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Window.Scale != 1 {
		t.Fatalf("expected negative scale clamped to 1, got %d", c.Window.Scale)
	}
	if c.Audio.SampleRate != 44100 {
		t.Fatalf("expected non-positive sample rate clamped to 44100, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Volume != 0.8 {
		t.Fatalf("expected out-of-range volume clamped to 0.8, got %v", c.Audio.Volume)
	}
}

func TestWindowResolutionScalesNativeFrame(t *testing.T) {
	c := New()
	c.Window.Scale = 2
	w, h := c.WindowResolution()
	if w != 512 || h != 480 {
		t.Fatalf("expected 512x480 at scale 2, got %dx%d", w, h)
	}
}
