// Package config loads and saves the emulator's JSON configuration file:
// window geometry, video/audio tuning, key bindings, emulation behavior,
// debug switches, and filesystem paths.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds every tunable the host application and CLI expose.
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Audio     AudioConfig     `json:"audio"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	path   string
	loaded bool
}

// WindowConfig controls the host window.
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
	Resizable  bool `json:"resizable"`
	Scale      int  `json:"scale"` // NES resolution multiplier
}

// VideoConfig controls frame presentation.
type VideoConfig struct {
	VSync        bool    `json:"vsync"`
	Backend      string  `json:"backend"` // "ebitengine", "sdl", "tui", "headless"
	Filter       string  `json:"filter"`  // "nearest", "linear"
	Brightness   float32 `json:"brightness"`
	Contrast     float32 `json:"contrast"`
	Saturation   float32 `json:"saturation"`
	CropOverscan bool    `json:"crop_overscan"`
}

// AudioConfig controls the APU's output stream.
type AudioConfig struct {
	Enabled    bool    `json:"enabled"`
	SampleRate int     `json:"sample_rate"`
	BufferSize int     `json:"buffer_size"`
	Volume     float32 `json:"volume"`
}

// InputConfig holds keyboard bindings for both controller ports.
type InputConfig struct {
	Player1Keys    KeyMapping `json:"player1_keys"`
	Player2Keys    KeyMapping `json:"player2_keys"`
	AutofireRate   int        `json:"autofire_rate"`
	EnableAutofire bool       `json:"enable_autofire"`
}

// KeyMapping names one host key per NES button.
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// EmulationConfig controls system-level behavior independent of any one
// backend.
type EmulationConfig struct {
	Region         string `json:"region"` // "NTSC", "PAL"
	SaveStateSlots int    `json:"save_state_slots"`
	AutoSave       bool   `json:"auto_save"`
}

// DebugConfig toggles logging and tracing verbosity.
type DebugConfig struct {
	EnableLogging bool   `json:"enable_logging"`
	LogLevel      string `json:"log_level"` // "debug", "info", "warn", "error"
	CPUTracing    bool   `json:"cpu_tracing"`
}

// PathsConfig names the directories the emulator reads and writes.
type PathsConfig struct {
	ROMs       string `json:"roms"`
	SaveData   string `json:"save_data"`
	SaveStates string `json:"save_states"`
	Config     string `json:"config"`
}

// New returns a Config populated with the same defaults a fresh install
// ships with.
func New() *Config {
	return &Config{
		Window: WindowConfig{Width: 768, Height: 720, Resizable: true, Scale: 3},
		Video: VideoConfig{
			VSync:        true,
			Backend:      "ebitengine",
			Filter:       "nearest",
			Brightness:   1.0,
			Contrast:     1.0,
			Saturation:   1.0,
			CropOverscan: true,
		},
		Audio: AudioConfig{Enabled: true, SampleRate: 44100, BufferSize: 1024, Volume: 0.8},
		Input: InputConfig{
			Player1Keys: KeyMapping{Up: "W", Down: "S", Left: "A", Right: "D", A: "J", B: "K", Start: "Enter", Select: "Space"},
			Player2Keys: KeyMapping{Up: "Up", Down: "Down", Left: "Left", Right: "Right", A: "N", B: "M", Start: "RightShift", Select: "RightControl"},
			AutofireRate: 10,
		},
		Emulation: EmulationConfig{Region: "NTSC", SaveStateSlots: 10, AutoSave: true},
		Debug:     DebugConfig{LogLevel: "info"},
		Paths: PathsConfig{
			ROMs:       "./roms",
			SaveData:   "./saves",
			SaveStates: "./states",
			Config:     "./config",
		},
	}
}

// LoadFromFile reads and parses a JSON config file. A missing file is not
// an error: it seeds one with defaults at that path instead.
func LoadFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c := New()
		c.path = path
		return c, c.Save()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	c := New()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.validate()
	c.path = path
	c.loaded = true

	if err := c.createDirectories(); err != nil {
		return nil, err
	}
	return c, nil
}

// SaveToFile writes c as indented JSON to path, replacing any existing
// file only once the new content is fully and durably on disk: it writes
// to a sibling temp file and renames over the target, so a crash
// mid-write never leaves a truncated config behind.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("config: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("config: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("config: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("config: rename into place: %w", err)
	}

	c.path = path
	return nil
}

// Save writes to whatever path this Config was loaded from or last saved
// to.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config: no path set")
	}
	return c.SaveToFile(c.path)
}

// validate replaces out-of-range values with fixed fallbacks (not always
// the defaults: a non-positive scale becomes 1) rather than rejecting the
// whole file over one bad field.
func (c *Config) validate() {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		c.Window.Width, c.Window.Height = 768, 720
	}
	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}
	if c.Video.Brightness < 0.1 || c.Video.Brightness > 3.0 {
		c.Video.Brightness = 1.0
	}
	if c.Video.Contrast < 0.1 || c.Video.Contrast > 3.0 {
		c.Video.Contrast = 1.0
	}
	if c.Video.Saturation < 0.0 || c.Video.Saturation > 3.0 {
		c.Video.Saturation = 1.0
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 44100
	}
	if c.Audio.BufferSize <= 0 {
		c.Audio.BufferSize = 1024
	}
	if c.Audio.Volume < 0.0 || c.Audio.Volume > 1.0 {
		c.Audio.Volume = 0.8
	}
	if c.Emulation.SaveStateSlots <= 0 {
		c.Emulation.SaveStateSlots = 10
	}
	if c.Input.AutofireRate <= 0 {
		c.Input.AutofireRate = 10
	}
}

func (c *Config) createDirectories() error {
	for _, dir := range []string{c.Paths.ROMs, c.Paths.SaveData, c.Paths.SaveStates, c.Paths.Config} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WindowResolution returns the host window size implied by the NES's
// native 256x240 frame and the configured scale.
func (c *Config) WindowResolution() (int, int) {
	return 256 * c.Window.Scale, 240 * c.Window.Scale
}

// IsLoaded reports whether this Config came from an existing file rather
// than fresh defaults.
func (c *Config) IsLoaded() bool { return c.loaded }

// Path returns the file this Config was loaded from or saved to.
func (c *Config) Path() string { return c.path }
