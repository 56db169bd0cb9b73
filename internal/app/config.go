// Package app wires the CPU, PPU, cartridge, and joypad into a
// runnable console and drives it one frame at a time.
package app

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the emulator's run-time settings. APU is a non-goal,
// so no audio section exists here.
type Config struct {
	Window WindowConfig `json:"window"`
	Input  InputConfig  `json:"input"`
	Debug  DebugConfig  `json:"debug"`
}

// WindowConfig controls the presentation window.
type WindowConfig struct {
	Scale      int  `json:"scale"`
	Fullscreen bool `json:"fullscreen"`
}

// InputConfig maps keyboard keys to the single joypad's buttons.
type InputConfig struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// DebugConfig controls diagnostic logging verbosity.
type DebugConfig struct {
	Verbose bool `json:"verbose"`
}

// NewConfig returns the emulator's defaults: 2x window scale, the
// Z/X-as-A/B layout common to NES emulators, quiet logging. Key names
// match the ebiten.Key identifier with the "Key" prefix dropped (e.g.
// "ArrowUp", "ShiftRight").
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{Scale: 2},
		Input: InputConfig{
			Up: "ArrowUp", Down: "ArrowDown", Left: "ArrowLeft", Right: "ArrowRight",
			A: "Z", B: "X", Start: "Enter", Select: "ShiftRight",
		},
		Debug: DebugConfig{Verbose: false},
	}
}

// LoadConfig reads a JSON config file, falling back to defaults for
// any field the file omits. A missing file is not an error: it
// returns the defaults unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("app: reading config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("app: parsing config: %w", err)
	}
	return cfg, nil
}
