package resize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a named banner dimension offered to clients as a default.
type Preset struct {
	Name   string `json:"name" yaml:"name"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// DefaultPresets are the standard IAB ad-banner sizes.
func DefaultPresets() []Preset {
	return []Preset{
		{Name: "Medium Rectangle", Width: 300, Height: 250},
		{Name: "Leaderboard", Width: 728, Height: 90},
		{Name: "Wide Skyscraper", Width: 160, Height: 600},
		{Name: "Half Page", Width: 300, Height: 600},
	}
}

// LoadPresets reads banner presets from a YAML file. An empty path
// returns the built-in defaults.
func LoadPresets(path string) ([]Preset, error) {
	if path == "" {
		return DefaultPresets(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets file: %w", err)
	}

	var presets []Preset
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("parsing presets file: %w", err)
	}

	if len(presets) == 0 {
		return nil, fmt.Errorf("presets file %s contains no presets", path)
	}

	for _, p := range presets {
		if p.Width <= 0 || p.Height <= 0 {
			return nil, fmt.Errorf("preset %q has non-positive dimensions", p.Name)
		}
	}

	return presets, nil
}
