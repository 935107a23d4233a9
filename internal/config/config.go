package config

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// defaultStylesheet is the built-in stylesheet. It is compiled into the
// binary and parsed exactly once, when Default() is first called.
//
//go:embed default.toml
var defaultStylesheet string

type EditorOptions struct {
	TabWidth      int  `toml:"tab-width"`
	WrapText      bool `toml:"wrap-text"`
	OverscanRows  int  `toml:"overscan-rows"`
	CaretBlinkMs  int  `toml:"caret-blink-ms"`
	ShowFirstOnly bool `toml:"show-first-only"`
}

type Theme struct {
	Foreground        string `toml:"foreground"`
	Background        string `toml:"background"`
	HighlightFill     string `toml:"highlight-fill"`
	HighlightTextFill string `toml:"highlight-text-fill"`
}

type Config struct {
	Editor EditorOptions `toml:"editor"`
	Theme  Theme         `toml:"theme"`
}

// Default returns the built-in configuration, taken from the embedded
// stylesheet. Fields the stylesheet leaves empty fall back to hard defaults.
func Default() Config {
	cfg := Config{
		Editor: EditorOptions{
			TabWidth:     4,
			WrapText:     true,
			OverscanRows: 2,
			CaretBlinkMs: 500,
		},
		Theme: Theme{
			Foreground:        "#B3B1AD",
			Background:        "#0A0E14",
			HighlightFill:     "#1E90FF",
			HighlightTextFill: "#FFFFFF",
		},
	}
	var sheet Config
	if _, err := toml.Decode(defaultStylesheet, &sheet); err == nil {
		merge(&cfg, sheet)
	}
	return cfg
}

// Load reads the user config and merges it over the defaults.
// A missing config file is not an error.
func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, err
	}
	merge(&cfg, userCfg)
	return cfg, nil
}

func merge(dst *Config, src Config) {
	if src.Editor.TabWidth > 0 {
		dst.Editor.TabWidth = src.Editor.TabWidth
	}
	if src.Editor.OverscanRows > 0 {
		dst.Editor.OverscanRows = src.Editor.OverscanRows
	}
	if src.Editor.CaretBlinkMs > 0 {
		dst.Editor.CaretBlinkMs = src.Editor.CaretBlinkMs
	}
	if src.Editor.WrapText {
		dst.Editor.WrapText = true
	}
	if src.Editor.ShowFirstOnly {
		dst.Editor.ShowFirstOnly = true
	}
	if src.Theme.Foreground != "" {
		dst.Theme.Foreground = src.Theme.Foreground
	}
	if src.Theme.Background != "" {
		dst.Theme.Background = src.Theme.Background
	}
	if src.Theme.HighlightFill != "" {
		dst.Theme.HighlightFill = src.Theme.HighlightFill
	}
	if src.Theme.HighlightTextFill != "" {
		dst.Theme.HighlightTextFill = src.Theme.HighlightTextFill
	}
}

func ConfigDir() (string, error) {
	if v := os.Getenv("RICHTEXT_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "richtext"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "richtext"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
