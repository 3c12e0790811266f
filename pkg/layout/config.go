package layout

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	apperrors "github.com/matzehuels/attacktree/pkg/errors"
)

// Spacing file formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// LoadSpacingFile reads a spacing configuration from a .toml, .yaml or .yml
// file. Fields missing from the file keep their [DefaultSpacing] values; a
// levels list in the file replaces the default levels entirely.
func LoadSpacingFile(path string) (SpacingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SpacingConfig{}, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "read spacing config %s", path)
	}
	format, err := formatFromPath(path)
	if err != nil {
		return SpacingConfig{}, err
	}
	return ParseSpacing(data, format)
}

// ParseSpacing decodes a spacing configuration in the given format on top of
// [DefaultSpacing] and validates the result.
func ParseSpacing(data []byte, format string) (SpacingConfig, error) {
	cfg := DefaultSpacing()
	cfg.Levels = nil

	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
			return SpacingConfig{}, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "decode toml spacing")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return SpacingConfig{}, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "decode yaml spacing")
		}
	default:
		return SpacingConfig{}, apperrors.New(apperrors.ErrCodeInvalidFormat, "unsupported spacing format %q (must be toml or yaml)", format)
	}

	if cfg.Levels == nil {
		cfg.Levels = DefaultSpacing().Levels
	}
	if err := cfg.Validate(); err != nil {
		return SpacingConfig{}, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "invalid spacing")
	}
	return cfg, nil
}

// WriteSpacingFile writes cfg to path in the format implied by its extension.
func WriteSpacingFile(cfg SpacingConfig, path string) error {
	format, err := formatFromPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func formatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", apperrors.New(apperrors.ErrCodeInvalidFormat, "spacing config %s: extension must be .toml, .yaml or .yml", path)
}
