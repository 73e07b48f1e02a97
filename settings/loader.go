package settings

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arloliu/curvefit/errs"
)

// Merge overlays overrides onto s. A nil value clears xmin or xmax.
//
// Returns ErrUnknownKey for unrecognized keys and ErrInvalidSetting for values that
// cannot be converted or fail validation. s is left unchanged on error.
func (s *Settings) Merge(overrides map[string]any) error {
	cleaned := make(map[string]any, len(overrides))
	var clearKeys []string
	for key, v := range overrides {
		if !Has(key) {
			return fmt.Errorf("%w: %q is not a setting", errs.ErrUnknownKey, key)
		}
		if v == nil {
			if key != "xmin" && key != "xmax" {
				return fmt.Errorf("%w: %s cannot be unset", errs.ErrInvalidSetting, key)
			}
			clearKeys = append(clearKeys, key)

			continue
		}
		cleaned[key] = v
	}

	return s.mergeFrom(confmap.Provider(cleaned, "."), nil, clearKeys...)
}

// Load reads settings from a YAML file on top of the defaults.
//
// Returns ErrUnknownKey if the file contains an unrecognized key.
func Load(path string) (Settings, error) {
	s := Default()
	if err := s.Apply(WithFile(path)); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// LoadEnv reads settings from environment variables on top of the defaults.
// CURVEFIT_XMIN=2 sets xmin for prefix "CURVEFIT_".
func LoadEnv(prefix string) (Settings, error) {
	s := Default()
	if err := s.Apply(WithEnv(prefix)); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// mergeFrom loads the current values, then src on top, and decodes the result into s.
func (s *Settings) mergeFrom(src koanf.Provider, parser koanf.Parser, clearKeys ...string) error {
	k := koanf.New(".")

	current := s.values()
	for key, v := range current {
		if v == nil {
			delete(current, key)
		}
	}
	if err := k.Load(confmap.Provider(current, "."), nil); err != nil {
		return fmt.Errorf("failed to load current settings: %w", err)
	}

	if err := k.Load(src, parser); err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	for _, key := range k.Keys() {
		if !Has(key) {
			return fmt.Errorf("%w: %q is not a setting", errs.ErrUnknownKey, key)
		}
	}

	var next Settings
	if err := k.Unmarshal("", &next); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidSetting, err)
	}
	for _, key := range clearKeys {
		switch key {
		case "xmin":
			next.XMin = nil
		case "xmax":
			next.XMax = nil
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}

	*s = next

	return nil
}

// envSource maps PREFIX_ERROR_RANGE style variables to option keys.
func envSource(prefix string) koanf.Provider {
	return env.Provider(prefix, ".", func(name string) string {
		return strings.ToLower(strings.TrimPrefix(name, prefix))
	})
}

func fileSource(path string) (koanf.Provider, koanf.Parser) {
	return file.Provider(path), yaml.Parser()
}
