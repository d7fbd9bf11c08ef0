package converter

import (
	"bytes"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/pkg/validator"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// SourceConfig - описание источника в sources.yaml
type SourceConfig struct {
	domain.SourceInfo `yaml:",inline"`

	Format           string `yaml:"format" validate:"required,oneof=csv json"`
	StaticURL        string `yaml:"static_url" validate:"required"`
	RealtimeURL      string `yaml:"realtime_url,omitempty"`
	StaticSchedule   string `yaml:"static_schedule,omitempty"`
	RealtimeSchedule string `yaml:"realtime_schedule,omitempty"`
}

type sourcesFile struct {
	Sources []SourceConfig `yaml:"sources"`
}

// LoadSourcesFile читает и проверяет sources.yaml
func LoadSourcesFile(path string) ([]SourceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}
	return ParseSources(data)
}

// ParseSources разбирает YAML со списком источников. Неизвестные ключи - ошибка.
func ParseSources(data []byte) ([]SourceConfig, error) {
	var file sourcesFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Sources))
	for i, src := range file.Sources {
		if err := validator.Validate(src); err != nil {
			return nil, fmt.Errorf("source #%d (%s): %w", i, src.UID, err)
		}
		if _, ok := seen[src.UID]; ok {
			return nil, fmt.Errorf("duplicate source uid %q", src.UID)
		}
		seen[src.UID] = struct{}{}
	}

	return file.Sources, nil
}

// NewConverter собирает конвертер по описанию. Realtime интерфейс есть только при заданном realtime_url.
func NewConverter(cfg SourceConfig, opener Opener, logger *zap.Logger) (Converter, error) {
	switch cfg.Format {
	case FormatCSV:
		base := NewCSVConverter(cfg.SourceInfo, opener, cfg.StaticURL, logger)
		if cfg.RealtimeURL != "" {
			return NewCSVRealtimeConverter(base, cfg.RealtimeURL), nil
		}
		return base, nil
	case FormatJSON:
		base := NewJSONConverter(cfg.SourceInfo, opener, cfg.StaticURL, logger)
		if cfg.RealtimeURL != "" {
			return NewJSONRealtimeConverter(base, cfg.RealtimeURL), nil
		}
		return base, nil
	}
	return nil, fmt.Errorf("unsupported converter format %q", cfg.Format)
}

// NewRegistryFromConfig регистрирует конвертеры всех источников
func NewRegistryFromConfig(cfgs []SourceConfig, opener Opener, logger *zap.Logger) (*Registry, error) {
	registry := NewRegistry()

	for _, cfg := range cfgs {
		c, err := NewConverter(cfg, opener, logger)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", cfg.UID, err)
		}
		if err := registry.Register(c, Schedule{Static: cfg.StaticSchedule, Realtime: cfg.RealtimeSchedule}); err != nil {
			return nil, err
		}
	}

	logger.Info("Converter registry loaded", zap.Int("sources", registry.Len()))
	return registry, nil
}
