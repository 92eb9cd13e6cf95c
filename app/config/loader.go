package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of source definitions
type Loader struct {
	sourcesDir string
}

func NewLoader(sourcesDir string) *Loader {
	return &Loader{sourcesDir: sourcesDir}
}

// LoadAll loads all YAML source definitions from the sources directory.
// A missing directory is not an error: the server can run purely on
// sources already registered in the database.
func (l *Loader) LoadAll() ([]*SourceConfig, error) {
	if _, err := os.Stat(l.sourcesDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(l.sourcesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}

	yamlFiles, err := filepath.Glob(filepath.Join(l.sourcesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}
	files = append(files, yamlFiles...)

	configs := make([]*SourceConfig, 0, len(files))
	for _, file := range files {
		sourceConfig, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		if err := l.validate(sourceConfig); err != nil {
			return nil, fmt.Errorf("invalid source definition %s: %w", file, err)
		}

		configs = append(configs, sourceConfig)
		slog.Debug("Source definition loaded", "source", sourceConfig.Name, "crawl_type", sourceConfig.CrawlType, "active", sourceConfig.Active)
	}

	return configs, nil
}

func (l *Loader) loadFile(path string) (*SourceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var sourceConfig SourceConfig
	if err := yaml.Unmarshal(data, &sourceConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Base(path)
	sourceConfig.Slug = strings.TrimSuffix(base, filepath.Ext(base))

	if sourceConfig.CrawlIntervalMinutes == 0 {
		sourceConfig.CrawlIntervalMinutes = 60
	}

	return &sourceConfig, nil
}

func (l *Loader) validate(sourceConfig *SourceConfig) error {
	if sourceConfig.Name == "" {
		return fmt.Errorf("missing source name")
	}

	switch sourceConfig.CrawlType {
	case "rss", "podcast_rss":
		if sourceConfig.URL == "" {
			return fmt.Errorf("missing feed URL for source %s", sourceConfig.Name)
		}
	case "youtube_api":
		if sourceConfig.Settings.ChannelID == "" {
			return fmt.Errorf("missing channel_id for source %s", sourceConfig.Name)
		}
	default:
		return fmt.Errorf("unknown crawl_type %q for source %s", sourceConfig.CrawlType, sourceConfig.Name)
	}

	switch sourceConfig.ContentType {
	case "article", "video", "podcast":
	default:
		return fmt.Errorf("unknown content_type %q for source %s", sourceConfig.ContentType, sourceConfig.Name)
	}

	return nil
}
