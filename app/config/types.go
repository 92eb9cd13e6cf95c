package config

// SourceConfig describes one content origin, loaded from a YAML file in the
// sources directory. The file name (without extension) becomes the source slug.
type SourceConfig struct {
	Slug                 string               // Derived from filename (without .yml extension)
	Name                 string               `yaml:"name"`
	URL                  string               `yaml:"url"`
	CrawlType            string               `yaml:"crawl_type"`   // rss, podcast_rss, youtube_api
	ContentType          string               `yaml:"content_type"` // article, video, podcast
	CrawlIntervalMinutes int                  `yaml:"crawl_interval_minutes"`
	Active               bool                 `yaml:"active"`
	Settings             SourceConfigSettings `yaml:"config"`
}

// SourceConfigSettings carries strategy-specific configuration.
type SourceConfigSettings struct {
	ChannelID string `yaml:"channel_id"` // youtube_api only
}
