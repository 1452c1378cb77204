package rss

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"technews/internal/news"
)

// FeedSource is one entry in the feeds YAML file.
// feeds:
//   - name: techcrunch
//     url: https://techcrunch.com/feed/
//     language: en
type FeedSource struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Language string `yaml:"language"`
	Enabled  *bool  `yaml:"enabled"`
}

// IsEnabled treats a missing enabled flag as on.
func (s FeedSource) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Source maps the YAML name onto the source taxonomy.
func (s FeedSource) Source() news.Source {
	return news.Source(s.Name)
}

type FeedsConfig struct {
	Feeds []FeedSource `yaml:"feeds"`
}

// LoadFeeds reads the RSS source list from a YAML file. Sources with a
// missing name or URL are rejected outright so a typo in the config
// fails loudly instead of silently dropping a feed.
func LoadFeeds(path string) ([]FeedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds config: %w", err)
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse feeds config: %w", err)
	}

	for i, feed := range cfg.Feeds {
		if feed.Name == "" || feed.URL == "" {
			return nil, fmt.Errorf("feeds config entry %d: name and url are required", i)
		}
	}
	return cfg.Feeds, nil
}
