// Package reader models the feed-reader widget exercised by the acceptance suites: the list of
// feed descriptors, the page (body classes, header title, feed container), the slide-out menu
// and the asynchronous LoadFeed collaborator.
package reader

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed feeds.yaml
var defaultFeedsYAML []byte

// Entry is a single article of a feed
type Entry struct {
	Title   string `yaml:"title" toml:"title" json:"title"`
	Link    string `yaml:"link" toml:"link" json:"link"`
	Snippet string `yaml:"snippet" toml:"snippet" json:"snippet"`
}

// Feed is a feed descriptor. Entries are what the fixture source serves for it.
type Feed struct {
	Name    string  `yaml:"name" toml:"name" json:"name"`
	URL     string  `yaml:"url" toml:"url" json:"url"`
	Entries []Entry `yaml:"entries,omitempty" toml:"entries,omitempty" json:"entries,omitempty"`
}

// Feeds is the ordered feed list. Index 0 is the feed shown on start.
type Feeds []Feed

type feedFile struct {
	Feeds Feeds `yaml:"feeds" toml:"feeds"`
}

// DefaultFeeds returns the built-in feed list.
func DefaultFeeds() Feeds {
	feeds, err := ParseFeeds(defaultFeedsYAML)
	if err != nil {
		panic(errors.Wrap(err, "built-in feed list is invalid"))
	}
	return feeds
}

// LoadFeeds reads a feed list from a YAML file, or a TOML file if the name ends in .toml.
// The list is not validated.
func LoadFeeds(path string) (Feeds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading feed file")
	}
	parse := ParseFeeds
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		parse = ParseFeedsTOML
	}
	feeds, err := parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing feed file %s", path)
	}
	return feeds, nil
}

// ParseFeeds decodes a YAML feed list.
func ParseFeeds(data []byte) (Feeds, error) {
	var f feedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Feeds, nil
}

// ParseFeedsTOML decodes a TOML feed list.
func ParseFeedsTOML(data []byte) (Feeds, error) {
	var f feedFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, err
	}
	return f.Feeds, nil
}

// Names returns the feed names in list order.
func (f Feeds) Names() []string {
	names := make([]string, len(f))
	for i, feed := range f {
		names[i] = feed.Name
	}
	return names
}
