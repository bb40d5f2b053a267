// Package catalog serves the static portfolio datasets (projects, experience,
// videos, labs, stats) and the root menu that links to them.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/portfolio-api/internal/logx"
	"github.com/Tiliavir/portfolio-api/internal/model"
)

// Category names one dataset.
type Category string

const (
	Projects   Category = "projects"
	Experience Category = "experience"
	Videos     Category = "videos"
	Labs       Category = "labs"
	Stats      Category = "stats"
)

// Categories lists every dataset in menu order.
var Categories = []Category{Projects, Experience, Videos, Labs, Stats}

// ErrUnknownCategory is returned for names outside Categories.
var ErrUnknownCategory = errors.New("unknown category")

// ParseCategory maps a request path segment to a Category.
func ParseCategory(name string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

type document struct {
	Root       []model.CatalogItem            `yaml:"root"`
	Categories map[string][]model.CatalogItem `yaml:"categories"`
}

type snapshot struct {
	root  []model.CatalogItem
	items map[Category][]model.CatalogItem
}

// Catalog holds the datasets loaded from one YAML file. It is safe for
// concurrent use; Reload swaps the whole snapshot at once.
type Catalog struct {
	path string

	mu   sync.RWMutex
	data snapshot
}

// Load reads the catalog file. A missing file yields an empty catalog.
func Load(path string) (*Catalog, error) {
	c := &Catalog{path: path, data: emptySnapshot()}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

func emptySnapshot() snapshot {
	items := make(map[Category][]model.CatalogItem, len(Categories))
	for _, cat := range Categories {
		items[cat] = []model.CatalogItem{}
	}
	return snapshot{root: []model.CatalogItem{}, items: items}
}

// Reload re-reads the file. On error the previous datasets stay in place.
func (c *Catalog) Reload() error {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		logx.For("catalog").WithField("path", c.path).Debug("catalog file not found, serving empty datasets")
		c.swap(emptySnapshot())
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading catalog %s: %w", c.path, err)
	}

	snap, err := parse(data)
	if err != nil {
		return fmt.Errorf("parsing catalog %s: %w", c.path, err)
	}
	c.swap(snap)
	return nil
}

func parse(data []byte) (snapshot, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return snapshot{}, err
	}

	snap := emptySnapshot()
	if doc.Root != nil {
		snap.root = doc.Root
	}
	for name, items := range doc.Categories {
		cat, ok := ParseCategory(name)
		if !ok {
			return snapshot{}, fmt.Errorf("%w %q", ErrUnknownCategory, name)
		}
		if items != nil {
			snap.items[cat] = items
		}
	}
	return snap, nil
}

func (c *Catalog) swap(s snapshot) {
	c.mu.Lock()
	c.data = s
	c.mu.Unlock()
}

// Root returns the top-level menu entries.
func (c *Catalog) Root() []model.CatalogItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.CatalogItem{}, c.data.root...)
}

// Items returns the dataset for name, or ErrUnknownCategory.
func (c *Catalog) Items(name string) ([]model.CatalogItem, error) {
	cat, ok := ParseCategory(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownCategory, name)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.CatalogItem{}, c.data.items[cat]...), nil
}
