package catalog

import (
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// DefaultPattern matches per-page YAML files in a catalog directory.
const DefaultPattern = "**/*.yaml"

// document is the on-disk shape of a single-file catalog.
type document struct {
	Pages []Page `yaml:"pages"`
}

// Parse decodes a single-file YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("catalog has no pages")
	}
	return New(doc.Pages), nil
}

// Embedded returns the catalog compiled into the binary.
func Embedded() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a single-file YAML catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// LoadDir reads one page per YAML file from dir. Files are matched with a
// doublestar pattern and ordered by their slash-separated relative path, so
// page files should carry zero-padded names (page-01.yaml, page-02.yaml, ...).
func LoadDir(dir, pattern string) (*Catalog, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("matching %q in %s: %w", pattern, dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no catalog pages match %q in %s", pattern, dir)
	}
	sort.Strings(matches)

	pages := make([]Page, 0, len(matches))
	for _, rel := range matches {
		data, err := fs.ReadFile(fsys, rel)
		if err != nil {
			return nil, fmt.Errorf("reading page %s: %w", rel, err)
		}
		var p Page
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decoding page %s: %w", filepath.FromSlash(rel), err)
		}
		pages = append(pages, p)
	}
	return New(pages), nil
}

// Marshal encodes a catalog in the single-file YAML form read by Parse.
func Marshal(c *Catalog) ([]byte, error) {
	data, err := yaml.Marshal(document{Pages: c.Pages()})
	if err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return data, nil
}
