// Package catalog reads category mappings from YAML. The default catalog is
// embedded in the binary; users may supply an override file of the same shape.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/kafeel/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/kafeel/internal/tracking/domain"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// File is the structure of a catalog document.
type File struct {
	Version    int                 `yaml:"version"`
	Categories map[string][]string `yaml:"categories"`
}

// Defaults returns the built-in mappings. They are never marked custom.
func Defaults() ([]*domain.CategoryMapping, error) {
	return Parse(defaultsYAML, false)
}

// Load reads an override file. Mappings from it are marked custom.
func Load(path string) ([]*domain.CategoryMapping, error) {
	data, err := security.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category file: %w", err)
	}
	return Parse(data, true)
}

// Parse decodes a catalog document. An app listed under two categories is
// an error. The result is ordered by app id.
func Parse(data []byte, custom bool) ([]*domain.CategoryMapping, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing category file: %w", err)
	}

	seen := make(map[string]domain.Category)
	var mappings []*domain.CategoryMapping
	for name, apps := range f.Categories {
		category, err := domain.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		for _, app := range apps {
			if prev, ok := seen[app]; ok && prev != category {
				return nil, fmt.Errorf("app %q listed as both %s and %s", app, prev, category)
			} else if ok {
				continue
			}
			m, err := domain.NewCategoryMapping(app, category, custom)
			if err != nil {
				return nil, err
			}
			seen[app] = category
			mappings = append(mappings, m)
		}
	}

	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].AppID < mappings[j].AppID
	})
	return mappings, nil
}
