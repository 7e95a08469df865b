// Package seed loads sample catalog data from YAML.
package seed

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/salon-booking/internal/catalog"
	"github.com/iliyamo/salon-booking/internal/model"
)

// ServiceEntry is one service in the seed file.
type ServiceEntry struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
	Duration    string `yaml:"duration"`
	Price       string `yaml:"price"`
	ImageURL    string `yaml:"image_url"`
}

// File is the layout of the seed YAML.
type File struct {
	Services []ServiceEntry `yaml:"services"`
}

// DefaultServices is used when no seed file is available.
func DefaultServices() []model.Service {
	return toModels([]ServiceEntry{{
		Name:        "Classic Hair Cut",
		Category:    "Hair Services",
		Description: "Professional cut & styling",
		Duration:    "45 mins",
		Price:       "₹150",
		ImageURL:    "https://images.unsplash.com/photo-1599351431202-6e0c06e7afbb?q=80&w=1000&auto=format&fit=crop",
	}})
}

// Parse decodes and validates seed YAML.  Every entry needs a name, a price
// and one of the catalog categories.
func Parse(data []byte) ([]model.Service, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for i, e := range f.Services {
		if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Price) == "" {
			return nil, fmt.Errorf("seed entry %d: name and price are required", i)
		}
		if !catalog.Valid(e.Category) {
			return nil, fmt.Errorf("seed entry %d (%s): unknown category %q", i, e.Name, e.Category)
		}
	}
	return toModels(f.Services), nil
}

// Load reads the seed file at path.  A missing file yields DefaultServices.
func Load(path string) ([]model.Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultServices(), nil
		}
		return nil, err
	}
	return Parse(data)
}

func toModels(entries []ServiceEntry) []model.Service {
	out := make([]model.Service, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.Service{
			Name:        strings.TrimSpace(e.Name),
			Category:    e.Category,
			Description: optional(e.Description),
			Duration:    optional(e.Duration),
			Price:       strings.TrimSpace(e.Price),
			ImageURL:    optional(e.ImageURL),
		})
	}
	return out
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
