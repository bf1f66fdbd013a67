// Package settings handles project configuration stored in settings.yaml:
// project metadata, the records file location, and the registered search
// sources with their platform, type, and result paths.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Search types.
const (
	SearchTypeDB             = "DB"
	SearchTypeAPI            = "API"
	SearchTypeFiles          = "FILES"
	SearchTypeTOC            = "TOC"
	SearchTypeForwardSearch  = "FORWARD_SEARCH"
	SearchTypeBackwardSearch = "BACKWARD_SEARCH"
	SearchTypeMD             = "MD"
	SearchTypeOther          = "OTHER"
)

// Review types.
const (
	ReviewTypeLiterature = "literature_review"
	ReviewTypeRealtime   = "realtime"
)

var searchTypes = []interface{}{
	SearchTypeDB, SearchTypeAPI, SearchTypeFiles, SearchTypeTOC,
	SearchTypeForwardSearch, SearchTypeBackwardSearch, SearchTypeMD,
	SearchTypeOther,
}

const (
	SettingsFile = "settings.yaml"
	RecordsFile  = "data/records.bib"
	SearchDir    = "data/search"
	PDFDir       = "data/pdfs"
)

// SearchSource describes one registered search source.
type SearchSource struct {
	Platform          string            `yaml:"platform"`
	SearchType        string            `yaml:"search_type"`
	SearchResultsPath string            `yaml:"search_results_path"`
	SearchParameters  map[string]string `yaml:"search_parameters,omitempty"`
	Comment           string            `yaml:"comment,omitempty"`
}

// Validate validates the search source descriptor.
func (s *SearchSource) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Platform, validation.Required),
		validation.Field(&s.SearchType, validation.Required, validation.In(searchTypes...)),
		validation.Field(&s.SearchResultsPath, validation.Required),
	)
}

// Filename returns the base name of the source's results file, which serves
// as its origin prefix.
func (s *SearchSource) Filename() string {
	return filepath.Base(s.SearchResultsPath)
}

// IsMDSource reports whether the source only enriches identifying metadata.
func (s *SearchSource) IsMDSource() bool {
	return s.SearchType == SearchTypeMD
}

// ProjectConfig holds project-level metadata.
type ProjectConfig struct {
	Title      string `yaml:"title"`
	ReviewType string `yaml:"review_type"`
}

// Validate validates the project configuration.
func (p *ProjectConfig) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.ReviewType, validation.Required),
	)
}

// Settings represents the full project configuration.
type Settings struct {
	Project ProjectConfig  `yaml:"project"`
	Sources []SearchSource `yaml:"sources"`
}

// Validate validates the settings.
func (s *Settings) Validate() error {
	if err := s.Project.Validate(); err != nil {
		return err
	}
	for i := range s.Sources {
		if err := s.Sources[i].Validate(); err != nil {
			return fmt.Errorf("source %s: %w", s.Sources[i].Platform, err)
		}
	}
	return nil
}

// Default returns settings for a new project.
func Default() *Settings {
	return &Settings{
		Project: ProjectConfig{ReviewType: ReviewTypeLiterature},
	}
}

// Load reads settings from the repository at the given root. A missing file
// yields defaults.
func Load(root string) (*Settings, error) {
	data, err := os.ReadFile(filepath.Join(root, SettingsFile))
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

// Save writes settings to the repository at the given root.
func (s *Settings) Save(root string) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, SettingsFile), data, 0644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// Source returns the registered source with the given results filename, or
// nil if none is registered.
func (s *Settings) Source(filename string) *SearchSource {
	for i := range s.Sources {
		if s.Sources[i].Filename() == filename {
			return &s.Sources[i]
		}
	}
	return nil
}

// AddSource registers a search source. Registration is idempotent by
// results filename.
func (s *Settings) AddSource(src SearchSource) bool {
	if s.Source(src.Filename()) != nil {
		return false
	}
	s.Sources = append(s.Sources, src)
	return true
}
