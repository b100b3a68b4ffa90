package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"personabot/internal/domain"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileCatalog maps every one of the sixteen classifications to its
// content profile. Completeness is enforced at load time so Get can be
// treated as total afterwards.
type ProfileCatalog struct {
	profiles map[domain.Classification]domain.ContentProfile
}

type profileCatalogDoc struct {
	Profiles []domain.ContentProfile `yaml:"profiles"`
}

// LoadProfileCatalog reads and validates the profile catalog from a YAML file.
func LoadProfileCatalog(path string) (*ProfileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile catalog: %w", err)
	}
	return ParseProfileCatalog(data)
}

// ParseProfileCatalog builds a validated catalog from raw YAML.
func ParseProfileCatalog(data []byte) (*ProfileCatalog, error) {
	var doc profileCatalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse profiles: %v", ErrInvalidConfig, err)
	}

	profiles := make(map[domain.Classification]domain.ContentProfile, 16)
	for _, p := range doc.Profiles {
		if _, dup := profiles[p.Classification]; dup {
			return nil, fmt.Errorf("%w: duplicate profile for %q", ErrInvalidConfig, p.Classification)
		}
		if p.Description == "" {
			return nil, fmt.Errorf("%w: profile %q has an empty description", ErrInvalidConfig, p.Classification)
		}
		profiles[p.Classification] = p
	}

	for _, c := range domain.AllClassifications() {
		if _, ok := profiles[c]; !ok {
			return nil, fmt.Errorf("%w: missing profile for %q", ErrInvalidConfig, c)
		}
	}
	if len(profiles) != 16 {
		return nil, fmt.Errorf("%w: expected 16 profiles, got %d", ErrInvalidConfig, len(profiles))
	}

	return &ProfileCatalog{profiles: profiles}, nil
}

// Get returns the profile for a classification. Absence only happens if the
// catalog was constructed without validation, so it is a defensive error,
// not an expected path.
func (c *ProfileCatalog) Get(classification domain.Classification) (domain.ContentProfile, error) {
	p, ok := c.profiles[classification]
	if !ok {
		return domain.ContentProfile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, classification)
	}
	return p, nil
}
