package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category is the productivity classification of an application.
type Category string

const (
	CategoryProductive  Category = "productive"
	CategoryNeutral     Category = "neutral"
	CategoryDistracting Category = "distracting"
)

// Errors
var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrEmptyAppID      = errors.New("app id is required")
)

// Categories returns every category in scoring order.
func Categories() []Category {
	return []Category{CategoryProductive, CategoryNeutral, CategoryDistracting}
}

// ParseCategory parses a category name, ignoring case and surrounding space.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryProductive, CategoryNeutral, CategoryDistracting:
		return true
	}
	return false
}

// Weight returns the scoring multiplier for the category. Unknown values
// weigh like neutral.
func (c Category) Weight() float64 {
	switch c {
	case CategoryProductive:
		return 1.0
	case CategoryDistracting:
		return 0.0
	default:
		return 0.5
	}
}

func (c Category) String() string {
	return string(c)
}

// CategoryMapping assigns a category to one application.
type CategoryMapping struct {
	AppID     string
	Category  Category
	IsCustom  bool
	UpdatedAt time.Time
}

// NewCategoryMapping creates a mapping. Custom mappings come from the user
// and win over catalog defaults.
func NewCategoryMapping(appID string, category Category, custom bool) (*CategoryMapping, error) {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return nil, ErrEmptyAppID
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	return &CategoryMapping{
		AppID:     appID,
		Category:  category,
		IsCustom:  custom,
		UpdatedAt: time.Now(),
	}, nil
}

// ResolutionSource tells where a resolved category came from.
type ResolutionSource int

const (
	// ResolvedFallback means no mapping exists and the neutral default applies.
	ResolvedFallback ResolutionSource = iota
	// ResolvedMapping means a stored mapping was found.
	ResolvedMapping
)

func (s ResolutionSource) String() string {
	if s == ResolvedMapping {
		return "mapping"
	}
	return "fallback"
}

// Resolution is the outcome of classifying an application.
type Resolution struct {
	AppID    string
	Category Category
	Source   ResolutionSource
}

// FallbackResolution is the neutral result for an unmapped application.
func FallbackResolution(appID string) Resolution {
	return Resolution{AppID: appID, Category: CategoryNeutral, Source: ResolvedFallback}
}

// MappedResolution wraps a stored mapping.
func MappedResolution(m *CategoryMapping) Resolution {
	return Resolution{AppID: m.AppID, Category: m.Category, Source: ResolvedMapping}
}

// Weight returns the scoring multiplier of the resolved category.
func (r Resolution) Weight() float64 {
	return r.Category.Weight()
}

// IsMapped reports whether a stored mapping produced this resolution.
func (r Resolution) IsMapped() bool {
	return r.Source == ResolvedMapping
}

// CategoryIndex resolves applications from an in-memory mapping set.
type CategoryIndex interface {
	Resolve(appID string) Resolution
}
