package domain

import (
	"strings"
	"unicode"
)

// Category is one of the fixed frequency buckets questions are grouped into.
// The zero value is not a valid category.
type Category int

const (
	CategoryFrequent Category = iota + 1
	CategoryOccasional
	CategoryRare
)

// Categories lists every bucket in display order.
var Categories = []Category{CategoryFrequent, CategoryOccasional, CategoryRare}

// Label is the canonical display label.
func (c Category) Label() string {
	switch c {
	case CategoryFrequent:
		return "Frequently Asked"
	case CategoryOccasional:
		return "Occasionally Asked"
	case CategoryRare:
		return "Rarely Asked"
	default:
		return "Unknown"
	}
}

// Color follows severity: the most frequently asked bucket is red.
func (c Category) Color() string {
	switch c {
	case CategoryFrequent:
		return "red"
	case CategoryOccasional:
		return "orange"
	case CategoryRare:
		return "green"
	default:
		return "gray"
	}
}

// Slug is the path-safe identifier used by the presentation API.
func (c Category) Slug() string {
	switch c {
	case CategoryFrequent:
		return "frequent"
	case CategoryOccasional:
		return "occasional"
	case CategoryRare:
		return "rare"
	default:
		return ""
	}
}

func (c Category) String() string {
	return c.Slug()
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.Slug()), nil
}

// ParseCategorySlug resolves a value produced by Slug.
func ParseCategorySlug(slug string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(slug)) {
	case "frequent", "frequently":
		return CategoryFrequent, true
	case "occasional", "occasionally":
		return CategoryOccasional, true
	case "rare", "rarely":
		return CategoryRare, true
	default:
		return 0, false
	}
}

// ParseCategoryLabel maps a decorated service label such as "🔴 Frequently Asked"
// onto the enum. Emoji, punctuation, spacing and case are ignored.
func ParseCategoryLabel(label string) (Category, bool) {
	words := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, word := range words {
		switch word {
		case "frequently", "frequent", "high":
			return CategoryFrequent, true
		case "occasionally", "occasional", "medium":
			return CategoryOccasional, true
		case "rarely", "rare", "low":
			return CategoryRare, true
		}
	}
	return 0, false
}
