package enums

import "fmt"

// SortOption orders catalog listings.
type SortOption string

const (
	SortFeatured  SortOption = "featured"
	SortPriceLow  SortOption = "price-low"
	SortPriceHigh SortOption = "price-high"
	SortNewest    SortOption = "newest"
	SortPopular   SortOption = "popular"
)

var validSortOptions = []SortOption{
	SortFeatured,
	SortPriceLow,
	SortPriceHigh,
	SortNewest,
	SortPopular,
}

// IsValid reports whether the value is a known SortOption.
func (s SortOption) IsValid() bool {
	for _, candidate := range validSortOptions {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortOption converts raw input into a SortOption; empty input means featured.
func ParseSortOption(value string) (SortOption, error) {
	if value == "" {
		return SortFeatured, nil
	}
	for _, candidate := range validSortOptions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort option %q", value)
}
