package domain

import (
	"sort"
	"time"
)

// FeatureCategory groups adaptive features for display.
type FeatureCategory string

const (
	FeatureClosure        FeatureCategory = "closure"
	FeatureFit            FeatureCategory = "fit"
	FeatureSensory        FeatureCategory = "sensory"
	FeatureSpecialized    FeatureCategory = "specialized"
	FeatureEaseOfDressing FeatureCategory = "ease_of_dressing"
)

// FeatureCategories lists every feature category in display order.
var FeatureCategories = []FeatureCategory{
	FeatureClosure, FeatureEaseOfDressing, FeatureFit, FeatureSensory, FeatureSpecialized,
}

// SortOrder is the position of the category in FeatureCategories.
func (c FeatureCategory) SortOrder() int {
	for i, fc := range FeatureCategories {
		if fc == c {
			return i
		}
	}
	return len(FeatureCategories)
}

func (c FeatureCategory) DisplayName() string {
	switch c {
	case FeatureClosure:
		return "Closures"
	case FeatureFit:
		return "Fit & Cut"
	case FeatureSensory:
		return "Sensory"
	case FeatureSpecialized:
		return "Specialized"
	case FeatureEaseOfDressing:
		return "Ease of Dressing"
	}
	return string(c)
}

// Feature is an adaptive-design attribute a shopper can filter by.
type Feature struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description *string         `json:"description,omitempty"`
	Category    FeatureCategory `json:"category"`
	SearchTerms []string        `json:"searchTerms,omitempty"`
	DisplayName string          `json:"displayName"`
	BadgeText   *string         `json:"badgeText,omitempty"`
	IsActive    bool            `json:"isActive"`
	SortOrder   int             `json:"sortOrder"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// FeatureGroup is the features of one category.
type FeatureGroup struct {
	Category FeatureCategory `json:"category"`
	Title    string          `json:"title"`
	Features []Feature       `json:"features"`
}

// GroupFeatures buckets features by category. Empty groups are omitted and
// groups follow FeatureCategories order; features keep their input order.
func GroupFeatures(features []Feature) []FeatureGroup {
	byCategory := map[FeatureCategory][]Feature{}
	for _, f := range features {
		byCategory[f.Category] = append(byCategory[f.Category], f)
	}
	groups := make([]FeatureGroup, 0, len(byCategory))
	for cat, fs := range byCategory {
		groups = append(groups, FeatureGroup{Category: cat, Title: cat.DisplayName(), Features: fs})
	}
	sort.Slice(groups, func(i, j int) bool {
		oi, oj := groups[i].Category.SortOrder(), groups[j].Category.SortOrder()
		if oi != oj {
			return oi < oj
		}
		return groups[i].Category < groups[j].Category
	})
	return groups
}
