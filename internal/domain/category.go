package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// CategoryType is the garment family a category groups.
type CategoryType string

const (
	CategoryTops            CategoryType = "tops"
	CategoryBottoms         CategoryType = "bottoms"
	CategoryDresses         CategoryType = "dresses"
	CategoryOuterwear       CategoryType = "outerwear"
	CategorySleepwear       CategoryType = "sleepwear"
	CategoryUnderwear       CategoryType = "underwear"
	CategoryFootwear        CategoryType = "footwear"
	CategoryAccessories     CategoryType = "accessories"
	CategoryKidsTops        CategoryType = "kids_tops"
	CategoryKidsBottoms     CategoryType = "kids_bottoms"
	CategoryKidsDresses     CategoryType = "kids_dresses"
	CategoryKidsFootwear    CategoryType = "kids_footwear"
	CategoryKidsAccessories CategoryType = "kids_accessories"
)

// Category is a node in the category tree; a nil ParentID marks a root.
type Category struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	Description  *string      `json:"description,omitempty"`
	ParentID     *uuid.UUID   `json:"parentId,omitempty"`
	CategoryType CategoryType `json:"categoryType"`
	SortOrder    int          `json:"sortOrder"`
	IsActive     bool         `json:"isActive"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (c Category) IsRoot() bool {
	return c.ParentID == nil
}

// RootCategories returns the roots of categories ordered by sort order.
func RootCategories(categories []Category) []Category {
	out := make([]Category, 0)
	for _, c := range categories {
		if c.IsRoot() {
			out = append(out, c)
		}
	}
	sortCategories(out)
	return out
}

// ChildCategories returns the direct children of parent ordered by sort order.
func ChildCategories(parent uuid.UUID, categories []Category) []Category {
	out := make([]Category, 0)
	for _, c := range categories {
		if c.ParentID != nil && *c.ParentID == parent {
			out = append(out, c)
		}
	}
	sortCategories(out)
	return out
}

func sortCategories(cs []Category) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].SortOrder < cs[j].SortOrder })
}
