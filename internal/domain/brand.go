package domain

import (
	"time"

	"github.com/google/uuid"
)

// Brand is a clothing label. IsAdaptiveOnly and HasMainstreamLine are independent flags.
type Brand struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Slug              string    `json:"slug"`
	Description       *string   `json:"description,omitempty"`
	LogoURL           *string   `json:"logoUrl,omitempty"`
	WebsiteURL        string    `json:"websiteUrl"`
	IsAdaptiveOnly    bool      `json:"isAdaptiveOnly"`
	HasMainstreamLine bool      `json:"hasMainstreamLine"`
	PriceTier         PriceTier `json:"priceTier"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (b Brand) DisplayDescription() string {
	switch {
	case b.IsAdaptiveOnly:
		return "Adaptive-focused brand"
	case b.HasMainstreamLine:
		return "Mainstream brand with adaptive line"
	default:
		return "Adaptive-friendly options"
	}
}
