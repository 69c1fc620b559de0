package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gender is the audience a garment is cut for.
type Gender string

const (
	GenderMens       Gender = "mens"
	GenderWomens     Gender = "womens"
	GenderUnisex     Gender = "unisex"
	GenderBoys       Gender = "boys"
	GenderGirls      Gender = "girls"
	GenderKidsUnisex Gender = "kids_unisex"
)

// Genders lists every gender category in display order.
var Genders = []Gender{GenderMens, GenderWomens, GenderUnisex, GenderBoys, GenderGirls, GenderKidsUnisex}

// ParseGender validates a raw gender value.
func ParseGender(s string) (Gender, bool) {
	for _, g := range Genders {
		if string(g) == s {
			return g, true
		}
	}
	return "", false
}

// IsKids reports whether the gender is one of the children's variants.
func (g Gender) IsKids() bool {
	switch g {
	case GenderBoys, GenderGirls, GenderKidsUnisex:
		return true
	}
	return false
}

func (g Gender) DisplayName() string {
	switch g {
	case GenderMens:
		return "Men's"
	case GenderWomens:
		return "Women's"
	case GenderUnisex:
		return "Unisex"
	case GenderBoys:
		return "Boys"
	case GenderGirls:
		return "Girls"
	case GenderKidsUnisex:
		return "Kids"
	}
	return string(g)
}

// ClosureType is the fastening mechanism of a garment. It stands in for a
// product's feature tags until products carry a real feature relation.
type ClosureType string

const (
	ClosureMagnetic       ClosureType = "magnetic"
	ClosureVelcro         ClosureType = "velcro"
	ClosureSnap           ClosureType = "snap"
	ClosureSideZip        ClosureType = "side_zip"
	ClosureBackOpening    ClosureType = "back_opening"
	ClosurePullOn         ClosureType = "pull_on"
	ClosureFrontOpening   ClosureType = "front_opening"
	ClosureEasyGripZipper ClosureType = "easy_grip_zipper"
	ClosureHookAndLoop    ClosureType = "hook_and_loop"
	ClosureElastic        ClosureType = "elastic"
	ClosureWrapTie        ClosureType = "wrap_tie"
	ClosureNone           ClosureType = "none"
)

// PriceTier is a coarse price bucket shared by brands and user preferences.
type PriceTier string

const (
	PriceTierBudget  PriceTier = "budget"
	PriceTierMid     PriceTier = "mid"
	PriceTierPremium PriceTier = "premium"
)

// Tier boundaries in currency units: budget < 50 <= mid < 150 <= premium.
var (
	MidTierFloor     = decimal.NewFromInt(50)
	PremiumTierFloor = decimal.NewFromInt(150)
)

// ParsePriceTier validates a raw price tier value.
func ParsePriceTier(s string) (PriceTier, bool) {
	switch PriceTier(s) {
	case PriceTierBudget, PriceTierMid, PriceTierPremium:
		return PriceTier(s), true
	}
	return "", false
}

// Contains reports whether price falls inside the tier.
func (t PriceTier) Contains(price decimal.Decimal) bool {
	switch t {
	case PriceTierBudget:
		return price.LessThan(MidTierFloor)
	case PriceTierMid:
		return price.GreaterThanOrEqual(MidTierFloor) && price.LessThan(PremiumTierFloor)
	case PriceTierPremium:
		return price.GreaterThanOrEqual(PremiumTierFloor)
	}
	return false
}

func (t PriceTier) DisplayName() string {
	switch t {
	case PriceTierBudget:
		return "Budget-Friendly"
	case PriceTierMid:
		return "Mid-Range"
	case PriceTierPremium:
		return "Premium"
	}
	return string(t)
}

func (t PriceTier) Indicator() string {
	switch t {
	case PriceTierBudget:
		return "$"
	case PriceTierMid:
		return "$$"
	case PriceTierPremium:
		return "$$$"
	}
	return ""
}

// Product is a catalog item. BrandName is denormalized from the brand for display.
// JSON tags follow the camelCase convention used by the API.
type Product struct {
	ID             uuid.UUID        `json:"id"`
	BrandID        uuid.UUID        `json:"brandId"`
	CategoryID     uuid.UUID        `json:"categoryId"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug"`
	Description    *string          `json:"description,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	OriginalPrice  *decimal.Decimal `json:"originalPrice,omitempty"`
	Currency       string           `json:"currency"`
	Gender         Gender           `json:"gender"`
	ClosureType    *ClosureType     `json:"closureType,omitempty"`
	ImageURL       *string          `json:"imageUrl,omitempty"`
	ProductURL     string           `json:"productUrl,omitempty"`
	IsAvailable    bool             `json:"isAvailable"`
	AvailableSizes []string         `json:"availableSizes,omitempty"`
	PacemakerSafe  *bool            `json:"pacemakerSafe,omitempty"`
	ReviewCount    int              `json:"reviewCount"`
	AverageRating  *float64         `json:"averageRating,omitempty"`
	SaveCount      int              `json:"saveCount"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
	BrandName      *string          `json:"brandName,omitempty"`
}

// IsOnSale holds exactly when an original price is present and above the current price.
func (p Product) IsOnSale() bool {
	return p.OriginalPrice != nil && p.Price.LessThan(*p.OriginalPrice)
}

// DiscountPercentage returns round((original-price)/original*100). The second
// result is false when there is no positive original price.
func (p Product) DiscountPercentage() (int, bool) {
	if p.OriginalPrice == nil || !p.OriginalPrice.IsPositive() {
		return 0, false
	}
	pct := p.OriginalPrice.Sub(p.Price).Div(*p.OriginalPrice).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart()), true
}

// Rating returns the average rating or zero when the product has none.
func (p Product) Rating() float64 {
	if p.AverageRating == nil {
		return 0
	}
	return *p.AverageRating
}

// RatingText formats the average rating with one decimal ("4.6").
func (p Product) RatingText() (string, bool) {
	if p.AverageRating == nil {
		return "", false
	}
	return fmt.Sprintf("%.1f", *p.AverageRating), true
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// FormatPrice renders an amount in the given currency. Unknown currencies are
// passed through as a code prefix.
func FormatPrice(amount decimal.Decimal, currency string) string {
	if sym, ok := currencySymbols[currency]; ok {
		return sym + amount.StringFixed(2)
	}
	return currency + " " + amount.StringFixed(2)
}

func (p Product) FormattedPrice() string {
	return FormatPrice(p.Price, p.Currency)
}

// BrandLabel returns the denormalized brand name or an empty string.
func (p Product) BrandLabel() string {
	if p.BrandName == nil {
		return ""
	}
	return *p.BrandName
}

// DescriptionText returns the description or an empty string.
func (p Product) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}
