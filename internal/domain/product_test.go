package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestPriceTierBoundaries(t *testing.T) {
	cases := []struct {
		price string
		tier  PriceTier
		want  bool
	}{
		{"49.99", PriceTierBudget, true},
		{"50.00", PriceTierBudget, false},
		{"50.00", PriceTierMid, true},
		{"149.99", PriceTierMid, true},
		{"150.00", PriceTierMid, false},
		{"150.00", PriceTierPremium, true},
		{"0", PriceTierPremium, false},
	}
	for _, tc := range cases {
		if got := tc.tier.Contains(dec(tc.price)); got != tc.want {
			t.Fatalf("%s.Contains(%s) = %v, want %v", tc.tier, tc.price, got, tc.want)
		}
	}
}

func TestProductSaleAndDiscount(t *testing.T) {
	p := Product{Price: dec("89.50"), OriginalPrice: decPtr("119.00")}
	if !p.IsOnSale() {
		t.Fatalf("expected product to be on sale")
	}
	pct, ok := p.DiscountPercentage()
	if !ok || pct != 25 {
		t.Fatalf("expected 25%% discount, got %d (ok=%v)", pct, ok)
	}

	same := Product{Price: dec("50"), OriginalPrice: decPtr("50")}
	if same.IsOnSale() {
		t.Fatalf("equal original price must not be a sale")
	}

	none := Product{Price: dec("50")}
	if none.IsOnSale() {
		t.Fatalf("missing original price must not be a sale")
	}
	if _, ok := none.DiscountPercentage(); ok {
		t.Fatalf("expected no discount without original price")
	}
}

func TestProductDisplayHelpers(t *testing.T) {
	r := 4.6
	name := "Tommy Adaptive"
	p := Product{Price: dec("69.5"), Currency: "USD", AverageRating: &r, BrandName: &name}
	if got := p.FormattedPrice(); got != "$69.50" {
		t.Fatalf("unexpected formatted price %q", got)
	}
	if got, ok := p.RatingText(); !ok || got != "4.6" {
		t.Fatalf("unexpected rating text %q", got)
	}
	if got := FormatPrice(dec("12"), "CAD"); got != "CAD 12.00" {
		t.Fatalf("unexpected passthrough format %q", got)
	}
	if p.BrandLabel() != name || p.DescriptionText() != "" {
		t.Fatalf("unexpected labels")
	}
}

func TestGenderParsing(t *testing.T) {
	g, ok := ParseGender("kids_unisex")
	if !ok || !g.IsKids() {
		t.Fatalf("expected kids gender, got %q ok=%v", g, ok)
	}
	if _, ok := ParseGender("other"); ok {
		t.Fatalf("expected unknown gender to be rejected")
	}
	if GenderUnisex.IsKids() {
		t.Fatalf("unisex is not a kids variant")
	}
}

func TestCategoryTree(t *testing.T) {
	root := uuid.New()
	other := uuid.New()
	cats := []Category{
		{ID: uuid.New(), Name: "b", ParentID: &root, SortOrder: 2},
		{ID: root, Name: "root", SortOrder: 5},
		{ID: other, Name: "other", SortOrder: 1},
		{ID: uuid.New(), Name: "a", ParentID: &root, SortOrder: 1},
	}

	roots := RootCategories(cats)
	if len(roots) != 2 || roots[0].ID != other || roots[1].ID != root {
		t.Fatalf("unexpected roots %+v", roots)
	}
	children := ChildCategories(root, cats)
	if len(children) != 2 || children[0].Name != "a" || children[1].Name != "b" {
		t.Fatalf("unexpected children %+v", children)
	}
	if len(ChildCategories(other, cats)) != 0 {
		t.Fatalf("expected leaf category to have no children")
	}
}

func TestGroupFeatures(t *testing.T) {
	groups := GroupFeatures([]Feature{
		{ID: "seated-cut", Category: FeatureFit},
		{ID: "magnetic-closures", Category: FeatureClosure},
		{ID: "side-opening", Category: FeatureEaseOfDressing},
		{ID: "pull-on", Category: FeatureClosure},
	})
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Category != FeatureClosure || groups[1].Category != FeatureEaseOfDressing || groups[2].Category != FeatureFit {
		t.Fatalf("unexpected group order %+v", groups)
	}
	if groups[0].Features[0].ID != "magnetic-closures" || groups[0].Features[1].ID != "pull-on" {
		t.Fatalf("group must keep input order: %+v", groups[0].Features)
	}
	if groups[0].Title != "Closures" {
		t.Fatalf("unexpected title %q", groups[0].Title)
	}
}

func TestPreferencesJSONAndClone(t *testing.T) {
	g := GenderWomens
	p := DefaultPreferences()
	p.Gender = &g
	p.FeatureIDs = NewSet("pull-on", "magnetic-closures")

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Preferences
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Gender == nil || *back.Gender != GenderWomens || !back.FeatureIDs.Has("pull-on") || len(back.FeatureIDs) != 2 {
		t.Fatalf("unexpected decoded preferences %+v", back)
	}

	c := p.Clone()
	c.FeatureIDs["seated-cut"] = struct{}{}
	*c.Gender = GenderMens
	if p.FeatureIDs.Has("seated-cut") || *p.Gender != GenderWomens {
		t.Fatalf("clone shares state with original")
	}
}
