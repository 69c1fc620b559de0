package preference

import "github.com/wichananm65/able-backend/internal/domain"

// Challenges is the onboarding challenge table with the features each one recommends.
var Challenges = []domain.Challenge{
	{Slug: "limited-hand-mobility", Name: "Limited hand mobility", FeatureIDs: []string{"magnetic-closures", "velcro-closures", "one-hand-friendly"}},
	{Slug: "wheelchair-user", Name: "Use a wheelchair", FeatureIDs: []string{"seated-cut", "side-opening"}},
	{Slug: "sensory-sensitivities", Name: "Sensory sensitivities", FeatureIDs: []string{"sensory-friendly"}},
	{Slug: "one-hand-dressing", Name: "One-hand dressing", FeatureIDs: []string{"magnetic-closures", "one-hand-friendly", "pull-on"}},
	{Slug: "arthritis", Name: "Arthritis/joint pain", FeatureIDs: []string{"magnetic-closures", "velcro-closures", "pull-on"}},
}

// ChallengeFeatures returns the feature ids mapped to slug, or nil for an unmapped slug.
func ChallengeFeatures(slug string) []string {
	for _, c := range Challenges {
		if c.Slug == slug {
			return c.FeatureIDs
		}
	}
	return nil
}
