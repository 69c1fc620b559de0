// Package rank orders filtered products by preference affinity.
package rank

import (
	"sort"

	"github.com/wichananm65/able-backend/internal/domain"
)

// HighRating and ManyReviews are the thresholds for the rating and review bonuses.
const (
	HighRating  = 4.5
	ManyReviews = 50
)

// Weights are the points each signal contributes to a product's score.
type Weights struct {
	GenderMatch int `yaml:"gender_match"`
	HighRating  int `yaml:"high_rating"`
	ManyReviews int `yaml:"many_reviews"`
	OnSale      int `yaml:"on_sale"`
}

func DefaultWeights() Weights {
	return Weights{GenderMatch: 10, HighRating: 5, ManyReviews: 3, OnSale: 2}
}

type Ranker struct {
	weights Weights
}

func NewRanker(w Weights) *Ranker {
	return &Ranker{weights: w}
}

// Score sums the bonuses that apply to p. Only an exact gender match earns
// the gender bonus; unisex does not.
func (r *Ranker) Score(p domain.Product, prefs domain.Preferences) int {
	score := 0
	if prefs.Gender != nil && p.Gender == *prefs.Gender {
		score += r.weights.GenderMatch
	}
	if p.AverageRating != nil && *p.AverageRating >= HighRating {
		score += r.weights.HighRating
	}
	if p.ReviewCount > ManyReviews {
		score += r.weights.ManyReviews
	}
	if p.IsOnSale() {
		score += r.weights.OnSale
	}
	return score
}

// Rank returns a copy of products sorted by descending score. Equal scores
// keep their input order.
func (r *Ranker) Rank(products []domain.Product, prefs domain.Preferences) []domain.Product {
	type scored struct {
		p     domain.Product
		score int
	}
	items := make([]scored, len(products))
	for i, p := range products {
		items[i] = scored{p: p, score: r.Score(p, prefs)}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })

	out := make([]domain.Product, len(items))
	for i, it := range items {
		out[i] = it.p
	}
	return out
}
