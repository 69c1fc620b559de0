package domain

import (
	"encoding/json"
	"sort"
)

// UserMode says who the shopper is buying for.
type UserMode string

const (
	ModeIndividual UserMode = "individual"
	ModeCaregiver  UserMode = "caregiver"
)

func ParseUserMode(s string) (UserMode, bool) {
	switch UserMode(s) {
	case ModeIndividual, ModeCaregiver:
		return UserMode(s), true
	}
	return "", false
}

// Challenge is a difficulty a shopper describes during onboarding.
type Challenge struct {
	Slug       string   `json:"slug"`
	Name       string   `json:"name"`
	FeatureIDs []string `json:"featureIds"`
}

// Set is a set of string ids. It encodes as a sorted JSON array.
type Set map[string]struct{}

func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *Set) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}

// Preferences is a shopper's filtering profile. The zero value has no
// constraints; nil sets behave as empty.
type Preferences struct {
	Gender       *Gender    `json:"preferredGender,omitempty"`
	PriceTier    *PriceTier `json:"preferredPriceTier,omitempty"`
	FeatureIDs   Set        `json:"selectedFeatureIds"`
	ChallengeIDs Set        `json:"selectedChallengeIds"`
	Mode         UserMode   `json:"currentMode,omitempty"`
}

// DefaultPreferences returns the all-empty profile.
func DefaultPreferences() Preferences {
	return Preferences{
		FeatureIDs:   Set{},
		ChallengeIDs: Set{},
		Mode:         ModeIndividual,
	}
}

// Clone returns a deep copy that shares no state with p.
func (p Preferences) Clone() Preferences {
	out := p
	if p.Gender != nil {
		g := *p.Gender
		out.Gender = &g
	}
	if p.PriceTier != nil {
		t := *p.PriceTier
		out.PriceTier = &t
	}
	out.FeatureIDs = p.FeatureIDs.Clone()
	out.ChallengeIDs = p.ChallengeIDs.Clone()
	return out
}
