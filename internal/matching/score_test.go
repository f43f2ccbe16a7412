package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookbuddy/matchengine/internal/db"
)

func profileWith(userID uint64, meanRating float64, authors ...string) *TasteProfile {
	return &TasteProfile{
		UserID:        userID,
		TopAuthors:    authors,
		TopCategories: []string{"sci-fi"},
		MeanRating:    meanRating,
	}
}

func TestScore_Symmetry(t *testing.T) {
	a := profileWith(1, 4.2, "Le Guin", "Chiang", "Butler")
	b := profileWith(2, 3.1, "Le Guin", "Jemisin")

	ab := Score(a, b)
	ba := Score(b, a)

	assert.Equal(t, ab.Score, ba.Score)
	assert.Equal(t, ab.SharedAuthors, ba.SharedAuthors)
	assert.Equal(t, ab.Key(), ba.Key())
}

func TestScore_Bounds(t *testing.T) {
	cases := []struct {
		name string
		a, b *TasteProfile
	}{
		{"identical", profileWith(1, 5, "x", "y"), profileWith(2, 5, "x", "y")},
		{"disjoint", profileWith(1, 1, "x"), profileWith(2, 5, "y")},
		{"empty", profileWith(1, 0), profileWith(2, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Score(tc.a, tc.b).Score
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		})
	}
}

func TestScore_IdenticalProfiles(t *testing.T) {
	a := &TasteProfile{UserID: 1, TopAuthors: []string{"x", "y"}, TopCategories: []string{"c"}, MeanRating: 4}
	b := &TasteProfile{UserID: 2, TopAuthors: []string{"x", "y"}, TopCategories: []string{"c"}, MeanRating: 4}

	r := Score(a, b)
	// full author and category overlap, equal ratings, zero discovery
	assert.InDelta(t, 0.9, r.Score, 1e-9)
	assert.Equal(t, []string{"x", "y"}, r.SharedAuthors)
	assert.Equal(t, []string{"c"}, r.SharedCategories)
}

func TestScore_RatingAgreement(t *testing.T) {
	// max rating spread of 4 zeroes the rating factor
	a := profileWith(1, 1, "x")
	b := profileWith(2, 5, "x")
	low := Score(a, b).Score

	c := profileWith(3, 5, "x")
	high := Score(b, c).Score
	assert.Greater(t, high, low)
	assert.InDelta(t, 0.2, high-low, 1e-9)
}

func TestScore_SharedAuthorsEvidence(t *testing.T) {
	a := profileWith(1, 4, "Butler", "Chiang", "Le Guin", "u1", "u2")
	b := profileWith(2, 4, "Le Guin", "Butler", "Chiang", "v1", "v2")

	r := Score(a, b)
	assert.Equal(t, []string{"Butler", "Chiang", "Le Guin"}, r.SharedAuthors)
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 0.0, jaccard(nil, nil))
	assert.Equal(t, 1.0, jaccard([]string{"a"}, []string{"a"}))
	assert.InDelta(t, 1.0/3.0, jaccard([]string{"a", "b"}, []string{"b", "c"}), 1e-9)
}

func TestDiscoveryPotential(t *testing.T) {
	assert.Equal(t, 0.0, discoveryPotential(nil, nil))
	assert.Equal(t, 0.0, discoveryPotential([]string{"a"}, []string{"a"}))
	assert.Equal(t, 1.0, discoveryPotential([]string{"a"}, []string{"b"}))
	assert.InDelta(t, 2.0/3.0, discoveryPotential([]string{"a", "b"}, []string{"b", "c"}), 1e-9)
}

func TestGenderCompatible(t *testing.T) {
	user := func(gender, pref string) db.User {
		return db.User{Gender: gender, PreferredGender: pref}
	}

	cases := []struct {
		name string
		a, b db.User
		want bool
	}{
		{"both any", user("male", "any"), user("female", "any"), true},
		{"mutual match", user("male", "female"), user("female", "male"), true},
		{"one side excluded", user("male", "female"), user("male", "any"), false},
		{"other side excluded", user("female", "any"), user("male", "male"), false},
		{"unset reads as any", user("", ""), user("male", "female"), true},
		{"same gender both any", user("female", "any"), user("female", "any"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GenderCompatible(tc.a, tc.b))
			assert.Equal(t, tc.want, GenderCompatible(tc.b, tc.a))
		})
	}
}

func TestPairKey_Canonical(t *testing.T) {
	assert.Equal(t, "3|17", pairKey(17, 3))
	assert.Equal(t, "3|17", pairKey(3, 17))
}
