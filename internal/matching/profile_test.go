package matching

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbuddy/matchengine/internal/db"
)

// fakeInteractions is an in-memory InteractionSource for builder tests.
type fakeInteractions struct {
	byUser map[uint64][]db.Interaction
	errFor map[uint64]error
}

func (f *fakeInteractions) CountForUser(_ context.Context, userID uint64) (int64, error) {
	if err := f.errFor[userID]; err != nil {
		return 0, err
	}
	return int64(len(f.byUser[userID])), nil
}

func (f *fakeInteractions) HasPublicSince(_ context.Context, userID uint64, since time.Time) (bool, error) {
	if err := f.errFor[userID]; err != nil {
		return false, err
	}
	for _, it := range f.byUser[userID] {
		if it.Visibility != "private" && !it.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInteractions) RecentPublic(_ context.Context, userID uint64, limit int) ([]db.Interaction, error) {
	if err := f.errFor[userID]; err != nil {
		return nil, err
	}
	var out []db.Interaction
	for _, it := range f.byUser[userID] {
		if it.Visibility != "private" {
			out = append(out, it)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rated(v float64) *float64 { return &v }

func interactionsFor(author string, n int, rating *float64, categories ...string) []db.Interaction {
	out := make([]db.Interaction, n)
	for i := range out {
		out[i] = db.Interaction{Author: author, Rating: rating, Categories: categories}
	}
	return out
}

func TestProfileBuilder_Build(t *testing.T) {
	src := &fakeInteractions{byUser: map[uint64][]db.Interaction{
		1: {
			{Author: "Le Guin", Rating: rated(5), Categories: []string{"sci-fi", "classics"}},
			{Author: "Le Guin", Rating: rated(3), Categories: []string{"sci-fi"}},
			{Author: "Chiang", Categories: []string{"sci-fi"}},
		},
	}}
	b := NewProfileBuilder(src, 200, 10, 5, 10, discardLogger())

	p, err := b.Build(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, uint64(1), p.UserID)
	assert.Equal(t, 2, p.AuthorCounts["Le Guin"])
	assert.Equal(t, 1, p.AuthorCounts["Chiang"])
	// one count per category value, across all interactions
	assert.Equal(t, 3, p.CategoryCounts["sci-fi"])
	assert.Equal(t, 1, p.CategoryCounts["classics"])
	// mean over rated interactions only
	assert.InDelta(t, 4.0, p.MeanRating, 1e-9)
	assert.Equal(t, []string{"Le Guin", "Chiang"}, p.TopAuthors)
}

func TestProfileBuilder_NoQualifyingInteractions(t *testing.T) {
	src := &fakeInteractions{byUser: map[uint64][]db.Interaction{}}
	b := NewProfileBuilder(src, 200, 10, 5, 10, discardLogger())

	p, err := b.Build(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileBuilder_BuildAll_ExcludesFailures(t *testing.T) {
	src := &fakeInteractions{
		byUser: map[uint64][]db.Interaction{
			1: interactionsFor("Le Guin", 3, nil),
			2: interactionsFor("Chiang", 3, nil),
		},
		errFor: map[uint64]error{3: errors.New("store unavailable")},
	}
	b := NewProfileBuilder(src, 200, 10, 5, 2, discardLogger())

	profiles := b.BuildAll(context.Background(), []db.User{{ID: 1}, {ID: 2}, {ID: 3}})

	assert.Len(t, profiles, 2)
	assert.Contains(t, profiles, uint64(1))
	assert.Contains(t, profiles, uint64(2))
	assert.NotContains(t, profiles, uint64(3))
}

// gatedSource blocks its first fetch until the context is cancelled
// and refuses fetches issued after cancellation.
type gatedSource struct {
	started chan struct{}
}

func (g *gatedSource) CountForUser(context.Context, uint64) (int64, error) { return 0, nil }

func (g *gatedSource) HasPublicSince(context.Context, uint64, time.Time) (bool, error) {
	return false, nil
}

func (g *gatedSource) RecentPublic(ctx context.Context, userID uint64, _ int) ([]db.Interaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.started <- struct{}{}
	<-ctx.Done()
	return interactionsFor("Le Guin", 3, nil), nil
}

func TestProfileBuilder_BuildAll_CancelStopsScheduling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &gatedSource{started: make(chan struct{})}
	b := NewProfileBuilder(src, 200, 10, 5, 1, discardLogger())

	done := make(chan map[uint64]*TasteProfile, 1)
	go func() {
		done <- b.BuildAll(ctx, []db.User{{ID: 1}, {ID: 2}, {ID: 3}})
	}()

	// user 1's fetch is in flight and the single worker is occupied,
	// so no further user can be scheduled before the cancel lands
	<-src.started
	cancel()

	profiles := <-done
	// the in-flight build completes with its partial result kept
	require.Len(t, profiles, 1)
	assert.Contains(t, profiles, uint64(1))
}

func TestTopN_DeterministicTieBreak(t *testing.T) {
	counts := map[string]int{"banana": 2, "apple": 2, "cherry": 1}
	// equal counts break lexicographically
	assert.Equal(t, []string{"apple", "banana"}, topN(counts, 2))
	assert.Equal(t, []string{"apple", "banana", "cherry"}, topN(counts, 10))
}

func TestDiversityIndex(t *testing.T) {
	// single distinct author: denominator would be zero, clamp to 0
	assert.Equal(t, 0.0, diversityIndex(map[string]int{"only": 42}))
	assert.Equal(t, 0.0, diversityIndex(map[string]int{}))

	// perfectly uniform distribution normalizes to 1
	uniform := map[string]int{"a": 3, "b": 3, "c": 3, "d": 3}
	assert.InDelta(t, 1.0, diversityIndex(uniform), 1e-9)

	// skew lowers the index
	skewed := map[string]int{"a": 97, "b": 1, "c": 1, "d": 1}
	d := diversityIndex(skewed)
	assert.Greater(t, d, 0.0)
	assert.Less(t, d, 0.5)
}
