package matching

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/bookbuddy/matchengine/internal/db"
)

// TasteProfile is the per-user statistical summary the scorer works
// with. Built fresh each cycle, never persisted.
type TasteProfile struct {
	UserID         uint64
	AuthorCounts   map[string]int
	CategoryCounts map[string]int
	TopAuthors     []string
	TopCategories  []string
	MeanRating     float64
	// Diversity is the normalized Shannon index over the author
	// distribution, in [0,1]. 0 when only one distinct author exists.
	Diversity float64
}

// ProfileBuilder converts raw interaction history into TasteProfiles.
type ProfileBuilder struct {
	interactions  InteractionSource
	fetchLimit    int
	topAuthors    int
	topCategories int
	concurrency   int
	log           *slog.Logger
}

// NewProfileBuilder creates a builder with the cycle's bounds.
func NewProfileBuilder(interactions InteractionSource, fetchLimit, topAuthors, topCategories, concurrency int, log *slog.Logger) *ProfileBuilder {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ProfileBuilder{
		interactions:  interactions,
		fetchLimit:    fetchLimit,
		topAuthors:    topAuthors,
		topCategories: topCategories,
		concurrency:   concurrency,
		log:           log,
	}
}

// Build fetches a user's recent public interactions and derives the
// profile. Returns (nil, nil) when the user has no qualifying
// interactions.
func (b *ProfileBuilder) Build(ctx context.Context, userID uint64) (*TasteProfile, error) {
	interactions, err := b.interactions.RecentPublic(ctx, userID, b.fetchLimit)
	if err != nil {
		return nil, err
	}
	if len(interactions) == 0 {
		return nil, nil
	}

	p := &TasteProfile{
		UserID:         userID,
		AuthorCounts:   make(map[string]int),
		CategoryCounts: make(map[string]int),
	}

	ratingSum := 0.0
	ratingCount := 0
	for _, it := range interactions {
		if it.Author != "" {
			p.AuthorCounts[it.Author]++
		}
		// every category value counts once
		for _, c := range it.Categories {
			if c != "" {
				p.CategoryCounts[c]++
			}
		}
		if it.Rating != nil {
			ratingSum += *it.Rating
			ratingCount++
		}
	}

	if ratingCount > 0 {
		p.MeanRating = ratingSum / float64(ratingCount)
	}
	p.TopAuthors = topN(p.AuthorCounts, b.topAuthors)
	p.TopCategories = topN(p.CategoryCounts, b.topCategories)
	p.Diversity = diversityIndex(p.AuthorCounts)

	return p, nil
}

// BuildAll builds profiles for all given users over a fixed-width
// worker pool, capping concurrent reads against the upstream store.
// A failed or empty build excludes that user from the result; it never
// aborts the batch. Cancelling ctx stops scheduling further fetches.
func (b *ProfileBuilder) BuildAll(ctx context.Context, users []db.User) map[uint64]*TasteProfile {
	jobs := make(chan uint64)
	var mu sync.Mutex
	profiles := make(map[uint64]*TasteProfile, len(users))

	var wg sync.WaitGroup
	for w := 0; w < b.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for userID := range jobs {
				profile, err := b.Build(ctx, userID)
				if err != nil {
					b.log.Warn("profile build failed, excluding user", "user_id", userID, "err", err)
					continue
				}
				if profile == nil {
					continue
				}
				mu.Lock()
				profiles[userID] = profile
				mu.Unlock()
			}
		}()
	}

	for _, u := range users {
		select {
		case jobs <- u.ID:
		case <-ctx.Done():
			// stop feeding, let in-flight builds finish
			close(jobs)
			wg.Wait()
			return profiles
		}
	}
	close(jobs)
	wg.Wait()

	return profiles
}

// topN returns the n most frequent keys, ordered by count descending
// with lexicographic names breaking ties. The tie-break is what keeps
// "top N" reproducible across runs and platforms.
func topN(counts map[string]int, n int) []string {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	if n > len(entries) {
		n = len(entries)
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = entries[i].name
	}
	return names
}

// diversityIndex computes the Shannon entropy of the frequency
// distribution normalized by log2 of the distinct count, clamped to
// [0,1]. A single distinct author yields 0 (the denominator would be
// zero).
func diversityIndex(counts map[string]int) float64 {
	if len(counts) <= 1 {
		return 0
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}

	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}

	d := h / math.Log2(float64(len(counts)))
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}
