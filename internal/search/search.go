// Package search provides fuzzy card-name lookup backed by an in-memory
// index rebuilt on demand. The index is small (one id/name pair per card)
// so a full rebuild after the refresh interval is cheaper than tracking
// invalidations.
package search

import (
	"context"
	"sync"
	"time"

	"tradebinder/internal/store"

	"github.com/sahilm/fuzzy"
)

const DefaultLimit = 25

type NameSource interface {
	ListNames(ctx context.Context) ([]store.CardName, error)
}

type cardIndex []store.CardName

func (c cardIndex) String(i int) string { return c[i].Name }
func (c cardIndex) Len() int            { return len(c) }

type Match struct {
	CardID string `json:"card_id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

type Index struct {
	source  NameSource
	refresh time.Duration
	mu      sync.RWMutex
	cards   cardIndex
	builtAt time.Time
	now     func() time.Time
}

func NewIndex(source NameSource, refresh time.Duration) *Index {
	return &Index{source: source, refresh: refresh, now: time.Now}
}

// Search returns the best-scoring card names for the query, capped at
// limit. An empty query returns no matches rather than the whole catalog.
func (idx *Index) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	if query == "" {
		return []Match{}, nil
	}
	if limit <= 0 || limit > DefaultLimit*4 {
		limit = DefaultLimit
	}
	cards, err := idx.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	results := fuzzy.FindFrom(query, cards)
	if len(results) > limit {
		results = results[:limit]
	}
	matches := make([]Match, 0, len(results))
	for _, result := range results {
		matches = append(matches, Match{
			CardID: cards[result.Index].ID,
			Name:   cards[result.Index].Name,
			Score:  result.Score,
		})
	}
	return matches, nil
}

func (idx *Index) snapshot(ctx context.Context) (cardIndex, error) {
	idx.mu.RLock()
	if idx.cards != nil && idx.now().Sub(idx.builtAt) < idx.refresh {
		cards := idx.cards
		idx.mu.RUnlock()
		return cards, nil
	}
	idx.mu.RUnlock()

	names, err := idx.source.ListNames(ctx)
	if err != nil {
		// Serve the stale index if a rebuild fails and we have one.
		idx.mu.RLock()
		cards := idx.cards
		idx.mu.RUnlock()
		if cards != nil {
			return cards, nil
		}
		return nil, err
	}

	idx.mu.Lock()
	idx.cards = cardIndex(names)
	idx.builtAt = idx.now()
	cards := idx.cards
	idx.mu.Unlock()
	return cards, nil
}
