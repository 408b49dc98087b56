// Package pricing serves daily price history for cards. Stored points come
// from the price_history table; days with no stored point are filled with a
// deterministic interpolation anchored on the card's rolling averages, so a
// chart request always returns one point per day and two requests for the
// same card render the same curve.
package pricing

import (
	"context"
	"fmt"
	"time"

	"tradebinder/internal/models"

	lru "github.com/hashicorp/golang-lru"
)

const (
	MinDays = 7
	MaxDays = 365
)

type PriceHistoryStore interface {
	History(ctx context.Context, cardID, variant string, days int) ([]models.PricePoint, error)
}

type CardGetter interface {
	GetByID(ctx context.Context, cardID string) (models.Card, error)
}

type Service struct {
	prices   PriceHistoryStore
	cards    CardGetter
	cache    *lru.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

type cacheEntry struct {
	points    []models.PricePoint
	expiresAt time.Time
}

func NewService(prices PriceHistoryStore, cards CardGetter, cacheSize int, cacheTTL time.Duration) (*Service, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		prices:   prices,
		cards:    cards,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}, nil
}

// History returns one price point per day over the trailing window, oldest
// first. Stored points win; missing days are interpolated. Results are
// cached per card, variant and window.
func (s *Service) History(ctx context.Context, cardID, variant string, days int, fillGaps bool) ([]models.PricePoint, error) {
	if days < MinDays {
		days = MinDays
	}
	if days > MaxDays {
		days = MaxDays
	}
	key := fmt.Sprintf("%s|%s|%d|%t", cardID, variant, days, fillGaps)
	if cached, ok := s.cache.Get(key); ok {
		entry := cached.(cacheEntry)
		if s.now().Before(entry.expiresAt) {
			return entry.points, nil
		}
		s.cache.Remove(key)
	}

	stored, err := s.prices.History(ctx, cardID, variant, days)
	if err != nil {
		return nil, err
	}
	points := stored
	if fillGaps {
		card, err := s.cards.GetByID(ctx, cardID)
		if err != nil {
			return nil, err
		}
		points = fillSeries(card, variant, stored, days, s.now().UTC())
	}

	s.cache.Add(key, cacheEntry{points: points, expiresAt: s.now().Add(s.cacheTTL)})
	return points, nil
}

// Invalidate drops cached series for a card after a price upsert.
func (s *Service) Invalidate(cardID string) {
	for _, key := range s.cache.Keys() {
		if k, ok := key.(string); ok && len(k) > len(cardID) && k[:len(cardID)+1] == cardID+"|" {
			s.cache.Remove(key)
		}
	}
}

// anchor is a known (daysAgo, price) pair derived from the card's rolling
// averages. A 30-day average approximates the price 30 days back, and so on
// down to the current trend price at day zero.
type anchor struct {
	daysAgo int
	price   int64
}

// fillSeries builds a dense day-by-day series. Days with a stored point use
// it verbatim; the rest are linearly interpolated between the surrounding
// anchors. No randomness: the same card state always yields the same curve.
func fillSeries(card models.Card, variant string, stored []models.PricePoint, days int, now time.Time) []models.PricePoint {
	anchors := buildAnchors(card, variant)
	if len(anchors) == 0 {
		// Nothing to anchor synthetic days on; zero-filling would crater
		// the chart, so serve only what was actually recorded.
		if len(stored) == 0 {
			return []models.PricePoint{}
		}
		return stored
	}

	byDay := make(map[string]models.PricePoint, len(stored))
	for _, point := range stored {
		byDay[point.Date.UTC().Format("2006-01-02")] = point
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]models.PricePoint, 0, days)
	for offset := days - 1; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		if point, ok := byDay[day.Format("2006-01-02")]; ok {
			out = append(out, point)
			continue
		}
		out = append(out, models.PricePoint{
			Date:  day,
			Price: interpolate(anchors, offset),
		})
	}
	return out
}

func buildAnchors(card models.Card, variant string) []anchor {
	current := card.CardmarketTrend
	if variant == models.VariantReverseHolo && card.CardmarketReverseAvg != nil {
		current = card.CardmarketReverseAvg
	}
	if current == nil {
		current = card.CardmarketAvg
	}

	var anchors []anchor
	if card.CardmarketAvg30 != nil {
		anchors = append(anchors, anchor{daysAgo: 30, price: *card.CardmarketAvg30})
	}
	if card.CardmarketAvg7 != nil {
		anchors = append(anchors, anchor{daysAgo: 7, price: *card.CardmarketAvg7})
	}
	if card.CardmarketAvg1 != nil {
		anchors = append(anchors, anchor{daysAgo: 1, price: *card.CardmarketAvg1})
	}
	if current != nil {
		anchors = append(anchors, anchor{daysAgo: 0, price: *current})
	}
	return anchors
}

// interpolate returns the price for a day the given number of days back,
// linearly interpolated between the two anchors that bracket it. Days older
// than the oldest anchor hold flat at that anchor.
func interpolate(anchors []anchor, daysAgo int) int64 {
	if len(anchors) == 0 {
		return 0
	}
	oldest := anchors[0]
	if daysAgo >= oldest.daysAgo {
		return oldest.price
	}
	newest := anchors[len(anchors)-1]
	if daysAgo <= newest.daysAgo {
		return newest.price
	}
	for i := 0; i < len(anchors)-1; i++ {
		older, newer := anchors[i], anchors[i+1]
		if daysAgo <= older.daysAgo && daysAgo >= newer.daysAgo {
			span := older.daysAgo - newer.daysAgo
			if span == 0 {
				return newer.price
			}
			progress := older.daysAgo - daysAgo
			return older.price + (newer.price-older.price)*int64(progress)/int64(span)
		}
	}
	return newest.price
}
