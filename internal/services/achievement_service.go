package services

import (
	"context"

	"tradebinder/internal/db"
	"tradebinder/internal/models"
	"tradebinder/internal/store"

	"github.com/jmoiron/sqlx"
)

const (
	AchievementKindUniqueCards     = "unique_cards"
	AchievementKindTotalCards      = "total_cards"
	AchievementKindTradesCompleted = "trades_completed"
)

type AchievementCatalog interface {
	ListAll(ctx context.Context) ([]models.Achievement, error)
	ListUnlockedCodes(ctx context.Context, userID string) ([]string, error)
	Unlock(ctx context.Context, tx store.Execer, userID, achievementID string) error
	Revoke(ctx context.Context, tx store.Execer, userID, achievementID string) error
}

type CollectionStatser interface {
	Stats(ctx context.Context, userID string) (store.CollectionStats, error)
}

type TradeCounter interface {
	CountCompletedByUser(ctx context.Context, userID string) (int, error)
}

// AchievementService re-derives a user's achievement set from their current
// collection and trade stats. Achievements are not sticky: shrinking below
// a threshold revokes the badge.
type AchievementService struct {
	txRunner     db.TxRunner
	achievements AchievementCatalog
	collections  CollectionStatser
	trades       TradeCounter
}

func NewAchievementService(txRunner db.TxRunner, achievements AchievementCatalog, collections CollectionStatser, trades TradeCounter) *AchievementService {
	return &AchievementService{
		txRunner:     txRunner,
		achievements: achievements,
		collections:  collections,
		trades:       trades,
	}
}

// Evaluate reconciles the stored achievement set against current stats and
// returns what was unlocked and what was revoked.
func (s *AchievementService) Evaluate(ctx context.Context, userID string) ([]models.Achievement, []models.Achievement, error) {
	all, err := s.achievements.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	unlockedCodes, err := s.achievements.ListUnlockedCodes(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	held := make(map[string]bool, len(unlockedCodes))
	for _, code := range unlockedCodes {
		held[code] = true
	}

	stats, err := s.collections.Stats(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	completedTrades, err := s.trades.CountCompletedByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	var toUnlock, toRevoke []models.Achievement
	for _, achievement := range all {
		var metric int
		switch achievement.Kind {
		case AchievementKindUniqueCards:
			metric = stats.DistinctCards
		case AchievementKindTotalCards:
			metric = stats.TotalQuantity
		case AchievementKindTradesCompleted:
			metric = completedTrades
		default:
			continue
		}
		earned := metric >= achievement.Threshold
		switch {
		case earned && !held[achievement.Code]:
			toUnlock = append(toUnlock, achievement)
		case !earned && held[achievement.Code]:
			toRevoke = append(toRevoke, achievement)
		}
	}
	if len(toUnlock) == 0 && len(toRevoke) == 0 {
		return nil, nil, nil
	}

	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, achievement := range toUnlock {
			if err := s.achievements.Unlock(ctx, tx, userID, achievement.ID); err != nil {
				return err
			}
		}
		for _, achievement := range toRevoke {
			if err := s.achievements.Revoke(ctx, tx, userID, achievement.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return toUnlock, toRevoke, nil
}

// ListWithStatus returns the full catalog annotated with the user's
// unlocked state, for the profile page.
func (s *AchievementService) ListWithStatus(ctx context.Context, userID string) ([]map[string]any, error) {
	all, err := s.achievements.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	unlockedCodes, err := s.achievements.ListUnlockedCodes(ctx, userID)
	if err != nil {
		return nil, err
	}
	held := make(map[string]bool, len(unlockedCodes))
	for _, code := range unlockedCodes {
		held[code] = true
	}
	out := make([]map[string]any, 0, len(all))
	for _, achievement := range all {
		out = append(out, map[string]any{
			"code":        achievement.Code,
			"name":        achievement.Name,
			"description": achievement.Description,
			"kind":        achievement.Kind,
			"threshold":   achievement.Threshold,
			"unlocked":    held[achievement.Code],
		})
	}
	return out, nil
}
