package store

import (
	"context"

	"tradebinder/internal/models"
)

type AchievementStore struct {
	db DB
}

func NewAchievementStore(db DB) *AchievementStore {
	return &AchievementStore{db: db}
}

func (s *AchievementStore) ListAll(ctx context.Context) ([]models.Achievement, error) {
	var rows []models.Achievement
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, code, name, description, kind, threshold
		FROM achievements
		ORDER BY kind, threshold
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AchievementStore) ListUnlockedCodes(ctx context.Context, userID string) ([]string, error) {
	var codes []string
	err := s.db.SelectContext(ctx, &codes, `
		SELECT a.code
		FROM user_achievements ua
		JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id = $1
		ORDER BY a.code
	`, userID)
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (s *AchievementStore) Unlock(ctx context.Context, tx Execer, userID, achievementID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO user_achievements (user_id, achievement_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, userID, achievementID)
	return err
}

func (s *AchievementStore) Revoke(ctx context.Context, tx Execer, userID, achievementID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM user_achievements
		WHERE user_id = $1 AND achievement_id = $2
	`, userID, achievementID)
	return err
}
