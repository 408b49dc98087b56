package store

import (
	"context"

	"tradebinder/internal/models"
)

type WantedStore struct {
	db DB
}

func NewWantedStore(db DB) *WantedStore {
	return &WantedStore{db: db}
}

func (s *WantedStore) Create(ctx context.Context, tx Execer, post models.WantedPost) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wanted_posts (id, user_id, card_id, max_price_minor, condition, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, post.ID, post.UserID, post.CardID, post.MaxPriceMinor, post.Condition, post.Notes)
	return err
}

type wantedRow struct {
	ID            string  `db:"id"`
	UserID        string  `db:"user_id"`
	Username      *string `db:"username"`
	CardID        string  `db:"card_id"`
	CardName      string  `db:"card_name"`
	Rarity        string  `db:"rarity"`
	ImageSmall    string  `db:"image_small"`
	MaxPriceMinor *int64  `db:"max_price_minor"`
	Condition     string  `db:"condition"`
	Notes         string  `db:"notes"`
	CreatedAt     any     `db:"created_at"`
}

// List returns the public board, newest first.
func (s *WantedStore) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	var rows []wantedRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT p.id, p.user_id, u.username, p.card_id, c.name AS card_name, c.rarity, c.image_small,
		       p.max_price_minor, p.condition, p.notes, p.created_at
		FROM wanted_posts p
		LEFT JOIN users u ON u.id = p.user_id
		JOIN cards c ON c.id = p.card_id
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	posts := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, map[string]any{
			"id":              row.ID,
			"user_id":         row.UserID,
			"username":        derefStringPtr(row.Username),
			"card_id":         row.CardID,
			"card_name":       row.CardName,
			"rarity":          row.Rarity,
			"image_small":     row.ImageSmall,
			"max_price_minor": row.MaxPriceMinor,
			"condition":       row.Condition,
			"notes":           row.Notes,
			"created_at":      row.CreatedAt,
		})
	}
	return posts, nil
}

func (s *WantedStore) Delete(ctx context.Context, postID, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM wanted_posts WHERE id = $1 AND user_id = $2
	`, postID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
