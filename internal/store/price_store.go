package store

import (
	"context"
	"time"

	"tradebinder/internal/models"
)

type PriceStore struct {
	db DB
}

func NewPriceStore(db DB) *PriceStore {
	return &PriceStore{db: db}
}

// History returns stored daily price points for a card variant, oldest
// first, covering the trailing number of days.
func (s *PriceStore) History(ctx context.Context, cardID, variant string, days int) ([]models.PricePoint, error) {
	var rows []models.PricePoint
	err := s.db.SelectContext(ctx, &rows, `
		SELECT day, price, reverse_holo_price, tcgplayer_price
		FROM price_history
		WHERE card_id = $1 AND variant = $2 AND day >= $3
		ORDER BY day
	`, cardID, variant, time.Now().UTC().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *PriceStore) Insert(ctx context.Context, tx Execer, cardID, variant string, point models.PricePoint) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO price_history (card_id, variant, day, price, reverse_holo_price, tcgplayer_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (card_id, variant, day) DO UPDATE SET
			price = EXCLUDED.price,
			reverse_holo_price = EXCLUDED.reverse_holo_price,
			tcgplayer_price = EXCLUDED.tcgplayer_price
	`, cardID, variant, point.Date, point.Price, point.ReverseHoloPrice, point.TCGPlayerPrice)
	return err
}
