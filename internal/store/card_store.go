package store

import (
	"context"
	"fmt"

	"tradebinder/internal/models"

	"github.com/lib/pq"
)

type CardStore struct {
	db DB
}

func NewCardStore(db DB) *CardStore {
	return &CardStore{db: db}
}

const cardColumns = `
	id, set_id, name, number, rarity, image_small, image_large,
	cardmarket_avg, cardmarket_low, cardmarket_trend,
	cardmarket_avg1, cardmarket_avg7, cardmarket_avg30, cardmarket_reverse_avg,
	tcgplayer_market, tcgplayer_low
`

func (s *CardStore) GetByID(ctx context.Context, cardID string) (models.Card, error) {
	var card models.Card
	err := s.db.GetContext(ctx, &card, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, cardID)
	if err != nil {
		return models.Card{}, err
	}
	return card, nil
}

func (s *CardStore) List(ctx context.Context, setID, rarity string, limit, offset int) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE 1=1`
	args := []any{}
	param := 1
	if setID != "" {
		query += fmt.Sprintf(" AND set_id = $%d", param)
		args = append(args, setID)
		param++
	}
	if rarity != "" {
		query += fmt.Sprintf(" AND rarity = $%d", param)
		args = append(args, rarity)
		param++
	}
	query += fmt.Sprintf(" ORDER BY set_id, number LIMIT $%d OFFSET $%d", param, param+1)
	args = append(args, limit, offset)
	var cards []models.Card
	if err := s.db.SelectContext(ctx, &cards, query, args...); err != nil {
		return nil, err
	}
	return cards, nil
}

// ListNames returns the id/name pairs the fuzzy search index is built from.
type CardName struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

func (s *CardStore) ListNames(ctx context.Context) ([]CardName, error) {
	var rows []CardName
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name FROM cards ORDER BY id`); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CardStore) GetByIDs(ctx context.Context, cardIDs []string) ([]models.Card, error) {
	if len(cardIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = ANY($1)`
	var cards []models.Card
	if err := s.db.SelectContext(ctx, &cards, query, pq.Array(cardIDs)); err != nil {
		return nil, err
	}
	return cards, nil
}

func (s *CardStore) Upsert(ctx context.Context, tx Execer, card models.Card) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO cards (
			id, set_id, name, number, rarity, image_small, image_large,
			cardmarket_avg, cardmarket_low, cardmarket_trend,
			cardmarket_avg1, cardmarket_avg7, cardmarket_avg30, cardmarket_reverse_avg,
			tcgplayer_market, tcgplayer_low
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			set_id = EXCLUDED.set_id,
			name = EXCLUDED.name,
			number = EXCLUDED.number,
			rarity = EXCLUDED.rarity,
			image_small = EXCLUDED.image_small,
			image_large = EXCLUDED.image_large,
			cardmarket_avg = EXCLUDED.cardmarket_avg,
			cardmarket_low = EXCLUDED.cardmarket_low,
			cardmarket_trend = EXCLUDED.cardmarket_trend,
			cardmarket_avg1 = EXCLUDED.cardmarket_avg1,
			cardmarket_avg7 = EXCLUDED.cardmarket_avg7,
			cardmarket_avg30 = EXCLUDED.cardmarket_avg30,
			cardmarket_reverse_avg = EXCLUDED.cardmarket_reverse_avg,
			tcgplayer_market = EXCLUDED.tcgplayer_market,
			tcgplayer_low = EXCLUDED.tcgplayer_low,
			updated_at = NOW()
	`,
		card.ID, card.SetID, card.Name, card.Number, card.Rarity, card.ImageSmall, card.ImageLarge,
		card.CardmarketAvg, card.CardmarketLow, card.CardmarketTrend,
		card.CardmarketAvg1, card.CardmarketAvg7, card.CardmarketAvg30, card.CardmarketReverseAvg,
		card.TCGPlayerMarket, card.TCGPlayerLow,
	)
	return err
}

type SetStore struct {
	db DB
}

func NewSetStore(db DB) *SetStore {
	return &SetStore{db: db}
}

func (s *SetStore) List(ctx context.Context) ([]models.Set, error) {
	var sets []models.Set
	err := s.db.SelectContext(ctx, &sets, `
		SELECT s.id, s.name, s.series, s.release_date, COUNT(c.id) AS card_count
		FROM sets s
		LEFT JOIN cards c ON c.set_id = s.id
		GROUP BY s.id, s.name, s.series, s.release_date
		ORDER BY s.release_date DESC NULLS LAST
	`)
	if err != nil {
		return nil, err
	}
	return sets, nil
}

func (s *SetStore) Upsert(ctx context.Context, tx Execer, set models.Set) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sets (id, name, series, release_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			series = EXCLUDED.series,
			release_date = EXCLUDED.release_date
	`, set.ID, set.Name, set.Series, set.ReleaseDate)
	return err
}
