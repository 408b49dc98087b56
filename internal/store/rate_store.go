package store

import "context"

// RateStore holds display exchange rates quoted against the EUR pivot.
type RateStore struct {
	db DB
}

type rateRow struct {
	ID            string `db:"id"`
	BaseCurrency  string `db:"base_currency"`
	QuoteCurrency string `db:"quote_currency"`
	Rate          string `db:"rate"`
	CreatedAt     any    `db:"created_at"`
}

func NewRateStore(db DB) *RateStore {
	return &RateStore{db: db}
}

func (s *RateStore) GetActive(ctx context.Context, baseCurrency, quoteCurrency string) (map[string]any, error) {
	var row rateRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, base_currency, quote_currency, rate, created_at
		FROM exchange_rates
		WHERE base_currency = $1 AND quote_currency = $2 AND is_active = TRUE
	`, baseCurrency, quoteCurrency)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":             row.ID,
		"base_currency":  row.BaseCurrency,
		"quote_currency": row.QuoteCurrency,
		"rate":           row.Rate,
		"created_at":     row.CreatedAt,
	}, nil
}

func (s *RateStore) ListActive(ctx context.Context) ([]map[string]any, error) {
	var rows []rateRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, base_currency, quote_currency, rate, created_at
		FROM exchange_rates
		WHERE is_active = TRUE
		ORDER BY quote_currency
	`)
	if err != nil {
		return nil, err
	}
	rates := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		rates = append(rates, map[string]any{
			"id":             row.ID,
			"base_currency":  row.BaseCurrency,
			"quote_currency": row.QuoteCurrency,
			"rate":           row.Rate,
			"created_at":     row.CreatedAt,
		})
	}
	return rates, nil
}

// SetRate activates a new rate and soft-deactivates the previous one for
// the pair, keeping rate history queryable.
func (s *RateStore) SetRate(ctx context.Context, tx Tx, baseCurrency, quoteCurrency, rate string, actorID string) (string, error) {
	var id string
	err := tx.GetContext(ctx, &id, `
		INSERT INTO exchange_rates (id, base_currency, quote_currency, rate, is_active, created_by)
		VALUES (gen_random_uuid()::text, $1, $2, $3, TRUE, $4)
		RETURNING id
	`, baseCurrency, quoteCurrency, rate, actorID)
	if err != nil {
		return "", err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE exchange_rates
		SET is_active = FALSE, deleted_at = NOW()
		WHERE base_currency = $1 AND quote_currency = $2 AND id <> $3 AND is_active = TRUE
	`, baseCurrency, quoteCurrency, id)
	if err != nil {
		return "", err
	}
	return id, nil
}
