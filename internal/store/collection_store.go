package store

import (
	"context"
	"errors"

	"tradebinder/internal/models"
)

var ErrNotEnoughOwned = errors.New("not enough copies owned")

type collectionRow struct {
	ID       string `db:"id"`
	Quantity int    `db:"quantity"`
}

type CollectionStore struct {
	db DB
}

func NewCollectionStore(db DB) *CollectionStore {
	return &CollectionStore{db: db}
}

// AddVariant upserts a per-variant row, incrementing quantity on conflict.
func (s *CollectionStore) AddVariant(ctx context.Context, tx Execer, id, userID, cardID, variant, condition string, quantity int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO user_collections (id, user_id, card_id, variant, condition, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, card_id, variant, condition)
		DO UPDATE SET quantity = user_collections.quantity + EXCLUDED.quantity, updated_at = NOW()
	`, id, userID, cardID, variant, condition, quantity)
	return err
}

// RemoveVariant decrements a per-variant row. The guarded UPDATE refuses to
// take the quantity below zero; the row is deleted when it reaches zero.
func (s *CollectionStore) RemoveVariant(ctx context.Context, tx Execer, userID, cardID, variant, condition string, quantity int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE user_collections
		SET quantity = quantity - $1, updated_at = NOW()
		WHERE user_id = $2 AND card_id = $3 AND variant = $4 AND condition = $5 AND quantity >= $1
	`, quantity, userID, cardID, variant, condition)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotEnoughOwned
	}
	_, err = tx.ExecContext(ctx, `
		DELETE FROM user_collections
		WHERE user_id = $1 AND card_id = $2 AND variant = $3 AND condition = $4 AND quantity <= 0
	`, userID, cardID, variant, condition)
	return err
}

// RemoveAnyCondition decrements copies of a card variant regardless of
// condition, draining the most recently updated rows first. The offered
// quantity may span several condition rows; rows are locked for the
// duration of the transaction.
func (s *CollectionStore) RemoveAnyCondition(ctx context.Context, tx Tx, userID, cardID, variant string, quantity int) error {
	var rows []collectionRow
	err := tx.SelectContext(ctx, &rows, `
		SELECT id, quantity
		FROM user_collections
		WHERE user_id = $1 AND card_id = $2 AND variant = $3
		ORDER BY updated_at DESC
		FOR UPDATE
	`, userID, cardID, variant)
	if err != nil {
		return err
	}
	remaining := quantity
	for _, row := range rows {
		if remaining <= 0 {
			break
		}
		take := row.Quantity
		if take > remaining {
			take = remaining
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE user_collections
			SET quantity = quantity - $1, updated_at = NOW()
			WHERE id = $2
		`, take, row.ID); err != nil {
			return err
		}
		remaining -= take
	}
	if remaining > 0 {
		return ErrNotEnoughOwned
	}
	_, err = tx.ExecContext(ctx, `
		DELETE FROM user_collections
		WHERE user_id = $1 AND card_id = $2 AND variant = $3 AND quantity <= 0
	`, userID, cardID, variant)
	return err
}

func (s *CollectionStore) ListByUser(ctx context.Context, userID string) ([]models.CollectionEntry, error) {
	var rows []models.CollectionEntry
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, card_id, variant, condition, quantity, created_at
		FROM user_collections
		WHERE user_id = $1
		ORDER BY card_id, variant
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type CardTotals struct {
	CardID        string `db:"card_id"`
	TotalQuantity int    `db:"total_quantity"`
	Variant       string `db:"variant"`
	Quantity      int    `db:"quantity"`
}

// VariantCounts returns per-variant counts plus the card total, the
// denormalized aggregate the UI previously maintained client-side.
func (s *CollectionStore) VariantCounts(ctx context.Context, userID, cardID string) ([]CardTotals, error) {
	var rows []CardTotals
	err := s.db.SelectContext(ctx, &rows, `
		SELECT card_id,
		       SUM(SUM(quantity)) OVER (PARTITION BY card_id) AS total_quantity,
		       variant,
		       SUM(quantity) AS quantity
		FROM user_collections
		WHERE user_id = $1 AND card_id = $2
		GROUP BY card_id, variant
	`, userID, cardID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CollectionStore) OwnedQuantity(ctx context.Context, tx Getter, userID, cardID, variant string) (int, error) {
	var quantity int
	err := tx.GetContext(ctx, &quantity, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM user_collections
		WHERE user_id = $1 AND card_id = $2 AND variant = $3
	`, userID, cardID, variant)
	return quantity, err
}

type CollectionStats struct {
	DistinctCards int `db:"distinct_cards"`
	TotalQuantity int `db:"total_quantity"`
}

func (s *CollectionStore) Stats(ctx context.Context, userID string) (CollectionStats, error) {
	var stats CollectionStats
	err := s.db.GetContext(ctx, &stats, `
		SELECT COUNT(DISTINCT card_id) AS distinct_cards,
		       COALESCE(SUM(quantity), 0) AS total_quantity
		FROM user_collections
		WHERE user_id = $1
	`, userID)
	return stats, err
}
