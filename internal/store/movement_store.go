package store

import "context"

// MovementStore records card movements produced by trade completion, one
// debit and one credit row per moved item. The paired rows make completed
// trades auditable and give reconciliation something to sum.
type MovementStore struct {
	db DB
}

func NewMovementStore(db DB) *MovementStore {
	return &MovementStore{db: db}
}

type MovementInput struct {
	ID      string
	TradeID string
	UserID  string
	CardID  string
	Variant string
	Delta   int
	Note    string
}

func (s *MovementStore) InsertMovements(ctx context.Context, tx Execer, movements []MovementInput) error {
	query := `
		INSERT INTO collection_movements (id, trade_id, user_id, card_id, variant, delta, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, movement := range movements {
		if _, err := tx.ExecContext(ctx, query, movement.ID, movement.TradeID, movement.UserID, movement.CardID, movement.Variant, movement.Delta, movement.Note); err != nil {
			return err
		}
	}
	return nil
}

func (s *MovementStore) SumByTrade(ctx context.Context, tradeID string) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(delta), 0)
		FROM collection_movements
		WHERE trade_id = $1
	`, tradeID)
	return sum, err
}
