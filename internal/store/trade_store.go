package store

import (
	"context"
	"fmt"

	"tradebinder/internal/models"

	"github.com/lib/pq"
)

type TradeStore struct {
	db DB
}

func NewTradeStore(db DB) *TradeStore {
	return &TradeStore{db: db}
}

type TradeInput struct {
	ID                  string
	InitiatorID         string
	RecipientID         string
	InitiatorMoneyMinor int64
	RecipientMoneyMinor int64
	ShippingIncluded    bool
	Message             string
	ExpiresAt           any
}

func (s *TradeStore) Create(ctx context.Context, tx Execer, input TradeInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO trades (id, initiator_id, recipient_id, status, initiator_money_minor, recipient_money_minor, shipping_included, message, expires_at)
		VALUES ($1, $2, $3, 'pending', $4, $5, $6, $7, $8)
	`, input.ID, input.InitiatorID, input.RecipientID, input.InitiatorMoneyMinor, input.RecipientMoneyMinor, input.ShippingIncluded, input.Message, input.ExpiresAt)
	return err
}

func (s *TradeStore) AddItem(ctx context.Context, tx Execer, item models.TradeItem) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO trade_items (id, trade_id, user_id, card_id, variant, condition, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, item.ID, item.TradeID, item.UserID, item.CardID, item.Variant, item.Condition, item.Quantity)
	return err
}

func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (models.Trade, error) {
	var trade models.Trade
	err := s.db.GetContext(ctx, &trade, `
		SELECT id, initiator_id, recipient_id, status, initiator_money_minor, recipient_money_minor,
		       shipping_included, message, expires_at, created_at, updated_at
		FROM trades
		WHERE id = $1
	`, tradeID)
	return trade, err
}

func (s *TradeStore) GetForUpdate(ctx context.Context, tx Getter, tradeID string) (models.Trade, error) {
	var trade models.Trade
	err := tx.GetContext(ctx, &trade, `
		SELECT id, initiator_id, recipient_id, status, initiator_money_minor, recipient_money_minor,
		       shipping_included, message, expires_at, created_at, updated_at
		FROM trades
		WHERE id = $1
		FOR UPDATE
	`, tradeID)
	return trade, err
}

// Transition moves a trade from an expected status to a new one. A zero
// rows-affected result means the trade was not in the expected status.
func (s *TradeStore) Transition(ctx context.Context, tx Execer, tradeID, fromStatus, toStatus string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE trades
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, toStatus, tradeID, fromStatus)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TradeStore) ListItems(ctx context.Context, tradeID string) ([]models.TradeItem, error) {
	var items []models.TradeItem
	err := s.db.SelectContext(ctx, &items, `
		SELECT id, trade_id, user_id, card_id, variant, condition, quantity
		FROM trade_items
		WHERE trade_id = $1
		ORDER BY card_id, variant
	`, tradeID)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *TradeStore) ListItemsForUpdate(ctx context.Context, tx Selecter, tradeID string) ([]models.TradeItem, error) {
	var items []models.TradeItem
	err := tx.SelectContext(ctx, &items, `
		SELECT id, trade_id, user_id, card_id, variant, condition, quantity
		FROM trade_items
		WHERE trade_id = $1
		ORDER BY card_id, variant
		FOR UPDATE
	`, tradeID)
	if err != nil {
		return nil, err
	}
	return items, nil
}

type tradeListRow struct {
	ID                  string  `db:"id"`
	InitiatorID         string  `db:"initiator_id"`
	RecipientID         string  `db:"recipient_id"`
	InitiatorUsername   *string `db:"initiator_username"`
	RecipientUsername   *string `db:"recipient_username"`
	Status              string  `db:"status"`
	InitiatorMoneyMinor int64   `db:"initiator_money_minor"`
	RecipientMoneyMinor int64   `db:"recipient_money_minor"`
	ShippingIncluded    bool    `db:"shipping_included"`
	Message             string  `db:"message"`
	ItemCount           int     `db:"item_count"`
	ExpiresAt           any     `db:"expires_at"`
	CreatedAt           any     `db:"created_at"`
	UpdatedAt           any     `db:"updated_at"`
}

// ListByUser returns the user's trades, optionally filtered by status and by
// role ("initiator", "recipient" or "" for both sides).
func (s *TradeStore) ListByUser(ctx context.Context, userID, status, role string, limit, offset int) ([]map[string]any, error) {
	query := `
		SELECT t.id, t.initiator_id, t.recipient_id,
		       iu.username AS initiator_username, ru.username AS recipient_username,
		       t.status, t.initiator_money_minor, t.recipient_money_minor,
		       t.shipping_included, t.message,
		       (SELECT COUNT(*) FROM trade_items ti WHERE ti.trade_id = t.id) AS item_count,
		       t.expires_at, t.created_at, t.updated_at
		FROM trades t
		LEFT JOIN users iu ON iu.id = t.initiator_id
		LEFT JOIN users ru ON ru.id = t.recipient_id
	`
	args := []any{userID}
	switch role {
	case "initiator":
		query += " WHERE t.initiator_id = $1"
	case "recipient":
		query += " WHERE t.recipient_id = $1"
	default:
		query += " WHERE (t.initiator_id = $1 OR t.recipient_id = $1)"
	}
	param := 2
	if status != "" {
		query += fmt.Sprintf(" AND t.status = $%d", param)
		args = append(args, status)
		param++
	}
	query += fmt.Sprintf(" ORDER BY t.updated_at DESC LIMIT $%d OFFSET $%d", param, param+1)
	args = append(args, limit, offset)
	var rows []tradeListRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	trades := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		trades = append(trades, map[string]any{
			"id":                    row.ID,
			"initiator_id":          row.InitiatorID,
			"recipient_id":          row.RecipientID,
			"initiator_username":    derefStringPtr(row.InitiatorUsername),
			"recipient_username":    derefStringPtr(row.RecipientUsername),
			"status":                row.Status,
			"initiator_money_minor": row.InitiatorMoneyMinor,
			"recipient_money_minor": row.RecipientMoneyMinor,
			"shipping_included":     row.ShippingIncluded,
			"message":               row.Message,
			"item_count":            row.ItemCount,
			"expires_at":            row.ExpiresAt,
			"created_at":            row.CreatedAt,
			"updated_at":            row.UpdatedAt,
		})
	}
	return trades, nil
}

// ClearHistory deletes exactly the caller's trades in terminal statuses.
// Trade items cascade with their trade.
func (s *TradeStore) ClearHistory(ctx context.Context, tx Execer, userID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM trades
		WHERE (initiator_id = $1 OR recipient_id = $1) AND status = ANY($2)
	`, userID, pq.Array(models.TerminalTradeStatuses))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TradeStore) CountCompletedByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM trades
		WHERE (initiator_id = $1 OR recipient_id = $1) AND status = 'completed'
	`, userID)
	return count, err
}
