package store

import (
	"context"
	"database/sql"
	"errors"

	"tradebinder/internal/models"
)

var (
	ErrListNotFound = errors.New("wishlist list not found")
	ErrDefaultList  = errors.New("default wishlist cannot be deleted")
	ErrItemNotFound = errors.New("wishlist item not found")
)

type WishlistStore struct {
	db DB
}

func NewWishlistStore(db DB) *WishlistStore {
	return &WishlistStore{db: db}
}

func (s *WishlistStore) CreateList(ctx context.Context, tx Execer, id, userID, name, description string, isDefault bool) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wishlist_lists (id, user_id, name, description, is_default)
		VALUES ($1, $2, $3, $4, $5)
	`, id, userID, name, description, isDefault)
	return err
}

func (s *WishlistStore) UpdateList(ctx context.Context, listID, userID, name, description string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE wishlist_lists
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
	`, name, description, listID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteList removes a non-default list; its items cascade. A list that
// does not exist (or belongs to someone else) is reported separately from
// the default-list guard.
func (s *WishlistStore) DeleteList(ctx context.Context, tx Tx, listID, userID string) error {
	var isDefault bool
	err := tx.GetContext(ctx, &isDefault, `
		SELECT is_default FROM wishlist_lists
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, listID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrListNotFound
		}
		return err
	}
	if isDefault {
		return ErrDefaultList
	}
	_, err = tx.ExecContext(ctx, `
		DELETE FROM wishlist_lists WHERE id = $1 AND user_id = $2
	`, listID, userID)
	return err
}

func (s *WishlistStore) ListLists(ctx context.Context, userID string) ([]models.WishlistList, error) {
	var rows []models.WishlistList
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, name, description, is_default, item_count, created_at
		FROM wishlist_lists
		WHERE user_id = $1
		ORDER BY is_default DESC, name
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *WishlistStore) GetList(ctx context.Context, listID, userID string) (models.WishlistList, error) {
	var row models.WishlistList
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, name, description, is_default, item_count, created_at
		FROM wishlist_lists
		WHERE id = $1 AND user_id = $2
	`, listID, userID)
	return row, err
}

func (s *WishlistStore) GetDefaultList(ctx context.Context, tx Getter, userID string) (string, error) {
	var id string
	err := tx.GetContext(ctx, &id, `
		SELECT id FROM wishlist_lists WHERE user_id = $1 AND is_default = TRUE
	`, userID)
	return id, err
}

// AddItem inserts an item and bumps the list's denormalized item_count in
// the same transaction.
func (s *WishlistStore) AddItem(ctx context.Context, tx Execer, item models.WishlistItem) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wishlist_items (id, list_id, user_id, card_id, priority, max_price_minor, condition, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, item.ID, item.ListID, item.UserID, item.CardID, item.Priority, item.MaxPriceMinor, item.Condition, item.Notes); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
		UPDATE wishlist_lists SET item_count = item_count + 1, updated_at = NOW() WHERE id = $1
	`, item.ListID)
	return err
}

func (s *WishlistStore) UpdateItem(ctx context.Context, itemID, userID string, priority int, maxPriceMinor *int64, condition, notes string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE wishlist_items
		SET priority = $1, max_price_minor = $2, condition = $3, notes = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
	`, priority, maxPriceMinor, condition, notes, itemID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *WishlistStore) DeleteItem(ctx context.Context, tx Tx, itemID, userID string) error {
	var listID string
	if err := tx.GetContext(ctx, &listID, `
		SELECT list_id FROM wishlist_items WHERE id = $1 AND user_id = $2
	`, itemID, userID); err != nil {
		return ErrItemNotFound
	}
	res, err := tx.ExecContext(ctx, `
		DELETE FROM wishlist_items WHERE id = $1 AND user_id = $2
	`, itemID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE wishlist_lists SET item_count = item_count - 1, updated_at = NOW() WHERE id = $1
	`, listID)
	return err
}

// RemoveByCard deletes every wishlist entry a user holds for a card and
// fixes the affected lists' item counts. Used when a wished card becomes
// collected or is received in a trade.
func (s *WishlistStore) RemoveByCard(ctx context.Context, tx Execer, userID, cardID string) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE wishlist_lists l
		SET item_count = item_count - sub.removed, updated_at = NOW()
		FROM (
			SELECT list_id, COUNT(*) AS removed
			FROM wishlist_items
			WHERE user_id = $1 AND card_id = $2
			GROUP BY list_id
		) sub
		WHERE l.id = sub.list_id
	`, userID, cardID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
		DELETE FROM wishlist_items WHERE user_id = $1 AND card_id = $2
	`, userID, cardID)
	return err
}

func (s *WishlistStore) ListItems(ctx context.Context, listID, userID string) ([]models.WishlistItem, error) {
	var rows []models.WishlistItem
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, list_id, user_id, card_id, priority, max_price_minor, condition, notes, created_at
		FROM wishlist_items
		WHERE list_id = $1 AND user_id = $2
		ORDER BY priority DESC, created_at DESC
	`, listID, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *WishlistStore) GetItem(ctx context.Context, itemID, userID string) (models.WishlistItem, error) {
	var row models.WishlistItem
	err := s.db.GetContext(ctx, &row, `
		SELECT id, list_id, user_id, card_id, priority, max_price_minor, condition, notes, created_at
		FROM wishlist_items
		WHERE id = $1 AND user_id = $2
	`, itemID, userID)
	return row, err
}

// MoveItem reassigns an item to another list owned by the same user,
// keeping both lists' item counts consistent.
func (s *WishlistStore) MoveItem(ctx context.Context, tx Tx, itemID, userID, targetListID string) error {
	var fromListID string
	if err := tx.GetContext(ctx, &fromListID, `
		SELECT list_id FROM wishlist_items WHERE id = $1 AND user_id = $2
	`, itemID, userID); err != nil {
		return ErrItemNotFound
	}
	if fromListID == targetListID {
		return nil
	}
	var owned bool
	if err := tx.GetContext(ctx, &owned, `
		SELECT EXISTS(SELECT 1 FROM wishlist_lists WHERE id = $1 AND user_id = $2)
	`, targetListID, userID); err != nil {
		return err
	}
	if !owned {
		return ErrListNotFound
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE wishlist_items SET list_id = $1, updated_at = NOW() WHERE id = $2
	`, targetListID, itemID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE wishlist_lists SET item_count = item_count - 1, updated_at = NOW() WHERE id = $1
	`, fromListID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
		UPDATE wishlist_lists SET item_count = item_count + 1, updated_at = NOW() WHERE id = $1
	`, targetListID)
	return err
}
