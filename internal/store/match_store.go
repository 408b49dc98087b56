package store

import "context"

// MatchStore answers the two wishlist-matching questions the app is built
// around: which wished cards do my friends own, and which of my cards do
// friends wish for. Friends are deduplicated by id with variant counts
// summed across conditions.
type MatchStore struct {
	db DB
}

func NewMatchStore(db DB) *MatchStore {
	return &MatchStore{db: db}
}

type matchRow struct {
	FriendID       string `db:"friend_id"`
	FriendUsername string `db:"friend_username"`
	CardID         string `db:"card_id"`
	CardName       string `db:"card_name"`
	Rarity         string `db:"rarity"`
	Variant        string `db:"variant"`
	Quantity       int    `db:"quantity"`
	Priority       int    `db:"priority"`
	PriceMinor     *int64 `db:"price_minor"`
}

const matchOrder = `ORDER BY card_name, friend_username, variant`

// CardsIWantFriendsHave joins the user's wishlist against accepted friends'
// collections. friendID narrows to one friend; empty means all friends.
func (s *MatchStore) CardsIWantFriendsHave(ctx context.Context, userID, friendID string) ([]map[string]any, error) {
	query := `
		SELECT f.friend_id,
		       u.username AS friend_username,
		       c.id AS card_id,
		       c.name AS card_name,
		       c.rarity,
		       uc.variant,
		       SUM(uc.quantity) AS quantity,
		       w.priority,
		       c.cardmarket_avg AS price_minor
		FROM wishlist_items w
		JOIN friendships_resolved f ON f.user_id = $1
		JOIN user_collections uc ON uc.user_id = f.friend_id AND uc.card_id = w.card_id
		JOIN cards c ON c.id = w.card_id
		JOIN users u ON u.id = f.friend_id
		WHERE w.user_id = $1
	`
	args := []any{userID}
	if friendID != "" {
		query += " AND f.friend_id = $2"
		args = append(args, friendID)
	}
	query += `
		GROUP BY f.friend_id, u.username, c.id, c.name, c.rarity, uc.variant, w.priority, c.cardmarket_avg
		` + matchOrder
	return s.selectMatches(ctx, query, args...)
}

// CardsFriendsWantIHave is the reverse join: friends' wishlists against the
// user's collection.
func (s *MatchStore) CardsFriendsWantIHave(ctx context.Context, userID, friendID string) ([]map[string]any, error) {
	query := `
		SELECT f.friend_id,
		       u.username AS friend_username,
		       c.id AS card_id,
		       c.name AS card_name,
		       c.rarity,
		       uc.variant,
		       SUM(uc.quantity) AS quantity,
		       w.priority,
		       c.cardmarket_avg AS price_minor
		FROM wishlist_items w
		JOIN friendships_resolved f ON f.user_id = $1 AND f.friend_id = w.user_id
		JOIN user_collections uc ON uc.user_id = $1 AND uc.card_id = w.card_id
		JOIN cards c ON c.id = w.card_id
		JOIN users u ON u.id = f.friend_id
		WHERE 1=1
	`
	args := []any{userID}
	if friendID != "" {
		query += " AND f.friend_id = $2"
		args = append(args, friendID)
	}
	query += `
		GROUP BY f.friend_id, u.username, c.id, c.name, c.rarity, uc.variant, w.priority, c.cardmarket_avg
		` + matchOrder
	return s.selectMatches(ctx, query, args...)
}

func (s *MatchStore) selectMatches(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	var rows []matchRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	matches := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, map[string]any{
			"friend_id":       row.FriendID,
			"friend_username": row.FriendUsername,
			"card_id":         row.CardID,
			"card_name":       row.CardName,
			"rarity":          row.Rarity,
			"variant":         row.Variant,
			"quantity":        row.Quantity,
			"priority":        row.Priority,
			"price_minor":     derefInt64Ptr(row.PriceMinor),
		})
	}
	return matches, nil
}

type MatchSummary struct {
	FriendID       string `db:"friend_id"`
	FriendUsername string `db:"friend_username"`
	IWantCount     int    `db:"i_want_count"`
	TheyWantCount  int    `db:"they_want_count"`
}

// Summary counts matched cards per friend in both directions.
func (s *MatchStore) Summary(ctx context.Context, userID string) ([]MatchSummary, error) {
	var rows []MatchSummary
	err := s.db.SelectContext(ctx, &rows, `
		SELECT f.friend_id,
		       u.username AS friend_username,
		       COUNT(DISTINCT wi.card_id) FILTER (
		           WHERE wi.user_id = $1 AND uc_theirs.user_id = f.friend_id
		       ) AS i_want_count,
		       COUNT(DISTINCT wi.card_id) FILTER (
		           WHERE wi.user_id = f.friend_id AND uc_mine.user_id = $1
		       ) AS they_want_count
		FROM friendships_resolved f
		JOIN users u ON u.id = f.friend_id
		LEFT JOIN wishlist_items wi ON wi.user_id IN ($1, f.friend_id)
		LEFT JOIN user_collections uc_theirs ON uc_theirs.user_id = f.friend_id AND uc_theirs.card_id = wi.card_id
		LEFT JOIN user_collections uc_mine ON uc_mine.user_id = $1 AND uc_mine.card_id = wi.card_id
		WHERE f.user_id = $1
		GROUP BY f.friend_id, u.username
		ORDER BY u.username
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
