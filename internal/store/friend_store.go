package store

import "context"

type FriendStore struct {
	db DB
}

func NewFriendStore(db DB) *FriendStore {
	return &FriendStore{db: db}
}

type Friend struct {
	ID       string `db:"id"`
	Username string `db:"username"`
}

type friendRequestRow struct {
	ID          string `db:"id"`
	RequesterID string `db:"requester_id"`
	AddresseeID string `db:"addressee_id"`
	Status      string `db:"status"`
	Username    string `db:"username"`
	CreatedAt   any    `db:"created_at"`
}

func (s *FriendStore) CreateRequest(ctx context.Context, tx Execer, id, requesterID, addresseeID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO friendships (id, requester_id, addressee_id, status)
		VALUES ($1, $2, $3, 'pending')
	`, id, requesterID, addresseeID)
	return err
}

// Accept flips a pending request addressed to userID. Returns rows affected
// so callers can distinguish a stale or foreign request.
func (s *FriendStore) Accept(ctx context.Context, tx Execer, requestID, userID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE friendships
		SET status = 'accepted', updated_at = NOW()
		WHERE id = $1 AND addressee_id = $2 AND status = 'pending'
	`, requestID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *FriendStore) ListFriends(ctx context.Context, userID string) ([]Friend, error) {
	var rows []Friend
	err := s.db.SelectContext(ctx, &rows, `
		SELECT u.id, u.username
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.requester_id = $1 THEN f.addressee_id ELSE f.requester_id END
		WHERE (f.requester_id = $1 OR f.addressee_id = $1) AND f.status = 'accepted'
		ORDER BY u.username
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *FriendStore) ListPendingRequests(ctx context.Context, userID string) ([]map[string]any, error) {
	var rows []friendRequestRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT f.id, f.requester_id, f.addressee_id, f.status, u.username, f.created_at
		FROM friendships f
		JOIN users u ON u.id = f.requester_id
		WHERE f.addressee_id = $1 AND f.status = 'pending'
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	requests := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, map[string]any{
			"id":           row.ID,
			"requester_id": row.RequesterID,
			"username":     row.Username,
			"created_at":   row.CreatedAt,
		})
	}
	return requests, nil
}

func (s *FriendStore) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM friendships
			WHERE status = 'accepted'
			  AND ((requester_id = $1 AND addressee_id = $2) OR (requester_id = $2 AND addressee_id = $1))
		)
	`, userID, otherID)
	return exists, err
}
