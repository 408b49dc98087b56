package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"tradebinder/internal/models"
)

func TestWishlistStoreDeleteListGuardsDefault(t *testing.T) {
	ctx := context.Background()
	tx := stubTx{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("list row must be locked: %s", query)
			}
			*dest.(*bool) = true
			return nil
		},
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			t.Fatalf("default list must not be deleted: %s", query)
			return nil, nil
		},
	}
	store := NewWishlistStore(stubDB{})
	err := store.DeleteList(ctx, tx, "list-1", "user-1")
	if !errors.Is(err, ErrDefaultList) {
		t.Fatalf("expected ErrDefaultList, got %v", err)
	}
}

func TestWishlistStoreDeleteListMissing(t *testing.T) {
	ctx := context.Background()
	tx := stubTx{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			return sql.ErrNoRows
		},
	}
	store := NewWishlistStore(stubDB{})
	err := store.DeleteList(ctx, tx, "list-9", "user-1")
	if !errors.Is(err, ErrListNotFound) {
		t.Fatalf("expected ErrListNotFound, got %v", err)
	}
}

func TestWishlistStoreDeleteListRemovesNonDefault(t *testing.T) {
	ctx := context.Background()
	var deleted bool
	tx := stubTx{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			*dest.(*bool) = false
			return nil
		},
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "DELETE FROM wishlist_lists") {
				t.Fatalf("unexpected query: %s", query)
			}
			deleted = true
			return stubResult{rows: 1}, nil
		},
	}
	store := NewWishlistStore(stubDB{})
	if err := store.DeleteList(ctx, tx, "list-2", "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Fatalf("expected the delete to run")
	}
}

func TestWishlistStoreAddItemBumpsCount(t *testing.T) {
	ctx := context.Background()
	var queries []string
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			queries = append(queries, query)
			return stubResult{rows: 1}, nil
		},
	}
	store := NewWishlistStore(stubDB{})
	err := store.AddItem(ctx, execer, models.WishlistItem{
		ID:     "item-1",
		ListID: "list-1",
		UserID: "user-1",
		CardID: "card-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("expected insert plus count bump, got %d queries", len(queries))
	}
	if !strings.Contains(queries[1], "item_count = item_count + 1") {
		t.Fatalf("expected count bump, got: %s", queries[1])
	}
}

func TestWishlistStoreDeleteItemNotFound(t *testing.T) {
	ctx := context.Background()
	tx := stubTx{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			return sql.ErrNoRows
		},
	}
	store := NewWishlistStore(stubDB{})
	err := store.DeleteItem(ctx, tx, "item-1", "user-1")
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestWishlistStoreMoveItemSameListNoop(t *testing.T) {
	ctx := context.Background()
	var execs int
	tx := stubTx{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			*dest.(*string) = "list-1"
			return nil
		},
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			execs++
			return stubResult{rows: 1}, nil
		},
	}
	store := NewWishlistStore(stubDB{})
	if err := store.MoveItem(ctx, tx, "item-1", "user-1", "list-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if execs != 0 {
		t.Fatalf("moving to the same list must not write, got %d execs", execs)
	}
}

func TestWishlistStoreRemoveByCardFixesCounts(t *testing.T) {
	ctx := context.Background()
	var queries []string
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			queries = append(queries, query)
			if args[0] != "user-1" || args[1] != "card-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 2}, nil
		},
	}
	store := NewWishlistStore(stubDB{})
	if err := store.RemoveByCard(ctx, execer, "user-1", "card-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("expected count fix plus delete, got %d queries", len(queries))
	}
	if !strings.Contains(queries[0], "item_count = item_count - sub.removed") {
		t.Fatalf("expected count fix first, got: %s", queries[0])
	}
	if !strings.Contains(queries[1], "DELETE FROM wishlist_items") {
		t.Fatalf("expected delete second, got: %s", queries[1])
	}
}
