package handlers

import (
	"context"

	"tradebinder/internal/models"
	"tradebinder/internal/search"
	"tradebinder/internal/services"
	"tradebinder/internal/store"
	"tradebinder/internal/websocket"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (map[string]any, error)
	GetByUsername(ctx context.Context, username string) (map[string]any, error)
	GetByID(ctx context.Context, userID string) (map[string]any, error)
	UpdatePreferences(ctx context.Context, userID, currency, priceSource string) error
}

type FriendStore interface {
	CreateRequest(ctx context.Context, tx store.Execer, id, requesterID, addresseeID string) error
	Accept(ctx context.Context, tx store.Execer, requestID, userID string) (int64, error)
	ListFriends(ctx context.Context, userID string) ([]store.Friend, error)
	ListPendingRequests(ctx context.Context, userID string) ([]map[string]any, error)
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
}

type CardStore interface {
	GetByID(ctx context.Context, cardID string) (models.Card, error)
	List(ctx context.Context, setID, rarity string, limit, offset int) ([]models.Card, error)
	GetByIDs(ctx context.Context, cardIDs []string) ([]models.Card, error)
	Upsert(ctx context.Context, tx store.Execer, card models.Card) error
}

type SetStore interface {
	List(ctx context.Context) ([]models.Set, error)
	Upsert(ctx context.Context, tx store.Execer, set models.Set) error
}

type CollectionStore interface {
	AddVariant(ctx context.Context, tx store.Execer, id, userID, cardID, variant, condition string, quantity int) error
	RemoveVariant(ctx context.Context, tx store.Execer, userID, cardID, variant, condition string, quantity int) error
	ListByUser(ctx context.Context, userID string) ([]models.CollectionEntry, error)
	VariantCounts(ctx context.Context, userID, cardID string) ([]store.CardTotals, error)
	Stats(ctx context.Context, userID string) (store.CollectionStats, error)
}

type WishlistStore interface {
	CreateList(ctx context.Context, tx store.Execer, id, userID, name, description string, isDefault bool) error
	UpdateList(ctx context.Context, listID, userID, name, description string) (int64, error)
	DeleteList(ctx context.Context, tx store.Tx, listID, userID string) error
	ListLists(ctx context.Context, userID string) ([]models.WishlistList, error)
	GetList(ctx context.Context, listID, userID string) (models.WishlistList, error)
	GetDefaultList(ctx context.Context, tx store.Getter, userID string) (string, error)
	AddItem(ctx context.Context, tx store.Execer, item models.WishlistItem) error
	UpdateItem(ctx context.Context, itemID, userID string, priority int, maxPriceMinor *int64, condition, notes string) (int64, error)
	DeleteItem(ctx context.Context, tx store.Tx, itemID, userID string) error
	RemoveByCard(ctx context.Context, tx store.Execer, userID, cardID string) error
	ListItems(ctx context.Context, listID, userID string) ([]models.WishlistItem, error)
	MoveItem(ctx context.Context, tx store.Tx, itemID, userID, targetListID string) error
}

type MatchStore interface {
	CardsIWantFriendsHave(ctx context.Context, userID, friendID string) ([]map[string]any, error)
	CardsFriendsWantIHave(ctx context.Context, userID, friendID string) ([]map[string]any, error)
	Summary(ctx context.Context, userID string) ([]store.MatchSummary, error)
}

type WantedStore interface {
	Create(ctx context.Context, tx store.Execer, post models.WantedPost) error
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
	Delete(ctx context.Context, postID, userID string) (int64, error)
}

type TradeStore interface {
	GetByID(ctx context.Context, tradeID string) (models.Trade, error)
	ListItems(ctx context.Context, tradeID string) ([]models.TradeItem, error)
	ListByUser(ctx context.Context, userID, status, role string, limit, offset int) ([]map[string]any, error)
}

type RateStore interface {
	GetActive(ctx context.Context, baseCurrency, quoteCurrency string) (map[string]any, error)
	ListActive(ctx context.Context) ([]map[string]any, error)
	SetRate(ctx context.Context, tx store.Tx, baseCurrency, quoteCurrency, rate string, actorID string) (string, error)
}

type MovementStore interface {
	SumByTrade(ctx context.Context, tradeID string) (int64, error)
}

type AdminStore interface {
	IsAdmin(ctx context.Context, userID string) (bool, bool, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
	CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	GrantRole(ctx context.Context, tx store.Execer, adminUserID, role string) error
	HasAnyAdmin(ctx context.Context, tx store.Getter) (bool, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type TradeService interface {
	Propose(ctx context.Context, req services.ProposeRequest) (string, error)
	Accept(ctx context.Context, tradeID, userID string) error
	Decline(ctx context.Context, tradeID, userID string) error
	Cancel(ctx context.Context, tradeID, userID string) error
	Complete(ctx context.Context, tradeID, userID string) error
	Counter(ctx context.Context, req services.CounterRequest) (string, error)
	ClearHistory(ctx context.Context, userID string) (int64, error)
}

type AchievementService interface {
	Evaluate(ctx context.Context, userID string) ([]models.Achievement, []models.Achievement, error)
	ListWithStatus(ctx context.Context, userID string) ([]map[string]any, error)
}

type PriceService interface {
	History(ctx context.Context, cardID, variant string, days int, fillGaps bool) ([]models.PricePoint, error)
	Invalidate(cardID string)
}

type PriceWriteStore interface {
	Insert(ctx context.Context, tx store.Execer, cardID, variant string, point models.PricePoint) error
}

type SearchIndex interface {
	Search(ctx context.Context, query string, limit int) ([]search.Match, error)
}

type Converter interface {
	Convert(ctx context.Context, amountMinor int64, toCurrency string) (int64, error)
	ConvertBack(ctx context.Context, amountMinor int64, fromCurrency string) (int64, error)
}

type EventPusher interface {
	Broadcast(userID string, event websocket.Event)
}
