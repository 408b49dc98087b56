package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradebinder/internal/auth"
	"tradebinder/internal/config"
	"tradebinder/internal/models"
	"tradebinder/internal/search"
	"tradebinder/internal/services"
	"tradebinder/internal/store"
	"tradebinder/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn            func(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	getByEmailFn        func(ctx context.Context, email string) (map[string]any, error)
	getByUsernameFn     func(ctx context.Context, username string) (map[string]any, error)
	getByIDFn           func(ctx context.Context, userID string) (map[string]any, error)
	updatePreferencesFn func(ctx context.Context, userID, currency, priceSource string) error
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, passwordHash)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (map[string]any, error) {
	if s.getByEmailFn == nil {
		return nil, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByUsername(ctx context.Context, username string) (map[string]any, error) {
	if s.getByUsernameFn == nil {
		return nil, nil
	}
	return s.getByUsernameFn(ctx, username)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (map[string]any, error) {
	if s.getByIDFn == nil {
		return nil, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubUserStore) UpdatePreferences(ctx context.Context, userID, currency, priceSource string) error {
	if s.updatePreferencesFn == nil {
		return nil
	}
	return s.updatePreferencesFn(ctx, userID, currency, priceSource)
}

type stubFriendStore struct {
	createRequestFn func(ctx context.Context, tx store.Execer, id, requesterID, addresseeID string) error
	acceptFn        func(ctx context.Context, tx store.Execer, requestID, userID string) (int64, error)
	listFriendsFn   func(ctx context.Context, userID string) ([]store.Friend, error)
	listPendingFn   func(ctx context.Context, userID string) ([]map[string]any, error)
	areFriendsFn    func(ctx context.Context, userID, otherID string) (bool, error)
}

func (s stubFriendStore) CreateRequest(ctx context.Context, tx store.Execer, id, requesterID, addresseeID string) error {
	if s.createRequestFn == nil {
		return nil
	}
	return s.createRequestFn(ctx, tx, id, requesterID, addresseeID)
}

func (s stubFriendStore) Accept(ctx context.Context, tx store.Execer, requestID, userID string) (int64, error) {
	if s.acceptFn == nil {
		return 1, nil
	}
	return s.acceptFn(ctx, tx, requestID, userID)
}

func (s stubFriendStore) ListFriends(ctx context.Context, userID string) ([]store.Friend, error) {
	if s.listFriendsFn == nil {
		return nil, nil
	}
	return s.listFriendsFn(ctx, userID)
}

func (s stubFriendStore) ListPendingRequests(ctx context.Context, userID string) ([]map[string]any, error) {
	if s.listPendingFn == nil {
		return nil, nil
	}
	return s.listPendingFn(ctx, userID)
}

func (s stubFriendStore) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	if s.areFriendsFn == nil {
		return true, nil
	}
	return s.areFriendsFn(ctx, userID, otherID)
}

type stubCardStore struct {
	getByIDFn  func(ctx context.Context, cardID string) (models.Card, error)
	listFn     func(ctx context.Context, setID, rarity string, limit, offset int) ([]models.Card, error)
	getByIDsFn func(ctx context.Context, cardIDs []string) ([]models.Card, error)
	upsertFn   func(ctx context.Context, tx store.Execer, card models.Card) error
}

func (s stubCardStore) GetByID(ctx context.Context, cardID string) (models.Card, error) {
	if s.getByIDFn == nil {
		return models.Card{ID: cardID}, nil
	}
	return s.getByIDFn(ctx, cardID)
}

func (s stubCardStore) List(ctx context.Context, setID, rarity string, limit, offset int) ([]models.Card, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, setID, rarity, limit, offset)
}

func (s stubCardStore) GetByIDs(ctx context.Context, cardIDs []string) ([]models.Card, error) {
	if s.getByIDsFn == nil {
		return nil, nil
	}
	return s.getByIDsFn(ctx, cardIDs)
}

func (s stubCardStore) Upsert(ctx context.Context, tx store.Execer, card models.Card) error {
	if s.upsertFn == nil {
		return nil
	}
	return s.upsertFn(ctx, tx, card)
}

type stubSetStore struct {
	listFn   func(ctx context.Context) ([]models.Set, error)
	upsertFn func(ctx context.Context, tx store.Execer, set models.Set) error
}

func (s stubSetStore) List(ctx context.Context) ([]models.Set, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubSetStore) Upsert(ctx context.Context, tx store.Execer, set models.Set) error {
	if s.upsertFn == nil {
		return nil
	}
	return s.upsertFn(ctx, tx, set)
}

type stubCollectionStore struct {
	addVariantFn    func(ctx context.Context, tx store.Execer, id, userID, cardID, variant, condition string, quantity int) error
	removeVariantFn func(ctx context.Context, tx store.Execer, userID, cardID, variant, condition string, quantity int) error
	listByUserFn    func(ctx context.Context, userID string) ([]models.CollectionEntry, error)
	variantCountsFn func(ctx context.Context, userID, cardID string) ([]store.CardTotals, error)
	statsFn         func(ctx context.Context, userID string) (store.CollectionStats, error)
}

func (s stubCollectionStore) AddVariant(ctx context.Context, tx store.Execer, id, userID, cardID, variant, condition string, quantity int) error {
	if s.addVariantFn == nil {
		return nil
	}
	return s.addVariantFn(ctx, tx, id, userID, cardID, variant, condition, quantity)
}

func (s stubCollectionStore) RemoveVariant(ctx context.Context, tx store.Execer, userID, cardID, variant, condition string, quantity int) error {
	if s.removeVariantFn == nil {
		return nil
	}
	return s.removeVariantFn(ctx, tx, userID, cardID, variant, condition, quantity)
}

func (s stubCollectionStore) ListByUser(ctx context.Context, userID string) ([]models.CollectionEntry, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

func (s stubCollectionStore) VariantCounts(ctx context.Context, userID, cardID string) ([]store.CardTotals, error) {
	if s.variantCountsFn == nil {
		return nil, nil
	}
	return s.variantCountsFn(ctx, userID, cardID)
}

func (s stubCollectionStore) Stats(ctx context.Context, userID string) (store.CollectionStats, error) {
	if s.statsFn == nil {
		return store.CollectionStats{}, nil
	}
	return s.statsFn(ctx, userID)
}

type stubWishlistStore struct {
	createListFn     func(ctx context.Context, tx store.Execer, id, userID, name, description string, isDefault bool) error
	updateListFn     func(ctx context.Context, listID, userID, name, description string) (int64, error)
	deleteListFn     func(ctx context.Context, tx store.Tx, listID, userID string) error
	listListsFn      func(ctx context.Context, userID string) ([]models.WishlistList, error)
	getListFn        func(ctx context.Context, listID, userID string) (models.WishlistList, error)
	getDefaultListFn func(ctx context.Context, tx store.Getter, userID string) (string, error)
	addItemFn        func(ctx context.Context, tx store.Execer, item models.WishlistItem) error
	updateItemFn     func(ctx context.Context, itemID, userID string, priority int, maxPriceMinor *int64, condition, notes string) (int64, error)
	deleteItemFn     func(ctx context.Context, tx store.Tx, itemID, userID string) error
	removeByCardFn   func(ctx context.Context, tx store.Execer, userID, cardID string) error
	listItemsFn      func(ctx context.Context, listID, userID string) ([]models.WishlistItem, error)
	moveItemFn       func(ctx context.Context, tx store.Tx, itemID, userID, targetListID string) error
}

func (s stubWishlistStore) CreateList(ctx context.Context, tx store.Execer, id, userID, name, description string, isDefault bool) error {
	if s.createListFn == nil {
		return nil
	}
	return s.createListFn(ctx, tx, id, userID, name, description, isDefault)
}

func (s stubWishlistStore) UpdateList(ctx context.Context, listID, userID, name, description string) (int64, error) {
	if s.updateListFn == nil {
		return 1, nil
	}
	return s.updateListFn(ctx, listID, userID, name, description)
}

func (s stubWishlistStore) DeleteList(ctx context.Context, tx store.Tx, listID, userID string) error {
	if s.deleteListFn == nil {
		return nil
	}
	return s.deleteListFn(ctx, tx, listID, userID)
}

func (s stubWishlistStore) ListLists(ctx context.Context, userID string) ([]models.WishlistList, error) {
	if s.listListsFn == nil {
		return nil, nil
	}
	return s.listListsFn(ctx, userID)
}

func (s stubWishlistStore) GetList(ctx context.Context, listID, userID string) (models.WishlistList, error) {
	if s.getListFn == nil {
		return models.WishlistList{}, nil
	}
	return s.getListFn(ctx, listID, userID)
}

func (s stubWishlistStore) GetDefaultList(ctx context.Context, tx store.Getter, userID string) (string, error) {
	if s.getDefaultListFn == nil {
		return "list-default", nil
	}
	return s.getDefaultListFn(ctx, tx, userID)
}

func (s stubWishlistStore) AddItem(ctx context.Context, tx store.Execer, item models.WishlistItem) error {
	if s.addItemFn == nil {
		return nil
	}
	return s.addItemFn(ctx, tx, item)
}

func (s stubWishlistStore) UpdateItem(ctx context.Context, itemID, userID string, priority int, maxPriceMinor *int64, condition, notes string) (int64, error) {
	if s.updateItemFn == nil {
		return 1, nil
	}
	return s.updateItemFn(ctx, itemID, userID, priority, maxPriceMinor, condition, notes)
}

func (s stubWishlistStore) DeleteItem(ctx context.Context, tx store.Tx, itemID, userID string) error {
	if s.deleteItemFn == nil {
		return nil
	}
	return s.deleteItemFn(ctx, tx, itemID, userID)
}

func (s stubWishlistStore) RemoveByCard(ctx context.Context, tx store.Execer, userID, cardID string) error {
	if s.removeByCardFn == nil {
		return nil
	}
	return s.removeByCardFn(ctx, tx, userID, cardID)
}

func (s stubWishlistStore) ListItems(ctx context.Context, listID, userID string) ([]models.WishlistItem, error) {
	if s.listItemsFn == nil {
		return nil, nil
	}
	return s.listItemsFn(ctx, listID, userID)
}

func (s stubWishlistStore) MoveItem(ctx context.Context, tx store.Tx, itemID, userID, targetListID string) error {
	if s.moveItemFn == nil {
		return nil
	}
	return s.moveItemFn(ctx, tx, itemID, userID, targetListID)
}

type stubMatchStore struct {
	iWantFn    func(ctx context.Context, userID, friendID string) ([]map[string]any, error)
	theyWantFn func(ctx context.Context, userID, friendID string) ([]map[string]any, error)
	summaryFn  func(ctx context.Context, userID string) ([]store.MatchSummary, error)
}

func (s stubMatchStore) CardsIWantFriendsHave(ctx context.Context, userID, friendID string) ([]map[string]any, error) {
	if s.iWantFn == nil {
		return nil, nil
	}
	return s.iWantFn(ctx, userID, friendID)
}

func (s stubMatchStore) CardsFriendsWantIHave(ctx context.Context, userID, friendID string) ([]map[string]any, error) {
	if s.theyWantFn == nil {
		return nil, nil
	}
	return s.theyWantFn(ctx, userID, friendID)
}

func (s stubMatchStore) Summary(ctx context.Context, userID string) ([]store.MatchSummary, error) {
	if s.summaryFn == nil {
		return nil, nil
	}
	return s.summaryFn(ctx, userID)
}

type stubWantedStore struct {
	createFn func(ctx context.Context, tx store.Execer, post models.WantedPost) error
	listFn   func(ctx context.Context, limit, offset int) ([]map[string]any, error)
	deleteFn func(ctx context.Context, postID, userID string) (int64, error)
}

func (s stubWantedStore) Create(ctx context.Context, tx store.Execer, post models.WantedPost) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, post)
}

func (s stubWantedStore) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

func (s stubWantedStore) Delete(ctx context.Context, postID, userID string) (int64, error) {
	if s.deleteFn == nil {
		return 1, nil
	}
	return s.deleteFn(ctx, postID, userID)
}

type stubTradeStore struct {
	getByIDFn    func(ctx context.Context, tradeID string) (models.Trade, error)
	listItemsFn  func(ctx context.Context, tradeID string) ([]models.TradeItem, error)
	listByUserFn func(ctx context.Context, userID, status, role string, limit, offset int) ([]map[string]any, error)
}

func (s stubTradeStore) GetByID(ctx context.Context, tradeID string) (models.Trade, error) {
	if s.getByIDFn == nil {
		return models.Trade{ID: tradeID}, nil
	}
	return s.getByIDFn(ctx, tradeID)
}

func (s stubTradeStore) ListItems(ctx context.Context, tradeID string) ([]models.TradeItem, error) {
	if s.listItemsFn == nil {
		return nil, nil
	}
	return s.listItemsFn(ctx, tradeID)
}

func (s stubTradeStore) ListByUser(ctx context.Context, userID, status, role string, limit, offset int) ([]map[string]any, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, status, role, limit, offset)
}

type stubRateStore struct {
	getActiveFn  func(ctx context.Context, baseCurrency, quoteCurrency string) (map[string]any, error)
	listActiveFn func(ctx context.Context) ([]map[string]any, error)
	setRateFn    func(ctx context.Context, tx store.Tx, baseCurrency, quoteCurrency, rate string, actorID string) (string, error)
}

func (s stubRateStore) GetActive(ctx context.Context, baseCurrency, quoteCurrency string) (map[string]any, error) {
	if s.getActiveFn == nil {
		return map[string]any{"rate": "1"}, nil
	}
	return s.getActiveFn(ctx, baseCurrency, quoteCurrency)
}

func (s stubRateStore) ListActive(ctx context.Context) ([]map[string]any, error) {
	if s.listActiveFn == nil {
		return nil, nil
	}
	return s.listActiveFn(ctx)
}

func (s stubRateStore) SetRate(ctx context.Context, tx store.Tx, baseCurrency, quoteCurrency, rate string, actorID string) (string, error) {
	if s.setRateFn == nil {
		return "rate-1", nil
	}
	return s.setRateFn(ctx, tx, baseCurrency, quoteCurrency, rate, actorID)
}

type stubMovementStore struct {
	sumByTradeFn func(ctx context.Context, tradeID string) (int64, error)
}

func (s stubMovementStore) SumByTrade(ctx context.Context, tradeID string) (int64, error) {
	if s.sumByTradeFn == nil {
		return 0, nil
	}
	return s.sumByTradeFn(ctx, tradeID)
}

type stubAdminStore struct {
	isAdminFn     func(ctx context.Context, userID string) (bool, bool, error)
	hasRoleFn     func(ctx context.Context, userID, role string) (bool, error)
	createAdminFn func(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	grantRoleFn   func(ctx context.Context, tx store.Execer, adminUserID, role string) error
	hasAnyAdminFn func(ctx context.Context, tx store.Getter) (bool, error)
}

func (s stubAdminStore) IsAdmin(ctx context.Context, userID string) (bool, bool, error) {
	if s.isAdminFn == nil {
		return false, false, nil
	}
	return s.isAdminFn(ctx, userID)
}

func (s stubAdminStore) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if s.hasRoleFn == nil {
		return false, nil
	}
	return s.hasRoleFn(ctx, userID, role)
}

func (s stubAdminStore) CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error {
	if s.createAdminFn == nil {
		return nil
	}
	return s.createAdminFn(ctx, tx, userID, isSuper, createdBy)
}

func (s stubAdminStore) GrantRole(ctx context.Context, tx store.Execer, adminUserID, role string) error {
	if s.grantRoleFn == nil {
		return nil
	}
	return s.grantRoleFn(ctx, tx, adminUserID, role)
}

func (s stubAdminStore) HasAnyAdmin(ctx context.Context, tx store.Getter) (bool, error) {
	if s.hasAnyAdminFn == nil {
		return true, nil
	}
	return s.hasAnyAdminFn(ctx, tx)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listFn func(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubTradeService struct {
	proposeFn      func(ctx context.Context, req services.ProposeRequest) (string, error)
	acceptFn       func(ctx context.Context, tradeID, userID string) error
	declineFn      func(ctx context.Context, tradeID, userID string) error
	cancelFn       func(ctx context.Context, tradeID, userID string) error
	completeFn     func(ctx context.Context, tradeID, userID string) error
	counterFn      func(ctx context.Context, req services.CounterRequest) (string, error)
	clearHistoryFn func(ctx context.Context, userID string) (int64, error)
}

func (s stubTradeService) Propose(ctx context.Context, req services.ProposeRequest) (string, error) {
	if s.proposeFn == nil {
		return "trade-1", nil
	}
	return s.proposeFn(ctx, req)
}

func (s stubTradeService) Accept(ctx context.Context, tradeID, userID string) error {
	if s.acceptFn == nil {
		return nil
	}
	return s.acceptFn(ctx, tradeID, userID)
}

func (s stubTradeService) Decline(ctx context.Context, tradeID, userID string) error {
	if s.declineFn == nil {
		return nil
	}
	return s.declineFn(ctx, tradeID, userID)
}

func (s stubTradeService) Cancel(ctx context.Context, tradeID, userID string) error {
	if s.cancelFn == nil {
		return nil
	}
	return s.cancelFn(ctx, tradeID, userID)
}

func (s stubTradeService) Complete(ctx context.Context, tradeID, userID string) error {
	if s.completeFn == nil {
		return nil
	}
	return s.completeFn(ctx, tradeID, userID)
}

func (s stubTradeService) Counter(ctx context.Context, req services.CounterRequest) (string, error) {
	if s.counterFn == nil {
		return "trade-2", nil
	}
	return s.counterFn(ctx, req)
}

func (s stubTradeService) ClearHistory(ctx context.Context, userID string) (int64, error) {
	if s.clearHistoryFn == nil {
		return 0, nil
	}
	return s.clearHistoryFn(ctx, userID)
}

type stubAchievementService struct {
	evaluateFn func(ctx context.Context, userID string) ([]models.Achievement, []models.Achievement, error)
	listFn     func(ctx context.Context, userID string) ([]map[string]any, error)
}

func (s stubAchievementService) Evaluate(ctx context.Context, userID string) ([]models.Achievement, []models.Achievement, error) {
	if s.evaluateFn == nil {
		return nil, nil, nil
	}
	return s.evaluateFn(ctx, userID)
}

func (s stubAchievementService) ListWithStatus(ctx context.Context, userID string) ([]map[string]any, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID)
}

type stubEventPusher struct {
	events map[string][]websocket.Event
}

func newStubEventPusher() *stubEventPusher {
	return &stubEventPusher{events: make(map[string][]websocket.Event)}
}

func (s *stubEventPusher) Broadcast(userID string, event websocket.Event) {
	s.events[userID] = append(s.events[userID], event)
}

type stubPriceService struct {
	historyFn    func(ctx context.Context, cardID, variant string, days int, fillGaps bool) ([]models.PricePoint, error)
	invalidateFn func(cardID string)
}

func (s stubPriceService) History(ctx context.Context, cardID, variant string, days int, fillGaps bool) ([]models.PricePoint, error) {
	if s.historyFn == nil {
		return nil, nil
	}
	return s.historyFn(ctx, cardID, variant, days, fillGaps)
}

func (s stubPriceService) Invalidate(cardID string) {
	if s.invalidateFn != nil {
		s.invalidateFn(cardID)
	}
}

type stubPriceWriteStore struct {
	insertFn func(ctx context.Context, tx store.Execer, cardID, variant string, point models.PricePoint) error
}

func (s stubPriceWriteStore) Insert(ctx context.Context, tx store.Execer, cardID, variant string, point models.PricePoint) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, tx, cardID, variant, point)
}

type stubSearchIndex struct {
	searchFn func(ctx context.Context, query string, limit int) ([]search.Match, error)
}

func (s stubSearchIndex) Search(ctx context.Context, query string, limit int) ([]search.Match, error) {
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(ctx, query, limit)
}

type stubConverter struct {
	convertFn     func(ctx context.Context, amountMinor int64, toCurrency string) (int64, error)
	convertBackFn func(ctx context.Context, amountMinor int64, fromCurrency string) (int64, error)
}

func (s stubConverter) Convert(ctx context.Context, amountMinor int64, toCurrency string) (int64, error) {
	if s.convertFn == nil {
		return amountMinor, nil
	}
	return s.convertFn(ctx, amountMinor, toCurrency)
}

func (s stubConverter) ConvertBack(ctx context.Context, amountMinor int64, fromCurrency string) (int64, error) {
	if s.convertBackFn == nil {
		return amountMinor, nil
	}
	return s.convertBackFn(ctx, amountMinor, fromCurrency)
}

// newTestHandler fills any dependency the test leaves nil with a benign stub.
func newTestHandler(deps Deps) *Handler {
	deps.Config = config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	if deps.TxRunner == nil {
		deps.TxRunner = fakeTxRunner{}
	}
	if deps.Users == nil {
		deps.Users = stubUserStore{}
	}
	if deps.Friends == nil {
		deps.Friends = stubFriendStore{}
	}
	if deps.Cards == nil {
		deps.Cards = stubCardStore{}
	}
	if deps.Sets == nil {
		deps.Sets = stubSetStore{}
	}
	if deps.Collection == nil {
		deps.Collection = stubCollectionStore{}
	}
	if deps.Wishlists == nil {
		deps.Wishlists = stubWishlistStore{}
	}
	if deps.Matches == nil {
		deps.Matches = stubMatchStore{}
	}
	if deps.Wanted == nil {
		deps.Wanted = stubWantedStore{}
	}
	if deps.Trades == nil {
		deps.Trades = stubTradeStore{}
	}
	if deps.Rates == nil {
		deps.Rates = stubRateStore{}
	}
	if deps.Movements == nil {
		deps.Movements = stubMovementStore{}
	}
	if deps.Admin == nil {
		deps.Admin = stubAdminStore{}
	}
	if deps.Audit == nil {
		deps.Audit = stubAuditStore{}
	}
	if deps.TradeService == nil {
		deps.TradeService = stubTradeService{}
	}
	if deps.Achievements == nil {
		deps.Achievements = stubAchievementService{}
	}
	if deps.Prices == nil {
		deps.Prices = stubPriceService{}
	}
	if deps.PriceWrites == nil {
		deps.PriceWrites = stubPriceWriteStore{}
	}
	if deps.Search == nil {
		deps.Search = stubSearchIndex{}
	}
	if deps.Converter == nil {
		deps.Converter = stubConverter{}
	}
	deps.Hub = websocket.NewHub()
	return New(deps)
}

// serveAuthed runs a request through the full router with a bearer token for
// the given user, so path params and middleware behave as in production.
func serveAuthed(t *testing.T, handler *Handler, method, target string, body []byte, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	token, err := auth.GenerateToken("secret", userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	return rr
}
