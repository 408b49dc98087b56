package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"tradebinder/internal/db"
	"tradebinder/internal/models"
	"tradebinder/internal/store"
	"tradebinder/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrTradeNotFound     = errors.New("trade not found")
	ErrNotYourTrade      = errors.New("trade does not involve user")
	ErrNotRecipient      = errors.New("only the recipient can respond")
	ErrInvalidTransition = errors.New("invalid trade transition")
	ErrTradeExpired      = errors.New("trade offer expired")
	ErrSelfTrade         = errors.New("cannot trade with yourself")
	ErrNoItems           = errors.New("trade has no items")
	ErrInvalidItem       = errors.New("invalid trade item")
	ErrCardNotOwned      = errors.New("offered card not owned in required quantity")
)

type TradeStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TradeInput) error
	AddItem(ctx context.Context, tx store.Execer, item models.TradeItem) error
	GetForUpdate(ctx context.Context, tx store.Getter, tradeID string) (models.Trade, error)
	Transition(ctx context.Context, tx store.Execer, tradeID, fromStatus, toStatus string) (int64, error)
	ListItemsForUpdate(ctx context.Context, tx store.Selecter, tradeID string) ([]models.TradeItem, error)
	ClearHistory(ctx context.Context, tx store.Execer, userID string) (int64, error)
}

type CollectionStore interface {
	AddVariant(ctx context.Context, tx store.Execer, id, userID, cardID, variant, condition string, quantity int) error
	RemoveAnyCondition(ctx context.Context, tx store.Tx, userID, cardID, variant string, quantity int) error
	OwnedQuantity(ctx context.Context, tx store.Getter, userID, cardID, variant string) (int, error)
}

type WishlistStore interface {
	RemoveByCard(ctx context.Context, tx store.Execer, userID, cardID string) error
}

type MovementStore interface {
	InsertMovements(ctx context.Context, tx store.Execer, movements []store.MovementInput) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type EventHub interface {
	Broadcast(userID string, event websocket.Event)
}

type AchievementEvaluator interface {
	Evaluate(ctx context.Context, userID string) ([]models.Achievement, []models.Achievement, error)
}

type TradeService struct {
	txRunner     db.TxRunner
	trades       TradeStore
	collections  CollectionStore
	wishlists    WishlistStore
	movements    MovementStore
	audit        AuditStore
	hub          EventHub
	achievements AchievementEvaluator
}

func NewTradeService(txRunner db.TxRunner, trades TradeStore, collections CollectionStore, wishlists WishlistStore, movements MovementStore, audit AuditStore, hub EventHub, achievements AchievementEvaluator) *TradeService {
	return &TradeService{
		txRunner:     txRunner,
		trades:       trades,
		collections:  collections,
		wishlists:    wishlists,
		movements:    movements,
		audit:        audit,
		hub:          hub,
		achievements: achievements,
	}
}

type ProposedItem struct {
	UserID    string
	CardID    string
	Variant   string
	Condition string
	Quantity  int
}

type ProposeRequest struct {
	InitiatorID         string
	RecipientID         string
	Items               []ProposedItem
	InitiatorMoneyMinor int64
	RecipientMoneyMinor int64
	ShippingIncluded    bool
	Message             string
	ExpiresAt           *time.Time
}

// Propose creates a pending trade. Every offered item must belong to one of
// the two parties and be owned in the offered quantity at proposal time.
func (s *TradeService) Propose(ctx context.Context, req ProposeRequest) (string, error) {
	if req.InitiatorID == req.RecipientID {
		return "", ErrSelfTrade
	}
	if len(req.Items) == 0 && req.InitiatorMoneyMinor == 0 && req.RecipientMoneyMinor == 0 {
		return "", ErrNoItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 || !models.IsValidVariant(item.Variant) {
			return "", ErrInvalidItem
		}
		if item.UserID != req.InitiatorID && item.UserID != req.RecipientID {
			return "", ErrInvalidItem
		}
	}
	tradeID := uuid.NewString()
	var expiresAt any
	if req.ExpiresAt != nil {
		expiresAt = req.ExpiresAt.UTC()
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, item := range req.Items {
			owned, err := s.collections.OwnedQuantity(ctx, tx, item.UserID, item.CardID, item.Variant)
			if err != nil {
				return err
			}
			if owned < item.Quantity {
				return ErrCardNotOwned
			}
		}
		if err := s.trades.Create(ctx, tx, store.TradeInput{
			ID:                  tradeID,
			InitiatorID:         req.InitiatorID,
			RecipientID:         req.RecipientID,
			InitiatorMoneyMinor: req.InitiatorMoneyMinor,
			RecipientMoneyMinor: req.RecipientMoneyMinor,
			ShippingIncluded:    req.ShippingIncluded,
			Message:             req.Message,
			ExpiresAt:           expiresAt,
		}); err != nil {
			return err
		}
		for _, item := range req.Items {
			if err := s.trades.AddItem(ctx, tx, models.TradeItem{
				ID:        uuid.NewString(),
				TradeID:   tradeID,
				UserID:    item.UserID,
				CardID:    item.CardID,
				Variant:   item.Variant,
				Condition: item.Condition,
				Quantity:  item.Quantity,
			}); err != nil {
				return err
			}
		}
		data, _ := json.Marshal(map[string]any{
			"recipient_id": req.RecipientID,
			"item_count":   len(req.Items),
		})
		return s.audit.Log(ctx, tx, req.InitiatorID, "trade_propose", "trade", tradeID, string(data))
	})
	if err != nil {
		return "", err
	}
	s.hub.Broadcast(req.RecipientID, websocket.Event{
		Type:    "trade_proposed",
		TradeID: tradeID,
		Status:  models.TradePending,
		ActorID: req.InitiatorID,
	})
	return tradeID, nil
}

// Accept moves a pending trade to accepted. Recipient only; an expired
// offer cannot be accepted.
func (s *TradeService) Accept(ctx context.Context, tradeID, userID string) error {
	return s.respond(ctx, tradeID, userID, models.TradeAccepted, "trade_accept")
}

// Decline moves a pending trade to declined. Recipient only.
func (s *TradeService) Decline(ctx context.Context, tradeID, userID string) error {
	return s.respond(ctx, tradeID, userID, models.TradeDeclined, "trade_decline")
}

func (s *TradeService) respond(ctx context.Context, tradeID, userID, toStatus, action string) error {
	var counterparty string
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		trade, err := s.trades.GetForUpdate(ctx, tx, tradeID)
		if err != nil {
			return ErrTradeNotFound
		}
		if trade.RecipientID != userID {
			if trade.InitiatorID == userID {
				return ErrNotRecipient
			}
			return ErrNotYourTrade
		}
		if toStatus == models.TradeAccepted && trade.ExpiresAt != nil && time.Now().After(*trade.ExpiresAt) {
			return ErrTradeExpired
		}
		affected, err := s.trades.Transition(ctx, tx, tradeID, models.TradePending, toStatus)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInvalidTransition
		}
		counterparty = trade.InitiatorID
		return s.audit.Log(ctx, tx, userID, action, "trade", tradeID, "{}")
	})
	if err != nil {
		return err
	}
	s.hub.Broadcast(counterparty, websocket.Event{
		Type:    "trade_" + toStatus,
		TradeID: tradeID,
		Status:  toStatus,
		ActorID: userID,
	})
	return nil
}

// Cancel withdraws a pending trade. Either party may cancel.
func (s *TradeService) Cancel(ctx context.Context, tradeID, userID string) error {
	var counterparty string
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		trade, err := s.trades.GetForUpdate(ctx, tx, tradeID)
		if err != nil {
			return ErrTradeNotFound
		}
		if trade.InitiatorID != userID && trade.RecipientID != userID {
			return ErrNotYourTrade
		}
		affected, err := s.trades.Transition(ctx, tx, tradeID, models.TradePending, models.TradeCancelled)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInvalidTransition
		}
		counterparty = trade.InitiatorID
		if counterparty == userID {
			counterparty = trade.RecipientID
		}
		return s.audit.Log(ctx, tx, userID, "trade_cancel", "trade", tradeID, "{}")
	})
	if err != nil {
		return err
	}
	s.hub.Broadcast(counterparty, websocket.Event{
		Type:    "trade_cancelled",
		TradeID: tradeID,
		Status:  models.TradeCancelled,
		ActorID: userID,
	})
	return nil
}

// Complete settles an accepted trade in a single transaction: every item
// moves giver to receiver, paired movement rows are recorded and must sum
// to zero per card and variant, and received cards drop off the receiver's
// wishlists. Completing an already completed trade is a no-op.
func (s *TradeService) Complete(ctx context.Context, tradeID, userID string) error {
	var initiatorID, recipientID string
	alreadyCompleted := false
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		trade, err := s.trades.GetForUpdate(ctx, tx, tradeID)
		if err != nil {
			return ErrTradeNotFound
		}
		if trade.InitiatorID != userID && trade.RecipientID != userID {
			return ErrNotYourTrade
		}
		if trade.Status == models.TradeCompleted {
			alreadyCompleted = true
			return nil
		}
		if trade.Status != models.TradeAccepted {
			return ErrInvalidTransition
		}
		initiatorID = trade.InitiatorID
		recipientID = trade.RecipientID

		items, err := s.trades.ListItemsForUpdate(ctx, tx, tradeID)
		if err != nil {
			return err
		}
		var movements []store.MovementInput
		for _, item := range items {
			receiver := trade.InitiatorID
			if item.UserID == trade.InitiatorID {
				receiver = trade.RecipientID
			}
			if err := s.collections.RemoveAnyCondition(ctx, tx, item.UserID, item.CardID, item.Variant, item.Quantity); err != nil {
				if errors.Is(err, store.ErrNotEnoughOwned) {
					return ErrCardNotOwned
				}
				return err
			}
			if err := s.collections.AddVariant(ctx, tx, uuid.NewString(), receiver, item.CardID, item.Variant, item.Condition, item.Quantity); err != nil {
				return err
			}
			movements = append(movements,
				store.MovementInput{
					ID:      uuid.NewString(),
					TradeID: tradeID,
					UserID:  item.UserID,
					CardID:  item.CardID,
					Variant: item.Variant,
					Delta:   -item.Quantity,
					Note:    "Trade debit",
				},
				store.MovementInput{
					ID:      uuid.NewString(),
					TradeID: tradeID,
					UserID:  receiver,
					CardID:  item.CardID,
					Variant: item.Variant,
					Delta:   item.Quantity,
					Note:    "Trade credit",
				},
			)
			if err := s.wishlists.RemoveByCard(ctx, tx, receiver, item.CardID); err != nil {
				return err
			}
		}
		if err := ensureBalancedMovements(movements); err != nil {
			return err
		}
		if err := s.movements.InsertMovements(ctx, tx, movements); err != nil {
			return err
		}
		affected, err := s.trades.Transition(ctx, tx, tradeID, models.TradeAccepted, models.TradeCompleted)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInvalidTransition
		}
		data, _ := json.Marshal(map[string]any{"items_moved": len(items)})
		return s.audit.Log(ctx, tx, userID, "trade_complete", "trade", tradeID, string(data))
	})
	if err != nil {
		return err
	}
	if alreadyCompleted {
		return nil
	}
	for _, party := range []string{initiatorID, recipientID} {
		s.hub.Broadcast(party, websocket.Event{
			Type:    "trade_completed",
			TradeID: tradeID,
			Status:  models.TradeCompleted,
			ActorID: userID,
		})
		s.evaluateAchievements(ctx, party)
	}
	return nil
}

type CounterRequest struct {
	TradeID             string
	UserID              string
	InitiatorMoneyMinor int64
	RecipientMoneyMinor int64
	Message             string
	ExpiresAt           *time.Time
}

// Counter declines a pending trade and opens a new one with the roles
// swapped; the item sets carry over with their owners unchanged. The two
// trades are not linked.
func (s *TradeService) Counter(ctx context.Context, req CounterRequest) (string, error) {
	newTradeID := uuid.NewString()
	var counterparty string
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		trade, err := s.trades.GetForUpdate(ctx, tx, req.TradeID)
		if err != nil {
			return ErrTradeNotFound
		}
		if trade.InitiatorID != req.UserID && trade.RecipientID != req.UserID {
			return ErrNotYourTrade
		}
		affected, err := s.trades.Transition(ctx, tx, req.TradeID, models.TradePending, models.TradeDeclined)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInvalidTransition
		}
		counterparty = trade.InitiatorID
		if counterparty == req.UserID {
			counterparty = trade.RecipientID
		}
		items, err := s.trades.ListItemsForUpdate(ctx, tx, req.TradeID)
		if err != nil {
			return err
		}
		var expiresAt any
		if req.ExpiresAt != nil {
			expiresAt = req.ExpiresAt.UTC()
		}
		if err := s.trades.Create(ctx, tx, store.TradeInput{
			ID:                  newTradeID,
			InitiatorID:         req.UserID,
			RecipientID:         counterparty,
			InitiatorMoneyMinor: req.InitiatorMoneyMinor,
			RecipientMoneyMinor: req.RecipientMoneyMinor,
			Message:             req.Message,
			ShippingIncluded:    trade.ShippingIncluded,
			ExpiresAt:           expiresAt,
		}); err != nil {
			return err
		}
		for _, item := range items {
			if err := s.trades.AddItem(ctx, tx, models.TradeItem{
				ID:        uuid.NewString(),
				TradeID:   newTradeID,
				UserID:    item.UserID,
				CardID:    item.CardID,
				Variant:   item.Variant,
				Condition: item.Condition,
				Quantity:  item.Quantity,
			}); err != nil {
				return err
			}
		}
		data, _ := json.Marshal(map[string]string{"declined_trade_id": req.TradeID})
		return s.audit.Log(ctx, tx, req.UserID, "trade_counter", "trade", newTradeID, string(data))
	})
	if err != nil {
		return "", err
	}
	s.hub.Broadcast(counterparty, websocket.Event{
		Type:    "trade_countered",
		TradeID: newTradeID,
		Status:  models.TradePending,
		ActorID: req.UserID,
	})
	return newTradeID, nil
}

// ClearHistory removes the caller's terminal trades and nothing else.
func (s *TradeService) ClearHistory(ctx context.Context, userID string) (int64, error) {
	var removed int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		removed, err = s.trades.ClearHistory(ctx, tx, userID)
		if err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]int64{"removed": removed})
		return s.audit.Log(ctx, tx, userID, "trade_clear_history", "user", userID, string(data))
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// evaluateAchievements is best effort: failures are logged and swallowed.
func (s *TradeService) evaluateAchievements(ctx context.Context, userID string) {
	if s.achievements == nil {
		return
	}
	unlocked, revoked, err := s.achievements.Evaluate(ctx, userID)
	if err != nil {
		log.Printf("achievement evaluation failed for %s: %v", userID, err)
		return
	}
	for _, achievement := range unlocked {
		s.hub.Broadcast(userID, websocket.Event{
			Type:    "achievement_unlocked",
			Message: achievement.Name,
		})
	}
	for _, achievement := range revoked {
		s.hub.Broadcast(userID, websocket.Event{
			Type:    "achievement_revoked",
			Message: achievement.Name,
		})
	}
}

func ensureBalancedMovements(movements []store.MovementInput) error {
	sums := map[string]int{}
	for _, movement := range movements {
		sums[movement.CardID+"|"+movement.Variant] += movement.Delta
	}
	for _, sum := range sums {
		if sum != 0 {
			return errors.New("card movements are not balanced")
		}
	}
	return nil
}
