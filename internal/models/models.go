package models

import "time"

const (
	TradePending   = "pending"
	TradeAccepted  = "accepted"
	TradeDeclined  = "declined"
	TradeCancelled = "cancelled"
	TradeCompleted = "completed"
)

// TerminalTradeStatuses are the statuses removed by a history clear.
var TerminalTradeStatuses = []string{TradeCompleted, TradeDeclined, TradeCancelled}

const (
	VariantNormal       = "normal"
	VariantHolo         = "holo"
	VariantReverseHolo  = "reverse_holo"
	VariantPokeball     = "pokeball_pattern"
	VariantMasterball   = "masterball_pattern"
	VariantFirstEdition = "first_edition"
)

var Variants = []string{
	VariantNormal,
	VariantHolo,
	VariantReverseHolo,
	VariantPokeball,
	VariantMasterball,
	VariantFirstEdition,
}

func IsValidVariant(variant string) bool {
	for _, v := range Variants {
		if v == variant {
			return true
		}
	}
	return false
}

const (
	PriceSourceCardmarket = "cardmarket"
	PriceSourceTCGPlayer  = "tcgplayer"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Currency     string    `db:"currency" json:"currency"`
	PriceSource  string    `db:"price_source" json:"price_source"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Set struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Series      string     `db:"series" json:"series"`
	ReleaseDate *time.Time `db:"release_date" json:"release_date,omitempty"`
	CardCount   int        `db:"card_count" json:"card_count"`
}

type Card struct {
	ID                   string `db:"id" json:"id"`
	SetID                string `db:"set_id" json:"set_id"`
	Name                 string `db:"name" json:"name"`
	Number               string `db:"number" json:"number"`
	Rarity               string `db:"rarity" json:"rarity"`
	ImageSmall           string `db:"image_small" json:"image_small"`
	ImageLarge           string `db:"image_large" json:"image_large"`
	CardmarketAvg        *int64 `db:"cardmarket_avg" json:"cardmarket_avg,omitempty"`
	CardmarketLow        *int64 `db:"cardmarket_low" json:"cardmarket_low,omitempty"`
	CardmarketTrend      *int64 `db:"cardmarket_trend" json:"cardmarket_trend,omitempty"`
	CardmarketAvg1       *int64 `db:"cardmarket_avg1" json:"cardmarket_avg1,omitempty"`
	CardmarketAvg7       *int64 `db:"cardmarket_avg7" json:"cardmarket_avg7,omitempty"`
	CardmarketAvg30      *int64 `db:"cardmarket_avg30" json:"cardmarket_avg30,omitempty"`
	CardmarketReverseAvg *int64 `db:"cardmarket_reverse_avg" json:"cardmarket_reverse_avg,omitempty"`
	TCGPlayerMarket      *int64 `db:"tcgplayer_market" json:"tcgplayer_market,omitempty"`
	TCGPlayerLow         *int64 `db:"tcgplayer_low" json:"tcgplayer_low,omitempty"`
}

type CollectionEntry struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	CardID    string    `db:"card_id" json:"card_id"`
	Variant   string    `db:"variant" json:"variant"`
	Condition string    `db:"condition" json:"condition"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type WishlistList struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	IsDefault   bool      `db:"is_default" json:"is_default"`
	ItemCount   int       `db:"item_count" json:"item_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type WishlistItem struct {
	ID            string    `db:"id" json:"id"`
	ListID        string    `db:"list_id" json:"list_id"`
	UserID        string    `db:"user_id" json:"user_id"`
	CardID        string    `db:"card_id" json:"card_id"`
	Priority      int       `db:"priority" json:"priority"`
	MaxPriceMinor *int64    `db:"max_price_minor" json:"max_price_minor,omitempty"`
	Condition     string    `db:"condition" json:"condition"`
	Notes         string    `db:"notes" json:"notes"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type WantedPost struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	CardID        string    `db:"card_id" json:"card_id"`
	MaxPriceMinor *int64    `db:"max_price_minor" json:"max_price_minor,omitempty"`
	Condition     string    `db:"condition" json:"condition"`
	Notes         string    `db:"notes" json:"notes"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type Trade struct {
	ID                  string     `db:"id" json:"id"`
	InitiatorID         string     `db:"initiator_id" json:"initiator_id"`
	RecipientID         string     `db:"recipient_id" json:"recipient_id"`
	Status              string     `db:"status" json:"status"`
	InitiatorMoneyMinor int64      `db:"initiator_money_minor" json:"initiator_money_minor"`
	RecipientMoneyMinor int64      `db:"recipient_money_minor" json:"recipient_money_minor"`
	ShippingIncluded    bool       `db:"shipping_included" json:"shipping_included"`
	Message             string     `db:"message" json:"message"`
	ExpiresAt           *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

type TradeItem struct {
	ID        string `db:"id" json:"id"`
	TradeID   string `db:"trade_id" json:"trade_id"`
	UserID    string `db:"user_id" json:"user_id"`
	CardID    string `db:"card_id" json:"card_id"`
	Variant   string `db:"variant" json:"variant"`
	Condition string `db:"condition" json:"condition"`
	Quantity  int    `db:"quantity" json:"quantity"`
}

type PricePoint struct {
	Date             time.Time `db:"day" json:"date"`
	Price            int64     `db:"price" json:"price"`
	ReverseHoloPrice *int64    `db:"reverse_holo_price" json:"reverse_holo_price,omitempty"`
	TCGPlayerPrice   *int64    `db:"tcgplayer_price" json:"tcgplayer_price,omitempty"`
}

type Achievement struct {
	ID          string `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Kind        string `db:"kind" json:"kind"`
	Threshold   int    `db:"threshold" json:"threshold"`
}
