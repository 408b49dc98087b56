package handlers

import (
	"net/http"

	"tradebinder/internal/config"
	"tradebinder/internal/db"
	"tradebinder/internal/middleware"
	"tradebinder/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner     db.TxRunner
	cfg          config.Config
	users        UserStore
	friends      FriendStore
	cards        CardStore
	sets         SetStore
	collection   CollectionStore
	wishlists    WishlistStore
	matches      MatchStore
	wanted       WantedStore
	trades       TradeStore
	rates        RateStore
	movements    MovementStore
	admin        AdminStore
	audit        AuditStore
	tradeService TradeService
	achievements AchievementService
	prices       PriceService
	priceWrites  PriceWriteStore
	search       SearchIndex
	converter    Converter
	hub          *websocket.Hub
	events       EventPusher
}

type Deps struct {
	TxRunner     db.TxRunner
	Config       config.Config
	Users        UserStore
	Friends      FriendStore
	Cards        CardStore
	Sets         SetStore
	Collection   CollectionStore
	Wishlists    WishlistStore
	Matches      MatchStore
	Wanted       WantedStore
	Trades       TradeStore
	Rates        RateStore
	Movements    MovementStore
	Admin        AdminStore
	Audit        AuditStore
	TradeService TradeService
	Achievements AchievementService
	Prices       PriceService
	PriceWrites  PriceWriteStore
	Search       SearchIndex
	Converter    Converter
	Hub          *websocket.Hub

	// Events defaults to Hub; split out so pushes can be observed in tests.
	Events EventPusher
}

func New(deps Deps) *Handler {
	if deps.Events == nil {
		deps.Events = deps.Hub
	}
	return &Handler{
		txRunner:     deps.TxRunner,
		cfg:          deps.Config,
		users:        deps.Users,
		friends:      deps.Friends,
		cards:        deps.Cards,
		sets:         deps.Sets,
		collection:   deps.Collection,
		wishlists:    deps.Wishlists,
		matches:      deps.Matches,
		wanted:       deps.Wanted,
		trades:       deps.Trades,
		rates:        deps.Rates,
		movements:    deps.Movements,
		admin:        deps.Admin,
		audit:        deps.Audit,
		tradeService: deps.TradeService,
		achievements: deps.Achievements,
		prices:       deps.Prices,
		priceWrites:  deps.PriceWrites,
		search:       deps.Search,
		converter:    deps.Converter,
		hub:          deps.Hub,
		events:       deps.Events,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))

		r.Get("/users/username/{username}", h.GetUserByUsername)
		r.Put("/users/preferences", h.UpdatePreferences)

		r.Post("/friends/requests", h.RequestFriend)
		r.Post("/friends/requests/{id}/accept", h.AcceptFriend)
		r.Get("/friends/requests", h.ListFriendRequests)
		r.Get("/friends", h.ListFriends)

		r.Get("/sets", h.ListSets)
		r.Get("/cards", h.ListCards)
		r.Get("/cards/search", h.SearchCards)
		r.Get("/cards/{id}", h.GetCard)
		r.Get("/cards/{id}/prices", h.PriceHistory)

		r.Post("/collection", h.AddToCollection)
		r.Delete("/collection", h.RemoveFromCollection)
		r.Get("/collection", h.ListCollection)
		r.Get("/collection/stats", h.CollectionStats)
		r.Get("/collection/cards/{id}", h.CardVariants)

		r.Post("/wishlists", h.CreateWishlist)
		r.Get("/wishlists", h.ListWishlists)
		r.Put("/wishlists/{id}", h.UpdateWishlist)
		r.Delete("/wishlists/{id}", h.DeleteWishlist)
		r.Get("/wishlists/{id}/items", h.ListWishlistItems)
		r.Post("/wishlists/{id}/items", h.AddWishlistItem)
		r.Put("/wishlists/items/{itemID}", h.UpdateWishlistItem)
		r.Delete("/wishlists/items/{itemID}", h.DeleteWishlistItem)
		r.Post("/wishlists/items/{itemID}/move", h.MoveWishlistItem)

		r.Get("/matches/i-want", h.MatchesIWant)
		r.Get("/matches/they-want", h.MatchesTheyWant)
		r.Get("/matches/summary", h.MatchSummary)

		r.Get("/wanted", h.ListWantedPosts)
		r.Post("/wanted", h.CreateWantedPost)
		r.Delete("/wanted/{id}", h.DeleteWantedPost)

		r.Post("/trades", h.ProposeTrade)
		r.Get("/trades", h.ListTrades)
		r.Delete("/trades/history", h.ClearTradeHistory)
		r.Get("/trades/{id}", h.GetTrade)
		r.Post("/trades/{id}/accept", h.AcceptTrade)
		r.Post("/trades/{id}/decline", h.DeclineTrade)
		r.Post("/trades/{id}/cancel", h.CancelTrade)
		r.Post("/trades/{id}/complete", h.CompleteTrade)
		r.Post("/trades/{id}/counter", h.CounterTrade)

		r.Get("/achievements", h.ListAchievements)
		r.Get("/currency/rates", h.ListRates)
		r.Get("/currency/convert", h.ConvertAmount)
	})

	router.Get("/ws/events", h.WSEvents)

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.With(middleware.RequireAdmin(h.admin, "CanManageCards")).Post("/sets", h.AdminUpsertSet)
		r.With(middleware.RequireAdmin(h.admin, "CanManageCards")).Post("/cards", h.AdminUpsertCard)
		r.With(middleware.RequireAdmin(h.admin, "CanManageCards")).Post("/cards/{id}/prices", h.AdminInsertPrice)
		r.With(middleware.RequireAdmin(h.admin, "CanManageRates")).Post("/rates", h.AdminSetRate)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/roles/grant", h.GrantRole)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/promote", h.PromoteAdmin)
		r.With(middleware.RequireAdmin(h.admin, "CanViewAudit")).Get("/audit", h.ListAuditLogs)
		r.With(middleware.RequireAdmin(h.admin, "CanViewAudit")).Get("/trades/{id}/reconcile", h.ReconcileTrade)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
