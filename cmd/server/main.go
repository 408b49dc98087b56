package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradebinder/internal/config"
	"tradebinder/internal/currency"
	"tradebinder/internal/db"
	"tradebinder/internal/handlers"
	"tradebinder/internal/pricing"
	"tradebinder/internal/search"
	"tradebinder/internal/services"
	"tradebinder/internal/store"
	"tradebinder/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	friends := store.NewFriendStore(database)
	cards := store.NewCardStore(database)
	sets := store.NewSetStore(database)
	collection := store.NewCollectionStore(database)
	wishlists := store.NewWishlistStore(database)
	matches := store.NewMatchStore(database)
	wanted := store.NewWantedStore(database)
	trades := store.NewTradeStore(database)
	prices := store.NewPriceStore(database)
	rates := store.NewRateStore(database)
	movements := store.NewMovementStore(database)
	achievements := store.NewAchievementStore(database)
	admin := store.NewAdminStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	achievementService := services.NewAchievementService(txRunner, achievements, collection, trades)
	tradeService := services.NewTradeService(txRunner, trades, collection, wishlists, movements, audit, hub, achievementService)
	priceService, err := pricing.NewService(prices, cards, cfg.PriceCacheSize, cfg.PriceCacheTTL)
	if err != nil {
		log.Fatalf("failed to build price cache: %v", err)
	}
	searchIndex := search.NewIndex(cards, 5*time.Minute)
	converter := currency.NewConverter(rates)

	handler := handlers.New(handlers.Deps{
		TxRunner:     txRunner,
		Config:       cfg,
		Users:        users,
		Friends:      friends,
		Cards:        cards,
		Sets:         sets,
		Collection:   collection,
		Wishlists:    wishlists,
		Matches:      matches,
		Wanted:       wanted,
		Trades:       trades,
		Rates:        rates,
		Movements:    movements,
		Admin:        admin,
		Audit:        audit,
		TradeService: tradeService,
		Achievements: achievementService,
		Prices:       priceService,
		PriceWrites:  prices,
		Search:       searchIndex,
		Converter:    converter,
		Hub:          hub,
	})
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("tradebinder API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
