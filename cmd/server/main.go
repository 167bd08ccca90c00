package main // entry point wiring config, stores, services and the HTTP server

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"

	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/bridge"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/catalog"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/config"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/database"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/handler"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/queue"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/registrar"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/repository"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/router"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/sale"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/scheduler"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/seatcache"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/seats"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/session"
	"github.com/um-programacion-ii/programacion-2-2025-trabajo-final-valencora/internal/warmup"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// The shared cache is optional: a nil client degrades reads to
	// synthesized maps instead of taking the service down.
	var cache *seatcache.Store
	if rdb := config.NewRedisClient(); rdb != nil {
		cache = seatcache.New(seatcache.NewRedisKV(rdb))
		defer rdb.Close()
	} else {
		log.Println("main: running without the shared seat cache")
	}

	events := repository.NewEventRepo(db)
	users := repository.NewUserRepo(db)
	salesRepo := repository.NewSaleRepo(db)

	reg := registrar.New(cfg.RegistrarURL, cfg.RegistrarToken, cfg.RegistrarTimeout)

	sessions := session.NewStore()
	go sessions.StartSweeper(ctx)

	var cacheDep bridge.Cache
	if cache != nil {
		cacheDep = cache
	}
	seatBridge := bridge.New(cacheDep, reg, events)
	seatSvc := seats.New(seatBridge, sessions)
	saleSvc := sale.New(events, users, salesRepo, reg, sessions)
	syncSvc := catalog.New(reg, events)

	go scheduler.New(salesRepo, saleSvc, sale.MaxRetries).Run(ctx)
	go queue.NewConsumer(cfg.RabbitURL, syncSvc).Run(ctx)
	go warmup.New(seatBridge, events).Run(ctx)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAPI(e,
		handler.NewEventsHandler(events, syncSvc),
		handler.NewSeatsHandler(seatSvc),
		handler.NewSessionHandler(sessions),
		handler.NewSaleHandler(saleSvc, salesRepo),
		cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		<-ctx.Done()
		log.Println("main: shutting down")
		_ = e.Shutdown(context.Background())
	}()
	if err := e.Start(addr); err != nil {
		log.Println(err)
	}
}
