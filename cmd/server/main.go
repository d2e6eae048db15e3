package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gridclash/internal/cache"
	"gridclash/internal/config"
	"gridclash/internal/logger"
	"gridclash/internal/repository"
	"gridclash/internal/service"
	"gridclash/internal/store"
	"gridclash/internal/transport/rest"
	"gridclash/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	log.Info().Msg("connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := cfg.RedisURI
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping Redis")
	}
	log.Info().Msg("connected to Redis")

	// WebSocket hub
	wsHub := ws.NewHub(log)

	// Repositories, caches and the in-memory room store
	gameRepo := repository.NewGameRepo(db)
	leaderboard := cache.NewLeaderboardCache(rdb)
	roomStore := store.NewRoomStore()

	// Services
	gameSvc := service.NewGameService(gameRepo)
	roomSvc := service.NewRoomService(roomStore, gameRepo, leaderboard, log)
	turnSvc := service.NewTurnService(cfg.TurnSeconds, cfg.NoticeSeconds, cfg.TickInterval, log)
	statsSvc := service.NewStatsService(roomStore, log)
	actionSvc := service.NewActionService(roomStore, statsSvc, turnSvc, log)
	combatSvc := service.NewCombatService(roomStore, statsSvc, turnSvc, log)
	botSvc := service.NewVirtualPlayerService(roomStore, roomSvc, turnSvc, cfg.BotRetryMax, cfg.BotRetryDelay, log)

	// Wire the cycles: timers drive bot turns, rooms start/stop timers
	roomSvc.SetTimerControl(turnSvc)
	turnSvc.SetBotDriver(botSvc)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	roomSvc.SetBroadcaster(wsHub)
	turnSvc.SetBroadcaster(wsHub)
	actionSvc.SetBroadcaster(wsHub)
	combatSvc.SetBroadcaster(wsHub)
	botSvc.SetBroadcaster(wsHub)

	wsHandler := ws.NewHandler(wsHub, roomSvc, turnSvc, actionSvc, combatSvc, statsSvc, botSvc, log)

	router := rest.NewRouter(&rest.Container{
		GameService: gameSvc,
		RoomService: roomSvc,
		Leaderboard: leaderboard,
		WSHandler:   wsHandler,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen and serve")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
