package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	server "travel_smart/internal/adapters/http_server"
	kafkaad "travel_smart/internal/adapters/kafka"
	"travel_smart/internal/adapters/observability"
	redisad "travel_smart/internal/adapters/redis"
	"travel_smart/internal/adapters/tokenstore"
	"travel_smart/internal/adapters/travelapi"
	"travel_smart/internal/app"
	"travel_smart/internal/domain"
	"travel_smart/internal/shared"
	mysqlrepo "travel_smart/internal/storage/mysql"
)

const rememberTTL = 30 * 24 * time.Hour

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	api, err := travelapi.New(cfg.TravelBase, cfg.TravelRPS, cfg.TravelTimeout(),
		travelapi.WithAuthScheme(cfg.TravelAuthScheme))
	if err != nil {
		log.Fatal().Err(err).Msg("travel api client")
	}

	remembered := tokenstore.NewShelf()
	deps := server.Deps{
		API:            api,
		SummaryWorkers: cfg.SummaryWorkers,
		OnTransition:   observability.ObserveTransition,
		Stores: func(_, key string) (domain.TokenStore, domain.TokenStore) {
			return remembered.Store(key), tokenstore.NewMemory()
		},
	}

	// redis: token stores and the airport cache
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := pingRedis(ctx, rc); err != nil {
			log.Fatal().Err(err).Msg("redis ping failed")
		}
		cache = redisad.NewCache(rc, "travel:cache:")
		deps.Stores = func(sid, key string) (domain.TokenStore, domain.TokenStore) {
			return redisad.NewTokenStore(rc, "remember:"+key, rememberTTL),
				redisad.NewTokenStore(rc, "session:"+sid, cfg.SessionTTL())
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis connection ok")
	} else {
		log.Warn().Msg("REDIS_ADDR not set; tokens live in memory")
	}

	// mysql: booking journal
	var journal domain.Journal
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		journal = mysqlrepo.New(db)
		deps.Journal = journal
	}

	// kafka: booking events
	if len(cfg.KafkaBrokers) > 0 {
		p := kafkaad.NewProducer(cfg.KafkaBrokers, cfg.KafkaBookingTopic)
		defer func() {
			if err := p.Close(); err != nil {
				log.Warn().Err(err).Msg("kafka producer close")
			}
		}()
		deps.Events = p
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaBookingTopic).Msg("publishing booking events")
	}

	sessions := server.NewRegistry(cfg.SessionTTL(), rememberTTL, func(sid, key string) *server.Session {
		return server.NewSession(sid, key, deps)
	})
	go sessions.Run(ctx, time.Minute)

	// http
	srv := server.New(cfg.TravelTimeout() + 10*time.Second)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Sessions:    sessions,
		Airports:    app.NewAirportService(api, cache, cfg.CacheTTL()),
		HotelBooker: app.NewHotelBooker(api),
		Journal:     journal,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}

func pingRedis(ctx context.Context, rc *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return rc.Ping(ctx).Err()
}
