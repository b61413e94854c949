package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	kafkaad "travel_smart/internal/adapters/kafka"
	"travel_smart/internal/adapters/observability"
	"travel_smart/internal/app"
	"travel_smart/internal/domain"
	"travel_smart/internal/shared"
	mysqlrepo "travel_smart/internal/storage/mysql"
)

// ingestor copies booking events from Kafka into the MySQL journal, for
// deployments where API nodes publish events but do not hold a database.
func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel, os.Stdout)

	if cfg.MySQLDSN == "" || len(cfg.KafkaBrokers) == 0 {
		log.Fatal().Msg("ingestor needs MYSQL_DSN and KAFKA_BROKERS")
	}

	log.Info().
		Strs("brokers", cfg.KafkaBrokers).
		Str("topic", cfg.KafkaBookingTopic).
		Str("group", cfg.KafkaGroupID).
		Msg("ingestor starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	ing := app.NewBookingIngestor(mysqlrepo.New(db))
	consumer := kafkaad.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaBookingTopic)
	defer consumer.Close()

	err = consumer.Consume(ctx, func(ctx context.Context, e domain.BookingEvent) error {
		err := ing.Ingest(ctx, e)
		observability.ObserveJournal("ingestor", err)
		if err == nil {
			log.Info().Str("id", e.ID).Str("kind", string(e.Kind)).Str("status", e.Status).Msg("ingest ok")
		}
		return err
	}, app.IsMalformed)
	if err != nil {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
	log.Info().Msg("ingestor stopped")
}
