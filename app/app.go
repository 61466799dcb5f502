package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/bookcat/catalog-service/config"
	"github.com/bookcat/catalog-service/internal/handler"
	"github.com/bookcat/catalog-service/internal/repository"
	"github.com/bookcat/catalog-service/internal/server"
	"github.com/bookcat/catalog-service/internal/service"
	"github.com/bookcat/catalog-service/migrations"
	"github.com/bookcat/catalog-service/pkg/filestore"
	"github.com/bookcat/catalog-service/pkg/kafka"
	"github.com/bookcat/catalog-service/pkg/logger"
	"github.com/bookcat/catalog-service/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "catalog")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}

	store, err := filestore.New(cfg.Media.Dir)
	if err != nil {
		log.Fatal("filestore init", zap.Error(err))
	}

	authorRepo, err := repository.NewAuthorRepository(db, log)
	if err != nil {
		log.Fatal("author repo", zap.Error(err))
	}
	bookRepo, err := repository.NewBookRepository(db, log)
	if err != nil {
		log.Fatal("book repo", zap.Error(err))
	}

	var producer sarama.SyncProducer
	if cfg.Kafka.Enabled {
		if producer, err = kafka.NewProducer(cfg.Kafka); err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
	}
	enq := service.NewEnqueuer(producer)

	authorSvc := service.NewAuthorService(authorRepo, enq, log)
	bookSvc := service.NewBookService(bookRepo, store, enq, log)
	mediaSvc := service.NewMediaService(bookRepo, store, enq, log)

	h := handler.New(authorSvc, bookSvc, mediaSvc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if producer != nil {
		if err = producer.Close(); err != nil {
			log.Error("producer close", zap.Error(err))
		}
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
