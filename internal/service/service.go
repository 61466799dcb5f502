package service

import (
	"encoding/json"
	"io"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/bookcat/catalog-service/pkg/filestore"
	"github.com/bookcat/catalog-service/pkg/kafka"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// normalizePaging clamps out-of-range values to the defaults so the
// offset can never go negative.
func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

// FileStore is the blob storage the media paths run against.
type FileStore interface {
	Save(name string, r io.Reader) error
	Read(name string) ([]byte, error)
	Exists(name string) bool
	Remove(name string) error
}

var _ FileStore = (*filestore.Store)(nil)

// Enqueuer publishes catalog mutation events. A nil producer turns
// publishing into a no-op.
type Enqueuer interface {
	Enqueue(topic string, v any) error
}

func NewEnqueuer(producer sarama.SyncProducer) Enqueuer {
	return &enqueuerImpl{producer: producer}
}

type enqueuerImpl struct {
	producer sarama.SyncProducer
}

func (q *enqueuerImpl) Enqueue(topic string, v any) error {
	if q.producer == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{Topic: topic, Value: sarama.StringEncoder(data)}
	if _, _, err = q.producer.SendMessage(msg); err != nil {
		return err
	}
	return nil
}

// emit sends a mutation event; delivery problems are logged, never
// returned to the caller.
func emit(enq Enqueuer, log *zap.Logger, event any) {
	if enq == nil {
		return
	}
	if err := enq.Enqueue(kafka.CatalogTopic, event); err != nil {
		log.Warn("enqueue event", zap.Error(err))
	}
}
