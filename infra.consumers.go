package main

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

// boltDBConsumer drains the storage events queues and mirrors each
// change into the boltdb store.
type boltDBConsumer struct {
	logger  *zap.Logger
	queue   Queuer
	books   BookStorage
	rentals RentalStorage
}

func NewBoltDBConsumer(logger *zap.Logger, q Queuer, books BookStorage, rentals RentalStorage) Consumer {
	return &boltDBConsumer{logger, q, books, rentals}
}

func (bc *boltDBConsumer) Consume(ctx context.Context, qids ...string) error {
	var event StorageEvent
	var err error
	var qid string
	for {
		qid, event, err = bc.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			bc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			bc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			continue
		}

		switch qid {
		case BookCreateQueue, BookUpdateQueue:
			var book Book
			if err = json.Unmarshal(event.Data, &book); err != nil {
				bc.logger.Error("consumer: failed to decode book event", zap.String("id", event.ID), zap.Error(err))
				continue
			}
			if _, err = bc.books.Update(ctx, event.ID, book); err != nil {
				bc.logger.Error("consumer: failed to mirror book", zap.String("id", event.ID), zap.Error(err))
			}
		case BookDeleteQueue:
			if err = bc.books.Delete(ctx, event.ID); err != nil {
				bc.logger.Error("consumer: failed to delete book", zap.String("id", event.ID), zap.Error(err))
			}
		case RentalCreateQueue, RentalUpdateQueue:
			var rental Rental
			if err = json.Unmarshal(event.Data, &rental); err != nil {
				bc.logger.Error("consumer: failed to decode rental event", zap.String("id", event.ID), zap.Error(err))
				continue
			}
			if _, err = bc.rentals.Update(ctx, event.ID, rental); err != nil {
				bc.logger.Error("consumer: failed to mirror rental", zap.String("id", event.ID), zap.Error(err))
			}
		default:
			bc.logger.Warn("consumer: received event on unknown queue id", zap.String("qid", qid), zap.String("id", event.ID))
		}
	}
}
