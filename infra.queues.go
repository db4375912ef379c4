package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Predefinied Queue IDs. Each queue carries one kind of storage event
// consumed by the boltdb mirror.
const (
	BookCreateQueue   = "book.creation"
	BookUpdateQueue   = "book.updating"
	BookDeleteQueue   = "book.deletion"
	RentalCreateQueue = "rental.creation"
	RentalUpdateQueue = "rental.updating"
)

// StorageEvent is the unit pushed on the queues. Data holds the json
// encoded record so the consumer can unmarshal into the right entity
// based on the queue the event came from.
type StorageEvent struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewStorageEvent marshals a record into a queueable event.
func NewStorageEvent(id string, record interface{}) (StorageEvent, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return StorageEvent{}, err
	}
	return StorageEvent{ID: id, Data: data}, nil
}

// Ensure *redisQueue implements Queuer.
var _ Queuer = (*redisQueue)(nil)

// Queuer describes a queue of storage events.
type Queuer interface {
	Push(ctx context.Context, qid string, event StorageEvent) error
	Pop(ctx context.Context, qids ...string) (string, StorageEvent, error)
}

// redisQueue represents a queue which implements the Queuer interface.
type redisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) Queuer {
	return &redisQueue{client: client}
}

// Push enqueues a storage event onto the queue identified by qid.
func (q *redisQueue) Push(ctx context.Context, qid string, event StorageEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, qid, eventBytes).Err()
}

// Pop returns the first dequeued storage event from the list of queue ids.
func (q *redisQueue) Pop(ctx context.Context, qids ...string) (string, StorageEvent, error) {
	var event StorageEvent
	var qid string
	infos, err := q.client.BLPop(ctx, 0*time.Second, qids...).Result()
	if err != nil {
		return qid, event, err
	}

	if err = json.Unmarshal([]byte(infos[1]), &event); err != nil {
		return qid, event, err
	}
	qid = infos[0]
	return qid, event, nil
}
