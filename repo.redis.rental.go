package main

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const HRentals string = "rentals"

type redisRentalStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisRentalStorage provides an instance of redis-based rental storage.
func NewRedisRentalStorage(logger *zap.Logger, client *redis.Client) RentalStorage {
	return &redisRentalStorage{
		logger: logger,
		client: client,
	}
}

// Add inserts a new rental record.
func (rs *redisRentalStorage) Add(ctx context.Context, id string, rental Rental) error {
	rentalBytes, err := json.Marshal(rental)
	if err != nil {
		return err
	}
	return rs.client.HSet(ctx, HRentals, id, rentalBytes).Err()
}

// GetOne retrieves a rental record based on its ID.
func (rs *redisRentalStorage) GetOne(ctx context.Context, id string) (Rental, error) {
	var rental Rental
	rentalJSONString, err := rs.client.HGet(ctx, HRentals, id).Result()
	if err == redis.Nil {
		return rental, ErrRentalNotFound
	}
	if err != nil {
		return rental, err
	}
	err = json.Unmarshal([]byte(rentalJSONString), &rental)
	return rental, err
}

// Update replaces existing rental record data or inserts a new one if does not exist.
func (rs *redisRentalStorage) Update(ctx context.Context, id string, rental Rental) (Rental, error) {
	rentalBytes, err := json.Marshal(rental)
	if err != nil {
		return rental, err
	}
	err = rs.client.HSet(ctx, HRentals, id, rentalBytes).Err()
	return rental, err
}

// GetAll retrieves a list of all rentals stored in the redis database.
func (rs *redisRentalStorage) GetAll(ctx context.Context) ([]Rental, error) {
	mapRentals, err := rs.client.HVals(ctx, HRentals).Result()
	if err != nil {
		return nil, err
	}
	rentals := []Rental{}
	for _, rentalJSONString := range mapRentals {
		var rental Rental
		if err = json.Unmarshal([]byte(rentalJSONString), &rental); err != nil {
			return nil, err
		}
		rentals = append(rentals, rental)
	}
	return rentals, nil
}

// Delete removes a rental record based on its ID.
func (rs *redisRentalStorage) Delete(ctx context.Context, id string) error {
	n, err := rs.client.HDel(ctx, HRentals, id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRentalNotFound
	}
	return nil
}
