package main

import (
	"context"
	"encoding/json"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

type boltRentalStorage struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// NewBoltRentalStorage provides an instance of bolt-based rental storage.
func NewBoltRentalStorage(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) RentalStorage {
	return &boltRentalStorage{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the bolt-based rental storage.
func (bs *boltRentalStorage) Close() error {
	return bs.client.Close()
}

// Add inserts a new rental record into boltdb store.
func (bs *boltRentalStorage) Add(_ context.Context, id string, rental Rental) error {
	rentalBytes, err := json.Marshal(rental)
	if err != nil {
		return err
	}
	err = bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bs.config.RentalsBucket)).Put([]byte(id), rentalBytes)
	})
	return err
}

// GetOne retrieves a rental record based on its ID from boltdb store.
func (bs *boltRentalStorage) GetOne(_ context.Context, id string) (Rental, error) {
	var rental Rental
	tx, err := bs.client.Begin(false)
	if err != nil {
		return rental, err
	}
	defer tx.Rollback()

	result := tx.Bucket([]byte(bs.config.RentalsBucket)).Get([]byte(id))
	if result == nil {
		return rental, ErrRentalNotFound
	}
	err = json.Unmarshal(result, &rental)
	return rental, err
}

// Update replaces existing rental record data or inserts a new one if does not exist.
func (bs *boltRentalStorage) Update(_ context.Context, id string, rental Rental) (Rental, error) {
	rentalBytes, err := json.Marshal(rental)
	if err != nil {
		return rental, err
	}
	err = bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bs.config.RentalsBucket)).Put([]byte(id), rentalBytes)
	})
	return rental, err
}

// GetAll retrieves a list of all rentals stored in the bolt database.
func (bs *boltRentalStorage) GetAll(_ context.Context) ([]Rental, error) {
	tx, err := bs.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c := tx.Bucket([]byte(bs.config.RentalsBucket)).Cursor()

	rentals := []Rental{}
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var rental Rental
		if err = json.Unmarshal(v, &rental); err != nil {
			return nil, err
		}
		rentals = append(rentals, rental)
	}
	return rentals, nil
}

// Delete removes a rental record based on its ID from boltdb store.
func (bs *boltRentalStorage) Delete(_ context.Context, id string) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bs.config.RentalsBucket)).Delete([]byte(id))
	})
}
