package main

import (
	"context"
	"sync"
	"time"
)

// This file contains mocks definitions needed to perform unit tests.

type MockBookStorage struct {
	AddFunc    func(ctx context.Context, id string, book Book) error
	GetOneFunc func(ctx context.Context, id string) (Book, error)
	UpdateFunc func(ctx context.Context, id string, book Book) (Book, error)
	GetAllFunc func(ctx context.Context) ([]Book, error)
	DeleteFunc func(ctx context.Context, id string) error
}

// Add mocks the behavior of book creation by the repository.
func (m *MockBookStorage) Add(ctx context.Context, id string, book Book) error {
	return m.AddFunc(ctx, id, book)
}

// GetOne mocks the behavior of retrieving a book by the repository.
func (m *MockBookStorage) GetOne(ctx context.Context, id string) (Book, error) {
	return m.GetOneFunc(ctx, id)
}

// Update mocks the behavior of updating a book by the repository.
func (m *MockBookStorage) Update(ctx context.Context, id string, book Book) (Book, error) {
	return m.UpdateFunc(ctx, id, book)
}

// GetAll mocks the behavior of retrieving all books by the repository.
func (m *MockBookStorage) GetAll(ctx context.Context) ([]Book, error) {
	return m.GetAllFunc(ctx)
}

// Delete mocks the behavior of deleting a book by the repository.
func (m *MockBookStorage) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

type MockRentalStorage struct {
	AddFunc    func(ctx context.Context, id string, rental Rental) error
	GetOneFunc func(ctx context.Context, id string) (Rental, error)
	UpdateFunc func(ctx context.Context, id string, rental Rental) (Rental, error)
	GetAllFunc func(ctx context.Context) ([]Rental, error)
	DeleteFunc func(ctx context.Context, id string) error
}

// Add mocks the behavior of rental creation by the repository.
func (m *MockRentalStorage) Add(ctx context.Context, id string, rental Rental) error {
	return m.AddFunc(ctx, id, rental)
}

// GetOne mocks the behavior of retrieving a rental by the repository.
func (m *MockRentalStorage) GetOne(ctx context.Context, id string) (Rental, error) {
	return m.GetOneFunc(ctx, id)
}

// Update mocks the behavior of updating a rental by the repository.
func (m *MockRentalStorage) Update(ctx context.Context, id string, rental Rental) (Rental, error) {
	return m.UpdateFunc(ctx, id, rental)
}

// GetAll mocks the behavior of retrieving all rentals by the repository.
func (m *MockRentalStorage) GetAll(ctx context.Context) ([]Rental, error) {
	return m.GetAllFunc(ctx)
}

// Delete mocks the behavior of deleting a rental by the repository.
func (m *MockRentalStorage) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

// MockQueue records pushed events in memory so tests can assert
// on the mirroring traffic without a running redis server.
type MockQueue struct {
	mu     sync.Mutex
	events map[string][]StorageEvent
}

// NewMockQueue returns an empty in-memory queue.
func NewMockQueue() *MockQueue {
	return &MockQueue{events: make(map[string][]StorageEvent)}
}

// Push appends the event to the in-memory queue.
func (m *MockQueue) Push(_ context.Context, qid string, event StorageEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[qid] = append(m.events[qid], event)
	return nil
}

// Pop pops the oldest event from the first non empty queue.
func (m *MockQueue) Pop(ctx context.Context, qids ...string) (string, StorageEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, qid := range qids {
		if len(m.events[qid]) > 0 {
			event := m.events[qid][0]
			m.events[qid] = m.events[qid][1:]
			return qid, event, nil
		}
	}
	return "", StorageEvent{}, ctx.Err()
}

// Pushed returns the events pushed so far on a given queue.
func (m *MockQueue) Pushed(qid string) []StorageEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[qid]
}

// MockClocker implements a fake Clocker.
type MockClocker struct {
	MockNow time.Time
}

// NewMockClocker returns a mocked instance with fixed time.
func NewMockClocker() *MockClocker {
	return &MockClocker{time.Date(2023, 0o7, 0o2, 0o0, 0o0, 0o0, 0o00000000, time.UTC)}
}

// Now returns an already defined time to be used as mock. This
// equals to `Sun, 02 Jul 2023 00:00:00 UTC` in time.RFC1123 format.
// equals to `2023-07-02 00:00:00 +0000 UTC` in String format.
func (mck *MockClocker) Now() time.Time {
	return mck.MockNow
}

// MockUIDHandler implements a fake UIDHandler.
type MockUIDHandler struct {
	MockedUID string
	Valid     bool
}

// NewMockUIDHandler returns a mocked instance with predictable id.
func NewMockUIDHandler(id string, valid bool) *MockUIDHandler {
	return &MockUIDHandler{MockedUID: id, Valid: valid}
}

// Generate constructs a predictable id to be used as mock.
func (muid *MockUIDHandler) Generate(prefix string) string {
	return prefix + ":" + muid.MockedUID
}

// IsValid mocks IsValid behavior by providing configured status.
func (muid *MockUIDHandler) IsValid(_, _ string) bool {
	return muid.Valid
}
