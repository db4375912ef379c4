package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAPIHandler(bs BookServiceProvider, rs RentalServiceProvider) *APIHandler {
	return NewAPIHandler(
		zap.NewNop(),
		&Config{},
		&Statistics{started: time.Now()},
		NewMockClocker(),
		NewMockUIDHandler("test-uid", true),
		bs,
		rs,
	)
}

func decodeResponseBody(t *testing.T, res *http.Response) map[string]interface{} {
	t.Helper()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	m := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

// TestStatusHandler ensures api handler can provides its status.
func TestStatusHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	api := newTestAPIHandler(nil, nil)
	api.stats.started = NewMockClocker().Now()
	api.Status(w, req, httprouter.Params{})
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))
	m := decodeResponseBody(t, res)

	_, ok := m["requestid"]
	assert.True(t, ok)

	v, ok := m["status"]
	assert.True(t, ok)
	assert.Equal(t, "up & running since 0 mins", v)

	v, ok = m["message"]
	assert.True(t, ok)
	assert.Equal(t, "Hello. Books rental api is available. Enjoy :)", v)
}

// TestCreateBookHandler ensures api handler can create a book.
//
//nolint:funlen
func TestCreateBookHandler(t *testing.T) {
	mockRepo := &MockBookStorage{
		AddFunc: func(ctx context.Context, id string, book Book) error {
			return nil
		},
		GetAllFunc: func(ctx context.Context) ([]Book, error) {
			return []Book{}, nil
		},
	}
	bs := newTestBookService(mockRepo, NewMockQueue())
	api := newTestAPIHandler(bs, nil)

	t.Run("should pass: valid payload", func(t *testing.T) {
		payload, err := json.Marshal(CreateBookRequest{
			Title:       "Test book title",
			Author:      "Jerome Amon",
			Genre:       "Fiction",
			TotalCopies: 3,
		})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/v1/books", bytes.NewBuffer(payload))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusCreated, res.StatusCode)
		assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))

		resultMap := decodeResponseBody(t, res)

		_, ok := resultMap["requestid"]
		assert.True(t, ok)

		v, ok := resultMap["status"]
		assert.True(t, ok)
		assert.Equal(t, float64(http.StatusCreated), v)

		v, ok = resultMap["message"]
		assert.True(t, ok)
		assert.Equal(t, "Book created successfully.", v)

		v, ok = resultMap["data"]
		assert.True(t, ok)

		bookMap, ok := v.(map[string]interface{})
		assert.True(t, ok)
		assert.Equal(t, "b:test-uid", bookMap["id"])
		assert.Equal(t, "Test book title", bookMap["title"])
		assert.Equal(t, "Jerome Amon", bookMap["author"])
		assert.Equal(t, "Fiction", bookMap["genre"])
		// the available counter defaults to the total.
		assert.Equal(t, float64(3), bookMap["totalCopies"])
		assert.Equal(t, float64(3), bookMap["availableCopies"])
		assert.Equal(t, true, bookMap["isActive"])

		assert.NotEmpty(t, bookMap["createdAt"])
		assert.NotEmpty(t, bookMap["updatedAt"])
	})

	t.Run("should fail: malformed payload", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/books", bytes.NewBufferString("{broken"))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("should fail: unknown genre", func(t *testing.T) {
		payload, err := json.Marshal(CreateBookRequest{
			Title:       "Test book title",
			Author:      "Jerome Amon",
			Genre:       "Cyberpunk",
			TotalCopies: 3,
		})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/v1/books", bytes.NewBuffer(payload))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("should fail: duplicate isbn", func(t *testing.T) {
		other := validTestBook()
		other.ID = "b:other"
		mockRepo := &MockBookStorage{
			GetAllFunc: func(ctx context.Context) ([]Book, error) {
				return []Book{other}, nil
			},
		}
		api := newTestAPIHandler(newTestBookService(mockRepo, NewMockQueue()), nil)

		payload, err := json.Marshal(CreateBookRequest{
			Title:       "Test book title",
			Author:      "Jerome Amon",
			Genre:       "Fiction",
			ISBN:        other.ISBN,
			TotalCopies: 3,
		})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/v1/books", bytes.NewBuffer(payload))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusConflict, res.StatusCode)
	})

	t.Run("should fail: storage insertion failure", func(t *testing.T) {
		mockRepo := &MockBookStorage{
			AddFunc: func(ctx context.Context, id string, book Book) error {
				return errors.New("storage failure")
			},
			GetAllFunc: func(ctx context.Context) ([]Book, error) {
				return []Book{}, nil
			},
		}
		api := newTestAPIHandler(newTestBookService(mockRepo, NewMockQueue()), nil)

		payload, err := json.Marshal(CreateBookRequest{
			Title:       "Test book title",
			Author:      "Jerome Amon",
			Genre:       "Fiction",
			TotalCopies: 3,
		})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/v1/books", bytes.NewBuffer(payload))
		w := httptest.NewRecorder()
		api.CreateBook(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	})
}

// TestGetOneBookHandler ensures api handler can fetch one book.
func TestGetOneBookHandler(t *testing.T) {
	t.Run("should pass: existing book", func(t *testing.T) {
		book := validTestBook()
		mockRepo := &MockBookStorage{
			GetOneFunc: func(ctx context.Context, id string) (Book, error) {
				return book, nil
			},
		}
		api := newTestAPIHandler(newTestBookService(mockRepo, NewMockQueue()), nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/books/"+book.ID, nil)
		w := httptest.NewRecorder()
		api.GetOneBook(w, req, httprouter.Params{{Key: "id", Value: book.ID}})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
		m := decodeResponseBody(t, res)
		bookMap := m["data"].(map[string]interface{})
		assert.Equal(t, book.ID, bookMap["id"])
	})

	t.Run("should fail: invalid book id", func(t *testing.T) {
		api := NewAPIHandler(zap.NewNop(), &Config{}, &Statistics{started: time.Now()},
			NewMockClocker(), NewMockUIDHandler("test-uid", false), nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/books/whatever", nil)
		w := httptest.NewRecorder()
		api.GetOneBook(w, req, httprouter.Params{{Key: "id", Value: "whatever"}})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("should fail: unknown book", func(t *testing.T) {
		mockRepo := &MockBookStorage{
			GetOneFunc: func(ctx context.Context, id string) (Book, error) {
				return Book{}, ErrBookNotFound
			},
		}
		api := newTestAPIHandler(newTestBookService(mockRepo, NewMockQueue()), nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/books/b:missing", nil)
		w := httptest.NewRecorder()
		api.GetOneBook(w, req, httprouter.Params{{Key: "id", Value: "b:missing"}})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})
}

// TestGetAllBooksHandler ensures listing carries filters and the total.
func TestGetAllBooksHandler(t *testing.T) {
	active := validTestBook()
	retired := validTestBook()
	retired.ID = "b:1"
	retired.ISBN = ""
	retired.IsActive = false
	mockRepo := &MockBookStorage{
		GetAllFunc: func(ctx context.Context) ([]Book, error) {
			return []Book{active, retired}, nil
		},
	}
	api := newTestAPIHandler(newTestBookService(mockRepo, NewMockQueue()), nil)

	t.Run("should pass: default listing excludes inactive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
		w := httptest.NewRecorder()
		api.GetAllBooks(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
		m := decodeResponseBody(t, res)
		assert.Equal(t, float64(1), m["total"])
	})

	t.Run("should pass: includeInactive widens the listing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/books?includeInactive=true", nil)
		w := httptest.NewRecorder()
		api.GetAllBooks(w, req, httprouter.Params{})
		res := w.Result()
		defer res.Body.Close()
		m := decodeResponseBody(t, res)
		assert.Equal(t, float64(2), m["total"])
	})
}

// TestDeleteOneBookHandler ensures deletion is a soft delete.
func TestDeleteOneBookHandler(t *testing.T) {
	book := validTestBook()
	deleted := false
	mockRepo := &MockBookStorage{
		GetOneFunc: func(ctx context.Context, id string) (Book, error) {
			return book, nil
		},
		UpdateFunc: func(ctx context.Context, id string, b Book) (Book, error) {
			return b, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	api := newTestAPIHandler(newTestBookService(mockRepo, NewMockQueue()), nil)

	req := httptest.NewRequest(http.MethodDelete, "/v1/books/"+book.ID, nil)
	w := httptest.NewRecorder()
	api.DeleteOneBook(w, req, httprouter.Params{{Key: "id", Value: book.ID}})
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	m := decodeResponseBody(t, res)
	bookMap := m["data"].(map[string]interface{})
	assert.Equal(t, false, bookMap["isActive"])
	// the record itself is never removed.
	assert.False(t, deleted)
}

// TestGetBooksStatsHandler ensures the books aggregate endpoint responds.
func TestGetBooksStatsHandler(t *testing.T) {
	mockRepo := &MockBookStorage{
		GetAllFunc: func(ctx context.Context) ([]Book, error) {
			return []Book{validTestBook()}, nil
		},
	}
	api := newTestAPIHandler(newTestBookService(mockRepo, NewMockQueue()), nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/stats/books", nil)
	w := httptest.NewRecorder()
	api.GetBooksStats(w, req, httprouter.Params{})
	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	m := decodeResponseBody(t, res)
	statsMap := m["data"].(map[string]interface{})
	assert.Equal(t, float64(1), statsMap["count"])
	assert.Equal(t, float64(5), statsMap["totalCopies"])
}
