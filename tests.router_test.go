package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func newTestRouterAPIHandler() *APIHandler {
	mockBooks := &MockBookStorage{
		AddFunc: func(ctx context.Context, id string, book Book) error {
			return nil
		},
		GetOneFunc: func(ctx context.Context, id string) (Book, error) {
			return validTestBook(), nil
		},
		UpdateFunc: func(ctx context.Context, id string, book Book) (Book, error) {
			return book, nil
		},
		GetAllFunc: func(ctx context.Context) ([]Book, error) {
			return []Book{}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			return nil
		},
	}
	mockRentals := &MockRentalStorage{
		AddFunc: func(ctx context.Context, id string, rental Rental) error {
			return nil
		},
		GetOneFunc: func(ctx context.Context, id string) (Rental, error) {
			return validTestRental(), nil
		},
		UpdateFunc: func(ctx context.Context, id string, rental Rental) (Rental, error) {
			return rental, nil
		},
		GetAllFunc: func(ctx context.Context) ([]Rental, error) {
			return []Rental{}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			return nil
		},
	}
	queue := NewMockQueue()
	bs := newTestBookService(mockBooks, queue)
	rs := newTestRentalService(mockRentals, mockBooks, queue)
	return newTestAPIHandler(bs, rs)
}

// TestSetupBookRoutes ensures all book related endpoints are implemented.
func TestSetupBookRoutes(t *testing.T) {
	testCases := []struct {
		name        string
		request     *http.Request
		implemented bool
	}{
		{
			"index endpoint",
			httptest.NewRequest(http.MethodGet, "/", nil),
			true,
		},
		{
			"status endpoint",
			httptest.NewRequest(http.MethodGet, "/status", nil),
			true,
		},
		{
			"create book endpoint",
			httptest.NewRequest(http.MethodPost, "/v1/books", nil),
			true,
		},
		{
			"fetch all books endpoint",
			httptest.NewRequest(http.MethodGet, "/v1/books", nil),
			true,
		},
		{
			"fetch single book endpoint",
			httptest.NewRequest(http.MethodGet, "/v1/books/b:cb8f2136-fae4-4200-85d9-3533c7f8c70d", nil),
			true,
		},
		{
			"update book endpoint",
			httptest.NewRequest(http.MethodPut, "/v1/books/b:cb8f2136-fae4-4200-85d9-3533c7f8c70d", nil),
			true,
		},
		{
			"delete book endpoint",
			httptest.NewRequest(http.MethodDelete, "/v1/books/b:cb8f2136-fae4-4200-85d9-3533c7f8c70d", nil),
			true,
		},
		{
			"books statistics endpoint",
			httptest.NewRequest(http.MethodGet, "/v1/stats/books", nil),
			true,
		},
		{
			"invalid api endpoint",
			httptest.NewRequest(http.MethodGet, "/v1", nil),
			false,
		},
		{
			"invalid books endpoint",
			httptest.NewRequest(http.MethodGet, "/books", nil),
			false,
		},
	}

	api := newTestRouterAPIHandler()
	router := httprouter.New()
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	api.SetupBookRoutes(router, m)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

// TestSetupRentalRoutes ensures all rental related endpoints are implemented.
func TestSetupRentalRoutes(t *testing.T) {
	testCases := []struct {
		name        string
		request     *http.Request
		implemented bool
	}{
		{
			"rent book endpoint",
			httptest.NewRequest(http.MethodPost, "/v1/rentals", nil),
			true,
		},
		{
			"fetch all rentals endpoint",
			httptest.NewRequest(http.MethodGet, "/v1/rentals", nil),
			true,
		},
		{
			"fetch single rental endpoint",
			httptest.NewRequest(http.MethodGet, "/v1/rentals/l:cb8f2136-fae4-4200-85d9-3533c7f8c70d", nil),
			true,
		},
		{
			"return book endpoint",
			httptest.NewRequest(http.MethodPost, "/v1/rentals/l:cb8f2136-fae4-4200-85d9-3533c7f8c70d/return", nil),
			true,
		},
		{
			"update rental status endpoint",
			httptest.NewRequest(http.MethodPatch, "/v1/rentals/l:cb8f2136-fae4-4200-85d9-3533c7f8c70d/status", nil),
			true,
		},
		{
			"rentals statistics endpoint",
			httptest.NewRequest(http.MethodGet, "/v1/stats/rentals", nil),
			true,
		},
		{
			"invalid rentals endpoint",
			httptest.NewRequest(http.MethodGet, "/rentals", nil),
			false,
		},
	}

	api := newTestRouterAPIHandler()
	router := httprouter.New()
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	api.SetupRentalRoutes(router, m)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}
