package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Statistics holds app stats for ops.
type Statistics struct {
	version   string
	container bool
	runtime   string
	platform  string
	called    uint64
	started   time.Time
	status    map[int]uint64
	mu        *sync.RWMutex
}

// Maintenance holds app maintenance mode infos.
type Maintenance struct {
	enabled atomic.Bool
	message string
	started time.Time
}

// APIHandler defines the API handler.
type APIHandler struct {
	logger        *zap.Logger
	config        *Config
	stats         *Statistics
	mode          *Maintenance
	clock         Clocker
	idsHandler    UIDHandler
	bookService   BookServiceProvider
	rentalService RentalServiceProvider
}

// NewAPIHandler provides a new instance of APIHandler.
func NewAPIHandler(logger *zap.Logger, config *Config, stats *Statistics, clock Clocker, idsHandler UIDHandler, bs BookServiceProvider, rs RentalServiceProvider) *APIHandler {
	m := &Maintenance{}
	m.enabled.Store(false)
	stats.status = make(map[int]uint64)
	stats.mu = &sync.RWMutex{}
	return &APIHandler{
		logger:        logger,
		config:        config,
		stats:         stats,
		mode:          m,
		clock:         clock,
		idsHandler:    idsHandler,
		bookService:   bs,
		rentalService: rs,
	}
}

// Index provides same details like `Status` handler by redirecting the request.
func (api *APIHandler) Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	http.Redirect(w, r, "/status", http.StatusSeeOther)
}

// Status provides basics details about the application to the public users.
func (api *APIHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if err := json.NewEncoder(w).Encode(
		map[string]interface{}{
			"requestid": requestID,
			"status":    fmt.Sprintf("up & running since %.0f mins", api.clock.Now().Sub(api.stats.started).Minutes()),
			"message":   "Hello. Books rental api is available. Enjoy :)",
		},
	); err != nil {
		api.logger.Error("failed to send status response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// NotFound returns the handler in charge of unknown routes.
func (api *APIHandler) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.WriteHeader(http.StatusNotFound)
		if err := json.NewEncoder(w).Encode(
			map[string]string{
				"message": "route does not exist. check the docs.",
			},
		); err != nil {
			api.logger.Error("failed to send not found response", zap.Error(err))
		}
	})
}

// WriteFailure logs a request failure and maps the domain error to its
// HTTP status before sending the error envelope. Invariant violations are
// the only server-side kind of the taxonomy and come out as 500.
func (api *APIHandler) WriteFailure(w http.ResponseWriter, r *http.Request, message string, err error, data interface{}) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	status := http.StatusInternalServerError
	switch {
	case err == ErrBookNotFound || err == ErrRentalNotFound:
		status = http.StatusNotFound
	case IsValidationError(err):
		status = http.StatusBadRequest
	case IsConflict(err):
		status = http.StatusConflict
	case IsInvalidOperation(err) || err == ErrReturnedIsFinal:
		status = http.StatusUnprocessableEntity
	}
	api.logger.Error(message, zap.String("request.id", requestID), zap.Error(err))
	errResp := NewAPIError(requestID, status, message, data)
	if werr := WriteErrorResponse(r.Context(), w, errResp); werr != nil {
		api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(werr))
	}
}

// WriteSuccess sends a success envelope with optional listing total.
func (api *APIHandler) WriteSuccess(w http.ResponseWriter, r *http.Request, status int, message string, total *int, data interface{}) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	resp := GenericResponse(requestID, status, message, total, data)
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
