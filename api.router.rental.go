package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupRentalRoutes injects rental related api endpoints. The overdue
// listing goes through `/v1/rentals?status=overdue` because the router
// cannot mix a static segment with the `:id` wildcard.
func (api *APIHandler) SetupRentalRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.POST("/v1/rentals", m.public(api.RentBook))
	router.GET("/v1/rentals", m.public(api.GetAllRentals))
	router.GET("/v1/rentals/:id", m.public(api.GetOneRental))
	router.POST("/v1/rentals/:id/return", m.public(api.ReturnBook))
	router.PATCH("/v1/rentals/:id/status", m.public(api.UpdateRentalStatus))
	router.GET("/v1/stats/rentals", m.public(api.GetRentalsStats))
	return router
}
