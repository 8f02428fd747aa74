package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupBookRoutes injects book related the api endpoints.
func (api *APIHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	// "/books/" is not an alias of "/books".
	router.RedirectTrailingSlash = false
	router.GET("/", m.public(api.Index))
	router.GET("/books", m.public(api.GetAllBooks))
	router.POST("/books", m.public(api.CreateBook))
	router.GET("/books/:id", m.public(api.GetOneBook))
	router.PUT("/books/:id", m.public(api.UpdateBook))
	router.DELETE("/books/:id", m.public(api.DeleteOneBook))
	return router
}
