package main

import "github.com/gofiber/fiber/v2"

// registerRoutes wires the resource groups onto app.
func registerRoutes(app *fiber.App, c *Container) {
	libs := &libraryHandlers{c: c}
	docs := &documentHandlers{c: c}
	chunks := &chunkHandlers{c: c}
	search := &searchHandlers{c: c}

	v1 := app.Group("/api/v1")

	v1.Post("/libraries", libs.create)
	v1.Get("/libraries", libs.list)
	v1.Get("/libraries/:libraryID", libs.get)
	v1.Put("/libraries/:libraryID", libs.update)
	v1.Delete("/libraries/:libraryID", libs.delete)

	v1.Post("/libraries/:libraryID/documents", docs.create)
	v1.Post("/libraries/:libraryID/documents/batch", docs.batchCreate)
	v1.Get("/libraries/:libraryID/documents", docs.list)
	v1.Get("/documents/:documentID", docs.get)
	v1.Put("/documents/:documentID", docs.update)
	v1.Delete("/documents/:documentID", docs.delete)

	v1.Post("/documents/:documentID/chunks", chunks.create)
	v1.Post("/documents/:documentID/chunks/batch", chunks.batchCreate)
	v1.Get("/documents/:documentID/chunks", chunks.list)
	v1.Get("/chunks/:chunkID", chunks.get)
	v1.Put("/chunks/:chunkID", chunks.update)
	v1.Delete("/chunks/:chunkID", chunks.delete)

	v1.Post("/libraries/:libraryID/search", search.search)
}
