// Package api defines the HTTP endpoint registry.
package api

import "net/http"

// Endpoint defines one HTTP route.
type Endpoint interface {
	// Route returns the HTTP method, path, and handler for this endpoint.
	Route() (method, path string, handler http.HandlerFunc)

	// RequiresInit returns true if this endpoint requires the server's
	// inference client to be configured.
	RequiresInit() bool
}
