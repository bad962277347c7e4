// Package endpoints implements the pafill HTTP API.
package endpoints

import "github.com/jackzampolin/pafill/internal/api"

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&FieldsEndpoint{},
		&FillEndpoint{},

		// Static UI must come last; it catches all unmatched GETs.
		&StaticEndpoint{},
	}
}
