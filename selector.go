package tejproto

import (
	"github.com/zeebo/xxh3"

	"github.com/tejproto/tejproto/internal"
)

// SelectEndpointFunc picks which endpoint receives a frame. It gets the
// routing key and the endpoint count and returns an index in [0, count).
type SelectEndpointFunc func(routingKey string, endpointCount int) int

// DefaultSelectEndpoint hashes the routing key with xxh3 and maps it to an
// endpoint with Jump Hash, so the same key keeps landing on the same
// endpoint and adding endpoints moves few keys.
func DefaultSelectEndpoint(routingKey string, endpointCount int) int {
	return internal.JumpHash(xxh3.HashString(routingKey), endpointCount)
}

// staticSelectEndpoint is used in tests to pin a specific endpoint.
func staticSelectEndpoint(index int) SelectEndpointFunc {
	return func(routingKey string, endpointCount int) int {
		return index % endpointCount
	}
}
