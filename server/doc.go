// Package server exposes the capture and search API over HTTP.
//
// Every request is scoped to one account via the X-Owner-ID header.
// Responses are JSON; item IDs are serialized as strings.
package server
