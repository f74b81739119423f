// Package apiconnect holds the Connect clients and handlers for the
// warrior.v1 services. Every client and handler speaks JSON through
// api.Codec; handlers are mounted under /api by the server.
package apiconnect
