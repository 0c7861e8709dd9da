// Package driving defines the interfaces the HTTP API, CLI and MCP server
// call into. Every operation on user data takes the owner ID resolved by
// the caller's session.
//
// Implementations live in internal/core/services.
package driving
