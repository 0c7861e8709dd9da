// Package mcp exposes clientdesk to AI assistants over the Model Context
// Protocol. Every tool and resource acts on behalf of a single owner chosen
// when the server starts.
package mcp

import "errors"

var (
	// ErrMissingClientService is returned when the client service is not provided.
	ErrMissingClientService = errors.New("mcp: client service is required")

	// ErrMissingOwner is returned when no owner id is given.
	ErrMissingOwner = errors.New("mcp: owner id is required")
)
