// Package connectors holds the adapters that talk to third-party APIs on
// an owner's behalf. Each provider lives in its own subpackage and
// implements the provider-boundary ports in internal/core/ports/driven.
package connectors
