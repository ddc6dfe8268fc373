// Package mcp exposes the indexed board records over the Model
// Context Protocol, so AI assistants can query meetings the same way
// the chat front-end does.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
