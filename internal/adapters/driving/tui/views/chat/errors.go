package chat

import "errors"

// ErrNoQueryService is returned when no query service was wired in.
var ErrNoQueryService = errors.New("chat: query service not available")
