package models

import "errors"

// ErrSourceUnavailable is returned by price source adapters for every
// failure mode: network errors, timeouts, unsupported symbols and
// malformed responses all normalize to it.
var ErrSourceUnavailable = errors.New("price source unavailable")
