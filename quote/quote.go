// Package quote resolves live prices and daily close histories for security
// identifiers, behind a layered, rate-limit-respecting cache.
//
// Lookups consult two stores before the network: a transient in-process
// store with a short freshness window, then a durable store with a long
// one. Provider failures never escape as transport errors; they surface as
// typed outcomes so callers can tell "retry later" (rate limited) from a
// generic failure.
package quote

import (
	"errors"

	"github.com/etnz/holdings"
)

// Quote is the latest known point price of one security.
type Quote struct {
	SecurityID    string  `json:"securityId"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

// Point is one daily close of a historical series.
type Point struct {
	Date   holdings.Date `json:"date"`
	Close  float64       `json:"close"`
	Volume int64         `json:"volume"`
}

// ErrRateLimited reports that the provider signalled quota exhaustion.
// Callers typically show a retry-later message, possibly with stale data.
var ErrRateLimited = errors.New("quote provider rate limited")

// ErrUnavailable reports any other quote or history failure: transport
// errors, malformed payloads, unknown identifiers.
var ErrUnavailable = errors.New("quote unavailable")
