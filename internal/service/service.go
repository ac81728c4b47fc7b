// Package service contains the business logic of fittrack.
//
// Each request flows through three layers:
//
//	Handler (HTTP)     → parses forms, renders pages, maps errors to statuses
//	Service (business) → validates input, derives values, enforces ownership
//	Repository (data)  → one SQL statement per call
//
// Services take repository interfaces, not *sqlite.DB, so the tests in this
// package run against in-memory fakes. Every method is scoped to a username
// taken from the authenticated session; no service keeps per-user state.
package service

import "time"

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func orNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}
