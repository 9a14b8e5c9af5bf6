package warehouse

import "errors"

var (
	// ErrPoolExhausted is returned when acquire() could not get a
	// connection within the bounded wait.
	ErrPoolExhausted = errors.New("connection pool exhausted")

	// ErrConnectionUnhealthy is returned when the checkout probe
	// query failed; the caller should retry once.
	ErrConnectionUnhealthy = errors.New("connection failed health probe")
)
