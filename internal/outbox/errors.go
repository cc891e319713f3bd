package outbox

import "errors"

var (
	// ErrUnknownOpType is returned when an enqueued operation has an
	// unrecognized type.
	ErrUnknownOpType = errors.New("outbox: unknown operation type")
	// ErrInvalidRow is returned when an enqueued operation targets a
	// negative row.
	ErrInvalidRow = errors.New("outbox: row must be a non-negative integer")
	// ErrPermanent wraps delivery failures that will never succeed on
	// retry. Items failing with it are dead-lettered instead of backed
	// off.
	ErrPermanent = errors.New("outbox: permanent delivery failure")
)
