package jitter

import "errors"

// Per-packet errors. These are never fatal to the queue: the caller counts
// them and drops the offending packet.
var (
	ErrQueueFull      = errors.New("jitter: packet buffer full")
	ErrTooManySamples = errors.New("jitter: packet decodes to more samples than the buffer allows")
	ErrTooLate        = errors.New("jitter: packet sequence is too far behind next_seq")
	ErrDuplicate      = errors.New("jitter: duplicate sequence number")
)
