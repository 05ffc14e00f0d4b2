package app

import "errors"

// Frame is one marshalled wire event.
type Frame []byte

// Sender is the transport endpoint of one connection. TrySend must not
// block; it reports backpressure instead and the frame is dropped.
type Sender interface {
	TrySend(f Frame) error
}

var (
	ErrValidation  = errors.New("validation")
	ErrRateLimited = errors.New("rate limited")
)
