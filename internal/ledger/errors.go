package ledger

import "fmt"

// ParseError means the payload is not a valid transfer event.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid transfer event: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnknownSenderError means no account matches the event's sender.
type UnknownSenderError struct {
	Sender string
}

func (e *UnknownSenderError) Error() string {
	return fmt.Sprintf("unknown sender %q", e.Sender)
}

// StoreError wraps a failure of the account/ledger store. The whole event was
// rolled back when this is reported.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
