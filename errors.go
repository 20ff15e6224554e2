package dataflash

import "errors"

var (
	// ErrInvalidAddress reports an address or size that violates the
	// operation's granularity or the device bounds. Returned before any
	// hardware access.
	ErrInvalidAddress = errors.New("dataflash: invalid address")

	// ErrBusyTimeout reports that the chip did not clear its busy flag
	// within the allotted bound. The operation is not retried; the
	// caller may retry it whole.
	ErrBusyTimeout = errors.New("dataflash: busy timeout")

	// ErrCommunicationFailure reports an identification mismatch or
	// unexpected status content. After a failed Init no operation
	// succeeds until Init is re-attempted.
	ErrCommunicationFailure = errors.New("dataflash: communication failure")
)
