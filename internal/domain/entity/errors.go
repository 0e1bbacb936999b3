package entity

import "errors"

var (
	// ErrNotFound is returned when a record the operation depends on does
	// not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidTransition is returned when a status update violates the
	// appointment state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoRecipient is returned when a dispatch cannot even attempt the
	// in-app persistence step.
	ErrNoRecipient = errors.New("dispatch context has no recipient id")

	// ErrDeviceNotRegistered is returned by the push gateway when the device
	// token is no longer valid and must be deactivated.
	ErrDeviceNotRegistered = errors.New("device token not registered")
)
