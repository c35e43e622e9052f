package resource

import "errors"

var (
	// ErrLabelStackOverflow is returned when pushing past the stack capacity.
	ErrLabelStackOverflow = errors.New("resource: label stack overflow")

	// ErrLabelStackUnderflow is returned when popping the last label.
	ErrLabelStackUnderflow = errors.New("resource: label stack underflow")

	// ErrInvalidLabel is returned when pushing InvalidLabel.
	ErrInvalidLabel = errors.New("resource: invalid label")

	// ErrRegistryFull is returned when the registry has no free capacity.
	ErrRegistryFull = errors.New("resource: registry full")

	// ErrDuplicateLocator is returned when a shared locator is already registered.
	ErrDuplicateLocator = errors.New("resource: locator already registered")

	// ErrDuplicateID is returned when an ID is registered twice.
	ErrDuplicateID = errors.New("resource: id already registered")

	// ErrInvalidID is returned when registering the invalid sentinel.
	ErrInvalidID = errors.New("resource: invalid id")
)
