package session

import "errors"

// Session errors.
var (
	// ErrMissingMAC indicates a missing or malformed hardware address.
	ErrMissingMAC = errors.New("session: appliance MAC address is required")

	// ErrMissingAddr indicates a missing appliance endpoint.
	ErrMissingAddr = errors.New("session: appliance address is required")

	// ErrNoSender indicates a missing frame sender.
	ErrNoSender = errors.New("session: sender is required")

	// ErrUnsupportedDevice indicates a classification outside the
	// supported classes.
	ErrUnsupportedDevice = errors.New("session: device type is not supported")

	// ErrNoRFSupport indicates an RF operation on an appliance the
	// registry classified as RF-incapable.
	ErrNoRFSupport = errors.New("session: appliance has no RF support")
)
