package discovery

import "errors"

// Discovery errors.
var (
	// ErrInvalidHost indicates a manual registration without a usable
	// host descriptor (address and port).
	ErrInvalidHost = errors.New("discovery: invalid host descriptor")

	// ErrMissingMACAddress indicates a manual registration without a
	// 6-byte hardware address.
	ErrMissingMACAddress = errors.New("discovery: MAC address is required")

	// ErrMissingDeviceType indicates a manual registration without a
	// device type.
	ErrMissingDeviceType = errors.New("discovery: device type is required")

	// ErrNoInterfaces indicates no usable non-loopback IPv4 interface
	// was found to broadcast from.
	ErrNoInterfaces = errors.New("discovery: no usable network interfaces")
)
