package packet

import (
	"errors"
	"fmt"
)

// Packet layer errors.
var (
	// ErrFrameTooShort indicates an inbound frame smaller than the fixed header.
	ErrFrameTooShort = errors.New("packet: frame shorter than header")

	// ErrInvalidMAC indicates a hardware address that is not 6 bytes.
	ErrInvalidMAC = errors.New("packet: hardware address must be 6 bytes")

	// ErrNilCipher indicates a missing cipher session.
	ErrNilCipher = errors.New("packet: nil cipher session")
)

// ApplianceError is a nonzero error code reported by the appliance in a
// response header. The payload of such a frame is never decrypted.
type ApplianceError struct {
	Code uint16
}

// Error implements the error interface.
func (e *ApplianceError) Error() string {
	return fmt.Sprintf("packet: appliance reported error 0x%04x", e.Code)
}

// IsApplianceError reports whether err is an ApplianceError and returns it.
func IsApplianceError(err error) (*ApplianceError, bool) {
	var ae *ApplianceError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
