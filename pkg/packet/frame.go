package packet

// Wire format constants for the Broadlink command frame.
//
// Every command frame starts with a fixed 0x38-byte header followed by the
// AES-CBC encrypted payload. All multi-byte header fields are little-endian.
const (
	// HeaderSize is the fixed command frame header size in bytes.
	HeaderSize = 0x38

	// MACSize is the appliance hardware address size in bytes.
	MACSize = 6

	// DeviceIDSize is the appliance-assigned session id size in bytes.
	DeviceIDSize = 4

	// ChecksumSeed seeds both the payload and frame checksums.
	ChecksumSeed = 0xbeaf
)

// Header field offsets.
const (
	offMagic           = 0x00 // 8 bytes
	offFrameChecksum   = 0x20 // 2 bytes LE
	offErrorCode       = 0x22 // 2 bytes LE
	offProtocol        = 0x24 // 2 fixed bytes
	offCommand         = 0x26
	offCount           = 0x28 // 2 bytes LE
	offMAC             = 0x2a // 6 bytes, reversed
	offDeviceID        = 0x30 // 4 bytes
	offPayloadChecksum = 0x34 // 2 bytes LE
)

// magic is the fixed preamble every command frame carries.
var magic = [8]byte{0x5a, 0xa5, 0xaa, 0x55, 0x5a, 0xa5, 0xaa, 0x55}

// Fixed protocol bytes at offsets 0x24-0x25.
const (
	protocolByte0 = 0x2a
	protocolByte1 = 0x27
)

// Message is a decoded inbound command frame.
//
// The checksums are surfaced as read from the wire but are never used to
// reject a frame; the protocol computes them on egress only and the
// appliances themselves do not enforce them.
type Message struct {
	// Command is the command byte at offset 0x26.
	Command byte

	// Count is the sender's message counter.
	Count uint16

	// DeviceID is the session id the appliance stamped on the frame.
	DeviceID [DeviceIDSize]byte

	// FrameChecksum is the overall frame checksum as received.
	FrameChecksum uint16

	// PayloadChecksum is the plaintext payload checksum as received.
	PayloadChecksum uint16

	// Payload is the decrypted payload, zero padding included.
	Payload []byte
}
