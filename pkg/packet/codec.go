// Package packet implements the Broadlink command frame codec: a fixed
// 0x38-byte header with additive checksums followed by an AES-CBC encrypted
// payload. The codec is pure; all I/O and session state live elsewhere.
package packet

import (
	"encoding/binary"
	"net"

	"github.com/plungarini/broadlink-rm-go/pkg/crypto"
)

// Encode serializes a command and plaintext payload into a wire frame.
//
// The header carries the magic preamble, the command byte, the message
// counter, the appliance MAC in reversed byte order and the session id.
// The payload checksum is computed over the plaintext before encryption;
// the frame checksum covers the whole frame with its own field zeroed.
func Encode(command byte, payload []byte, count uint16, mac net.HardwareAddr, deviceID [DeviceIDSize]byte, cipher *crypto.Session) ([]byte, error) {
	if cipher == nil {
		return nil, ErrNilCipher
	}
	if len(mac) != MACSize {
		return nil, ErrInvalidMAC
	}

	header := make([]byte, HeaderSize)
	copy(header[offMagic:], magic[:])
	header[offProtocol] = protocolByte0
	header[offProtocol+1] = protocolByte1
	header[offCommand] = command
	binary.LittleEndian.PutUint16(header[offCount:], count)
	for i := 0; i < MACSize; i++ {
		header[offMAC+i] = mac[MACSize-1-i]
	}
	copy(header[offDeviceID:], deviceID[:])
	binary.LittleEndian.PutUint16(header[offPayloadChecksum:], Checksum(payload))

	ciphertext, err := cipher.Encrypt(payload)
	if err != nil {
		return nil, err
	}

	frame := append(header, ciphertext...)
	binary.LittleEndian.PutUint16(frame[offFrameChecksum:], Checksum(frame))
	return frame, nil
}

// Decode deserializes an inbound wire frame.
//
// A frame shorter than the header fails with ErrFrameTooShort. A nonzero
// error code in the header fails with *ApplianceError without touching the
// ciphertext. Checksums are surfaced on the returned Message but never
// verified; the wire format itself is lenient and this codec reproduces
// that leniency.
func Decode(frame []byte, cipher *crypto.Session) (*Message, error) {
	if cipher == nil {
		return nil, ErrNilCipher
	}
	if len(frame) < HeaderSize {
		return nil, ErrFrameTooShort
	}

	if code := binary.LittleEndian.Uint16(frame[offErrorCode:]); code != 0 {
		return nil, &ApplianceError{Code: code}
	}

	payload, err := cipher.Decrypt(frame[HeaderSize:])
	if err != nil {
		return nil, err
	}

	msg := &Message{
		Command:         frame[offCommand],
		Count:           binary.LittleEndian.Uint16(frame[offCount:]),
		FrameChecksum:   binary.LittleEndian.Uint16(frame[offFrameChecksum:]),
		PayloadChecksum: binary.LittleEndian.Uint16(frame[offPayloadChecksum:]),
		Payload:         payload,
	}
	copy(msg.DeviceID[:], frame[offDeviceID:offDeviceID+DeviceIDSize])
	return msg, nil
}

// FrameChecksumOf recomputes the frame checksum of an existing frame, with
// the checksum's own field treated as zero. Encode does not need this (it
// writes the field last, after summing the rest of the frame); it exists
// for callers that want to inspect, not enforce, frame integrity.
func FrameChecksumOf(frame []byte) uint16 {
	sum := uint32(ChecksumSeed)
	for i, b := range frame {
		if i == offFrameChecksum || i == offFrameChecksum+1 {
			continue
		}
		sum += uint32(b)
	}
	return uint16(sum)
}
