package packet

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"

	"github.com/plungarini/broadlink-rm-go/pkg/crypto"
)

var (
	testMAC = net.HardwareAddr{0x34, 0xea, 0x34, 0x01, 0x02, 0x03}
	testID  = [DeviceIDSize]byte{0x11, 0x22, 0x33, 0x44}
)

func TestEncodeHeaderLayout(t *testing.T) {
	cipher := crypto.NewDefaultSession()
	payload := make([]byte, 16)
	payload[0] = 0x01

	frame, err := Encode(0x6a, payload, 0xbeef, testMAC, testID, cipher)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if len(frame) != HeaderSize+16 {
		t.Fatalf("frame length = %d, want %d", len(frame), HeaderSize+16)
	}

	wantMagic := []byte{0x5a, 0xa5, 0xaa, 0x55, 0x5a, 0xa5, 0xaa, 0x55}
	if !bytes.Equal(frame[0x00:0x08], wantMagic) {
		t.Errorf("magic = %x, want %x", frame[0x00:0x08], wantMagic)
	}
	if frame[0x24] != 0x2a || frame[0x25] != 0x27 {
		t.Errorf("protocol bytes = %x %x, want 2a 27", frame[0x24], frame[0x25])
	}
	if frame[0x26] != 0x6a {
		t.Errorf("command = %#x, want 0x6a", frame[0x26])
	}
	if got := binary.LittleEndian.Uint16(frame[0x28:]); got != 0xbeef {
		t.Errorf("count = %#x, want 0xbeef", got)
	}

	// MAC is stored in reversed byte order.
	wantMAC := []byte{0x03, 0x02, 0x01, 0x34, 0xea, 0x34}
	if !bytes.Equal(frame[0x2a:0x30], wantMAC) {
		t.Errorf("mac field = %x, want %x", frame[0x2a:0x30], wantMAC)
	}
	if !bytes.Equal(frame[0x30:0x34], testID[:]) {
		t.Errorf("device id = %x, want %x", frame[0x30:0x34], testID[:])
	}

	if got := binary.LittleEndian.Uint16(frame[0x34:]); got != Checksum(payload) {
		t.Errorf("payload checksum = %#x, want %#x", got, Checksum(payload))
	}
	if got := binary.LittleEndian.Uint16(frame[0x20:]); got != FrameChecksumOf(frame) {
		t.Errorf("frame checksum = %#x, want %#x", got, FrameChecksumOf(frame))
	}

	// The ciphertext must differ from the plaintext.
	if bytes.Equal(frame[HeaderSize:], payload) {
		t.Error("payload was not encrypted")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cipher := crypto.NewDefaultSession()

	tests := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"one block", 16},
		{"learning payload", 16},
		{"code payload", 96},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			payload := make([]byte, tc.size)
			for i := range payload {
				payload[i] = byte(i)
			}

			frame, err := Encode(0x6a, payload, 42, testMAC, testID, cipher)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}

			msg, err := Decode(frame, cipher)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if msg.Command != 0x6a {
				t.Errorf("command = %#x, want 0x6a", msg.Command)
			}
			if msg.Count != 42 {
				t.Errorf("count = %d, want 42", msg.Count)
			}
			if msg.DeviceID != testID {
				t.Errorf("device id = %x, want %x", msg.DeviceID, testID)
			}
			if !bytes.Equal(msg.Payload, payload) {
				t.Errorf("payload = %x, want %x", msg.Payload, payload)
			}
		})
	}
}

func TestEncodeValidation(t *testing.T) {
	cipher := crypto.NewDefaultSession()

	if _, err := Encode(0x6a, nil, 0, net.HardwareAddr{0x01}, testID, cipher); err != ErrInvalidMAC {
		t.Errorf("short mac: err = %v, want ErrInvalidMAC", err)
	}
	if _, err := Encode(0x6a, nil, 0, testMAC, testID, nil); err != ErrNilCipher {
		t.Errorf("nil cipher: err = %v, want ErrNilCipher", err)
	}
}

func TestDecodeFrameTooShort(t *testing.T) {
	cipher := crypto.NewDefaultSession()
	if _, err := Decode(make([]byte, HeaderSize-1), cipher); err != ErrFrameTooShort {
		t.Errorf("err = %v, want ErrFrameTooShort", err)
	}
}

func TestDecodeApplianceError(t *testing.T) {
	cipher := crypto.NewDefaultSession()
	frame, err := Encode(0x6a, make([]byte, 16), 1, testMAC, testID, cipher)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Stamp a nonzero error code; decode must fail before decryption.
	binary.LittleEndian.PutUint16(frame[0x22:], 0xfff9)

	_, err = Decode(frame, cipher)
	ae, ok := IsApplianceError(err)
	if !ok {
		t.Fatalf("err = %v, want *ApplianceError", err)
	}
	if ae.Code != 0xfff9 {
		t.Errorf("code = %#x, want 0xfff9", ae.Code)
	}
}

func TestDecodeIgnoresBadChecksums(t *testing.T) {
	// Checksums are surfaced but never enforced; a corrupted checksum must
	// not reject the frame.
	cipher := crypto.NewDefaultSession()
	payload := make([]byte, 16)
	payload[0] = 0x04

	frame, err := Encode(0xee, payload, 7, testMAC, testID, cipher)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	binary.LittleEndian.PutUint16(frame[0x20:], 0xdead)
	binary.LittleEndian.PutUint16(frame[0x34:], 0xdead)

	msg, err := Decode(frame, cipher)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(msg.Payload, payload) {
		t.Errorf("payload = %x, want %x", msg.Payload, payload)
	}
	if msg.FrameChecksum != 0xdead || msg.PayloadChecksum != 0xdead {
		t.Errorf("checksums not surfaced as received: %#x %#x",
			msg.FrameChecksum, msg.PayloadChecksum)
	}
}

func TestDecodeWithRotatedKey(t *testing.T) {
	sender := crypto.NewDefaultSession()
	receiver := crypto.NewDefaultSession()

	newKey := make([]byte, crypto.KeySize)
	for i := range newKey {
		newKey[i] = byte(i + 1)
	}
	if err := sender.Rotate(newKey); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if err := receiver.Rotate(newKey); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	payload := make([]byte, 16)
	payload[0] = 0x01
	frame, err := Encode(0x6a, payload, 9, testMAC, testID, sender)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	msg, err := Decode(frame, receiver)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(msg.Payload, payload) {
		t.Errorf("payload = %x, want %x", msg.Payload, payload)
	}

	// The bootstrap key no longer decrypts to the original payload.
	msg, err = Decode(frame, crypto.NewDefaultSession())
	if err != nil {
		t.Fatalf("Decode with default key: %v", err)
	}
	if bytes.Equal(msg.Payload, payload) {
		t.Error("default key decrypted a rotated-key frame")
	}
}
