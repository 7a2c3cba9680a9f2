package crypto

import (
	"bytes"
	"testing"
)

func TestDefaultSessionKeyMaterial(t *testing.T) {
	s := NewDefaultSession()

	wantKey := []byte{
		0x09, 0x76, 0x28, 0x34, 0x3f, 0xe9, 0x9e, 0x23,
		0x76, 0x5c, 0x15, 0x13, 0xac, 0xcf, 0x8b, 0x02,
	}
	wantIV := []byte{
		0x56, 0x2e, 0x17, 0x99, 0x6d, 0x09, 0x3d, 0x28,
		0xdd, 0xb3, 0xba, 0x69, 0x5a, 0x2e, 0x6f, 0x58,
	}

	if !bytes.Equal(s.Key(), wantKey) {
		t.Errorf("default key = %x, want %x", s.Key(), wantKey)
	}
	if !bytes.Equal(s.IV(), wantIV) {
		t.Errorf("default IV = %x, want %x", s.IV(), wantIV)
	}
}

func TestNewSessionValidatesSizes(t *testing.T) {
	if _, err := NewSession(make([]byte, 15), DefaultIV()); err != ErrInvalidKeySize {
		t.Errorf("short key: err = %v, want ErrInvalidKeySize", err)
	}
	if _, err := NewSession(DefaultKey(), make([]byte, 8)); err != ErrInvalidIVSize {
		t.Errorf("short IV: err = %v, want ErrInvalidIVSize", err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	s := NewDefaultSession()

	tests := []struct {
		name string
		size int
	}{
		{"empty", 0},
		{"one block", 16},
		{"two blocks", 32},
		{"long", 256},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plaintext := make([]byte, tc.size)
			for i := range plaintext {
				plaintext[i] = byte(i * 7)
			}

			ciphertext, err := s.Encrypt(plaintext)
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}
			if len(ciphertext) != tc.size {
				t.Errorf("ciphertext length = %d, want %d", len(ciphertext), tc.size)
			}

			got, err := s.Decrypt(ciphertext)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Errorf("round trip mismatch: got %x, want %x", got, plaintext)
			}
		})
	}
}

func TestEncryptZeroPadsUnaligned(t *testing.T) {
	s := NewDefaultSession()

	plaintext := []byte{0x02, 0x00, 0x00, 0x00, 0xaa, 0xbb, 0xcc}
	ciphertext, err := s.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(ciphertext) != BlockSize {
		t.Fatalf("ciphertext length = %d, want %d", len(ciphertext), BlockSize)
	}

	// Decrypt keeps the zero padding: the original bytes come back followed
	// by zeros up to the block boundary.
	got, err := s.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got[:len(plaintext)], plaintext) {
		t.Errorf("payload prefix = %x, want %x", got[:len(plaintext)], plaintext)
	}
	for i := len(plaintext); i < len(got); i++ {
		if got[i] != 0 {
			t.Errorf("padding byte %d = %#x, want 0", i, got[i])
		}
	}
}

func TestDecryptRejectsUnalignedCiphertext(t *testing.T) {
	s := NewDefaultSession()
	if _, err := s.Decrypt(make([]byte, 17)); err != ErrNotBlockAligned {
		t.Errorf("err = %v, want ErrNotBlockAligned", err)
	}
}

func TestRotateReplacesKeyOnly(t *testing.T) {
	s := NewDefaultSession()
	ivBefore := s.IV()

	newKey := make([]byte, KeySize)
	for i := range newKey {
		newKey[i] = byte(0xf0 + i)
	}
	if err := s.Rotate(newKey); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	if !bytes.Equal(s.Key(), newKey) {
		t.Errorf("key after rotate = %x, want %x", s.Key(), newKey)
	}
	if !bytes.Equal(s.IV(), ivBefore) {
		t.Errorf("IV changed on rotate: %x -> %x", ivBefore, s.IV())
	}

	if err := s.Rotate(make([]byte, 5)); err != ErrInvalidKeySize {
		t.Errorf("short rotate: err = %v, want ErrInvalidKeySize", err)
	}
	if !bytes.Equal(s.Key(), newKey) {
		t.Error("failed rotate must not modify the key")
	}
}

func TestRotateChangesCiphertext(t *testing.T) {
	s := NewDefaultSession()
	plaintext := make([]byte, 32)

	before, err := s.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	newKey := make([]byte, KeySize)
	newKey[0] = 0x42
	if err := s.Rotate(newKey); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	after, err := s.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Equal(before, after) {
		t.Error("ciphertext unchanged after key rotation")
	}
}
