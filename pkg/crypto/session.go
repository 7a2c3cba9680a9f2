package crypto

import "sync"

// Well-known bootstrap key material. Every Broadlink appliance ships with the
// same key/IV pair so that a controller can reach it before the handshake;
// the appliance issues a device-specific key in its handshake response.
var (
	defaultKey = []byte{
		0x09, 0x76, 0x28, 0x34, 0x3f, 0xe9, 0x9e, 0x23,
		0x76, 0x5c, 0x15, 0x13, 0xac, 0xcf, 0x8b, 0x02,
	}
	defaultIV = []byte{
		0x56, 0x2e, 0x17, 0x99, 0x6d, 0x09, 0x3d, 0x28,
		0xdd, 0xb3, 0xba, 0x69, 0x5a, 0x2e, 0x6f, 0x58,
	}
)

// DefaultKey returns a copy of the well-known bootstrap key.
func DefaultKey() []byte {
	key := make([]byte, KeySize)
	copy(key, defaultKey)
	return key
}

// DefaultIV returns a copy of the well-known bootstrap IV.
func DefaultIV() []byte {
	iv := make([]byte, IVSize)
	copy(iv, defaultIV)
	return iv
}

// Session holds the symmetric key material for one appliance.
// A new session starts with the well-known bootstrap key/IV; Rotate installs
// the appliance-issued key after a successful handshake. The IV is fixed for
// the lifetime of the session and is reused for every message, which is a
// property of the wire protocol rather than a choice of this implementation.
//
// Session is safe for concurrent use.
type Session struct {
	mu  sync.RWMutex
	key []byte
	iv  []byte
}

// NewSession creates a cipher session with an explicit key/IV pair.
// Both must be exactly 16 bytes.
func NewSession(key, iv []byte) (*Session, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	if len(iv) != IVSize {
		return nil, ErrInvalidIVSize
	}

	s := &Session{
		key: make([]byte, KeySize),
		iv:  make([]byte, IVSize),
	}
	copy(s.key, key)
	copy(s.iv, iv)
	return s, nil
}

// NewDefaultSession creates a cipher session with the well-known bootstrap
// key/IV pair.
func NewDefaultSession() *Session {
	s, _ := NewSession(defaultKey, defaultIV)
	return s
}

// Rotate replaces the session key with an appliance-issued one.
// The IV is deliberately left untouched; the protocol never rotates it.
func (s *Session) Rotate(newKey []byte) error {
	if len(newKey) != KeySize {
		return ErrInvalidKeySize
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	copy(s.key, newKey)
	return nil
}

// Key returns a copy of the current session key.
func (s *Session) Key() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := make([]byte, KeySize)
	copy(key, s.key)
	return key
}

// IV returns a copy of the session IV.
func (s *Session) IV() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	iv := make([]byte, IVSize)
	copy(iv, s.iv)
	return iv
}

// Encrypt encrypts plaintext under the current key/IV.
// Plaintext that is not block aligned is zero padded to the next boundary.
func (s *Session) Encrypt(plaintext []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return encryptCBC(s.key, s.iv, plaintext)
}

// Decrypt decrypts ciphertext under the current key/IV.
// Padding is not stripped; callers interpret the payload by its own framing.
func (s *Session) Decrypt(ciphertext []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decryptCBC(s.key, s.iv, ciphertext)
}
