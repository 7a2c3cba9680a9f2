// AES-CBC implementation for the Broadlink appliance protocol.
// The protocol uses AES-128-CBC with a per-appliance key and a fixed IV:
//   - Key length: 128 bits (16 bytes)
//   - IV length: 16 bytes, never rotated for the lifetime of a session
//   - No padding scheme: plaintext is zero padded to the block boundary
//     and the padding is never verified or stripped on decrypt

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

// AES-CBC constants for the Broadlink wire format.
const (
	// KeySize is the AES-128 key size in bytes.
	KeySize = 16

	// IVSize is the CBC initialization vector size in bytes.
	IVSize = 16

	// BlockSize is the AES block size (always 16 bytes).
	BlockSize = 16
)

// Errors for AES-CBC operations.
var (
	ErrInvalidKeySize  = errors.New("crypto: invalid key size, must be 16 bytes")
	ErrInvalidIVSize   = errors.New("crypto: invalid IV size, must be 16 bytes")
	ErrNotBlockAligned = errors.New("crypto: ciphertext not a multiple of the block size")
)

// encryptCBC encrypts plaintext with AES-128-CBC under key/iv.
// Plaintext that is not block aligned is zero padded first; the appliance
// firmware does the same and relies on the payload's leading length/opcode
// bytes rather than padding to delimit data.
func encryptCBC(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	padded := pad(plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// decryptCBC decrypts ciphertext with AES-128-CBC under key/iv.
// The result keeps any zero padding the sender added; callers interpret
// the payload by its own framing.
func decryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%BlockSize != 0 {
		return nil, ErrNotBlockAligned
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	if len(ciphertext) > 0 {
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)
	}
	return plaintext, nil
}

// pad returns data zero padded to a multiple of BlockSize.
// Already-aligned input is returned as a copy of itself.
func pad(data []byte) []byte {
	rem := len(data) % BlockSize
	padded := make([]byte, len(data)+paddingFor(rem))
	copy(padded, data)
	return padded
}

func paddingFor(rem int) int {
	if rem == 0 {
		return 0
	}
	return BlockSize - rem
}
