// Package transport provides the UDP plumbing the protocol runs over:
// a datagram socket with a background read loop that hands inbound
// datagrams to a handler, plus an in-memory pipe for tests.
package transport

import (
	"errors"
	"net"
)

// MaxDatagramSize bounds inbound datagrams. Broadlink frames are small;
// the largest observed learned-code frames stay well under 2 KiB.
const MaxDatagramSize = 2048

// ReceivedMessage is a datagram received from the network.
type ReceivedMessage struct {
	// Data is the raw datagram payload.
	Data []byte

	// Addr is the sender's address.
	Addr net.Addr
}

// MessageHandler is called for each received datagram.
// Handlers run on the transport's read goroutine and must not block.
type MessageHandler func(msg *ReceivedMessage)

// Transport layer errors.
var (
	// ErrNoHandler indicates a missing message handler.
	ErrNoHandler = errors.New("transport: message handler is required")

	// ErrClosed indicates an operation on a stopped transport.
	ErrClosed = errors.New("transport: closed")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("transport: already started")

	// ErrInvalidAddress indicates a nil destination address.
	ErrInvalidAddress = errors.New("transport: invalid address")

	// ErrMessageTooLarge indicates a datagram above MaxDatagramSize.
	ErrMessageTooLarge = errors.New("transport: message exceeds maximum size")
)
