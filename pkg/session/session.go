// Package session implements the per-appliance protocol session: the key
// exchange handshake, the generic command operations and the decoding of
// asynchronous appliance responses into typed events.
package session

import (
	"net"
	"sync"

	"github.com/pion/logging"

	"github.com/plungarini/broadlink-rm-go/pkg/crypto"
	"github.com/plungarini/broadlink-rm-go/pkg/devices"
	"github.com/plungarini/broadlink-rm-go/pkg/packet"
	"github.com/plungarini/broadlink-rm-go/pkg/transport"
)

// Command bytes.
const (
	cmdAuth    = 0x65 // handshake request
	cmdCommand = 0x6a // all post-handshake operations

	cmdAuthResponse = 0xe9 // handshake response, carries key + session id
	cmdPayload      = 0xee // appliance response, variant 1
	cmdPayloadAlt   = 0xef // appliance response, variant 2
)

// Sub-operation selector bytes: the first payload byte of a 0x6a command.
const (
	opCheckTemperature = 0x01
	opSendCode         = 0x02
	opEnterLearning    = 0x03
	opCheckData        = 0x04
	opEnterRFSweep     = 0x19
	opCheckRFData      = 0x1a
	opCheckRFData2     = 0x1b
	opCancelLearning   = 0x1e
)

// Response payload type bytes: the first byte of a decrypted 0xee/0xef payload.
const (
	payloadTemperature = 1
	payloadLearnedData = 4
	payloadRFSweep     = 26
	payloadRFSweep2    = 27
)

// authResponseMinLen is the minimum handshake response payload: 4 id bytes
// followed by the 16-byte appliance-issued key.
const authResponseMinLen = 0x14

// Sender sends a wire frame to a network address.
// *transport.UDP satisfies it.
type Sender interface {
	Send(data []byte, addr net.Addr) error
}

// Config configures a Session.
type Config struct {
	// MAC is the appliance hardware address. Required.
	MAC net.HardwareAddr

	// Addr is the appliance's UDP endpoint. Required.
	Addr net.Addr

	// Classification is the registry verdict for the appliance; it must be
	// a supported class. The RF operations exist only for RF-capable
	// classifications.
	Classification devices.Classification

	// Sender transmits encoded frames. Required.
	Sender Sender

	// Events receives decoded appliance events. Individual handlers may be
	// nil; events without a handler are dropped.
	Events Events

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Session is the per-appliance protocol state: cipher session, message
// counter, appliance MAC and server-assigned session id.
//
// Inbound frames are dispatched by OnMessage, typically wired as the
// handler of the session's own transport socket. Command methods may be
// called from one goroutine at a time; the protocol tolerates counter
// reordering but not a key rotation racing an in-flight handshake.
type Session struct {
	mac     net.HardwareAddr
	addr    net.Addr
	class   devices.Classification
	cipher  *crypto.Session
	counter *packet.Counter
	sender  Sender
	events  Events
	log     logging.LeveledLogger

	mu    sync.RWMutex
	id    [packet.DeviceIDSize]byte
	ready bool
}

// New creates a session for a classified, supported appliance.
// The cipher session starts with the well-known bootstrap key; Authenticate
// replaces it with the appliance-issued one.
func New(config Config) (*Session, error) {
	if len(config.MAC) != packet.MACSize {
		return nil, ErrMissingMAC
	}
	if config.Addr == nil {
		return nil, ErrMissingAddr
	}
	if config.Sender == nil {
		return nil, ErrNoSender
	}
	if !config.Classification.Supported() {
		return nil, ErrUnsupportedDevice
	}

	s := &Session{
		mac:     config.MAC,
		addr:    config.Addr,
		class:   config.Classification,
		cipher:  crypto.NewDefaultSession(),
		counter: packet.NewCounter(),
		sender:  config.Sender,
		events:  config.Events,
	}
	if config.LoggerFactory != nil {
		s.log = config.LoggerFactory.NewLogger("session")
	}
	return s, nil
}

// MAC returns the appliance hardware address.
func (s *Session) MAC() net.HardwareAddr {
	return s.mac
}

// Addr returns the appliance endpoint.
func (s *Session) Addr() net.Addr {
	return s.addr
}

// Classification returns the registry verdict for the appliance.
func (s *Session) Classification() devices.Classification {
	return s.class
}

// Ready reports whether a handshake has completed on this session.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// DeviceID returns the appliance-assigned session id.
// All zero before the handshake completes.
func (s *Session) DeviceID() [packet.DeviceIDSize]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Authenticate starts the key-exchange handshake using the bootstrap cipher
// session. The appliance answers with a 0xe9 frame carrying the session id
// and a device-specific key; OnMessage installs both and emits the ready
// event. There is no timeout: a lost response simply never completes.
func (s *Session) Authenticate() error {
	return s.send(cmdAuth, authPayload())
}

// CheckTemperature requests the appliance's temperature reading.
// The reading arrives asynchronously as a Temperature event.
func (s *Session) CheckTemperature() error {
	return s.send(cmdCommand, commandPayload(opCheckTemperature))
}

// EnterLearning puts the appliance into IR/RF learning mode.
func (s *Session) EnterLearning() error {
	return s.send(cmdCommand, commandPayload(opEnterLearning))
}

// CheckData asks for a code captured in learning mode.
// A captured code arrives asynchronously as a RawData event.
func (s *Session) CheckData() error {
	return s.send(cmdCommand, commandPayload(opCheckData))
}

// CancelLearning takes the appliance out of learning mode.
func (s *Session) CancelLearning() error {
	return s.send(cmdCommand, commandPayload(opCancelLearning))
}

// SendCode transmits a previously captured raw code through the appliance.
// The payload is the 4-byte send marker followed by the code bytes; unlike
// the other operations it is not pre-padded to 16 bytes.
func (s *Session) SendCode(code []byte) error {
	payload := make([]byte, 4+len(code))
	payload[0] = opSendCode
	copy(payload[4:], code)
	return s.send(cmdCommand, payload)
}

// EnterRFSweep starts the RF frequency sweep. RF-capable appliances only.
func (s *Session) EnterRFSweep() error {
	if !s.class.HasRF() {
		return ErrNoRFSupport
	}
	return s.send(cmdCommand, commandPayload(opEnterRFSweep))
}

// CheckRFData polls the first RF capture stage. RF-capable appliances only.
func (s *Session) CheckRFData() error {
	if !s.class.HasRF() {
		return ErrNoRFSupport
	}
	return s.send(cmdCommand, commandPayload(opCheckRFData))
}

// CheckRFData2 polls the second RF capture stage. RF-capable appliances only.
func (s *Session) CheckRFData2() error {
	if !s.class.HasRF() {
		return ErrNoRFSupport
	}
	return s.send(cmdCommand, commandPayload(opCheckRFData2))
}

// OnMessage handles an inbound datagram from the appliance.
// Wire it as the MessageHandler of the session's transport socket.
func (s *Session) OnMessage(msg *transport.ReceivedMessage) {
	decoded, err := packet.Decode(msg.Data, s.cipher)
	if err != nil {
		if ae, ok := packet.IsApplianceError(err); ok {
			if s.log != nil {
				s.log.Warnf("appliance %s reported error 0x%04x", s.mac, ae.Code)
			}
			return
		}
		if s.log != nil {
			s.log.Debugf("dropping frame from %s: %v", s.mac, err)
		}
		return
	}

	switch decoded.Command {
	case cmdAuthResponse:
		s.handleAuthResponse(decoded.Payload)
	case cmdPayload, cmdPayloadAlt:
		s.handlePayload(decoded.Payload)
	default:
		if s.log != nil {
			s.log.Debugf("unhandled command 0x%02x from %s", decoded.Command, s.mac)
		}
	}
}

// handleAuthResponse installs the appliance-issued key and session id.
// A 0xe9 frame arriving outside the handshake is a re-handshake and rotates
// the key again. A payload too short to carry the key fails fast without
// touching the current key or emitting the ready event.
func (s *Session) handleAuthResponse(payload []byte) {
	if len(payload) < authResponseMinLen {
		if s.log != nil {
			s.log.Warnf("handshake response from %s too short: %d bytes", s.mac, len(payload))
		}
		return
	}

	if err := s.cipher.Rotate(payload[0x04:0x14]); err != nil {
		if s.log != nil {
			s.log.Errorf("installing appliance key for %s: %v", s.mac, err)
		}
		return
	}

	s.mu.Lock()
	copy(s.id[:], payload[0x00:0x04])
	s.ready = true
	s.mu.Unlock()

	if s.log != nil {
		s.log.Infof("handshake complete with %s (%s)", s.mac, s.class.Label)
	}
	s.events.emitDeviceReady(s)
}

// handlePayload dispatches a decrypted 0xee/0xef payload by its type byte.
func (s *Session) handlePayload(payload []byte) {
	if len(payload) == 0 {
		return
	}

	switch payload[0] {
	case payloadTemperature:
		if len(payload) < 6 {
			return
		}
		temperature := (float64(payload[4])*10 + float64(payload[5])) / 10
		s.events.emitTemperature(temperature)

	case payloadLearnedData:
		if len(payload) < 4 {
			return
		}
		data := make([]byte, len(payload)-4)
		copy(data, payload[4:])
		s.events.emitRawData(data)

	case payloadRFSweep:
		// A zero status means the sweep is still in progress; drop.
		if len(payload) >= 5 && payload[4] == 1 {
			s.events.emitRawRFData(payload[4])
		}

	case payloadRFSweep2:
		if len(payload) >= 5 && payload[4] == 1 {
			s.events.emitRawRFData2(payload[4])
		}

	default:
		if s.log != nil {
			s.log.Debugf("unhandled payload type %d from %s", payload[0], s.mac)
		}
	}
}

// send encodes and transmits one command frame.
func (s *Session) send(command byte, payload []byte) error {
	frame, err := packet.Encode(command, payload, s.counter.Next(), s.mac, s.DeviceID(), s.cipher)
	if err != nil {
		return err
	}
	return s.sender.Send(frame, s.addr)
}

// authPayload builds the fixed 0x50-byte handshake payload: ASCII '1'
// filler at 0x04-0x12, marker bytes at 0x1e and 0x2d and the ASCII
// hostname "Test  1" at 0x30-0x36.
func authPayload() []byte {
	p := make([]byte, 0x50)
	for i := 0x04; i <= 0x12; i++ {
		p[i] = '1'
	}
	p[0x1e] = 0x01
	p[0x2d] = 0x01
	copy(p[0x30:], "Test  1")
	return p
}

// commandPayload builds a 16-byte zero-padded payload with the given
// sub-operation selector.
func commandPayload(op byte) []byte {
	p := make([]byte, 16)
	p[0] = op
	return p
}
