// Package discovery implements the broadcast discovery cycle: a presence
// probe is broadcast from every usable local IPv4 interface, appliance
// responses are classified against the device registry, and a protocol
// session is created for each newly seen supported appliance.
package discovery

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pion/logging"

	"github.com/plungarini/broadlink-rm-go/pkg/devices"
	"github.com/plungarini/broadlink-rm-go/pkg/packet"
	"github.com/plungarini/broadlink-rm-go/pkg/session"
	"github.com/plungarini/broadlink-rm-go/pkg/transport"
)

// Config configures the discovery service.
type Config struct {
	// Interfaces enumerates the local addresses to broadcast from.
	// If nil, the operating system's interface table is used.
	Interfaces InterfaceLister

	// Events is forwarded to every session the service creates.
	Events session.Events

	// OnUnknownDevice is called when a response carries a device type the
	// registry does not know, with the type in hex form and the source
	// address. Diagnostic only; no session is created. May be nil.
	OnUnknownDevice func(deviceType string, addr net.Addr)

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Service owns the registry of seen appliances, keyed by MAC address.
// Discovery is idempotent: a MAC seen twice never yields a second session
// or a second handshake, across interfaces and across re-discovery runs.
type Service struct {
	interfaces    InterfaceLister
	events        session.Events
	onUnknown     func(deviceType string, addr net.Addr)
	loggerFactory logging.LoggerFactory
	log           logging.LeveledLogger

	// dialDevice creates the per-appliance socket; tests substitute an
	// in-memory transport.
	dialDevice func(handler transport.MessageHandler) (*transport.UDP, error)

	// dialProbe binds the per-interface discovery socket; tests substitute
	// an in-memory transport.
	dialProbe func(listenAddr string, handler transport.MessageHandler) (*transport.UDP, error)

	mu       sync.Mutex
	probes   []*transport.UDP                  // discovery sockets, one per interface
	sockets  []*transport.UDP                  // per-appliance sockets
	sessions map[string]*session.Session       // keyed by MAC
	seen     map[string]devices.Classification // responded but not instantiated
}

// New creates a discovery service.
func New(config Config) *Service {
	s := &Service{
		interfaces:    config.Interfaces,
		events:        config.Events,
		onUnknown:     config.OnUnknownDevice,
		loggerFactory: config.LoggerFactory,
		sessions:      make(map[string]*session.Session),
		seen:          make(map[string]devices.Classification),
	}
	if s.interfaces == nil {
		s.interfaces = SystemInterfaces()
	}
	if config.LoggerFactory != nil {
		s.log = config.LoggerFactory.NewLogger("discovery")
	}
	s.dialDevice = s.defaultDialDevice
	s.dialProbe = s.defaultDialProbe
	return s
}

// Discover broadcasts a presence probe from every usable local IPv4
// interface and listens for appliance responses until Stop or the next
// Discover call. A repeated call first tears down the previous run's
// discovery sockets; already-established sessions survive re-discovery.
//
// There are no retries: an appliance that misses the broadcast is simply
// not found until the next run.
func (s *Service) Discover() error {
	addrs, err := s.interfaces.List()
	if err != nil {
		return fmt.Errorf("enumerating interfaces: %w", err)
	}

	s.mu.Lock()
	s.closeProbesLocked()
	s.mu.Unlock()

	broadcast := &net.UDPAddr{IP: net.IPv4bcast, Port: DiscoveryPort}
	bound := 0

	for _, addr := range addrs {
		if addr.Loopback {
			continue
		}

		probe, err := s.dialProbe(net.JoinHostPort(addr.IP.String(), "0"), s.handleResponse)
		if err != nil {
			if s.log != nil {
				s.log.Warnf("binding %s: %v", addr.IP, err)
			}
			continue
		}
		if err := probe.Start(); err != nil {
			if s.log != nil {
				s.log.Warnf("starting probe on %s: %v", addr.IP, err)
			}
			continue
		}

		port := 0
		if udpAddr, ok := probe.LocalAddr().(*net.UDPAddr); ok {
			port = udpAddr.Port
		}

		hello := helloPacket(time.Now(), addr.IP, port)
		if err := probe.Send(hello, broadcast); err != nil {
			if s.log != nil {
				s.log.Warnf("broadcasting from %s: %v", addr.IP, err)
			}
		}

		s.mu.Lock()
		s.probes = append(s.probes, probe)
		s.mu.Unlock()
		bound++

		if s.log != nil {
			s.log.Infof("broadcasting discovery probe from %s:%d", addr.IP, port)
		}
	}

	if bound == 0 {
		return ErrNoInterfaces
	}
	return nil
}

// Stop closes all discovery and appliance sockets.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeProbesLocked()
	for _, sock := range s.sockets {
		sock.Stop()
	}
	s.sockets = nil
}

// closeProbesLocked tears down the discovery sockets of the previous run.
func (s *Service) closeProbesLocked() {
	for _, probe := range s.probes {
		probe.Stop()
	}
	s.probes = nil
}

// Sessions returns the sessions established so far, in no particular order.
func (s *Service) Sessions() []*session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

// Session returns the session for a MAC, or nil if none exists.
func (s *Service) Session(mac net.HardwareAddr) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[mac.String()]
}

// AddDevice registers an appliance at a known address without waiting for a
// discovery response, validating its descriptor before any socket I/O.
// The MAC dedupe applies the same way as for discovered appliances.
func (s *Service) AddDevice(host *net.UDPAddr, mac net.HardwareAddr, deviceType uint16) (*session.Session, error) {
	if host == nil || host.IP == nil || host.Port == 0 {
		return nil, ErrInvalidHost
	}
	if len(mac) != packet.MACSize {
		return nil, ErrMissingMACAddress
	}
	if deviceType == 0 {
		return nil, ErrMissingDeviceType
	}

	s.mu.Lock()
	if existing, ok := s.sessions[mac.String()]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	s.mu.Unlock()

	class := devices.Classify(deviceType)
	if !class.Supported() {
		return nil, session.ErrUnsupportedDevice
	}
	return s.instantiate(mac, host, class)
}

// handleResponse processes one inbound datagram on a discovery socket.
// Responses may arrive concurrently on the sockets of different interfaces;
// the MAC registry deduplicates them.
func (s *Service) handleResponse(msg *transport.ReceivedMessage) {
	mac, deviceType, ok := parseResponse(msg.Data)
	if !ok {
		if s.log != nil {
			s.log.Debugf("dropping short discovery response from %v", msg.Addr)
		}
		return
	}

	key := mac.String()
	s.mu.Lock()
	_, known := s.sessions[key]
	if !known {
		_, known = s.seen[key]
	}
	s.mu.Unlock()
	if known {
		return
	}

	class := devices.Classify(deviceType)
	if !class.Supported() {
		s.mu.Lock()
		s.seen[key] = class
		s.mu.Unlock()

		switch class.Support {
		case devices.SupportUnknown:
			if s.log != nil {
				s.log.Warnf("unknown device type 0x%04x at %v", deviceType, msg.Addr)
			}
			if s.onUnknown != nil {
				s.onUnknown(fmt.Sprintf("0x%04x", deviceType), msg.Addr)
			}
		default:
			if s.log != nil {
				s.log.Infof("ignoring %s (%s) at %v", class.Label, class.Support, msg.Addr)
			}
		}
		return
	}

	if _, err := s.instantiate(mac, msg.Addr, class); err != nil {
		if s.log != nil {
			s.log.Errorf("creating session for %s: %v", mac, err)
		}
	}
}

// instantiate creates the appliance socket and session, registers both and
// starts the handshake. The MAC check runs again under the lock so that
// concurrent responses for the same appliance resolve to a single session.
func (s *Service) instantiate(mac net.HardwareAddr, addr net.Addr, class devices.Classification) (*session.Session, error) {
	var sess *session.Session
	var mu sync.RWMutex

	sock, err := s.dialDevice(func(msg *transport.ReceivedMessage) {
		mu.RLock()
		target := sess
		mu.RUnlock()
		if target != nil {
			target.OnMessage(msg)
		}
	})
	if err != nil {
		return nil, err
	}

	created, err := session.New(session.Config{
		MAC:            mac,
		Addr:           addr,
		Classification: class,
		Sender:         sock,
		Events:         s.events,
		LoggerFactory:  s.loggerFactory,
	})
	if err != nil {
		sock.Stop()
		return nil, err
	}
	mu.Lock()
	sess = created
	mu.Unlock()

	key := mac.String()
	s.mu.Lock()
	if existing, ok := s.sessions[key]; ok {
		s.mu.Unlock()
		sock.Stop()
		return existing, nil
	}
	s.sessions[key] = created
	s.sockets = append(s.sockets, sock)
	s.mu.Unlock()

	if err := sock.Start(); err != nil {
		s.mu.Lock()
		delete(s.sessions, key)
		for i, registered := range s.sockets {
			if registered == sock {
				s.sockets = append(s.sockets[:i], s.sockets[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		return nil, err
	}
	if s.log != nil {
		s.log.Infof("discovered %s (%s) at %v", class.Label, mac, addr)
	}
	return created, created.Authenticate()
}

// defaultDialDevice binds a fresh ephemeral UDP socket for one appliance.
func (s *Service) defaultDialDevice(handler transport.MessageHandler) (*transport.UDP, error) {
	return transport.NewUDP(transport.UDPConfig{
		MessageHandler: handler,
		LoggerFactory:  s.loggerFactory,
	})
}

// defaultDialProbe binds a discovery socket on one interface address.
func (s *Service) defaultDialProbe(listenAddr string, handler transport.MessageHandler) (*transport.UDP, error) {
	return transport.NewUDP(transport.UDPConfig{
		ListenAddr:     listenAddr,
		MessageHandler: handler,
		LoggerFactory:  s.loggerFactory,
	})
}
