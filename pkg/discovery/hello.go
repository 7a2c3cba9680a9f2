package discovery

import (
	"encoding/binary"
	"net"
	"time"

	"github.com/plungarini/broadlink-rm-go/pkg/packet"
)

// helloSize is the fixed size of the discovery probe.
const helloSize = 0x30

// helloMarker identifies the frame as a discovery probe.
const helloMarker = 0x06

// DiscoveryPort is the UDP port appliances listen on for discovery probes.
const DiscoveryPort = 80

// helloPacket builds the presence/time-announcement probe broadcast from one
// local interface. It announces the host's UTC offset, local date and time,
// and the interface address and port the appliance should respond to.
//
// The UTC offset is encoded in whole hours. Negative offsets span all four
// bytes in a two's-complement-like form (offset -5 gives 0xf9 0xff 0xff 0xff);
// positive offsets occupy the first byte with three zero bytes. Fractional
// offsets lose their minutes; the appliances only consume whole hours.
func helloPacket(now time.Time, localIP net.IP, port int) []byte {
	p := make([]byte, helloSize)

	_, offsetSeconds := now.Zone()
	tz := offsetSeconds / 3600
	if tz < 0 {
		p[0x08] = byte(0xff + tz - 1)
		p[0x09] = 0xff
		p[0x0a] = 0xff
		p[0x0b] = 0xff
	} else {
		p[0x08] = byte(tz)
	}

	year := now.Year()
	binary.LittleEndian.PutUint16(p[0x0c:], uint16(year))
	p[0x0e] = byte(now.Minute())
	p[0x0f] = byte(now.Hour())
	p[0x10] = byte(year % 100)
	p[0x11] = byte(now.Weekday())
	p[0x12] = byte(now.Day())
	p[0x13] = byte(now.Month())

	if ip4 := localIP.To4(); ip4 != nil {
		copy(p[0x18:0x1c], ip4)
	}
	binary.LittleEndian.PutUint16(p[0x1c:], uint16(port))

	p[0x26] = helloMarker

	binary.LittleEndian.PutUint16(p[0x20:], packet.Checksum(p))
	return p
}

// Discovery response field offsets. The appliance answers the probe with a
// frame carrying its device type at 0x34-0x35 (little-endian) and its MAC
// at 0x3a-0x3f in reversed byte order.
const (
	respDeviceType = 0x34
	respMACEnd     = 0x3f
	respMinLen     = 0x40
)

// parseResponse extracts the appliance MAC and device type from a discovery
// response. Responses shorter than the MAC field are not parseable.
func parseResponse(data []byte) (net.HardwareAddr, uint16, bool) {
	if len(data) < respMinLen {
		return nil, 0, false
	}

	mac := make(net.HardwareAddr, packet.MACSize)
	for i := 0; i < packet.MACSize; i++ {
		mac[i] = data[respMACEnd-i]
	}
	deviceType := binary.LittleEndian.Uint16(data[respDeviceType:])
	return mac, deviceType, true
}
