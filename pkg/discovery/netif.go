package discovery

import "net"

// InterfaceAddr is one local IPv4 address a probe can be broadcast from.
type InterfaceAddr struct {
	// IP is the interface's IPv4 address.
	IP net.IP

	// Loopback marks internal interfaces, which are never broadcast from.
	Loopback bool
}

// InterfaceLister enumerates local IPv4 interface addresses.
// The discovery service broadcasts from every non-loopback address returned.
// Applications can substitute their own implementation to pin discovery to
// specific interfaces.
type InterfaceLister interface {
	List() ([]InterfaceAddr, error)
}

// SystemInterfaces returns an InterfaceLister backed by the operating
// system's interface table.
func SystemInterfaces() InterfaceLister {
	return systemInterfaces{}
}

type systemInterfaces struct{}

// List enumerates the IPv4 addresses of all interfaces that are up.
func (systemInterfaces) List() ([]InterfaceAddr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var out []InterfaceAddr
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		loopback := iface.Flags&net.FlagLoopback != 0

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipNet.IP.To4()
			if ip4 == nil {
				continue
			}
			out = append(out, InterfaceAddr{
				IP:       ip4,
				Loopback: loopback || ip4.IsLoopback(),
			})
		}
	}
	return out, nil
}
