package bridge

import "net"

// getHostIP returns the first non-loopback IPv4 address configured on
// this host, adapted from the source's get_hostip() helper (itself
// outside the queue module proper) without the UDP-dial trick the
// original used — net.InterfaceAddrs already exposes what's bound
// locally. Falls back to 127.0.0.1 if nothing else is found, matching
// the original's conservative default.
func getHostIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "127.0.0.1"
}
