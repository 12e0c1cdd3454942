package netutil

import "net"

// GetLANIP returns the first non-loopback, non-Tailscale IPv4 address.
func GetLANIP() string {
	for _, ip := range localIPv4s() {
		if isCGNAT(ip) {
			continue
		}
		return ip.String()
	}
	return ""
}

// GetTailscaleIP returns the first Tailscale CGNAT (100.64.0.0/10) IPv4 address.
func GetTailscaleIP() string {
	for _, ip := range localIPv4s() {
		if isCGNAT(ip) {
			return ip.String()
		}
	}
	return ""
}

func localIPv4s() []net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}
	var ips []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if v4 := ip.To4(); v4 != nil {
				ips = append(ips, v4)
			}
		}
	}
	return ips
}

func isCGNAT(ip net.IP) bool {
	return len(ip) == 4 && ip[0] == 100 && ip[1] >= 64 && ip[1] <= 127
}
