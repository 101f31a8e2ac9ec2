package events

import (
	"net"
	"net/url"
	"strings"
)

// IsLocalOrigin reports whether an Origin header names a page served from
// this machine. An empty origin (non-browser client) is accepted.
func IsLocalOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
