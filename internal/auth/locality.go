package auth

import (
	"net"
	"strings"
)

// IsLocalAddr classifies a peer address as local by its loopback string
// form. An empty address counts as local (in-process transports report
// none). This breaks behind proxies and load balancers that rewrite the
// peer address; deployments fronting the hub must pass the real peer
// through.
func IsLocalAddr(addr string) bool {
	if addr == "" {
		return true
	}

	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")

	if host == "" || host == "localhost" || host == "::1" {
		return true
	}
	return strings.HasPrefix(host, "127.")
}
