package server

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// realIP rewrites RemoteAddr to the client address reported by a trusted
// reverse proxy. Forwarding headers from any other peer are ignored, so a
// direct caller cannot choose the address the rate limiter keys on.
func realIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			peer, ok := parseAddr(r.RemoteAddr)
			if ok && isTrusted(trusted, peer) {
				if client, ok := forwardedClient(r, trusted); ok {
					r.RemoteAddr = client.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// forwardedClient walks X-Forwarded-For from the nearest hop outwards and
// returns the first address that is not one of our proxies. X-Real-IP is
// used when no X-Forwarded-For is present.
func forwardedClient(r *http.Request, trusted []netip.Prefix) (netip.Addr, bool) {
	var hops []string
	for _, h := range r.Header.Values("X-Forwarded-For") {
		hops = append(hops, strings.Split(h, ",")...)
	}
	for i := len(hops) - 1; i >= 0; i-- {
		addr, ok := parseAddr(strings.TrimSpace(hops[i]))
		if !ok {
			return netip.Addr{}, false
		}
		if !isTrusted(trusted, addr) {
			return addr, true
		}
	}
	if len(hops) > 0 {
		return netip.Addr{}, false
	}
	return parseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP")))
}

func isTrusted(trusted []netip.Prefix, addr netip.Addr) bool {
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// parseAddr accepts "ip" or "ip:port".
func parseAddr(s string) (netip.Addr, bool) {
	if s == "" {
		return netip.Addr{}, false
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}
