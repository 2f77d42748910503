// Package httputil holds small request helpers shared by the HTTP layer.
package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the address a request came from, for access logs.
//
// With trustProxy set, the leftmost X-Forwarded-For entry and then X-Real-IP
// are preferred over RemoteAddr. Header values that are not IP addresses are
// skipped so a malformed proxy header cannot end up in the logs.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := parseIP(first); ip != "" {
				return ip
			}
		}
		if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseIP accepts a bare address or host:port and returns the address, or
// "" if s holds neither.
func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	if ip := net.ParseIP(s); ip != nil {
		return ip.String()
	}
	return ""
}
