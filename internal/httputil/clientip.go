// Package httputil holds small HTTP helpers shared by the API, auth and
// stream packages.
package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the caller's address. With trustProxy set, the first
// X-Forwarded-For entry and then X-Real-IP are consulted before RemoteAddr;
// header values that do not parse as an IP are ignored.
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

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
