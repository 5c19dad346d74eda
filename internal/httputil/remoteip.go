package httputil

import (
	"net"
	"net/http"
	"strings"
)

// RemoteIP extracts the client IP from a request. A proxy-set Remoteip
// header wins, then the first X-Forwarded-For entry, then the socket peer.
func RemoteIP(r *http.Request) string {
	if ip := r.Header.Get("Remoteip"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
