// Package metadata records who is on the other end of a request: client IP,
// User-Agent and a display name for the device.
package metadata

import (
	"net/http"
	"net/netip"
	"strings"

	"inkwell/pkg/requestcontext"
)

// maxForwardedLength bounds X-Forwarded-For parsing.
const maxForwardedLength = 500

// Config controls proxy trust and device naming.
type Config struct {
	// TrustedProxies may set X-Forwarded-For. Empty means never trust it.
	TrustedProxies []netip.Prefix
	// DeviceName turns a User-Agent into a display name. Optional.
	DeviceName func(userAgent string) string
}

type Middleware struct {
	config Config
}

func NewMiddleware(cfg Config) *Middleware {
	return &Middleware{config: cfg}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		md := requestcontext.ClientMetadata{
			IP:        m.clientIP(r),
			UserAgent: r.Header.Get("User-Agent"),
		}
		if m.config.DeviceName != nil {
			md.DeviceName = m.config.DeviceName(md.UserAgent)
		}
		next.ServeHTTP(w, r.WithContext(requestcontext.WithClientMetadata(r.Context(), md)))
	})
}

func (m *Middleware) clientIP(r *http.Request) string {
	remote, ok := remoteAddr(r.RemoteAddr)
	if !ok {
		return "unknown"
	}
	if !m.trusted(remote) {
		return remote.String()
	}

	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" || len(xff) > maxForwardedLength {
		return remote.String()
	}
	first, _, _ := strings.Cut(xff, ",")
	client, err := netip.ParseAddr(strings.TrimSpace(first))
	if err != nil {
		return remote.String()
	}
	return client.String()
}

func (m *Middleware) trusted(addr netip.Addr) bool {
	for _, prefix := range m.config.TrustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// remoteAddr parses host:port as well as bare addresses.
func remoteAddr(raw string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return ap.Addr().Unmap(), true
	}
	if addr, err := netip.ParseAddr(strings.Trim(raw, "[]")); err == nil {
		return addr.Unmap(), true
	}
	return netip.Addr{}, false
}
