// Package clientip resolves the address of the client behind a request.
//
// Forwarding headers are only honoured when listed in the Resolver, so a
// service exposed without a proxy can ignore them and fall back to
// RemoteAddr.
package clientip

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// DefaultHeaders is the lookup order used behind a reverse proxy.
var DefaultHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// Resolver extracts the client IP from trusted headers, then RemoteAddr.
type Resolver struct {
	headers []string
}

// New returns a Resolver trusting headers in order. No headers means only
// RemoteAddr is used.
func New(headers ...string) Resolver {
	return Resolver{headers: headers}
}

// IP returns the normalised client address, or "" when none is valid.
func (res Resolver) IP(r *http.Request) string {
	for _, name := range res.headers {
		value := r.Header.Get(name)
		if value == "" {
			continue
		}
		// X-Forwarded-For lists the original client first.
		for candidate := range strings.SplitSeq(value, ",") {
			if ip := parseIP(candidate); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// Middleware stores the resolved IP in the request context.
func (res Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithIP(r.Context(), res.IP(r))))
	})
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}

type ipKey struct{}

// WithIP stores ip in ctx.
func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

// FromContext returns the IP stored by Middleware.
func FromContext(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(ipKey{}).(string)
	return ip, ok && ip != ""
}
