package sanitizer

import (
	"net"
	"net/url"
	"strings"
)

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// SanitizeURL accepts only absolute http and https URLs with a host and
// returns them in normalised form: lower-cased scheme and host, default port
// dropped, "/" for an empty path. Anything else yields an empty string.
func SanitizeURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}

	scheme := strings.ToLower(parsed.Scheme)
	defaultPort, ok := defaultPorts[scheme]
	if !ok || parsed.Host == "" {
		return ""
	}
	parsed.Scheme = scheme

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return ""
	}
	if port := parsed.Port(); port != "" && port != defaultPort {
		parsed.Host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		parsed.Host = "[" + host + "]"
	} else {
		parsed.Host = host
	}

	if parsed.Path == "" && parsed.RawPath == "" {
		parsed.Path = "/"
	}

	return parsed.String()
}

// EmailDomain returns the lower-cased text between the first and the second
// "@" of email, or an empty string when there is no "@".
func EmailDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) < 2 {
		return ""
	}
	return strings.ToLower(parts[1])
}
