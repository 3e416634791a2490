package resolver

import (
	"errors"
	"fmt"
	"net/netip"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// ErrMalformedURL reports input from which no host can be extracted.
var ErrMalformedURL = errors.New("malformed url")

// uriPattern is the generic URI splitting expression.
var uriPattern = regexp.MustCompile(`^(([^:/?#]+):)?(//([^/?#]*))?([^?#]*)(\?([^#]*))?(#(.*))?`)

var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.StrictDomainName(false),
	idna.Transitional(false),
)

// Parts holds the components of a URI reference. Has* flags distinguish an
// absent component from an empty one.
type Parts struct {
	Scheme       string
	Authority    string
	Path         string
	Query        string
	Fragment     string
	HasAuthority bool
	HasQuery     bool
	HasFragment  bool
}

// Split breaks raw into scheme, authority, path, query and fragment.
func Split(raw string) Parts {
	m := uriPattern.FindStringSubmatch(raw)
	if m == nil {
		return Parts{Path: raw}
	}
	return Parts{
		Scheme:       m[2],
		Authority:    m[4],
		Path:         m[5],
		Query:        m[7],
		Fragment:     m[9],
		HasAuthority: m[3] != "",
		HasQuery:     m[6] != "",
		HasFragment:  m[8] != "",
	}
}

// Address is a validated authority.
type Address struct {
	Scheme   string
	Hostname string
	Port     string
}

// Host returns Hostname with the port appended when one is present.
func (a Address) Host() string {
	host := a.Hostname
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if a.Port != "" {
		return host + ":" + a.Port
	}
	return host
}

// Base returns scheme://host[:port].
func (a Address) Base() string {
	return a.Scheme + "://" + a.Host()
}

// Host extracts host[:port] from raw. Input without "://" is read as if it
// started with http://; raw itself is never modified.
func Host(raw string) (string, error) {
	addr, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return addr.Host(), nil
}

// Parse extracts and validates the scheme and authority of raw.
func Parse(raw string) (Address, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Address{}, fmt.Errorf("%w: empty", ErrMalformedURL)
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	parts := Split(trimmed)
	if parts.Scheme == "" || !validScheme(parts.Scheme) {
		return Address{}, fmt.Errorf("%w: %q has no usable scheme", ErrMalformedURL, raw)
	}
	if !parts.HasAuthority || parts.Authority == "" {
		return Address{}, fmt.Errorf("%w: %q has no host", ErrMalformedURL, raw)
	}

	authority := parts.Authority
	if at := strings.LastIndex(authority, "@"); at >= 0 {
		authority = authority[at+1:]
	}
	hostname, port, err := splitHostPort(authority)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %w", ErrMalformedURL, raw, err)
	}
	return Address{Scheme: strings.ToLower(parts.Scheme), Hostname: hostname, Port: port}, nil
}

func splitHostPort(authority string) (string, string, error) {
	if strings.HasPrefix(authority, "[") {
		end := strings.Index(authority, "]")
		if end < 0 {
			return "", "", errors.New("unterminated IPv6 literal")
		}
		literal := authority[1:end]
		addr, err := netip.ParseAddr(literal)
		if err != nil || !addr.Is6() {
			return "", "", fmt.Errorf("invalid IPv6 literal %q", literal)
		}
		rest := authority[end+1:]
		port := ""
		if rest != "" {
			if !strings.HasPrefix(rest, ":") {
				return "", "", fmt.Errorf("unexpected %q after IPv6 literal", rest)
			}
			port = rest[1:]
		}
		if err := validatePort(port); err != nil {
			return "", "", err
		}
		return addr.String(), port, nil
	}

	hostname, port := authority, ""
	if colon := strings.LastIndex(authority, ":"); colon >= 0 {
		hostname, port = authority[:colon], authority[colon+1:]
	}
	if err := validatePort(port); err != nil {
		return "", "", err
	}
	if hostname == "" {
		return "", "", errors.New("empty hostname")
	}
	if strings.Contains(hostname, ":") {
		return "", "", fmt.Errorf("invalid hostname %q", hostname)
	}
	if addr, err := netip.ParseAddr(hostname); err == nil && addr.Is4() {
		return addr.String(), port, nil
	}
	ascii, err := hostProfile.ToASCII(hostname)
	if err != nil {
		return "", "", fmt.Errorf("invalid hostname %q: %w", hostname, err)
	}
	return strings.ToLower(ascii), port, nil
}

func validatePort(port string) error {
	if port == "" {
		return nil
	}
	if len(port) > 5 {
		return fmt.Errorf("invalid port %q", port)
	}
	for _, r := range port {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid port %q", port)
		}
	}
	return nil
}

func validScheme(scheme string) bool {
	for i, r := range scheme {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return scheme != ""
}
