package resolver

import (
	"net/url"
	"strconv"
	"strings"
)

// Defaults for the third-party lookup candidate.
const (
	DefaultLookupServiceURL = "https://www.google.com/s2/favicons"
	DefaultLookupSize       = 32
)

// Kind names the strategy that produced a candidate.
type Kind string

const (
	KindFaviconICO    Kind = "favicon_ico"
	KindFaviconPNG    Kind = "favicon_png"
	KindLookupService Kind = "lookup_service"
)

// Candidate is one fetch target tried for an entry's icon.
type Candidate struct {
	URL  string
	Kind Kind
}

// Chain builds candidate lists. The zero value uses the default lookup
// service.
type Chain struct {
	LookupServiceURL string
	LookupSize       int
	DisableLookup    bool
}

// Candidates returns the fetch targets for raw in the order they should be
// tried. Malformed input yields nil.
func (c Chain) Candidates(raw string) []Candidate {
	addr, err := Parse(raw)
	if err != nil {
		return nil
	}
	base := addr.Base()
	candidates := []Candidate{
		{URL: base + "/favicon.ico", Kind: KindFaviconICO},
		{URL: base + "/favicon.png", Kind: KindFaviconPNG},
	}
	if !c.DisableLookup {
		candidates = append(candidates, Candidate{URL: c.lookupURL(addr.Hostname), Kind: KindLookupService})
	}
	return candidates
}

func (c Chain) lookupURL(hostname string) string {
	service := strings.TrimSpace(c.LookupServiceURL)
	if service == "" {
		service = DefaultLookupServiceURL
	}
	size := c.LookupSize
	if size <= 0 {
		size = DefaultLookupSize
	}
	query := url.Values{}
	query.Set("domain", hostname)
	query.Set("sz", strconv.Itoa(size))

	sep := "?"
	if strings.Contains(service, "?") {
		sep = "&"
	}
	return service + sep + query.Encode()
}
