package server

import (
	"net/http"
	"net/url"
	"strings"
)

// defaultOrigins are allowed when no origins are configured.
var defaultOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}

// originPolicy decides which browser origins may call the API and open the
// surfaces WebSocket. Patterns are exact origins, "*", or contain a single
// "*" wildcard.
type originPolicy struct {
	patterns []string
}

func newOriginPolicy(patterns []string) originPolicy {
	if len(patterns) == 0 {
		patterns = defaultOrigins
	}
	lower := make([]string, len(patterns))
	for i, p := range patterns {
		lower[i] = strings.ToLower(p)
	}
	return originPolicy{patterns: lower}
}

func (p originPolicy) allowed(origin string) bool {
	origin = strings.ToLower(origin)
	for _, pat := range p.patterns {
		if pat == "*" || pat == origin {
			return true
		}
		if i := strings.IndexByte(pat, '*'); i >= 0 {
			prefix, suffix := pat[:i], pat[i+1:]
			if len(origin) >= len(prefix)+len(suffix) &&
				strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
				return true
			}
		}
	}
	return false
}

// checkOrigin is the WebSocket handshake check. Requests without an Origin
// header come from non-browser clients and same-origin pages are always
// accepted.
func (p originPolicy) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return p.allowed(origin)
}
