package discovery

import (
	"net/url"
	"strings"
)

// extractVideoID pulls the video ID out of the common watch URL shapes:
// youtube.com/watch?v=ID, youtu.be/ID, youtube.com/shorts/ID. A bare ID
// passes through unchanged; anything unrecognized returns "".
func extractVideoID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "/") && !strings.Contains(raw, ".") {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(parsed.Host, "www.")

	switch host {
	case "youtu.be":
		return strings.Trim(parsed.Path, "/")
	case "youtube.com", "m.youtube.com":
		if id := parsed.Query().Get("v"); id != "" {
			return id
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(parsed.Path, prefix) {
				rest := strings.TrimPrefix(parsed.Path, prefix)
				if idx := strings.IndexByte(rest, '/'); idx >= 0 {
					rest = rest[:idx]
				}
				return rest
			}
		}
	}
	return ""
}
