package linkscan

import (
	"strings"

	"github.com/grafana/regexp"
)

// Kind is the protocol family of a discovered stream link. It is derived
// from the URL on demand, never stored.
type Kind string

const (
	KindP2P       Kind = "p2p"
	KindHLS       Kind = "hls"
	KindRTMP      Kind = "rtmp"
	KindVideoHost Kind = "video-host"
	KindHTTP      Kind = "http"
)

// KindOf classifies a link into its protocol family.
func KindOf(link string) Kind {
	switch {
	case strings.HasPrefix(link, "acestream://"):
		return KindP2P
	case strings.Contains(link, ".m3u8"):
		return KindHLS
	case strings.HasPrefix(link, "rtmp://"), strings.HasPrefix(link, "rtmps://"):
		return KindRTMP
	case strings.Contains(link, "youtube.com"), strings.Contains(link, "youtu.be"),
		strings.Contains(link, "twitch.tv"):
		return KindVideoHost
	default:
		return KindHTTP
	}
}

// brokenCDNRe matches a recurring truncated-host artifact the source site
// leaves in its markup.
var brokenCDNRe = regexp.MustCompile(`^cdn\.live[:.]*$`)

// IsValidStreamURL reports whether a discovered URL is complete enough to
// hand to a player. Invalid entries are dropped by the caller, never
// repaired.
func IsValidStreamURL(link string) bool {
	if strings.TrimSpace(link) == "" {
		return false
	}

	switch {
	case strings.HasPrefix(link, "acestream://"):
		return strings.TrimPrefix(link, "acestream://") != ""

	case strings.HasPrefix(link, "http://"), strings.HasPrefix(link, "https://"):
		return validHTTPURL(link)

	case strings.HasPrefix(link, "rtmp://"), strings.HasPrefix(link, "rtmps://"):
		return len(link) > 7 && strings.Contains(link, ".")

	case strings.Contains(link, "://"):
		opaque := link[strings.Index(link, "://")+3:]
		return len(opaque) > 2

	default:
		return false
	}
}

// validHTTPURL rejects the truncated HTTP URLs the regex detectors tend to
// clip out of scripts: bare hosts ending in ':' or '.', hosts without a dot,
// and the cdn.live artifact.
func validHTTPURL(link string) bool {
	var rest string
	switch {
	case strings.HasPrefix(link, "https://"):
		rest = link[len("https://"):]
	case strings.HasPrefix(link, "http://"):
		rest = link[len("http://"):]
	default:
		return false
	}

	if len(rest) < 4 {
		return false
	}
	if strings.HasSuffix(rest, ":") || strings.HasSuffix(rest, ".") {
		return false
	}
	if brokenCDNRe.MatchString(rest) {
		return false
	}

	host := rest
	for _, cut := range []string{"/", "?", "#"} {
		if idx := strings.Index(host, cut); idx >= 0 {
			host = host[:idx]
		}
	}
	if strings.HasPrefix(host, ".") || !strings.Contains(host, ".") {
		return false
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" {
			return false
		}
	}
	return true
}
