package linkscan

import (
	"context"
	"fmt"
	"strings"

	"github.com/grafov/m3u8"
)

// Fetcher retrieves markup for a URL. Satisfied by client.BrowserClient.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ProbeResult describes a fetched HLS manifest.
type ProbeResult struct {
	URL      string `json:"url"`
	Playlist string `json:"playlist"` // "master" or "media"
	Variants int    `json:"variants"` // variant count for master playlists
	Segments int    `json:"segments"` // segment count for media playlists
}

// ProbeHLS fetches a discovered HLS link and parses the manifest to confirm
// it is actually playable rather than an HTML error page with a .m3u8 URL.
// Discovery itself never probes; this is an on-demand check for the front
// end's link inspector.
func ProbeHLS(ctx context.Context, f Fetcher, url string) (*ProbeResult, error) {
	if KindOf(url) != KindHLS {
		return nil, fmt.Errorf("not an HLS link: %s", url)
	}

	body, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	playlist, listType, err := m3u8.DecodeFrom(strings.NewReader(body), true)
	if err != nil {
		return nil, fmt.Errorf("manifest parse failed for %s: %w", url, err)
	}

	result := &ProbeResult{URL: url}
	switch listType {
	case m3u8.MASTER:
		master := playlist.(*m3u8.MasterPlaylist)
		result.Playlist = "master"
		result.Variants = len(master.Variants)
	case m3u8.MEDIA:
		media := playlist.(*m3u8.MediaPlaylist)
		result.Playlist = "media"
		result.Segments = int(media.Count())
	default:
		return nil, fmt.Errorf("unrecognized playlist type for %s", url)
	}
	return result, nil
}
