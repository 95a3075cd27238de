// Package resource formats the stable URIs the renderer embeds for
// fragment and init segment references (spec §4.6, §6.2): always
// `<media_base>/<vid>/<resource>`, regardless of whether media_base
// points at a local static handler or a CDN origin.
package resource

import (
	"fmt"
	"strings"

	"github.com/aminofox/loopcast/pkg/catalog"
)

// Formatter builds fragment/init segment URIs against a fixed
// media_base prefix (spec §6.3), so the static fragment store can live
// on a different origin or CDN than the playlist server itself.
type Formatter struct {
	mediaBase string
}

// NewFormatter trims any trailing slash from mediaBase so joins never
// produce a doubled separator.
func NewFormatter(mediaBase string) Formatter {
	return Formatter{mediaBase: strings.TrimRight(mediaBase, "/")}
}

// FragmentURI returns the URI for a package's fragment or init segment
// resource.
func (f Formatter) FragmentURI(vid uint32, r catalog.Resource) string {
	return fmt.Sprintf("%s/%d/%s", f.mediaBase, vid, r)
}

// PlaylistURI returns the URI for one of the channel's variant
// playlists, relative to the configured origin base (spec §6.3's
// `base`, distinct from `media_base`).
func PlaylistURI(base string, streamIdx int) string {
	return fmt.Sprintf("%s/hls/variant%d.m3u8", strings.TrimRight(base, "/"), streamIdx)
}
