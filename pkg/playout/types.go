// Package playout is the core playout engine: the in-memory playlist
// model (spec §3) plus the algorithms that turn a wall-clock timestamp
// into HLS master/media playlist text (spec §4). Once built, a
// Playlist is immutable and safe for concurrent use by every request
// handler for the life of the process (spec §5).
package playout

import (
	"time"

	"github.com/aminofox/loopcast/pkg/catalog"
	"github.com/aminofox/loopcast/pkg/clock"
)

// StreamSpec names one configured output stream (spec §4.3's fixed
// bitrate ladder, made configurable per SPEC_FULL §12).
type StreamSpec struct {
	Name    string
	Kind    catalog.KindType
	Width   uint16
	Height  uint16
	Bitrate uint32
}

// StreamSegment is one flattened fMP4 fragment belonging to a Stream,
// tagged with the vid it came from so the renderer knows when to emit
// a fresh EXT-X-MAP.
type StreamSegment struct {
	Vid      uint32
	Src      catalog.Resource
	Duration clock.Duration
}

// StreamSource is one package's contribution to a Stream: the matched
// variant's init segment, an ordered index from cumulative end-offset
// (in step units, local to this source) to the local segment index for
// O(log k) "which segment is live" lookup, and the half-open range this
// source occupies in the stream's flat Segments vector.
type StreamSource struct {
	Vid     uint32
	InitSrc catalog.Resource

	// endOffsets[i] is the step-clock offset, from the start of this
	// source, at which local segment i ends. Sorted ascending —
	// segments are contiguous and non-overlapping by construction.
	endOffsets []clock.Duration

	Start, End int // half-open range into the owning Stream's Segments
}

// segmentAtOrAfter returns the local segment index whose end-offset is
// >= offset, via binary search over the sorted endOffsets (spec §4.5
// step 1's "segment_lookup.range(offset..).next()").
func (ss *StreamSource) segmentAtOrAfter(offset clock.Duration) int {
	lo, hi := 0, len(ss.endOffsets)
	for lo < hi {
		mid := (lo + hi) / 2
		if ss.endOffsets[mid].Less(offset) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Stream is one fixed output rendition of the channel: one row of the
// master playlist, and the source of one variant playlist.
type Stream struct {
	Spec     StreamSpec
	Sources  []StreamSource // one per package, channel order
	Segments []StreamSegment
}

// sourceEntry is one entry of the channel's source index: the top
// video stream's per-package walk, keyed (conceptually) by cumulative
// end Duration and queried with "first entry whose End > offset"
// (see Playlist.sourceAfter).
type sourceEntry struct {
	End, Start Duration
	SourceIdx  int
	Vid        uint32
}

// Duration is an alias so playout call sites read naturally without an
// import-qualified clock.Duration everywhere; the type is identical.
type Duration = clock.Duration

// Playlist is the top-level, process-lifetime singleton (spec §3's
// "Playlist (channel)"). Built once at startup by Assemble and
// thereafter read-only.
type Playlist struct {
	Start    time.Time
	Step     clock.StepSize
	Duration Duration // total wall-clock length of one loop

	sources []sourceEntry // sorted ascending by End; top-video-stream walk
	Streams []*Stream
}
