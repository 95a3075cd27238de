package playout

import "github.com/aminofox/loopcast/pkg/catalog"

// QueueItem is one emitted unit of a stream's lazy playback sequence
// (spec §4.5): a segment tagged with the channel-wide discontinuity
// count in effect when it airs, and the vid/init resource needed to
// reference it.
type QueueItem struct {
	Discontinuity uint64
	Vid           uint32
	InitSrc       Resource
	Segment       Resource
	Duration      Duration
}

// Resource re-exports catalog.Resource at the playout package boundary
// so callers of Queue don't need a second import for a type this
// package only ever passes through.
type Resource = catalog.Resource

// Queue produces the stream's lazy, infinite playback sequence starting
// at ph (spec §4.5). It cycles the stream's sources forever; callers
// must take a bounded prefix (LOOKAHEAD items, typically 16) — Next
// has no end-of-sequence signal.
type Queue struct {
	stream        *Stream
	sourceIdx     int
	segIdx        int
	discontinuity uint64
}

// NewQueue positions a Queue at the stream's currently-live segment for
// ph (spec §4.5 step 1: "segment_lookup.range(offset_in_source..).next()").
func NewQueue(stream *Stream, ph Playhead) *Queue {
	src := &stream.Sources[ph.SourceIndex]
	return &Queue{
		stream:        stream,
		sourceIdx:     ph.SourceIndex,
		segIdx:        src.Start + src.segmentAtOrAfter(ph.OffsetInSource),
		discontinuity: ph.Discontinuity,
	}
}

// mediaSequence returns the flat index into the stream's Segments
// vector the queue is currently positioned at. Valid only before the
// first Next() call — combined with the playhead's loop index, this is
// the spec §4.6 EXT-X-MEDIA-SEQUENCE base.
func (q *Queue) mediaSequence() int {
	return q.segIdx
}

// Next returns the queue's next item and advances it. The sequence
// never ends: on exhausting a source's segments, the queue wraps to the
// cyclic successor source (spec §4.5 step 3) and increments the running
// discontinuity by one per successor crossed.
func (q *Queue) Next() QueueItem {
	src := &q.stream.Sources[q.sourceIdx]
	for q.segIdx >= src.End {
		q.sourceIdx = (q.sourceIdx + 1) % len(q.stream.Sources)
		q.discontinuity++
		src = &q.stream.Sources[q.sourceIdx]
		q.segIdx = src.Start
	}

	seg := q.stream.Segments[q.segIdx]
	item := QueueItem{
		Discontinuity: q.discontinuity,
		Vid:           seg.Vid,
		InitSrc:       src.InitSrc,
		Segment:       seg.Src,
		Duration:      seg.Duration,
	}
	q.segIdx++
	return item
}
