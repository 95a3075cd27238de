package playout

import (
	"sort"
	"time"

	"github.com/aminofox/loopcast/pkg/clock"
)

// Playhead is the derived position of the channel at one wall-clock
// instant (spec §4.4): which loop of the library, which source within
// it, how far into that source, and the channel-wide discontinuity
// count that has elapsed since playlist.start.
type Playhead struct {
	LoopIndex      uint64
	SourceIndex    int
	OffsetInSource clock.Duration
	Discontinuity  uint64
}

// Locate maps a wall-clock timestamp to a Playhead (spec §4.4). now
// before playlist.Start is clamped to playlist.Start rather than
// failing (spec §7.2's request-local error handling: "treat as now =
// playlist.start"). speed is the configured playback multiplier (spec
// §6.3), normally 1.
func (p *Playlist) Locate(now time.Time, speed int) Playhead {
	elapsedSeconds := now.Sub(p.Start).Seconds()
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}

	elapsedTicks := uint64(elapsedSeconds) * uint64(speed)
	elapsed, err := clock.New(elapsedTicks, 1, 1, p.Step)
	if err != nil {
		// step is always a multiple of 1; New cannot fail with den=1.
		panic("playout: unreachable: elapsed-time conversion with den=1 failed: " + err.Error())
	}

	loopIndex, offset := elapsed.Modulo(p.Duration)

	idx := p.sourceAfter(offset)
	entry := p.sources[idx]

	return Playhead{
		LoopIndex:      loopIndex,
		SourceIndex:    entry.SourceIdx,
		OffsetInSource: offset.Sub(entry.Start),
		Discontinuity:  loopIndex*uint64(len(p.sources)) + uint64(entry.SourceIdx),
	}
}

// sourceAfter returns the index into p.sources of the first entry
// whose End > offset (spec §4.4 step 4's "lower_bound(offset)"; spec
// §9's sorted-map range lookup). A strict comparison, not >=: at an
// exact source boundary offset == End of the finished source, and the
// just-started successor (whose End is strictly greater) must win
// (spec §4.4's edge case). p.sources must be non-empty and sorted
// ascending by End — guaranteed by Assemble.
func (p *Playlist) sourceAfter(offset clock.Duration) int {
	return sort.Search(len(p.sources), func(i int) bool {
		return offset.Less(p.sources[i].End)
	})
}
