package playout

import (
	"time"

	"github.com/aminofox/loopcast/pkg/clock"
)

// ScheduleItem is one source's airtime within a single loop of the
// channel (spec §4.7): the vid that airs, and its half-open
// [StartDuration, EndDuration) range within the loop.
type ScheduleItem struct {
	Vid           uint32
	StartDuration clock.Duration
	EndDuration   clock.Duration
}

// Schedule is a read-only snapshot of the channel's top-stream walk
// (spec §4.7), exported for external consumers — an EPG, a logging
// pipeline — that need to reason about when each vid airs without
// coupling to the renderer or the queue iterator.
type Schedule struct {
	Step     clock.StepSize
	Start    time.Time
	Duration clock.Duration
	Items    []ScheduleItem
}

// Schedule clones the playlist's top-stream source walk into an
// external-facing snapshot. The Playlist itself is never mutated after
// Assemble, so the returned Schedule never goes stale for the life of
// the process.
func (p *Playlist) Schedule() Schedule {
	items := make([]ScheduleItem, len(p.sources))
	for i, s := range p.sources {
		items[i] = ScheduleItem{
			Vid:           s.Vid,
			StartDuration: s.Start,
			EndDuration:   s.End,
		}
	}
	return Schedule{
		Step:     p.Step,
		Start:    p.Start,
		Duration: p.Duration,
		Items:    items,
	}
}
