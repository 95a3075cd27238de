package playout

import (
	"testing"
	"time"

	"github.com/aminofox/loopcast/pkg/catalog"
)

// Scenario 4 (spec §8): mid-segment query — durations [2,2,2,2,2]s, at
// now = start+3s the first emitted segment is index 1.
func TestQueueMidSegmentQuery(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pl := mustAssemble(t, []catalog.Package{onePackage25fps(100, 5, 50)}, start)

	ph := pl.Locate(start.Add(3*time.Second), 1)
	q := NewQueue(pl.Streams[0], ph)
	item := q.Next()

	want := pl.Streams[0].Segments[1].Src
	if item.Segment != want {
		t.Fatalf("first emitted segment = %v, want segment index 1 (%v)", item.Segment, want)
	}
}

// Scenario 2 (spec §8): two 10s packages. Crossing the source boundary
// advances the discontinuity exactly once and tags vid correctly on
// both sides.
func TestQueueCrossesSourceBoundaryOnce(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pl := mustAssemble(t, []catalog.Package{
		onePackage25fps(100, 10, 25),
		onePackage25fps(200, 10, 25),
	}, start)

	ph := pl.Locate(start.Add(9*time.Second), 1)
	q := NewQueue(pl.Streams[0], ph)

	var items []QueueItem
	for i := 0; i < 4; i++ {
		items = append(items, q.Next())
	}

	if items[0].Vid != 100 {
		t.Fatalf("item 0 vid = %d, want 100", items[0].Vid)
	}
	crossed := false
	for i := 1; i < len(items); i++ {
		if items[i].Discontinuity != items[i-1].Discontinuity {
			if items[i].Discontinuity != items[i-1].Discontinuity+1 {
				t.Fatalf("discontinuity jumped by more than 1: %d -> %d", items[i-1].Discontinuity, items[i].Discontinuity)
			}
			if items[i].Vid != 200 {
				t.Fatalf("discontinuity crossing did not land on vid 200, got %d", items[i].Vid)
			}
			crossed = true
		}
	}
	if !crossed {
		t.Fatalf("queue never crossed the source boundary within the sampled window")
	}
}

// The queue is infinite: taking far more items than exist in the
// library must not panic or stall, and it must keep cycling.
func TestQueueIsInfinite(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	pl := mustAssemble(t, []catalog.Package{onePackage25fps(100, 3, 25)}, start)

	ph := pl.Locate(start, 1)
	q := NewQueue(pl.Streams[0], ph)

	for i := 0; i < 50; i++ {
		_ = q.Next()
	}
}
