package playout

import (
	"testing"
	"time"

	"github.com/aminofox/loopcast/pkg/catalog"
)

var specs = []StreamSpec{
	{Name: "1080p", Kind: catalog.KindVideo, Width: 1920, Height: 1080, Bitrate: 5_000_000},
	{Name: "audio", Kind: catalog.KindAudio, Bitrate: 192_000},
}

func videoVariant(fps24 bool, segCount int, segTicks uint64) catalog.Variant {
	tb := catalog.TimeBase{Num: 1, Den: 24}
	if !fps24 {
		tb = catalog.TimeBase{Num: 1001, Den: 30000}
	}
	segs := make([]catalog.Segment, segCount)
	for i := range segs {
		segs[i] = catalog.Segment{Src: catalog.Resource("v.mp4"), Start: uint64(i) * segTicks, Duration: segTicks}
	}
	return catalog.Variant{
		InitSrc:  catalog.Resource("init.mp4"),
		TimeBase: tb,
		Bitrate:  5_000_000,
		Kind:     catalog.Video(1920, 1080),
		Segments: segs,
	}
}

func audioVariant(segTicks uint64) catalog.Variant {
	return catalog.Variant{
		InitSrc:  catalog.Resource("inita.mp4"),
		TimeBase: catalog.TimeBase{Num: 1, Den: 48000},
		Bitrate:  192_000,
		Kind:     catalog.Audio(),
		Segments: []catalog.Segment{{Src: catalog.Resource("a.mp4"), Start: 0, Duration: segTicks}},
	}
}

func TestAssembleMixedTimebaseSumsExact(t *testing.T) {
	// Package 0: 24fps video, one 24-tick segment (1.0s); package 1:
	// 30000/1001fps video, one 30-tick segment (1.001s). Spec scenario 3:
	// the channel's total duration must equal exactly 2.001 real seconds
	// with no float drift.
	pkgs := []catalog.Package{
		{Vid: 1, Variants: []catalog.Variant{videoVariant(true, 1, 24), audioVariant(48000)}},
		{Vid: 2, Variants: []catalog.Variant{videoVariant(false, 1, 30), audioVariant(48048)}},
	}

	pl, err := Assemble(pkgs, specs, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	got := pl.Duration.ToSeconds(pl.Step)
	want := 2.001
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("channel duration = %.9fs, want %.9fs", got, want)
	}
}

func TestAssembleRequiresNonEmptyPackages(t *testing.T) {
	if _, err := Assemble(nil, specs, time.Now()); err == nil {
		t.Fatal("expected error for zero packages")
	}
}

func TestAssembleRequiresNonEmptySpecs(t *testing.T) {
	pkgs := []catalog.Package{{Vid: 1, Variants: []catalog.Variant{videoVariant(true, 1, 24), audioVariant(48000)}}}
	if _, err := Assemble(pkgs, nil, time.Now()); err == nil {
		t.Fatal("expected error for zero output streams")
	}
}

func TestAssembleFailsOnMissingVariant(t *testing.T) {
	pkgs := []catalog.Package{{Vid: 1, Variants: []catalog.Variant{audioVariant(48000)}}}
	if _, err := Assemble(pkgs, specs, time.Now()); err == nil {
		t.Fatal("expected stream-match-failed error: package has no matching video variant")
	}
}

func TestAssembleBuildsSourceIndexInPackageOrder(t *testing.T) {
	pkgs := []catalog.Package{
		{Vid: 7, Variants: []catalog.Variant{videoVariant(true, 2, 24), audioVariant(96000)}},
		{Vid: 9, Variants: []catalog.Variant{videoVariant(true, 2, 24), audioVariant(96000)}},
	}
	pl, err := Assemble(pkgs, specs, time.Now())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(pl.sources) != 2 {
		t.Fatalf("got %d source entries, want 2", len(pl.sources))
	}
	if pl.sources[0].Vid != 7 || pl.sources[1].Vid != 9 {
		t.Fatalf("source entries out of order: %d, %d", pl.sources[0].Vid, pl.sources[1].Vid)
	}
	if !pl.sources[0].Start.IsZero() {
		t.Fatalf("first source should start at zero")
	}
	if !pl.sources[0].End.Less(pl.sources[1].End) {
		t.Fatalf("cumulative ends must be strictly increasing")
	}
}
