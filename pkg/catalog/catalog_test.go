package catalog

import "testing"

func seg(start, dur uint64) Segment {
	return Segment{Src: "x.mp4", Start: start, Duration: dur}
}

func TestParseTimeBase(t *testing.T) {
	tb, err := ParseTimeBase("30000/1001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tb.Num != 30000 || tb.Den != 1001 {
		t.Fatalf("got %+v", tb)
	}

	if _, err := ParseTimeBase("bad"); err == nil {
		t.Fatalf("expected error for malformed time_base")
	}
	if _, err := ParseTimeBase("1/0"); err == nil {
		t.Fatalf("expected error for zero denominator")
	}
}

func TestSegmentValidateRejectsZeroDuration(t *testing.T) {
	if err := seg(0, 0).Validate(); err == nil {
		t.Fatalf("expected error for zero duration segment")
	}
}

func TestVariantValidateRequiresSegments(t *testing.T) {
	v := Variant{Kind: Video(1920, 1080), TimeBase: TimeBase{1, 25}}
	if err := v.Validate(); err == nil {
		t.Fatalf("expected error for empty segment list")
	}
}

func TestPackageValidateRequiresAudioAndVideo(t *testing.T) {
	videoOnly := Package{
		Vid: 1,
		Variants: []Variant{
			{Kind: Video(1920, 1080), TimeBase: TimeBase{1, 25}, Segments: []Segment{seg(0, 25)}},
		},
	}
	if err := videoOnly.Validate(); err == nil {
		t.Fatalf("expected error for missing audio variant")
	}
}

func TestPackageValidateChecksVideoDurationAgreement(t *testing.T) {
	p := Package{
		Vid: 1,
		Variants: []Variant{
			{Kind: Video(1920, 1080), TimeBase: TimeBase{1, 25}, Segments: []Segment{seg(0, 25)}},
			{Kind: Video(1280, 720), TimeBase: TimeBase{1, 24}, Segments: []Segment{seg(0, 48)}}, // 2s vs 1s
			{Kind: Audio(), TimeBase: TimeBase{1, 48000}, Segments: []Segment{seg(0, 48000)}},
		},
	}
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for mismatched video durations")
	}
}

func TestPackageValidateAcceptsEquivalentTimebases(t *testing.T) {
	p := Package{
		Vid: 1,
		Variants: []Variant{
			{Kind: Video(1920, 1080), TimeBase: TimeBase{1, 25}, Segments: []Segment{seg(0, 25), seg(25, 25)}},
			{Kind: Video(1280, 720), TimeBase: TimeBase{1, 24000}, Segments: []Segment{seg(0, 24000), seg(24000, 24000)}},
			{Kind: Audio(), TimeBase: TimeBase{1, 48000}, Segments: []Segment{seg(0, 96000)}},
		},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVariantDurationExact(t *testing.T) {
	v := Variant{
		TimeBase: TimeBase{Num: 1, Den: 25},
		Segments: []Segment{seg(0, 25), seg(25, 25), seg(50, 25)},
	}
	d, err := v.Duration(25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ToSeconds(25) != 3.0 {
		t.Fatalf("got %v seconds, want 3.0", d.ToSeconds(25))
	}
}
