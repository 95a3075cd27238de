// Package catalog holds the decoded, validated library entities: the
// immutable Package/Variant/Segment aggregate that the manifest reader
// produces and stream assembly consumes. Nothing in this package does
// I/O; it is the in-memory shape of one program in the library.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aminofox/loopcast/pkg/clock"
)

// Resource is a content-addressed handle to a file in the fragment
// store: URL-safe base64 (no padding) of the file's hash, with a
// suffix — e.g. "qg3f0FZ...9k.mp4". loopcast never inspects the hash;
// it only carries the string through to the renderer and the store
// resolver.
type Resource string

// TimeBase is the rational number of seconds per raw timescale tick,
// decoded from a manifest's "NUM/DEN" string.
type TimeBase struct {
	Num uint64
	Den uint64
}

// ParseTimeBase parses the manifest wire format "NUM/DEN".
func ParseTimeBase(s string) (TimeBase, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return TimeBase{}, fmt.Errorf("catalog: malformed time_base %q, want NUM/DEN", s)
	}
	num, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return TimeBase{}, fmt.Errorf("catalog: malformed time_base numerator in %q: %w", s, err)
	}
	den, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return TimeBase{}, fmt.Errorf("catalog: malformed time_base denominator in %q: %w", s, err)
	}
	if den == 0 {
		return TimeBase{}, fmt.Errorf("catalog: time_base %q has zero denominator", s)
	}
	return TimeBase{Num: num, Den: den}, nil
}

// KindType distinguishes the two closed variant kinds.
type KindType int

const (
	// KindVideo marks a video rendition.
	KindVideo KindType = iota
	// KindAudio marks the single audio rendition.
	KindAudio
)

func (k KindType) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// Kind is the closed tagged union over a variant's media kind. It is a
// struct rather than an interface+two-types split because the two
// variants (Video's width/height vs Audio's absence of fields) are
// cheap to carry inline and every caller needs to switch on Type
// exhaustively anyway; Width/Height are meaningful iff Type == KindVideo.
type Kind struct {
	Type          KindType
	Width, Height uint16
}

// Video constructs a video Kind.
func Video(width, height uint16) Kind { return Kind{Type: KindVideo, Width: width, Height: height} }

// Audio constructs the audio Kind.
func Audio() Kind { return Kind{Type: KindAudio} }

// Segment is one fMP4 fragment of a variant.
type Segment struct {
	Src      Resource
	Start    uint64 // decode timestamp, variant-local timebase ticks
	Duration uint64 // ticks; must be > 0
}

// Validate enforces Segment's sole invariant.
func (s Segment) Validate() error {
	if s.Duration == 0 {
		return fmt.Errorf("catalog: segment %s has zero duration", s.Src)
	}
	return nil
}

// Variant is one rendition (one bitrate/kind) of a Package.
type Variant struct {
	InitSrc   Resource
	TimeBase  TimeBase
	Bitrate   uint32
	Kind      Kind
	Segments  []Segment
}

// Validate enforces Variant's invariants: a non-empty segment list with
// every segment individually valid.
func (v Variant) Validate() error {
	if len(v.Segments) == 0 {
		return fmt.Errorf("catalog: variant (kind=%s, bitrate=%d) has no segments", v.Kind.Type, v.Bitrate)
	}
	for i, s := range v.Segments {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("catalog: variant (kind=%s, bitrate=%d) segment %d: %w", v.Kind.Type, v.Bitrate, i, err)
		}
	}
	return nil
}

// TotalTicks sums the variant's segment durations in raw timebase
// ticks (not step units — callers convert once via clock.New on the
// total, which is both exact and cheaper than converting per segment).
func (v Variant) TotalTicks() uint64 {
	var total uint64
	for _, s := range v.Segments {
		total += s.Duration
	}
	return total
}

// Duration converts the variant's total runtime onto the given step
// clock.
func (v Variant) Duration(step clock.StepSize) (clock.Duration, error) {
	return clock.New(v.TotalTicks(), v.TimeBase.Num, v.TimeBase.Den, step)
}

// Package is one immutable source program: a vid, a packaging
// timestamp, and its full set of renditions.
type Package struct {
	Vid        uint32
	PackagedAt time.Time
	Variants   []Variant
}

// VideoVariants returns the package's video renditions, in manifest
// order.
func (p Package) VideoVariants() []Variant {
	out := make([]Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		if v.Kind.Type == KindVideo {
			out = append(out, v)
		}
	}
	return out
}

// AudioVariant returns the package's sole audio rendition, or false if
// it has none (a startup-fatal condition the caller must surface).
func (p Package) AudioVariant() (Variant, bool) {
	for _, v := range p.Variants {
		if v.Kind.Type == KindAudio {
			return v, true
		}
	}
	return Variant{}, false
}

// Validate enforces the Package-level invariants from spec section 3:
// every variant individually valid, all video variants share an equal
// segment count and pairwise-equal per-index real-time durations, and
// the audio variant's total duration matches video within step
// round-off (checked by the caller, which has the shared step clock).
func (p Package) Validate() error {
	if len(p.Variants) == 0 {
		return fmt.Errorf("catalog: package vid=%d has no variants", p.Vid)
	}
	for i, v := range p.Variants {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("catalog: package vid=%d variant %d: %w", p.Vid, i, err)
		}
	}

	videos := p.VideoVariants()
	if len(videos) == 0 {
		return fmt.Errorf("catalog: package vid=%d has no video variant", p.Vid)
	}
	first := videos[0]
	for _, v := range videos[1:] {
		if len(v.Segments) != len(first.Segments) {
			return fmt.Errorf("catalog: package vid=%d video variants disagree on segment count (%d vs %d)",
				p.Vid, len(v.Segments), len(first.Segments))
		}
		for i := range v.Segments {
			da := realSeconds(first.Segments[i].Duration, first.TimeBase)
			db := realSeconds(v.Segments[i].Duration, v.TimeBase)
			if !almostEqual(da, db) {
				return fmt.Errorf("catalog: package vid=%d video variants disagree on segment %d real-time duration (%.6fs vs %.6fs)",
					p.Vid, i, da, db)
			}
		}
	}

	if _, ok := p.AudioVariant(); !ok {
		return fmt.Errorf("catalog: package vid=%d has no audio variant", p.Vid)
	}
	return nil
}

func realSeconds(ticks uint64, tb TimeBase) float64 {
	return float64(ticks*tb.Num) / float64(tb.Den)
}

func almostEqual(a, b float64) bool {
	const eps = 1e-6
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < eps
}
