package playout

import (
	"fmt"
	"time"

	"github.com/aminofox/loopcast/pkg/catalog"
	"github.com/aminofox/loopcast/pkg/clock"
	"github.com/aminofox/loopcast/pkg/errors"
)

// Assemble builds the channel-wide Playlist from packages (already in
// channel order, per spec §4.2's sorted-by-filename contract) and the
// configured output stream ladder (spec §4.3). start anchors the
// channel's wall-clock epoch (spec §3's Playlist.start).
//
// The first video stream in specs is the channel's "top" stream (spec
// §4.3): its per-package walk defines the canonical loop length that
// every other stream's total duration must agree with.
func Assemble(packages []catalog.Package, specs []StreamSpec, start time.Time) (*Playlist, error) {
	if len(packages) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyLibrary, "playout: cannot assemble a playlist from zero packages")
	}
	if len(specs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "playout: cannot assemble a playlist with zero output streams")
	}

	step := computeStep(packages)

	topIdx, err := topVideoIndex(specs)
	if err != nil {
		return nil, err
	}

	streams := make([]*Stream, len(specs))
	for i, spec := range specs {
		s, err := buildStream(packages, spec, step)
		if err != nil {
			return nil, err
		}
		streams[i] = s
	}

	sources, total := walkSources(streams[topIdx])

	if err := verifyLoopLengths(streams, topIdx, total, len(packages)); err != nil {
		return nil, err
	}

	return &Playlist{
		Start:    start,
		Step:     step,
		Duration: total,
		sources:  sources,
		Streams:  streams,
	}, nil
}

// computeStep derives the channel's step clock as the LCM of every
// variant timebase denominator across every loaded package (spec §3's
// StepSize, §4.1).
func computeStep(packages []catalog.Package) clock.StepSize {
	var denominators []uint64
	for _, p := range packages {
		for _, v := range p.Variants {
			denominators = append(denominators, v.TimeBase.Den)
		}
	}
	return clock.LCM(denominators...)
}

func topVideoIndex(specs []StreamSpec) (int, error) {
	for i, s := range specs {
		if s.Kind == catalog.KindVideo {
			return i, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "playout: output stream ladder has no video stream to anchor the channel clock")
}

// buildStream picks, for every package, the variant matching spec's
// (kind, bitrate) and appends its segments. Spec §4.3: an exact
// bitrate/kind match is required and the first matching variant wins;
// absence in any package is startup-fatal.
func buildStream(packages []catalog.Package, spec StreamSpec, step clock.StepSize) (*Stream, error) {
	stream := &Stream{Spec: spec}

	for _, pkg := range packages {
		variant, ok := matchVariant(pkg, spec)
		if !ok {
			return nil, errors.NewStreamMatchFailedError(pkg.Vid, spec.Name)
		}

		src := StreamSource{
			Vid:     pkg.Vid,
			InitSrc: variant.InitSrc,
			Start:   len(stream.Segments),
		}

		var cumulative uint64
		endOffsets := make([]clock.Duration, 0, len(variant.Segments))
		for _, seg := range variant.Segments {
			cumulative += seg.Duration
			end, err := clock.New(cumulative, variant.TimeBase.Num, variant.TimeBase.Den, step)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeTimeBaseInvalid, "playout: converting segment end offset", err)
			}
			endOffsets = append(endOffsets, end)

			dur, err := clock.New(seg.Duration, variant.TimeBase.Num, variant.TimeBase.Den, step)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeTimeBaseInvalid, "playout: converting segment duration", err)
			}
			stream.Segments = append(stream.Segments, StreamSegment{
				Vid:      pkg.Vid,
				Src:      seg.Src,
				Duration: dur,
			})
		}
		src.endOffsets = endOffsets
		src.End = len(stream.Segments)
		stream.Sources = append(stream.Sources, src)
	}

	return stream, nil
}

func matchVariant(pkg catalog.Package, spec StreamSpec) (catalog.Variant, bool) {
	for _, v := range pkg.Variants {
		if v.Kind.Type == spec.Kind && v.Bitrate == spec.Bitrate {
			return v, true
		}
	}
	return catalog.Variant{}, false
}

// walkSources performs the top-stream walk of spec §4.3: accumulating
// running duration per source to build the channel's source index and
// its canonical total loop length.
func walkSources(top *Stream) ([]sourceEntry, clock.Duration) {
	entries := make([]sourceEntry, 0, len(top.Sources))
	running := clock.Zero

	for i, src := range top.Sources {
		end := running.Add(durationOfSource(top, src))
		entries = append(entries, sourceEntry{
			End:       end,
			Start:     running,
			SourceIdx: i,
			Vid:       src.Vid,
		})
		running = end
	}

	return entries, running
}

func stepsString(d clock.Duration) string {
	return fmt.Sprintf("%d steps", d.Steps())
}

// durationOfSource sums a source's already-step-converted segment
// durations — exact, since step-unit addition is plain unsigned
// addition regardless of the original per-package timebase.
func durationOfSource(stream *Stream, src StreamSource) clock.Duration {
	total := clock.Zero
	for i := src.Start; i < src.End; i++ {
		total = total.Add(stream.Segments[i].Duration)
	}
	return total
}

// verifyLoopLengths asserts every non-top stream's total duration
// equals the canonical loop length, within a one-step-per-package
// tolerance for rounding (spec §4.3: "audio may round to the nearest
// step").
func verifyLoopLengths(streams []*Stream, topIdx int, total clock.Duration, packageCount int) error {
	for i, s := range streams {
		if i == topIdx {
			continue
		}
		var sum uint64
		for _, seg := range s.Segments {
			sum += seg.Duration.Steps()
		}
		diff := int64(sum) - int64(total.Steps())
		if diff < 0 {
			diff = -diff
		}
		if uint64(diff) > uint64(packageCount) {
			return errors.NewLoopLengthMismatchError(s.Spec.Name,
				stepsString(clock.FromSteps(sum)), stepsString(total))
		}
	}
	return nil
}
