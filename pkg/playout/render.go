package playout

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aminofox/loopcast/pkg/catalog"
	"github.com/aminofox/loopcast/pkg/clock"
	"github.com/aminofox/loopcast/pkg/errors"
	"github.com/aminofox/loopcast/pkg/resource"
)

// LookAhead is the number of queue items a rendered variant playlist
// carries (spec §4.5/§4.6): "typically 16".
const LookAhead = 16

// RenderMaster renders the HLS master playlist (spec §4.6). base is the
// configured origin prefix for variant playlist links (spec §6.3). The
// output never depends on now — stable across requests.
func (p *Playlist) RenderMaster(base string) string {
	buf := &bytes.Buffer{}
	buf.WriteString("#EXTM3U\n")
	buf.WriteString("#EXT-X-INDEPENDENT-SEGMENTS\n")

	for i, s := range p.Streams {
		uri := resource.PlaylistURI(base, i)
		switch s.Spec.Kind {
		case catalog.KindVideo:
			fmt.Fprintf(buf, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d,CODECS=\"avc1.64e01f, mp4a.40.2\",AUDIO=\"audio\"\n",
				s.Spec.Bitrate, s.Spec.Width, s.Spec.Height)
			fmt.Fprintf(buf, "%s\n", uri)
		case catalog.KindAudio:
			fmt.Fprintf(buf, "#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID=\"audio\",LANGUAGE=\"en\",NAME=\"aac_192\",AUTOSELECT=YES,DEFAULT=YES,URI=\"%s\"\n", uri)
		}
	}

	return buf.String()
}

// RenderVariant renders one stream's media playlist for the instant now
// (spec §4.6). mediaBase is the configured origin prefix for fragment
// and init segment URIs (spec §6.3); speed is the playback multiplier
// (spec §6.3), normally 1.
func (p *Playlist) RenderVariant(streamIdx int, now time.Time, speed int, mediaBase string) (string, error) {
	if streamIdx < 0 || streamIdx >= len(p.Streams) {
		return "", errors.NewUnknownVariantError(streamIdx)
	}
	stream := p.Streams[streamIdx]

	ph := p.Locate(now, speed)
	q := NewQueue(stream, ph)
	mediaSequence := ph.LoopIndex*uint64(len(stream.Segments)) + uint64(q.mediaSequence())
	uris := resource.NewFormatter(mediaBase)

	buf := &bytes.Buffer{}
	buf.WriteString("#EXTM3U\n")
	buf.WriteString("#EXT-X-VERSION:7\n")
	fmt.Fprintf(buf, "#EXT-X-TARGETDURATION:%d\n", targetDuration(stream, p.Step))
	fmt.Fprintf(buf, "#EXT-X-MEDIA-SEQUENCE:%d\n", mediaSequence)
	fmt.Fprintf(buf, "#EXT-X-DISCONTINUITY-SEQUENCE:%d\n", ph.Discontinuity)

	currentDiscontinuity := ph.Discontinuity
	var mappedVid uint32
	haveMap := false

	for i := 0; i < LookAhead; i++ {
		item := q.Next()

		if item.Discontinuity > currentDiscontinuity {
			for ; currentDiscontinuity < item.Discontinuity; currentDiscontinuity++ {
				buf.WriteString("#EXT-X-DISCONTINUITY\n")
			}
		}

		if !haveMap || item.Vid != mappedVid {
			fmt.Fprintf(buf, "#EXT-X-MAP:URI=\"%s\"\n", uris.FragmentURI(item.Vid, item.InitSrc))
			mappedVid = item.Vid
			haveMap = true
		}

		fmt.Fprintf(buf, "#EXTINF:%s,\n", formatSeconds(item.Duration.ToSeconds(p.Step)))
		fmt.Fprintf(buf, "%s\n", uris.FragmentURI(item.Vid, item.Segment))
	}

	return buf.String(), nil
}

// targetDuration computes EXT-X-TARGETDURATION as the ceiling of the
// stream's longest segment, in whole seconds (spec §9's open question:
// a hardcoded 10 breaks if any segment exceeds it).
func targetDuration(s *Stream, step clock.StepSize) int {
	var maxSeconds float64
	for _, seg := range s.Segments {
		if d := seg.Duration.ToSeconds(step); d > maxSeconds {
			maxSeconds = d
		}
	}
	return int(math.Ceil(maxSeconds))
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 6, 64)
}
