package manifest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aminofox/loopcast/pkg/catalog"
)

// wireResource decodes the manifest's resource-reference shape,
// `{"0": "<base64url-no-pad>.mp4"}` (spec §6.1) — a single-entry map
// keyed by chunk/version index. loopcast only ever reads index "0".
type wireResource struct {
	value catalog.Resource
}

func (r *wireResource) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("manifest: resource reference: %w", err)
	}
	v, ok := raw["0"]
	if !ok {
		return fmt.Errorf(`manifest: resource reference missing required key "0"`)
	}
	r.value = catalog.Resource(v)
	return nil
}

type wireSegment struct {
	Src      wireResource `json:"src"`
	Start    uint64       `json:"start"`
	Duration uint64       `json:"duration"`
}

func (s wireSegment) toCatalog() catalog.Segment {
	return catalog.Segment{Src: s.Src.value, Start: s.Start, Duration: s.Duration}
}

type wireVideoInfo struct {
	Width  uint16 `json:"width"`
	Height uint16 `json:"height"`
}

type wireVariant struct {
	InitSrc  wireResource    `json:"init_src"`
	TimeBase string          `json:"time_base"`
	Bitrate  uint32          `json:"bitrate"`
	Kind     string          `json:"kind"`
	Info     *wireVideoInfo  `json:"info"`
	Segments []wireSegment   `json:"segments"`
}

func (v wireVariant) toCatalog() (catalog.Variant, error) {
	tb, err := catalog.ParseTimeBase(v.TimeBase)
	if err != nil {
		return catalog.Variant{}, err
	}

	var kind catalog.Kind
	switch v.Kind {
	case "video":
		if v.Info == nil {
			return catalog.Variant{}, fmt.Errorf(`manifest: video variant missing "info"`)
		}
		kind = catalog.Video(v.Info.Width, v.Info.Height)
	case "audio":
		kind = catalog.Audio()
	default:
		return catalog.Variant{}, fmt.Errorf("manifest: unknown variant kind %q", v.Kind)
	}

	segments := make([]catalog.Segment, len(v.Segments))
	for i, s := range v.Segments {
		segments[i] = s.toCatalog()
	}

	return catalog.Variant{
		InitSrc:  v.InitSrc.value,
		TimeBase: tb,
		Bitrate:  v.Bitrate,
		Kind:     kind,
		Segments: segments,
	}, nil
}

type wirePackage struct {
	Vid        uint32        `json:"vid"`
	PackagedAt time.Time     `json:"packaged_at"`
	Variants   []wireVariant `json:"variants"`
}

func (p wirePackage) toCatalog() (catalog.Package, error) {
	variants := make([]catalog.Variant, len(p.Variants))
	for i, v := range p.Variants {
		cv, err := v.toCatalog()
		if err != nil {
			return catalog.Package{}, fmt.Errorf("manifest: vid=%d variant %d: %w", p.Vid, i, err)
		}
		variants[i] = cv
	}
	return catalog.Package{Vid: p.Vid, PackagedAt: p.PackagedAt, Variants: variants}, nil
}
