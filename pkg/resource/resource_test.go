package resource

import (
	"testing"

	"github.com/aminofox/loopcast/pkg/catalog"
)

func TestFragmentURIJoinsCleanly(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"https://media.example.test", "https://media.example.test/100/seg0.mp4"},
		{"https://media.example.test/", "https://media.example.test/100/seg0.mp4"},
	}
	for _, c := range cases {
		got := NewFormatter(c.base).FragmentURI(100, catalog.Resource("seg0.mp4"))
		if got != c.want {
			t.Fatalf("FragmentURI(%q) = %q, want %q", c.base, got, c.want)
		}
	}
}

func TestPlaylistURI(t *testing.T) {
	got := PlaylistURI("https://example.test/", 2)
	want := "https://example.test/hls/variant2.m3u8"
	if got != want {
		t.Fatalf("PlaylistURI = %q, want %q", got, want)
	}
}
