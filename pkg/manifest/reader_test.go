package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validManifest = `{
  "vid": 100,
  "packaged_at": "2026-01-01T00:00:00Z",
  "variants": [
    {
      "init_src": {"0": "init1080.mp4"},
      "time_base": "1/25",
      "bitrate": 5000000,
      "kind": "video",
      "info": {"width": 1920, "height": 1080},
      "segments": [
        {"src": {"0": "seg0.mp4"}, "start": 0, "duration": 50},
        {"src": {"0": "seg1.mp4"}, "start": 50, "duration": 50}
      ]
    },
    {
      "init_src": {"0": "init720.mp4"},
      "time_base": "1/25",
      "bitrate": 1500000,
      "kind": "video",
      "info": {"width": 1280, "height": 720},
      "segments": [
        {"src": {"0": "seg0.mp4"}, "start": 0, "duration": 50},
        {"src": {"0": "seg1.mp4"}, "start": 50, "duration": 50}
      ]
    },
    {
      "init_src": {"0": "inita.mp4"},
      "time_base": "1/48000",
      "bitrate": 192000,
      "kind": "audio",
      "segments": [
        {"src": {"0": "sega.mp4"}, "start": 0, "duration": 192000}
      ]
    }
  ]
}`

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReadDirSortsByFilenameAndSkipsDisabled(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "200.json", strReplaceVid(validManifest, 200))
	writeManifest(t, dir, "100.json", validManifest)
	writeManifest(t, dir, "_disabled.json", "not even valid json")
	writeManifest(t, dir, "notes.txt", "ignored, not .json")

	pkgs, err := ReadDir(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(pkgs) != 2 {
		t.Fatalf("got %d packages, want 2", len(pkgs))
	}
	if pkgs[0].Vid != 100 || pkgs[1].Vid != 200 {
		t.Fatalf("packages not in filename order: %d, %d", pkgs[0].Vid, pkgs[1].Vid)
	}
}

func TestReadDirFailsFastOnInvalidPackage(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "100.json", validManifest)
	writeManifest(t, dir, "101.json", `{"vid": 101, "packaged_at": "2026-01-01T00:00:00Z", "variants": []}`)

	if _, err := ReadDir(context.Background(), dir, nil); err == nil {
		t.Fatalf("expected error: package 101 has no variants")
	}
}

func TestReadDirFailsOnEmptyLibrary(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadDir(context.Background(), dir, nil); err == nil {
		t.Fatalf("expected error for empty manifest directory")
	}
}

func strReplaceVid(manifest string, vid int) string {
	return strings.Replace(manifest, `"vid": 100`, fmt.Sprintf(`"vid": %d`, vid), 1)
}
