package security

import (
	"net/http"
	"testing"
)

func TestNewTLSManagerBuildsConfig(t *testing.T) {
	m := NewTLSManager("stream.example.test", t.TempDir())
	cfg := m.TLSConfig()
	if cfg.GetCertificate == nil {
		t.Fatalf("expected autocert-backed GetCertificate hook")
	}
}

func TestHTTPHandlerWrapsFallback(t *testing.T) {
	m := NewTLSManager("stream.example.test", t.TempDir())
	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if h := m.HTTPHandler(fallback); h == nil {
		t.Fatalf("expected non-nil handler")
	}
}
