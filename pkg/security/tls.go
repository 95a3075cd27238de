// Package security carries loopcast's process-hardening concerns:
// today that's TLS termination (this file). Other teacher security
// concerns (encryption at rest, watermarking, per-tenant firewalls)
// have no equivalent in a single-tenant broadcast engine and are not
// carried forward — see DESIGN.md.
package security

import (
	"crypto/tls"
	"net/http"

	"golang.org/x/crypto/acme/autocert"
)

// TLSManager terminates TLS with an auto-renewing certificate obtained
// from an ACME CA (Let's Encrypt by default), for the single configured
// domain spec §6.3's optional tls.domain config names. Replaces the
// teacher's CertificateManager, which hand-rolled loading and manual
// renewal scheduling for operator-supplied cert/key files — loopcast's
// single-domain broadcast deployment has no reason to manage that by
// hand when the stdlib ecosystem already solves it.
type TLSManager struct {
	manager *autocert.Manager
}

// NewTLSManager constructs a manager for domain, caching issued
// certificates under cacheDir across restarts.
func NewTLSManager(domain, cacheDir string) *TLSManager {
	return &TLSManager{
		manager: &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(domain),
			Cache:      autocert.DirCache(cacheDir),
		},
	}
}

// TLSConfig returns a *tls.Config wired to fetch certificates on demand.
func (m *TLSManager) TLSConfig() *tls.Config {
	return m.manager.TLSConfig()
}

// HTTPHandler wraps fallback with the ACME HTTP-01 challenge responder,
// for the plaintext listener autocert needs alongside the TLS one.
func (m *TLSManager) HTTPHandler(fallback http.Handler) http.Handler {
	return m.manager.HTTPHandler(fallback)
}
