// Package store resolves the content-addressed resources a manifest
// references (§6.1/6.4) against the backend that actually holds them.
// loopcast's core never reads resource bytes — the static-file surface
// that serves fragments is explicitly out of scope (spec §1) — but
// startup validation (spec §7) must still be able to ask "does this
// resource exist?" before the process commits to serving a playlist
// that links to it.
package store

import (
	"context"
	"time"

	"github.com/aminofox/loopcast/pkg/catalog"
)

// BackendType selects a Resolver implementation.
type BackendType string

const (
	// BackendLocal resolves resources against a local directory laid
	// out as segments/<vid>/<resource>, matching spec §6.4.
	BackendLocal BackendType = "local"
	// BackendS3 resolves resources as S3 objects under the same
	// <vid>/<resource> key shape.
	BackendS3 BackendType = "s3"
)

// Config configures a Resolver backend.
type Config struct {
	Type            BackendType
	BasePath        string // local: the segments directory itself (holds <vid>/<resource>)
	Endpoint        string // s3: custom endpoint (MinIO et al.)
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Timeout         time.Duration
}

// DefaultConfig returns a local-backend configuration rooted at the
// conventional segments/ directory from spec §6.4.
func DefaultConfig() Config {
	return Config{
		Type:     BackendLocal,
		BasePath: "./segments",
		Timeout:  10 * time.Second,
	}
}

// Resolver answers whether a content-addressed resource belonging to a
// given package actually exists in the backing store. Implementations
// must be safe for concurrent use; the manifest reader calls Exists
// for every resource reference of every package at startup, one call
// at a time.
type Resolver interface {
	Exists(ctx context.Context, vid uint32, resource catalog.Resource) (bool, error)
	// Close releases any held connections.
	Close() error
}

// New constructs the Resolver named by cfg.Type.
func New(cfg Config) (Resolver, error) {
	switch cfg.Type {
	case "", BackendLocal:
		return newLocalResolver(cfg)
	case BackendS3:
		return newS3Resolver(cfg)
	default:
		return nil, &UnsupportedBackendError{Type: cfg.Type}
	}
}

// UnsupportedBackendError is returned by New for an unrecognized
// backend type.
type UnsupportedBackendError struct {
	Type BackendType
}

func (e *UnsupportedBackendError) Error() string {
	return "store: unsupported backend type " + string(e.Type)
}
