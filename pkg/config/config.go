// Package config loads loopcast's process configuration: the options
// spec.md §6.3 recognizes (bind_address, base, media_base, speed) plus
// the domain-stack options SPEC_FULL §11 adds (resource store backend,
// variant playlist response cache, optional TLS).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aminofox/loopcast/pkg/catalog"
)

// Config is the top-level process configuration.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Library LibraryConfig `json:"library" yaml:"library"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Cache   CacheConfig   `json:"cache" yaml:"cache"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ServerConfig holds HTTP-surface configuration (spec §6.2/6.3).
type ServerConfig struct {
	// BindAddress is the HTTP listen socket, e.g. ":8080".
	BindAddress string `json:"bind_address" yaml:"bind_address"`

	// Base is the origin prefix injected into master-playlist variant
	// links (spec §6.3 "base").
	Base string `json:"base" yaml:"base"`

	// MediaBase is the origin prefix injected into fragment/init URIs
	// in variant playlists (spec §6.3 "media_base"), allowing the
	// static fragment store to live on a different origin/CDN.
	MediaBase string `json:"media_base" yaml:"media_base"`

	// Speed is an integer playback multiplier used for accelerated-time
	// testing (spec §6.3 "speed"). Production deployments leave it at 1.
	Speed int `json:"speed" yaml:"speed"`

	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// TLS, when non-nil, terminates TLS with an ACME-issued certificate
	// for the named domain instead of serving plaintext.
	TLS *TLSConfig `json:"tls" yaml:"tls"`
}

// TLSConfig configures ACME autocert TLS termination.
type TLSConfig struct {
	Domain  string `json:"domain" yaml:"domain"`
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`
}

// LibraryConfig configures where the package library lives and the
// fixed output stream ladder stream assembly builds (spec §4.3,
// SPEC_FULL §12's configurable recipe).
type LibraryConfig struct {
	// ManifestDir holds one <vid>.json manifest per package (spec §6.4).
	ManifestDir string `json:"manifest_dir" yaml:"manifest_dir"`

	// Streams is the channel's output bitrate ladder. Defaults to the
	// four streams spec.md §4.3 names.
	Streams []StreamSpec `json:"streams" yaml:"streams"`
}

// StreamSpec names one configured output stream (one row of the master
// playlist).
type StreamSpec struct {
	Name    string `json:"name" yaml:"name"`
	Kind    string `json:"kind" yaml:"kind"` // "video" or "audio"
	Width   uint16 `json:"width" yaml:"width"`
	Height  uint16 `json:"height" yaml:"height"`
	Bitrate uint32 `json:"bitrate" yaml:"bitrate"`
}

// KindType converts the wire string into a catalog.KindType.
func (s StreamSpec) KindType() (catalog.KindType, error) {
	switch s.Kind {
	case "video":
		return catalog.KindVideo, nil
	case "audio":
		return catalog.KindAudio, nil
	default:
		return 0, fmt.Errorf("config: stream %q has unknown kind %q", s.Name, s.Kind)
	}
}

// StoreConfig configures the resource-existence resolver (SPEC_FULL §11).
type StoreConfig struct {
	Type            string `json:"type" yaml:"type"` // "local" or "s3"
	BasePath        string `json:"base_path" yaml:"base_path"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	Region          string `json:"region" yaml:"region"`
	Bucket          string `json:"bucket" yaml:"bucket"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// CacheConfig configures the variant playlist response cache
// (SPEC_FULL §11).
type CacheConfig struct {
	// Type selects "memory" or "redis". The cache is a pure performance
	// optimization; "memory" is a safe, dependency-free default.
	Type string `json:"type" yaml:"type"`

	// RedisAddress is the Redis server address (host:port), used when
	// Type == "redis".
	RedisAddress  string        `json:"redis_address" yaml:"redis_address"`
	RedisPassword string        `json:"redis_password" yaml:"redis_password"`
	RedisDB       int           `json:"redis_db" yaml:"redis_db"`
	TTL           time.Duration `json:"ttl" yaml:"ttl"`
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// DefaultStreams is the bitrate ladder named explicitly in spec.md §4.3.
func DefaultStreams() []StreamSpec {
	return []StreamSpec{
		{Name: "1080p", Kind: "video", Width: 1920, Height: 1080, Bitrate: 5_000_000},
		{Name: "720p", Kind: "video", Width: 1280, Height: 720, Bitrate: 1_500_000},
		{Name: "540p", Kind: "video", Width: 960, Height: 540, Bitrate: 400_000},
		{Name: "audio", Kind: "audio", Bitrate: 192_000},
	}
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddress:  ":8080",
			Base:         "",
			MediaBase:    "",
			Speed:        1,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Library: LibraryConfig{
			ManifestDir: "./packages",
			Streams:     DefaultStreams(),
		},
		Store: StoreConfig{
			Type:     "local",
			BasePath: "./segments",
		},
		Cache: CacheConfig{
			Type: "memory",
			TTL:  1 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file and applies environment
// overrides. A malformed file or a config that fails Validate is a
// startup-fatal condition (spec §7.1).
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", filename, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", filename, err)
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromEnv overrides config from environment variables, matching the
// teacher's convention of a small, explicit allowlist rather than
// reflection-based binding.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("LOOPCAST_BIND_ADDRESS"); v != "" {
		c.Server.BindAddress = v
	}
	if v := os.Getenv("LOOPCAST_BASE"); v != "" {
		c.Server.Base = v
	}
	if v := os.Getenv("LOOPCAST_MEDIA_BASE"); v != "" {
		c.Server.MediaBase = v
	}
	if v := os.Getenv("LOOPCAST_SPEED"); v != "" {
		// An unparseable value leaves the file/default speed in place.
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Speed = n
		}
	}
	if v := os.Getenv("LOOPCAST_MANIFEST_DIR"); v != "" {
		c.Library.ManifestDir = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Cache.RedisAddress = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPassword = v
	}
}

// Validate checks the configuration for the obvious startup-fatal
// mistakes (spec §7.1): an empty manifest directory, an empty or
// malformed stream ladder, an unrecognized backend type.
func (c *Config) Validate() error {
	if c.Library.ManifestDir == "" {
		return fmt.Errorf("config: library.manifest_dir is required")
	}
	if len(c.Library.Streams) == 0 {
		return fmt.Errorf("config: library.streams must name at least one output stream")
	}
	for _, s := range c.Library.Streams {
		if _, err := s.KindType(); err != nil {
			return err
		}
	}
	switch c.Store.Type {
	case "local", "s3":
	default:
		return fmt.Errorf("config: store.type %q is not one of local, s3", c.Store.Type)
	}
	switch c.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: cache.type %q is not one of memory, redis", c.Cache.Type)
	}
	if c.Server.Speed <= 0 {
		return fmt.Errorf("config: server.speed must be positive")
	}
	return nil
}
