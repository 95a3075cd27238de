package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aminofox/loopcast/pkg/catalog"
)

// localResolver checks resource existence against a local filesystem
// directory laid out as <BasePath>/<vid>/<resource>, grounded on the
// teacher's LocalStorage backend but narrowed to the single Exists
// operation the playout engine's startup validation needs.
type localResolver struct {
	basePath string
}

func newLocalResolver(cfg Config) (Resolver, error) {
	if cfg.BasePath == "" {
		return nil, fmt.Errorf("store: local backend requires BasePath")
	}
	return &localResolver{basePath: cfg.BasePath}, nil
}

func (r *localResolver) Exists(_ context.Context, vid uint32, resource catalog.Resource) (bool, error) {
	path := filepath.Join(r.basePath, fmt.Sprintf("%d", vid), string(resource))
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("store: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("store: %s is a directory, not a resource", path)
	}
	return true, nil
}

func (r *localResolver) Close() error { return nil }
