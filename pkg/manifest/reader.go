// Package manifest reads package manifests (spec §6.1) from disk into
// the catalog model, enforcing every startup-fatal invariant from
// spec §3/§7 before the channel is assembled. There is no "skip bad
// package" policy: a single malformed or invalid manifest fails the
// whole load.
package manifest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aminofox/loopcast/pkg/catalog"
	"github.com/aminofox/loopcast/pkg/errors"
	"github.com/aminofox/loopcast/pkg/store"
)

// ReadDir reads every non-disabled *.json manifest in dir, decodes and
// validates it, and optionally verifies every referenced resource
// exists in resolver (pass nil to skip — useful for tests and for
// deployments that trust the packager's own validation). Packages are
// returned in sorted-by-filename order, which is the channel's
// concatenation order (spec §4.2).
func ReadDir(ctx context.Context, dir string, resolver store.Resolver) ([]catalog.Package, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewManifestUnreadableError(dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ".json" {
			continue
		}
		if strings.HasPrefix(name, "_") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, errors.NewEmptyLibraryError(dir)
	}

	packages := make([]catalog.Package, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		pkg, err := readOne(path)
		if err != nil {
			return nil, err
		}
		if err := pkg.Validate(); err != nil {
			return nil, errors.NewPackageInvalidError(pkg.Vid, err)
		}
		if resolver != nil {
			if err := verifyResources(ctx, resolver, pkg); err != nil {
				return nil, err
			}
		}
		packages = append(packages, pkg)
	}

	return packages, nil
}

func readOne(path string) (catalog.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.Package{}, errors.NewManifestUnreadableError(path, err)
	}

	var wp wirePackage
	if err := json.Unmarshal(data, &wp); err != nil {
		return catalog.Package{}, errors.NewManifestMalformedError(path, err)
	}

	pkg, err := wp.toCatalog()
	if err != nil {
		return catalog.Package{}, errors.NewManifestMalformedError(path, err)
	}
	return pkg, nil
}

func verifyResources(ctx context.Context, resolver store.Resolver, pkg catalog.Package) error {
	for _, v := range pkg.Variants {
		if ok, err := resolver.Exists(ctx, pkg.Vid, v.InitSrc); err != nil {
			return errors.Wrap(errors.ErrCodeResourceMissing, "checking init resource", err)
		} else if !ok {
			return errors.NewResourceMissingError(pkg.Vid, string(v.InitSrc))
		}
		for _, s := range v.Segments {
			if ok, err := resolver.Exists(ctx, pkg.Vid, s.Src); err != nil {
				return errors.Wrap(errors.ErrCodeResourceMissing, "checking segment resource", err)
			} else if !ok {
				return errors.NewResourceMissingError(pkg.Vid, string(s.Src))
			}
		}
	}
	return nil
}
