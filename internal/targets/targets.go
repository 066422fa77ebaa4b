// Package targets discovers sanity targets in a content tree.
package targets

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"

	"github.com/efebarandurmaz/doccheck/internal/sanity"
)

// ModuleRoots are the directories whose files are modules.
var ModuleRoots = []string{"lib/ansible/modules/", "plugins/modules/"}

var skipDirs = map[string]bool{
	".git":         true,
	"test/results": true,
	"__pycache__":  true,
}

// Discover walks root and returns every file as a target. Paths are relative
// to root and slash-separated. Targets matching any include glob are
// selected; with no globs every target is selected.
func Discover(root string, includes []string) (sanity.Targets, error) {
	for _, pattern := range includes {
		if _, err := doublestar.Match(pattern, "x"); err != nil {
			return sanity.Targets{}, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
	}

	var all []sanity.Target
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && (skipDirs[rel] || skipDirs[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}
		all = append(all, NewTarget(rel))
		return nil
	})
	if err != nil {
		return sanity.Targets{}, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Path < all[j].Path })

	return sanity.Targets{Targets: all, Include: Select(all, includes)}, nil
}

// NewTarget builds a target for a slash-separated path relative to the content root.
func NewTarget(rel string) sanity.Target {
	t := sanity.Target{Path: rel}
	if name := moduleName(rel); name != "" {
		t.Module = name
		t.Modules = []string{name}
	}
	return t
}

// Select returns the targets whose path matches one of the globs.
func Select(all []sanity.Target, includes []string) []sanity.Target {
	if len(includes) == 0 {
		return all
	}
	var selected []sanity.Target
	for _, t := range all {
		for _, pattern := range includes {
			if ok, _ := doublestar.Match(pattern, t.Path); ok {
				selected = append(selected, t)
				break
			}
		}
	}
	return selected
}

func moduleName(rel string) string {
	base := path.Base(rel)
	if base == "__init__.py" {
		return ""
	}
	for _, root := range ModuleRoots {
		if !strings.HasPrefix(rel, root) {
			continue
		}
		ext := path.Ext(base)
		if ext != ".py" && ext != ".ps1" {
			return ""
		}
		return strings.TrimSuffix(base, ext)
	}
	return ""
}
