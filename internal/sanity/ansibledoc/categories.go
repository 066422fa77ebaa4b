package ansibledoc

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/efebarandurmaz/doccheck/internal/sanity"
)

// ModuleCategory is the category ansible-doc uses for modules.
const ModuleCategory = "module"

// DefaultExcludedPluginTypes lists plugin types ansible-doc cannot document.
var DefaultExcludedPluginTypes = []string{
	"action",
	"doc_fragments",
	"filter",
	"netconf",
	"terminal",
	"test",
}

var pluginPathPattern = regexp.MustCompile(`^lib/ansible/plugins/[^/]+/`)

// pluginPathExclusions are plugin files that are not plugins themselves.
var pluginPathExclusions = map[string]bool{
	"lib/ansible/plugins/cache/base.py": true,
}

// Categories groups documentation names by ansible-doc category and maps
// each (category, name) back to the file that defines it.
type Categories struct {
	Names map[string][]string          // category -> sorted names
	Paths map[string]map[string]string // category -> name -> path
}

// Sorted returns the category labels in sorted order.
func (c *Categories) Sorted() []string {
	labels := make([]string, 0, len(c.Names))
	for label := range c.Names {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Empty reports whether there is nothing to document.
func (c *Categories) Empty() bool {
	return len(c.Names) == 0
}

// Lookup returns the source path for a name reported under category.
func (c *Categories) Lookup(category, name string) (string, bool) {
	p, ok := c.Paths[category][name]
	return p, ok
}

// BuildCategories groups the included targets by category. The module path
// index is built from all targets so that a module reported by name can be
// attributed even when only its documentation fragment changed.
func BuildCategories(all, include []sanity.Target, prefix string, excluded []string) *Categories {
	skip := make(map[string]bool, len(excluded))
	for _, e := range excluded {
		skip[e] = true
	}

	c := &Categories{
		Names: make(map[string][]string),
		Paths: make(map[string]map[string]string),
	}

	modules := make(map[string]bool)
	for _, t := range include {
		for _, m := range t.Modules {
			modules[m] = true
		}
	}
	for _, m := range sortedKeys(modules) {
		c.Names[ModuleCategory] = append(c.Names[ModuleCategory], prefix+m)
	}

	for _, t := range include {
		pluginType, pluginName, ok := classifyPlugin(t.Path)
		if !ok || skip[pluginType] {
			continue
		}
		name := prefix + pluginName
		c.Names[pluginType] = append(c.Names[pluginType], name)
		if c.Paths[pluginType] == nil {
			c.Paths[pluginType] = make(map[string]string)
		}
		c.Paths[pluginType][name] = t.Path
	}

	for label, names := range c.Names {
		c.Names[label] = uniqueSorted(names)
	}

	if c.Empty() {
		return c
	}

	moduleIndex := make(map[string]string)
	for _, t := range all {
		if t.Module != "" {
			moduleIndex[prefix+t.Module] = t.Path
		}
	}
	c.Paths[ModuleCategory] = moduleIndex

	return c
}

// classifyPlugin derives the plugin type and name from a path such as
// lib/ansible/plugins/lookup/file.py. The type is the parent directory.
func classifyPlugin(p string) (pluginType, name string, ok bool) {
	if path.Base(p) == "__init__.py" || pluginPathExclusions[p] || !pluginPathPattern.MatchString(p) {
		return "", "", false
	}
	parts := strings.Split(strings.TrimSuffix(p, path.Ext(p)), "/")
	return parts[len(parts)-2], parts[len(parts)-1], true
}

func uniqueSorted(names []string) []string {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return sortedKeys(set)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
