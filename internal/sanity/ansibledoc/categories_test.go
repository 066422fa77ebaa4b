package ansibledoc

import (
	"reflect"
	"testing"

	"github.com/efebarandurmaz/doccheck/internal/sanity"
)

func moduleTarget(path, name string) sanity.Target {
	return sanity.Target{Path: path, Module: name, Modules: []string{name}}
}

func TestClassifyPlugin(t *testing.T) {
	tests := []struct {
		path     string
		wantType string
		wantName string
		wantOK   bool
	}{
		{"lib/ansible/plugins/lookup/file.py", "lookup", "file", true},
		{"lib/ansible/plugins/connection/ssh.py", "connection", "ssh", true},
		{"lib/ansible/plugins/lookup/__init__.py", "", "", false},
		{"lib/ansible/plugins/cache/base.py", "", "", false},
		{"lib/ansible/plugins/cache/memory.py", "cache", "memory", true},
		{"lib/ansible/plugins/__init__.py", "", "", false},
		{"lib/ansible/modules/ping.py", "", "", false},
		{"lib/ansible/plugins/action/net/base.py", "net", "base", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			gotType, gotName, ok := classifyPlugin(tt.path)
			if ok != tt.wantOK || gotType != tt.wantType || gotName != tt.wantName {
				t.Errorf("got (%q, %q, %v), want (%q, %q, %v)", gotType, gotName, ok, tt.wantType, tt.wantName, tt.wantOK)
			}
		})
	}
}

func TestBuildCategories(t *testing.T) {
	all := []sanity.Target{
		moduleTarget("lib/ansible/modules/ping.py", "ping"),
		moduleTarget("lib/ansible/modules/copy.py", "copy"),
		moduleTarget("lib/ansible/modules/stat.py", "stat"),
		{Path: "lib/ansible/plugins/lookup/file.py"},
		{Path: "lib/ansible/plugins/filter/core.py"},
		{Path: "lib/ansible/plugins/callback/default.py"},
	}
	include := []sanity.Target{
		all[1], all[0], all[3], all[4], all[5],
		// documentation fragment shared by two modules
		{Path: "lib/ansible/plugins/doc_fragments/files.py", Modules: []string{"copy", "stat"}},
	}

	c := BuildCategories(all, include, "", DefaultExcludedPluginTypes)

	wantNames := map[string][]string{
		"module":   {"copy", "ping", "stat"},
		"lookup":   {"file"},
		"callback": {"default"},
	}
	if !reflect.DeepEqual(c.Names, wantNames) {
		t.Errorf("got names %v, want %v", c.Names, wantNames)
	}
	if got := c.Sorted(); !reflect.DeepEqual(got, []string{"callback", "lookup", "module"}) {
		t.Errorf("got sorted %v", got)
	}

	// module index covers every module target, not only included ones
	if p, ok := c.Lookup("module", "stat"); !ok || p != "lib/ansible/modules/stat.py" {
		t.Errorf("module lookup = %q, %v", p, ok)
	}
	if p, ok := c.Lookup("lookup", "file"); !ok || p != "lib/ansible/plugins/lookup/file.py" {
		t.Errorf("lookup lookup = %q, %v", p, ok)
	}
	if _, ok := c.Lookup("filter", "core"); ok {
		t.Error("excluded plugin type should not be indexed")
	}
	if _, ok := c.Lookup("module", "file"); ok {
		t.Error("lookup must use the category the name was parsed under")
	}
}

func TestBuildCategories_Prefix(t *testing.T) {
	all := []sanity.Target{
		moduleTarget("plugins/modules/ping.py", "ping"),
		{Path: "lib/ansible/plugins/lookup/file.py"},
	}
	c := BuildCategories(all, all, "community.general.", nil)

	if got := c.Names["module"]; !reflect.DeepEqual(got, []string{"community.general.ping"}) {
		t.Errorf("got module names %v", got)
	}
	if _, ok := c.Lookup("lookup", "community.general.file"); !ok {
		t.Error("expected prefixed plugin name in index")
	}
	if _, ok := c.Lookup("module", "community.general.ping"); !ok {
		t.Error("expected prefixed module name in index")
	}
}

func TestBuildCategories_Empty(t *testing.T) {
	include := []sanity.Target{
		{Path: "lib/ansible/plugins/filter/core.py"},
		{Path: "lib/ansible/utils/helpers.py"},
	}
	c := BuildCategories(include, include, "", DefaultExcludedPluginTypes)
	if !c.Empty() {
		t.Errorf("expected empty categories, got %v", c.Names)
	}
}
