package config

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed preludes/*.yaml
var preludeFS embed.FS

// Prelude is a named bundle of `assume NAME: SIG` bindings loaded by an
// `open ENV` annotation.
type Prelude struct {
	Name    string
	Assumes map[string]string // name -> signature source text
}

var preludeCache = map[string]*Prelude{}

// KnownPreludes lists the `open` environment names this build ships.
var KnownPreludes = []string{"lua51", "lua52", "base"}

// LoadPrelude loads (and caches) the named `open` environment. Returns
// (nil, false) for an unrecognised name; the caller is responsible for
// diagnosing that as an unknown environment.
func LoadPrelude(name string) (*Prelude, bool) {
	if p, ok := preludeCache[name]; ok {
		return p, true
	}
	known := false
	for _, n := range KnownPreludes {
		if n == name {
			known = true
			break
		}
	}
	if !known {
		return nil, false
	}

	raw, err := preludeFS.ReadFile(fmt.Sprintf("preludes/%s.yaml", name))
	if err != nil {
		return nil, false
	}

	var doc struct {
		Assume map[string]string `yaml:"assume"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}

	p := &Prelude{Name: name, Assumes: doc.Assume}
	preludeCache[name] = p
	return p, true
}
