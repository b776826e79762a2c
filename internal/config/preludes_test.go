package config_test

import (
	"testing"

	"github.com/funvibe/luatypes/internal/annot"
	"github.com/funvibe/luatypes/internal/config"
	"github.com/funvibe/luatypes/internal/diag"
	"github.com/stretchr/testify/require"
)

func TestLoadPreludeLua51HasCoreBindings(t *testing.T) {
	p, ok := config.LoadPrelude("lua51")
	require.True(t, ok)
	for _, name := range []string{"print", "type", "assert", "pairs", "ipairs", "tostring"} {
		require.Contains(t, p.Assumes, name, "lua51 prelude is missing %q", name)
	}
}

func TestLoadPreludeUnknownName(t *testing.T) {
	_, ok := config.LoadPrelude("lua99")
	require.False(t, ok)
}

func TestLoadPreludeIsCached(t *testing.T) {
	a, ok := config.LoadPrelude("base")
	require.True(t, ok)
	b, _ := config.LoadPrelude("base")
	require.Same(t, a, b)
}

func TestEveryPreludeSignatureParses(t *testing.T) {
	for _, name := range config.KnownPreludes {
		p, ok := config.LoadPrelude(name)
		require.True(t, ok, "prelude %s", name)
		require.NotEmpty(t, p.Assumes, "prelude %s", name)
		for global, src := range p.Assumes {
			_, err := annot.ParseType(diag.Span{}, src, nil)
			require.Nil(t, err, "prelude %s: %s: %s", name, global, src)
		}
	}
}
