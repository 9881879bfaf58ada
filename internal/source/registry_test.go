package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryIsValid(t *testing.T) {
	t.Parallel()

	reg, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, reg.HTML())
	require.NotEmpty(t, reg.Feeds())
	require.Equal(t, len(reg.Sources), len(reg.HTML())+len(reg.Feeds()))
	for _, src := range reg.HTML() {
		html, ok := src.Kind.(HTML)
		require.True(t, ok)
		require.NotEmpty(t, html.Selectors.Container, src.Name)
	}
}

func TestParseTaggedKinds(t *testing.T) {
	t.Parallel()

	reg, err := Parse([]byte(`
sources:
  - name: Page
    kind: html
    url: https://example.com/news
    selectors:
      container: ".story"
      title: "h2"
  - name: Wire
    kind: rss
    url: https://example.com/feed.xml
    language: en
`))
	require.NoError(t, err)
	require.Len(t, reg.Sources, 2)

	page := reg.HTML()[0]
	require.Equal(t, KindHTML, page.KindName())
	require.Equal(t, ".story", page.Kind.(HTML).Selectors.Container)
	require.Empty(t, page.Language)

	wire := reg.Feeds()[0]
	require.IsType(t, Feed{}, wire.Kind)
	require.Equal(t, "en", wire.Language)
}

func TestParseEmptyRegistry(t *testing.T) {
	t.Parallel()

	reg, err := Parse([]byte(""))
	require.NoError(t, err)
	require.Empty(t, reg.Sources)
	require.Empty(t, reg.HTML())
	require.Empty(t, reg.Feeds())
}

func TestParseRejectsInvalidDescriptors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "sources:\n  - kind: rss\n    url: https://example.com/f\n",
			want: "name is required",
		},
		{
			name: "relative url",
			yaml: "sources:\n  - name: A\n    kind: rss\n    url: /feed\n",
			want: "absolute http(s)",
		},
		{
			name: "html without container",
			yaml: "sources:\n  - name: A\n    kind: html\n    url: https://example.com\n    selectors:\n      title: h1\n",
			want: "selectors.container",
		},
		{
			name: "rss with selectors",
			yaml: "sources:\n  - name: A\n    kind: rss\n    url: https://example.com\n    selectors:\n      container: div\n",
			want: "do not take selectors",
		},
		{
			name: "unknown kind",
			yaml: "sources:\n  - name: A\n    kind: json\n    url: https://example.com\n",
			want: "unknown kind",
		},
		{
			name: "duplicate name",
			yaml: "sources:\n  - name: A\n    kind: rss\n    url: https://example.com/1\n  - name: a\n    kind: rss\n    url: https://example.com/2\n",
			want: "duplicate name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  - name: Wire\n    kind: rss\n    url: https://example.com/rss\n"), 0o600))

	reg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, reg.Feeds(), 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
