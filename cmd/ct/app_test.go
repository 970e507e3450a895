package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnes/cheftrends/core"
	"github.com/sonnes/cheftrends/provider"
	htmlrender "github.com/sonnes/cheftrends/render/html"
	"github.com/sonnes/cheftrends/render/terminal"
)

func TestRendererRegistry(t *testing.T) {
	a := newApp()
	assert.Equal(t, []string{"html", "json", "terminal"}, a.formats())

	r, err := a.renderer("html", renderOptions{markdown: false, archiveHref: "archive.html"})
	require.NoError(t, err)
	h, ok := r.(*htmlrender.Renderer)
	require.True(t, ok)
	assert.False(t, h.Markdown)
	assert.Equal(t, "archive.html", h.ArchiveHref)

	r, err = a.renderer("terminal", renderOptions{showSteps: true})
	require.NoError(t, err)
	assert.True(t, r.(*terminal.Renderer).ShowSteps)

	_, err = a.renderer("pdf", renderOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "html, json, terminal")
}

func TestChunkText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
	}{
		{"ascii", "Savory Dutch babies are rising", 7},
		{"multibyte", "Crème brûlée — yuzu kosho", 3},
		{"empty", "", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := chunkText(tt.in, tt.n)
			assert.Equal(t, tt.in, strings.Join(chunks, ""))
			for _, c := range chunks {
				assert.True(t, utf8.ValidString(c), "chunk %q splits a rune", c)
			}
		})
	}
}

func TestDryRunProvider(t *testing.T) {
	fake := dryRunProvider()

	var streamed strings.Builder
	for _, ev := range fake.Events {
		if ev.Kind == provider.EventText {
			streamed.WriteString(ev.Text)
		}
	}

	rep := core.NewReport(reportTitle, "", genNow, fake.Response.Content)
	assert.Equal(t, rep.Text(), streamed.String(), "streamed text matches the blocking response")
	assert.Len(t, rep.SearchQueries(), 2)
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("empty path", func(t *testing.T) {
		assert.NoError(t, loadEnvFile(""))
	})

	t.Run("loads without overriding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("CT_TEST_NEW=from-file\nCT_TEST_SET=from-file\n"), 0o644))
		t.Setenv("CT_TEST_SET", "from-env")
		t.Setenv("CT_TEST_NEW", "")
		require.NoError(t, os.Unsetenv("CT_TEST_NEW"))

		require.NoError(t, loadEnvFile(path))
		assert.Equal(t, "from-file", os.Getenv("CT_TEST_NEW"))
		assert.Equal(t, "from-env", os.Getenv("CT_TEST_SET"))
	})
}

func TestRedactorFor(t *testing.T) {
	r, err := redactorFor(nil)
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = redactorFor([]string{"secrets", " pii"})
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "[REDACTED:email]", r.String("chef@bistro.example.com"))

	_, err = redactorFor([]string{"recipes"})
	assert.ErrorContains(t, err, `invalid --redact: unknown rule set "recipes"`)
}
