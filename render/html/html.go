// Package html renders reports as standalone HTML pages, with markdown
// converted by goldmark (GFM + chroma highlighting). It also renders the
// streaming app page served by the web server and the archive index.
package html

import (
	"embed"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"github.com/sonnes/cheftrends/core"
)

//go:embed templates/*.html
var content embed.FS

// Renderer renders a report to a standalone HTML page.
type Renderer struct {
	md   goldmark.Markdown
	tmpl *template.Template

	// Markdown controls body conversion. When false the body is escaped and
	// shown as pre-wrapped text.
	Markdown bool

	// ArchiveHref, when non-empty, adds a link from the report page to the
	// archive index.
	ArchiveHref string
}

// New creates an HTML Renderer with goldmark configured for GFM and syntax
// highlighting. Raw HTML in the model output is not passed through.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles for standalone pages
				),
			),
		),
	)

	tmpl := template.Must(
		template.New("report.html").
			Funcs(funcMap()).
			ParseFS(content, "templates/*.html"),
	)

	return &Renderer{md: md, tmpl: tmpl, Markdown: true}
}

// pageData is the template data passed to report.html.
type pageData struct {
	Report      *core.Report
	Body        template.HTML
	Queries     []string
	ArchiveHref string
}

// indexData is the template data passed to index.html.
type indexData struct {
	Entries []core.ManifestEntry
}

// AppData is the template data passed to app.html.
type AppData struct {
	Title      string
	Subtitle   string
	StreamPath string // URL the page POSTs focus to
}

// Render writes the report as a complete HTML page to w.
func (r *Renderer) Render(w io.Writer, rep *core.Report) error {
	body, err := renderBody(r.md, rep.Body, r.Markdown)
	if err != nil {
		return err
	}
	return r.tmpl.ExecuteTemplate(w, "report.html", pageData{
		Report:      rep,
		Body:        body,
		Queries:     rep.SearchQueries(),
		ArchiveHref: r.ArchiveHref,
	})
}

// RenderIndex writes the archive index listing the given entries, in the
// order given.
func (r *Renderer) RenderIndex(w io.Writer, entries []core.ManifestEntry) error {
	return r.tmpl.ExecuteTemplate(w, "index.html", indexData{Entries: entries})
}

// RenderApp writes the interactive page that streams a report from the server.
func (r *Renderer) RenderApp(w io.Writer, data AppData) error {
	if data.Title == "" {
		data.Title = "Chef Trends"
	}
	if data.StreamPath == "" {
		data.StreamPath = "/stream"
	}
	return r.tmpl.ExecuteTemplate(w, "app.html", data)
}
