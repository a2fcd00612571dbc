// Package render turns content documents into HTML pages.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/starford/worklog/internal/models"
	contentparser "github.com/starford/worklog/internal/parser"
)

//go:embed templates/*.html
var templateFS embed.FS

const highlightStyle = "github"

const baseCSS = `
body{margin:0;font-family:system-ui,-apple-system,sans-serif;line-height:1.6;color:#1f2328}
a{color:inherit}
.header,.footer{padding:16px 24px}
.nav{display:flex;justify-content:space-between;align-items:center;max-width:860px;margin:0 auto}
.brand{font-weight:800;text-decoration:none}
.links{display:flex;gap:16px}
.links a{text-decoration:none;font-weight:600}
.container{max-width:860px;margin:0 auto;padding:24px}
.footer{text-align:center;color:#656d76}
.meta{color:#656d76;font-size:14px}
.home-title{font-size:34px;font-weight:800;letter-spacing:-.02em}
.grid{display:grid;gap:12px;margin-top:18px}
.card{display:block;border:1px solid #d0d7de;border-radius:12px;padding:14px 16px;text-decoration:none}
.card-title{font-weight:800;font-size:18px}
.tags{margin-top:12px}
.chips{display:flex;gap:8px;flex-wrap:wrap;margin-top:8px}
.chip{padding:6px 10px;border-radius:999px;font-weight:800;opacity:.8}
.chip.active{opacity:1;border-color:#1f2328}
.list{list-style:none;padding:0;display:grid;gap:12px;margin-top:18px}
.post-title{font-weight:800;text-decoration:none}
.post pre{padding:12px;border-radius:8px;overflow-x:auto}
`

// Site carries the values shared by every page.
type Site struct {
	Title      string
	Owner      string
	LiveReload bool
}

// Link is a navigation entry.
type Link struct {
	Name string
	Href string
}

// TagChip is one tag filter on a section page.
type TagChip struct {
	Tag    string
	Count  int
	Href   string
	Active bool
}

// PostItem is one entry of a section listing.
type PostItem struct {
	Href string
	Meta models.Frontmatter
}

// HomePage is the data of the landing page.
type HomePage struct {
	Title    string
	Sections []Link
}

// SectionPage is the data of a section listing.
type SectionPage struct {
	Name        string
	AllHref     string
	SelectedTag string
	Tags        []TagChip
	Posts       []PostItem
}

// PostPage is the data of a single post.
type PostPage struct {
	Meta models.Frontmatter
	Body template.HTML
}

type layoutData struct {
	Site  Site
	Title string
	Nav   []Link
	Year  int
	CSS   template.CSS
	Page  any
}

// Renderer renders pages with html/template and Markdown with goldmark.
// It is safe for concurrent use.
type Renderer struct {
	site  Site
	links Linker
	md    goldmark.Markdown
	css   template.CSS
	pages map[string]*template.Template
	now   func() time.Time
}

// New parses the embedded templates.
func New(site Site, links Linker) (*Renderer, error) {
	css, err := stylesheet()
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		site:  site,
		links: links,
		md:    newMarkdown(),
		css:   css,
		pages: make(map[string]*template.Template),
		now:   time.Now,
	}
	funcs := template.FuncMap{
		"upper":    upper,
		"hashtags": hashtags,
	}
	for _, name := range []string{"home", "section", "post"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("render: parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Links returns the URL scheme the renderer was built with.
func (r *Renderer) Links() Linker { return r.links }

// Markdown converts a document body (GFM with highlighted code) to HTML.
func (r *Renderer) Markdown(body string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render: markdown: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // author-controlled content
}

// Home renders the landing page.
func (r *Renderer) Home(w io.Writer) error {
	return r.execute(w, "home", "", HomePage{Title: r.site.Title, Sections: r.nav()})
}

// Section renders a section listing. selectedTag is the normalized active
// tag or empty for the unfiltered listing.
func (r *Renderer) Section(w io.Writer, section models.Section, tags []models.TagCount, posts []models.Post, selectedTag string) error {
	page := SectionPage{
		Name:        string(section),
		AllHref:     r.links.Section(section),
		SelectedTag: selectedTag,
		Tags:        make([]TagChip, 0, len(tags)),
		Posts:       make([]PostItem, 0, len(posts)),
	}
	for _, t := range tags {
		page.Tags = append(page.Tags, TagChip{
			Tag:    t.Tag,
			Count:  t.Count,
			Href:   r.links.Tag(section, t.Tag),
			Active: selectedTag != "" && contentparser.NormalizeTag(selectedTag) == t.Tag,
		})
	}
	for _, p := range posts {
		page.Posts = append(page.Posts, PostItem{
			Href: r.links.Post(section, p.SlugParts),
			Meta: p.Meta,
		})
	}
	return r.execute(w, "section", upper(string(section)), page)
}

// Post renders a single document.
func (r *Renderer) Post(w io.Writer, doc *models.Document) error {
	body, err := r.Markdown(doc.Body)
	if err != nil {
		return err
	}
	return r.execute(w, "post", doc.Meta.Title, PostPage{Meta: doc.Meta, Body: body})
}

func (r *Renderer) execute(w io.Writer, page, title string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("render: unknown page %q", page)
	}
	err := t.ExecuteTemplate(w, "layout", layoutData{
		Site:  r.site,
		Title: title,
		Nav:   r.nav(),
		Year:  r.now().Year(),
		CSS:   r.css,
		Page:  data,
	})
	if err != nil {
		return fmt.Errorf("render: execute %s: %w", page, err)
	}
	return nil
}

func (r *Renderer) nav() []Link {
	sections := models.Sections()
	out := make([]Link, len(sections))
	for i, s := range sections {
		out[i] = Link{Name: string(s), Href: r.links.Section(s)}
	}
	return out
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		// MDX documents embed raw HTML and component tags.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

func stylesheet() (template.CSS, error) {
	var buf bytes.Buffer
	buf.WriteString(baseCSS)
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(highlightStyle)); err != nil {
		return "", fmt.Errorf("render: highlight css: %w", err)
	}
	return template.CSS(buf.String()), nil //nolint:gosec // generated stylesheet
}

func upper(s string) string {
	return cases.Upper(language.English).String(s)
}

func hashtags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, "#"+t)
	}
	return strings.Join(out, " ")
}
