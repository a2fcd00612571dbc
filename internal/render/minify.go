package render

import (
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
)

// Minifier shrinks rendered HTML pages, including their inline stylesheet.
type Minifier struct {
	m *minify.M
}

// NewMinifier registers the HTML and CSS minifiers.
func NewMinifier() *Minifier {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	return &Minifier{m: m}
}

// HTML minifies a full HTML document.
func (mf *Minifier) HTML(page []byte) ([]byte, error) {
	out, err := mf.m.Bytes("text/html", page)
	if err != nil {
		return nil, fmt.Errorf("render: minify: %w", err)
	}
	return out, nil
}
