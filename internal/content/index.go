package content

import (
	"path"
	"strings"

	"github.com/starford/worklog/internal/apperr"
	"github.com/starford/worklog/internal/models"
	"github.com/starford/worklog/internal/parser"
	"github.com/starford/worklog/internal/storage"
)

// Index is the stateless file-system backed Source.
type Index struct {
	store storage.Provider
}

// Verify *Index satisfies Source at compile time.
var _ Source = (*Index)(nil)

// NewIndex creates an index over store, whose root holds one directory per
// section.
func NewIndex(store storage.Provider) *Index {
	return &Index{store: store}
}

// ListPosts walks the section directory and parses every document. The
// first document without a title fails the whole listing.
func (ix *Index) ListPosts(section models.Section) ([]models.Post, error) {
	if err := checkSection(section); err != nil {
		return nil, err
	}
	files, err := ix.store.List(string(section))
	if err != nil {
		return nil, err
	}

	prefix := string(section) + "/"
	posts := make([]models.Post, 0, len(files))
	for _, file := range files {
		res, err := ix.load(file)
		if err != nil {
			return nil, err
		}
		slug := stripExtension(strings.TrimPrefix(file, prefix))
		posts = append(posts, models.Post{
			Section:   section,
			Slug:      slug,
			SlugParts: strings.Split(slug, "/"),
			Meta:      res.Meta,
		})
	}

	sortPosts(posts)
	return posts, nil
}

// ListTags counts normalized tags across the section. Blank tags are skipped.
func (ix *Index) ListTags(section models.Section) ([]models.TagCount, error) {
	posts, err := ix.ListPosts(section)
	if err != nil {
		return nil, err
	}
	return CountTags(posts), nil
}

// ListPostsByTag filters ListPosts by a case and whitespace insensitive tag.
func (ix *Index) ListPostsByTag(section models.Section, tag string) ([]models.Post, error) {
	posts, err := ix.ListPosts(section)
	if err != nil {
		return nil, err
	}
	return FilterByTag(posts, tag), nil
}

// GetPost joins slugParts and probes each markdown extension in precedence
// order; the first existing file wins.
func (ix *Index) GetPost(section models.Section, slugParts []string) (*models.Document, error) {
	if err := checkSection(section); err != nil {
		return nil, err
	}
	rel, ok := joinSlug(slugParts)
	if !ok {
		return nil, apperr.ErrNotFound
	}

	base := path.Join(string(section), rel)
	for _, ext := range storage.MarkdownExtensions {
		file := base + ext
		if !ix.store.Exists(file) {
			continue
		}
		res, err := ix.load(file)
		if err != nil {
			return nil, err
		}
		return &models.Document{Meta: res.Meta, Body: res.Body}, nil
	}
	return nil, apperr.ErrNotFound
}

func (ix *Index) load(file string) (*parser.Result, error) {
	data, err := ix.store.Read(file)
	if err != nil {
		return nil, &LoadError{Path: file, Err: err}
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, &LoadError{Path: file, Err: err}
	}
	if res.Meta.Title == "" {
		return nil, &LoadError{Path: file, Err: apperr.ErrMissingTitle}
	}
	return res, nil
}

// joinSlug rejects segments that are empty, relative, or carry separators so
// a lookup never leaves its section directory.
func joinSlug(parts []string) (string, bool) {
	if len(parts) == 0 {
		return "", false
	}
	for _, p := range parts {
		if p == "" || p == "." || p == ".." || strings.ContainsAny(p, `/\`) {
			return "", false
		}
	}
	return strings.Join(parts, "/"), true
}

func stripExtension(name string) string {
	for _, ext := range storage.MarkdownExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}
