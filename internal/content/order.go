package content

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/worklog/internal/models"
	"github.com/starford/worklog/internal/parser"
)

// sortPosts orders dated posts first, newest date first (ISO dates compare
// lexically), then by collated title, then by slug.
func sortPosts(posts []models.Post) {
	col := collate.New(language.English)
	slices.SortFunc(posts, func(a, b models.Post) int {
		ad, bd := a.Meta.Date, b.Meta.Date
		switch {
		case ad != "" && bd == "":
			return -1
		case ad == "" && bd != "":
			return 1
		case ad != bd:
			return strings.Compare(bd, ad)
		}
		if c := col.CompareString(a.Meta.Title, b.Meta.Title); c != 0 {
			return c
		}
		return strings.Compare(a.Slug, b.Slug)
	})
}

// CountTags builds the tag histogram of posts: count descending, then tag
// ascending.
func CountTags(posts []models.Post) []models.TagCount {
	counts := make(map[string]int)
	for _, p := range posts {
		for _, t := range p.Meta.Tags {
			key := parser.NormalizeTag(t)
			if key == "" {
				continue
			}
			counts[key]++
		}
	}

	out := make([]models.TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, models.TagCount{Tag: tag, Count: n})
	}
	col := collate.New(language.English)
	slices.SortFunc(out, func(a, b models.TagCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		if c := col.CompareString(a.Tag, b.Tag); c != 0 {
			return c
		}
		return strings.Compare(a.Tag, b.Tag)
	})
	return out
}

// FilterByTag keeps the posts carrying tag, preserving order.
func FilterByTag(posts []models.Post, tag string) []models.Post {
	target := parser.NormalizeTag(tag)
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if parser.HasTag(p.Meta.Tags, target) {
			out = append(out, p)
		}
	}
	return out
}
