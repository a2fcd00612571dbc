package render

import (
	"net/url"
	"strings"

	"github.com/starford/worklog/internal/models"
)

// Linker builds page URLs. The live server filters tags with a query
// parameter; static output gets one directory per tag.
type Linker interface {
	Section(section models.Section) string
	Tag(section models.Section, tag string) string
	Post(section models.Section, slugParts []string) string
}

// ServerLinks is the URL scheme of the HTTP server.
type ServerLinks struct{}

func (ServerLinks) Section(section models.Section) string {
	return "/" + string(section)
}

func (ServerLinks) Tag(section models.Section, tag string) string {
	return "/" + string(section) + "?tag=" + url.QueryEscape(tag)
}

func (ServerLinks) Post(section models.Section, slugParts []string) string {
	return "/" + string(section) + "/" + escapeParts(slugParts)
}

// StaticLinks is the URL scheme of the static build output.
type StaticLinks struct{}

func (StaticLinks) Section(section models.Section) string {
	return "/" + string(section) + "/"
}

func (StaticLinks) Tag(section models.Section, tag string) string {
	return "/" + string(section) + "/" + TagDir + "/" + url.PathEscape(TagSegment(tag)) + "/"
}

func (StaticLinks) Post(section models.Section, slugParts []string) string {
	return "/" + string(section) + "/" + escapeParts(slugParts) + "/"
}

// TagDir is the directory holding per-tag listings in static output.
const TagDir = "tags"

// TagSegment names the static directory of a tag listing. Tags that would
// leave or nest below the tags directory are percent-encoded so the name
// stays a single path segment.
func TagSegment(tag string) string {
	switch {
	case tag == "." || tag == "..":
		return strings.Repeat("%2E", len(tag))
	case strings.ContainsAny(tag, `/\`):
		return url.PathEscape(tag)
	}
	return tag
}

func escapeParts(parts []string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return strings.Join(escaped, "/")
}
