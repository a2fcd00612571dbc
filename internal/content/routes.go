package content

import (
	"strings"

	"github.com/starford/worklog/internal/models"
)

// Route is one buildable page: a section index when SlugParts is empty,
// otherwise a post.
type Route struct {
	Section   models.Section
	SlugParts []string
}

// Path returns the URL path of the route.
func (r Route) Path() string {
	if len(r.SlugParts) == 0 {
		return "/" + string(r.Section)
	}
	return "/" + string(r.Section) + "/" + strings.Join(r.SlugParts, "/")
}

// Routes enumerates every section and every post across all sections. A load
// error in any section aborts the enumeration.
func Routes(src Source) ([]Route, error) {
	var out []Route
	for _, section := range models.Sections() {
		out = append(out, Route{Section: section})
		posts, err := src.ListPosts(section)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			out = append(out, Route{Section: section, SlugParts: p.SlugParts})
		}
	}
	return out, nil
}
