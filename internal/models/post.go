// Package models defines the domain types for the worklog site.
package models

import "slices"

// Section is one of the fixed top-level content categories.
type Section string

// Known sections, in navigation order.
const (
	SectionTIL      Section = "til"
	SectionNotes    Section = "notes"
	SectionRecipes  Section = "recipes"
	SectionWorkouts Section = "workouts"
)

var sections = []Section{SectionTIL, SectionNotes, SectionRecipes, SectionWorkouts}

// Sections returns every known section in navigation order.
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// ParseSection validates a raw identifier (route or query parameter).
func ParseSection(raw string) (Section, bool) {
	for _, s := range sections {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// Valid reports whether s belongs to the fixed section set.
func (s Section) Valid() bool {
	_, ok := ParseSection(string(s))
	return ok
}

func (s Section) String() string { return string(s) }

// Frontmatter is the metadata block at the top of a content document.
type Frontmatter struct {
	Title   string   `json:"title"`
	Date    string   `json:"date,omitempty"`
	Summary string   `json:"summary,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Post is a listed document. Its identity is (Section, Slug).
type Post struct {
	Section   Section     `json:"section"`
	Slug      string      `json:"slug"`
	SlugParts []string    `json:"slug_parts"`
	Meta      Frontmatter `json:"meta"`
}

// Document is a single fetched document with its raw, unrendered body.
type Document struct {
	Meta Frontmatter `json:"meta"`
	Body string      `json:"body"`
}

// TagCount is the number of posts in a section carrying a normalized tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Clone returns a copy of p that shares no slices with it.
func (p Post) Clone() Post {
	p.SlugParts = slices.Clone(p.SlugParts)
	p.Meta.Tags = slices.Clone(p.Meta.Tags)
	return p
}

// Clone returns a copy of d that shares no slices with it.
func (d *Document) Clone() *Document {
	cp := *d
	cp.Meta.Tags = slices.Clone(d.Meta.Tags)
	return &cp
}
